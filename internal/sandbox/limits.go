package sandbox

import (
	"fmt"
	"time"
)

type Limits struct {
	// Wall is the default per-run wall clock limit, used when a run passes none.
	Wall time.Duration
	// BuildWall bounds the optional build step of a sub-project.
	BuildWall time.Duration
	// MaxOutputBytes caps each of stdout and stderr; the remainder is discarded.
	MaxOutputBytes int64
}

func DefaultLimits() Limits {
	return Limits{
		Wall:           2 * time.Second,
		BuildWall:      2 * time.Minute,
		MaxOutputBytes: 64 << 20,
	}
}

func (l Limits) String() string {
	return fmt.Sprintf("wall=%s build=%s output=%dB", l.Wall, l.BuildWall, l.MaxOutputBytes)
}
