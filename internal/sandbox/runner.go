package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/google/shlex"
)

// waitDelay bounds how long Wait keeps draining pipes after the child is gone.
const waitDelay = 500 * time.Millisecond

// Result describes one finished child process.
type Result struct {
	Stdout    []byte
	Stderr    []byte
	ExitCode  int
	Elapsed   time.Duration
	TimedOut  bool
	Truncated bool
}

// Failed reports whether the process crashed, exited non-zero or ran out of time.
func (r *Result) Failed() bool {
	return r.TimedOut || r.ExitCode != 0
}

// Runner spawns build and run commands of student programs. Each call gets
// its own child process and buffers; the working directory is passed to the
// child explicitly, so the grader's own cwd is never touched.
type Runner struct {
	limits Limits
	logger *slog.Logger
}

func NewRunner(limits Limits, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{limits: limits, logger: logger}
}

func (r *Runner) Limits() Limits {
	return r.limits
}

// Run executes command inside dir, feeding stdin to it. A limit of zero
// selects the runner's default wall limit. The returned error is non-nil
// only when the process could not be started or waited for.
func (r *Runner) Run(ctx context.Context, dir string, command string,
	stdin []byte, limit time.Duration, env ...string) (*Result, error) {

	if limit <= 0 {
		limit = r.limits.Wall
	}
	return r.exec(ctx, dir, command, stdin, limit, env)
}

// Build executes a build command inside dir under the build wall limit.
func (r *Runner) Build(ctx context.Context, dir string, command string, env ...string) (*Result, error) {
	return r.exec(ctx, dir, command, nil, r.limits.BuildWall, env)
}

func (r *Runner) exec(ctx context.Context, dir string, command string,
	stdin []byte, limit time.Duration, env []string) (*Result, error) {

	args, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("failed to parse command %q: %w", command, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("command is empty")
	}

	runCtx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	stdout := &cappedBuffer{max: r.limits.MaxOutputBytes}
	stderr := &cappedBuffer{max: r.limits.MaxOutputBytes}

	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)
	cmd.Cancel = func() error {
		return killProcessGroup(cmd)
	}

	r.logger.Debug("starting process", "cmd", command, "dir", dir, "limit", limit)
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %q: %w", args[0], err)
	}
	waitErr := cmd.Wait()
	elapsed := time.Since(start)

	// background descendants must not outlive the run and touch dir later
	if err := killProcessGroup(cmd); err != nil && !errors.Is(err, os.ErrProcessDone) {
		r.logger.Warn("failed to kill leftover processes", "cmd", command, "error", err)
	}

	res := &Result{
		Stdout:    stdout.Bytes(),
		Stderr:    stderr.Bytes(),
		Elapsed:   elapsed,
		Truncated: stdout.truncated || stderr.truncated,
	}

	if ctx.Err() != nil {
		return nil, fmt.Errorf("run of %q aborted: %w", args[0], ctx.Err())
	}
	// a process that exited on its own right at the deadline is not a timeout
	if waitErr != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		res.TimedOut = true
		res.ExitCode = -1
		r.logger.Debug("process killed on timeout", "cmd", command, "elapsed", elapsed)
		return res, nil
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(waitErr, &exitErr):
			res.ExitCode = exitErr.ExitCode()
		case errors.Is(waitErr, exec.ErrWaitDelay):
			// the child exited but a descendant kept its output pipes open
			res.ExitCode = cmd.ProcessState.ExitCode()
		default:
			return nil, fmt.Errorf("failed to wait for %q: %w", args[0], waitErr)
		}
	}
	r.logger.Debug("process finished", "cmd", command, "exit", res.ExitCode, "elapsed", elapsed)
	return res, nil
}

// cappedBuffer keeps at most max bytes and silently drops the rest so that a
// chatty child never blocks on a full pipe.
type cappedBuffer struct {
	buf       bytes.Buffer
	max       int64
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	room := b.max - int64(b.buf.Len())
	if b.max > 0 && int64(len(p)) > room {
		if room > 0 {
			b.buf.Write(p[:room])
		}
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) Bytes() []byte {
	return b.buf.Bytes()
}
