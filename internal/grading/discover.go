package grading

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/programme-lv/grader/internal/archive"
	"github.com/programme-lv/grader/internal/assignment"
)

// Discover lists submission archives in dir in directory-listing order.
func Discover(dir string, asg *assignment.Assignment) ([]Submission, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions dir: %w", err)
	}
	subs := make([]Submission, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := archive.TrimExt(entry.Name()); !ok {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		subs = append(subs, Submission{
			Index:       len(subs),
			StudentID:   asg.StudentID(path),
			ArchivePath: path,
		})
	}
	return subs, nil
}
