// Package loggath writes the human-readable grading log. Every submission is
// buffered and written as one contiguous block when it finishes, so the log
// stays readable when submissions are graded concurrently.
package loggath

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/programme-lv/grader/internal/assignment"
	"github.com/programme-lv/grader/internal/compare"
	"github.com/programme-lv/grader/internal/grading"
	"github.com/programme-lv/grader/internal/layout"
	"github.com/programme-lv/grader/internal/sandbox"
)

type Log struct {
	mu  sync.Mutex
	w   io.Writer
	err error
}

func New(w io.Writer) *Log {
	return &Log{w: w}
}

// Factory returns a gatherer factory writing into this log.
func (l *Log) Factory() grading.GathererFactory {
	return func(sub grading.Submission) grading.Gatherer {
		return &submLog{log: l}
	}
}

// NoSubmissions records that the input directory held no archives.
func (l *Log) NoSubmissions() {
	l.write([]byte("No archive files found in the directory.\n"))
}

// Err returns the first write error, if any.
func (l *Log) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func (l *Log) write(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return
	}
	if _, err := l.w.Write(b); err != nil {
		l.err = fmt.Errorf("failed to write grading log: %w", err)
	}
}

type submLog struct {
	log     *Log
	buf     bytes.Buffer
	archive string
}

var _ grading.Gatherer = (*submLog)(nil)

func (s *submLog) printf(format string, args ...any) {
	fmt.Fprintf(&s.buf, format, args...)
	s.buf.WriteByte('\n')
}

func (s *submLog) StartSubmission(sub grading.Submission) {
	s.archive = filepath.Base(sub.ArchivePath)
	s.printf("\nGrading submission: %s (student %s)", s.archive, sub.StudentID)
}

func (s *submLog) CorruptArchive(err error) {
	s.printf("Error: %s is a bad archive file: %v", s.archive, err)
	s.printf("File structure validation failed for %s", s.archive)
}

func (s *submLog) InternalError(err error) {
	s.printf("Error: cannot grade %s: %v", s.archive, err)
}

func (s *submLog) MissingSubProject(issue layout.Issue) {
	if issue.Path == "" {
		s.printf("Warning: Missing folder %s", issue.SubProject)
	} else {
		s.printf("Warning: Missing %s in %s", issue.Path, issue.SubProject)
	}
	s.printf("Skipping %s due to missing files.", issue.SubProject)
}

func (s *submLog) StartSubProject(name string, tests int) {}

func (s *submLog) FinishBuild(name string, res *sandbox.Result, err error) {
	switch {
	case err != nil:
		s.printf("%s build: FAIL (%v)", name, err)
	case res.TimedOut:
		s.printf("%s build: FAIL (Time limit exceeded)", name)
	case res.Failed():
		s.printf("%s build: FAIL (exit code %d)", name, res.ExitCode)
		s.block("Build errors", string(res.Stderr))
	default:
		s.printf("%s build: OK (Time: %.2fs)", name, res.Elapsed.Seconds())
	}
}

func (s *submLog) ReachTest(name string, tc assignment.TestCase, index int) {}

func (s *submLog) IgnoreTest(name string, index int) {
	s.printf("%s Test Case %d: SKIPPED (earlier error)", name, index)
}

func (s *submLog) FinishTest(name string, tc assignment.TestCase, res grading.TestResult) {
	switch res.Outcome {
	case grading.Pass:
		s.printf("%s Test Case %d: PASS (Time: %.2fs)", name, res.Index, res.Elapsed.Seconds())
	case grading.PassWhitespaceOnly:
		s.printf("%s Test Case %d: PASS (whitespace differences only) (Time: %.2fs)",
			name, res.Index, res.Elapsed.Seconds())
	case grading.FailTimeout:
		s.printf("%s Test Case %d: FAIL (Time limit exceeded, limit %.2fs)", name, res.Index, res.Limit.Seconds())
	case grading.FailError:
		if res.ExitCode < 0 {
			s.printf("%s Test Case %d: FAIL (could not run)", name, res.Index)
		} else {
			s.printf("%s Test Case %d: FAIL (Runtime error, exit code %d)", name, res.Index, res.ExitCode)
		}
		s.block("Stderr", res.Stderr)
	default:
		s.printf("%s Test Case %d: FAIL", name, res.Index)
		s.printf("Expected (ignoring whitespace): %s", strings.TrimSpace(tc.Expected))
		s.printf("Actual (with whitespace):\n%s", res.Stdout)
		s.printf("Actual (ignoring whitespace): %s", strings.TrimSpace(res.Stdout))
		if line, want, got := compare.Diff(res.Stdout, tc.Expected); line > 0 {
			s.printf("First difference at line %d: expected %q, got %q", line, want, got)
		}
	}
	if res.Truncated {
		s.printf("(output truncated)")
	}
}

func (s *submLog) FinishSubProject(res grading.SubProjectResult) {
	s.printf("%s: %d/%d passed (%s)", res.Name, res.Passed(), len(res.Tests)+res.Ignored, res.Verdict.Symbol())
}

func (s *submLog) CheckReport(found bool, ext string) {
	if found {
		s.printf("Report file exists: PASS")
		return
	}
	s.printf("Error: No %s report found.", strings.ToUpper(strings.TrimPrefix(ext, ".")))
	s.printf("Report file is missing: FAIL")
}

func (s *submLog) FinishSubmission(rec grading.Record) {
	cells := make([]string, 0, len(rec.SubProjects)+1)
	for _, sp := range rec.SubProjects {
		cells = append(cells, sp.Name+"="+sp.Verdict.Symbol())
	}
	cells = append(cells, "Report="+rec.Report.Symbol())
	s.printf("Summary for %s: %s", rec.Submission.StudentID, strings.Join(cells, " "))
	s.log.write(s.buf.Bytes())
	s.buf.Reset()
}

func (s *submLog) block(title string, text string) {
	if text == "" {
		return
	}
	s.printf("%s:\n%s", title, strings.TrimRight(text, "\n"))
}
