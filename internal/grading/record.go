package grading

import (
	"time"

	"github.com/programme-lv/grader/internal/layout"
	"github.com/programme-lv/grader/internal/sandbox"
)

// Submission is one archive waiting to be graded.
type Submission struct {
	Index       int
	StudentID   string
	ArchivePath string
}

type TestResult struct {
	// Index is 1-based within the sub-project.
	Index     int
	Outcome   Outcome
	Elapsed   time.Duration
	Limit     time.Duration
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
}

type SubProjectResult struct {
	Name    string
	Verdict Verdict
	// Issue explains an Absent verdict.
	Issue   string
	Build   *sandbox.Result
	Tests   []TestResult
	Ignored int
}

// Passed counts tests with a passing outcome.
func (s SubProjectResult) Passed() int {
	n := 0
	for _, t := range s.Tests {
		if t.Outcome.Passed() {
			n++
		}
	}
	return n
}

// Record is the grading result of one archive, one row of the summary table.
type Record struct {
	Submission  Submission
	SubProjects []SubProjectResult
	Report      Verdict
	Corrupt     bool
	// Err holds an environment failure that stopped grading of this submission.
	Err string
}

// NewRecord returns a record with every sub-project Absent and the report
// failed, which is also the final state of a non-gradable submission.
func NewRecord(sub Submission, m layout.Manifest) Record {
	rec := Record{
		Submission:  sub,
		SubProjects: make([]SubProjectResult, len(m)),
		Report:      VerdictFail,
	}
	for i, e := range m {
		rec.SubProjects[i] = SubProjectResult{Name: e.Name, Verdict: VerdictAbsent}
	}
	return rec
}

// SubProject returns the result slot for name, nil if name is not in the manifest.
func (r *Record) SubProject(name string) *SubProjectResult {
	for i := range r.SubProjects {
		if r.SubProjects[i].Name == name {
			return &r.SubProjects[i]
		}
	}
	return nil
}

func (r *Record) SetSubProject(res SubProjectResult) {
	if slot := r.SubProject(res.Name); slot != nil {
		*slot = res
	}
}

// Symbols renders the per-sub-project verdicts in manifest order followed by the report verdict.
func (r Record) Symbols() []string {
	out := make([]string, 0, len(r.SubProjects)+1)
	for _, sp := range r.SubProjects {
		out = append(out, sp.Verdict.Symbol())
	}
	return append(out, r.Report.Symbol())
}

// AggregateVerdict folds test outcomes into a sub-project verdict. A
// sub-project passes only when no run errored and every outcome passed.
func AggregateVerdict(tests []TestResult, errored bool) Verdict {
	if errored {
		return VerdictFail
	}
	for _, t := range tests {
		if !t.Outcome.Passed() {
			return VerdictFail
		}
	}
	return VerdictPass
}
