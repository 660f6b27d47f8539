package grading

import (
	"github.com/programme-lv/grader/internal/assignment"
	"github.com/programme-lv/grader/internal/layout"
	"github.com/programme-lv/grader/internal/sandbox"
)

// Gatherer receives the grading events of a single submission, in order.
type Gatherer interface {
	StartSubmission(sub Submission)

	CorruptArchive(err error)
	InternalError(err error)
	MissingSubProject(issue layout.Issue)

	StartSubProject(name string, tests int)
	FinishBuild(name string, res *sandbox.Result, err error)
	ReachTest(name string, tc assignment.TestCase, index int)
	IgnoreTest(name string, index int)
	FinishTest(name string, tc assignment.TestCase, res TestResult)
	FinishSubProject(res SubProjectResult)

	CheckReport(found bool, ext string)
	FinishSubmission(rec Record)
}

// GathererFactory creates the gatherer of one submission. It may be called
// from several goroutines when submissions are graded concurrently.
type GathererFactory func(sub Submission) Gatherer
