// Package multigath fans grading events out to several gatherers.
package multigath

import (
	"github.com/programme-lv/grader/internal/assignment"
	"github.com/programme-lv/grader/internal/grading"
	"github.com/programme-lv/grader/internal/layout"
	"github.com/programme-lv/grader/internal/sandbox"
)

type multiGatherer []grading.Gatherer

// Factory combines factories; nil entries are skipped.
func Factory(factories ...grading.GathererFactory) grading.GathererFactory {
	var fs []grading.GathererFactory
	for _, f := range factories {
		if f != nil {
			fs = append(fs, f)
		}
	}
	return func(sub grading.Submission) grading.Gatherer {
		m := make(multiGatherer, len(fs))
		for i, f := range fs {
			m[i] = f(sub)
		}
		return m
	}
}

func (m multiGatherer) StartSubmission(sub grading.Submission) {
	for _, g := range m {
		g.StartSubmission(sub)
	}
}

func (m multiGatherer) CorruptArchive(err error) {
	for _, g := range m {
		g.CorruptArchive(err)
	}
}

func (m multiGatherer) InternalError(err error) {
	for _, g := range m {
		g.InternalError(err)
	}
}

func (m multiGatherer) MissingSubProject(issue layout.Issue) {
	for _, g := range m {
		g.MissingSubProject(issue)
	}
}

func (m multiGatherer) StartSubProject(name string, tests int) {
	for _, g := range m {
		g.StartSubProject(name, tests)
	}
}

func (m multiGatherer) FinishBuild(name string, res *sandbox.Result, err error) {
	for _, g := range m {
		g.FinishBuild(name, res, err)
	}
}

func (m multiGatherer) ReachTest(name string, tc assignment.TestCase, index int) {
	for _, g := range m {
		g.ReachTest(name, tc, index)
	}
}

func (m multiGatherer) IgnoreTest(name string, index int) {
	for _, g := range m {
		g.IgnoreTest(name, index)
	}
}

func (m multiGatherer) FinishTest(name string, tc assignment.TestCase, res grading.TestResult) {
	for _, g := range m {
		g.FinishTest(name, tc, res)
	}
}

func (m multiGatherer) FinishSubProject(res grading.SubProjectResult) {
	for _, g := range m {
		g.FinishSubProject(res)
	}
}

func (m multiGatherer) CheckReport(found bool, ext string) {
	for _, g := range m {
		g.CheckReport(found, ext)
	}
}

func (m multiGatherer) FinishSubmission(rec grading.Record) {
	for _, g := range m {
		g.FinishSubmission(rec)
	}
}
