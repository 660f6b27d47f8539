package natsgath

import (
	"log/slog"
	"path/filepath"

	"github.com/programme-lv/grader/api"
	"github.com/programme-lv/grader/internal/assignment"
	"github.com/programme-lv/grader/internal/gatherer/respbuilder"
	"github.com/programme-lv/grader/internal/grading"
	"github.com/programme-lv/grader/internal/layout"
	"github.com/programme-lv/grader/internal/sandbox"
)

type natsGatherer struct {
	pub      Publisher
	subject  string
	submUuid string
	header   api.Header
	logger   *slog.Logger
}

var _ grading.Gatherer = (*natsGatherer)(nil)

func (s *natsGatherer) StartSubmission(sub grading.Submission) {
	s.header = api.NewHeader(s.submUuid, sub.StudentID, api.StartSubmissionMsg)
	s.send(api.NewStartSubmission(s.header, filepath.Base(sub.ArchivePath)))
}

func (s *natsGatherer) CorruptArchive(err error) {
	s.send(api.NewCorruptArchive(s.header, err.Error()))
}

// InternalError is reported through FinishSubmission, which carries the record's error.
func (s *natsGatherer) InternalError(err error) {}

func (s *natsGatherer) MissingSubProject(issue layout.Issue) {
	s.send(api.NewSkipSubProject(s.header, issue.SubProject, issue.String()))
}

func (s *natsGatherer) StartSubProject(name string, tests int) {
	s.send(api.NewStartSubProject(s.header, name, tests))
}

func (s *natsGatherer) FinishBuild(name string, res *sandbox.Result, err error) {
	var errMsg *string
	if err != nil {
		msg := err.Error()
		errMsg = &msg
	}
	data := respbuilder.RuntimeData(res, api.MaxRuntimeDataHeight, api.MaxRuntimeDataWidth)
	s.send(api.NewFinishBuild(s.header, name, data, errMsg))
}

func (s *natsGatherer) ReachTest(name string, tc assignment.TestCase, index int) {
	s.send(api.NewReachTest(s.header, name, int64(index), trimmedPtr(tc.Input), trimmedPtr(tc.Expected)))
}

func (s *natsGatherer) IgnoreTest(name string, index int) {
	s.send(api.NewIgnoreTest(s.header, name, int64(index)))
}

func (s *natsGatherer) FinishTest(name string, tc assignment.TestCase, res grading.TestResult) {
	data := &api.RuntimeData{
		Stdout:     respbuilder.TrimToRect(res.Stdout, api.MaxRuntimeDataHeight, api.MaxRuntimeDataWidth),
		Stderr:     respbuilder.TrimToRect(res.Stderr, api.MaxRuntimeDataHeight, api.MaxRuntimeDataWidth),
		ExitCode:   int64(res.ExitCode),
		WallMillis: res.Elapsed.Milliseconds(),
		TimedOut:   res.Outcome == grading.FailTimeout,
		Truncated:  res.Truncated,
	}
	s.send(api.NewFinishTest(s.header, name, int64(res.Index), res.Outcome.Code(), data))
}

func (s *natsGatherer) FinishSubProject(res grading.SubProjectResult) {
	s.send(api.NewFinishSubProject(s.header, res.Name, res.Verdict.Symbol(),
		res.Passed(), len(res.Tests)+res.Ignored))
}

func (s *natsGatherer) CheckReport(found bool, ext string) {
	s.send(api.NewCheckReport(s.header, ext, found))
}

func (s *natsGatherer) FinishSubmission(rec grading.Record) {
	var errMsg *string
	if rec.Err != "" {
		msg := rec.Err
		errMsg = &msg
	}
	s.send(api.NewFinishSubmission(s.header, rec.Symbols(), errMsg, rec.Corrupt, rec.Err != ""))
}

func trimmedPtr(s string) *string {
	trimmed := respbuilder.TrimToRect(s, api.MaxRuntimeDataHeight, api.MaxRuntimeDataWidth)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
