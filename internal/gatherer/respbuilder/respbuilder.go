package respbuilder

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/programme-lv/grader/api"
	"github.com/programme-lv/grader/internal/assignment"
	"github.com/programme-lv/grader/internal/grading"
	"github.com/programme-lv/grader/internal/layout"
	"github.com/programme-lv/grader/internal/sandbox"
)

// Builder gathers grading events of one submission and builds a complete api.Record.
type Builder struct {
	mu       sync.Mutex
	submUuid string

	started  time.Time
	finished *time.Time

	ignored      map[string][]int32
	status       api.RecordStatus
	errorMessage *string
	record       *api.Record

	onFinish func(api.Record)
}

// New returns a builder. onFinish, if not nil, receives the record once the
// submission is finished.
func New(submUuid string, onFinish func(api.Record)) *Builder {
	return &Builder{
		submUuid: submUuid,
		started:  time.Now(),
		ignored:  make(map[string][]int32),
		status:   api.Graded,
		onFinish: onFinish,
	}
}

var _ grading.Gatherer = (*Builder)(nil)

func (b *Builder) StartSubmission(sub grading.Submission) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.started = time.Now()
}

func (b *Builder) CorruptArchive(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	msg := err.Error()
	b.status = api.CorruptArchiveStatus
	b.errorMessage = &msg
}

func (b *Builder) InternalError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	msg := err.Error()
	b.status = api.InternalError
	b.errorMessage = &msg
}

func (b *Builder) MissingSubProject(issue layout.Issue)   {}
func (b *Builder) StartSubProject(name string, tests int) {}

func (b *Builder) FinishBuild(name string, res *sandbox.Result, err error) {}

func (b *Builder) ReachTest(name string, tc assignment.TestCase, index int) {}

func (b *Builder) IgnoreTest(name string, index int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ignored[name] = append(b.ignored[name], int32(index))
}

func (b *Builder) FinishTest(name string, tc assignment.TestCase, res grading.TestResult) {}

func (b *Builder) FinishSubProject(res grading.SubProjectResult) {}

func (b *Builder) CheckReport(found bool, ext string) {}

func (b *Builder) FinishSubmission(rec grading.Record) {
	b.mu.Lock()
	now := time.Now()
	b.finished = &now
	r := b.build(rec)
	b.record = &r
	onFinish := b.onFinish
	b.mu.Unlock()

	if onFinish != nil {
		onFinish(r)
	}
}

// Record returns the built record, or false if the submission has not finished yet.
func (b *Builder) Record() (api.Record, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.record == nil {
		return api.Record{}, false
	}
	return *b.record, true
}

func (b *Builder) build(rec grading.Record) api.Record {
	start := b.started.Format(time.RFC3339)
	finish := start
	total := int64(0)
	if b.finished != nil {
		finish = b.finished.Format(time.RFC3339)
		total = b.finished.Sub(b.started).Milliseconds()
	}

	status := b.status
	errorMessage := b.errorMessage
	if rec.Err != "" && status == api.Graded {
		status = api.InternalError
		msg := rec.Err
		errorMessage = &msg
	}

	subProjects := make([]api.SubProjectResult, 0, len(rec.SubProjects))
	for _, sp := range rec.SubProjects {
		subProjects = append(subProjects, b.subProject(sp))
	}

	return api.Record{
		SubmUuid:     b.submUuid,
		StudentID:    rec.Submission.StudentID,
		Archive:      filepath.Base(rec.Submission.ArchivePath),
		Status:       status,
		SubProjects:  subProjects,
		Report:       rec.Report.Symbol(),
		ErrorMessage: errorMessage,
		StartTime:    start,
		FinishTime:   finish,
		TotalTimeMs:  total,
	}
}

func (b *Builder) subProject(sp grading.SubProjectResult) api.SubProjectResult {
	out := api.SubProjectResult{
		Name:        sp.Name,
		Verdict:     sp.Verdict.Symbol(),
		TestResults: make([]api.TestResult, 0, len(sp.Tests)),
		Ignored:     b.ignored[sp.Name],
	}
	if sp.Issue != "" {
		issue := sp.Issue
		out.Issue = &issue
	}
	if sp.Build != nil {
		wall := sp.Build.Elapsed.Milliseconds()
		build := &api.BuildResult{Success: !sp.Build.Failed(), WallMillis: &wall}
		if !build.Success {
			msg := "build failed"
			if len(sp.Build.Stderr) > 0 {
				msg = TrimToRect(string(sp.Build.Stderr), 2*api.MaxRuntimeDataHeight, 2*api.MaxRuntimeDataWidth)
			}
			build.Error = &msg
		}
		out.Build = build
	}
	for _, t := range sp.Tests {
		out.TestResults = append(out.TestResults, TestResult(t))
	}
	return out
}

// TestResult converts a graded test into its wire form with trimmed output.
func TestResult(t grading.TestResult) api.TestResult {
	tr := api.TestResult{
		TestId:      int32(t.Index),
		Outcome:     t.Outcome.Code(),
		LimitMillis: t.Limit.Milliseconds(),
	}
	wall := t.Elapsed.Milliseconds()
	tr.WallMillis = &wall
	code := int64(t.ExitCode)
	tr.ExitCode = &code
	if t.Stdout != "" {
		out := TrimToRect(t.Stdout, api.MaxRuntimeDataHeight, api.MaxRuntimeDataWidth)
		tr.Stdout = &out
	}
	if t.Stderr != "" {
		errOut := TrimToRect(t.Stderr, api.MaxRuntimeDataHeight, api.MaxRuntimeDataWidth)
		tr.Stderr = &errOut
	}
	return tr
}

// RuntimeData maps a sandbox result to the streaming form, nil for nil.
func RuntimeData(res *sandbox.Result, ioHeight int, ioWidth int) *api.RuntimeData {
	if res == nil {
		return nil
	}
	return &api.RuntimeData{
		Stdout:     TrimToRect(string(res.Stdout), ioHeight, ioWidth),
		Stderr:     TrimToRect(string(res.Stderr), ioHeight, ioWidth),
		ExitCode:   int64(res.ExitCode),
		WallMillis: res.Elapsed.Milliseconds(),
		TimedOut:   res.TimedOut,
		Truncated:  res.Truncated,
	}
}
