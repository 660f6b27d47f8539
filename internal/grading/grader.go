package grading

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/programme-lv/grader/internal/archive"
	"github.com/programme-lv/grader/internal/assignment"
	"github.com/programme-lv/grader/internal/compare"
	"github.com/programme-lv/grader/internal/layout"
	"github.com/programme-lv/grader/internal/sandbox"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	// ScratchRoot is where per-submission extraction directories are created.
	// Empty means the system temp dir.
	ScratchRoot string
	// Jobs is the number of submissions graded at the same time.
	Jobs   int
	Logger *slog.Logger
}

// Grader drives the pipeline extract -> validate -> run -> compare -> aggregate
// for every submission of one assignment.
type Grader struct {
	asg      *assignment.Assignment
	manifest layout.Manifest
	runner   *sandbox.Runner
	newGath  GathererFactory
	scratch  string
	jobs     int
	logger   *slog.Logger
}

func NewGrader(asg *assignment.Assignment, runner *sandbox.Runner,
	newGath GathererFactory, opts Options) *Grader {

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}
	return &Grader{
		asg:      asg,
		manifest: asg.Manifest(),
		runner:   runner,
		newGath:  newGath,
		scratch:  opts.ScratchRoot,
		jobs:     jobs,
		logger:   logger,
	}
}

// GradeAll grades every submission and passes exactly one record per
// submission to emit, in the order of subs. Only an emit error stops it.
func (g *Grader) GradeAll(ctx context.Context, subs []Submission, emit func(Record) error) error {
	if g.jobs == 1 {
		for _, sub := range subs {
			if err := emit(g.GradeSubmission(ctx, sub)); err != nil {
				return fmt.Errorf("failed to emit record of %s: %w", sub.StudentID, err)
			}
		}
		return nil
	}

	records := xsync.NewMapOf[int, Record]()
	var eg errgroup.Group
	eg.SetLimit(g.jobs)
	for i, sub := range subs {
		eg.Go(func() error {
			records.Store(i, g.GradeSubmission(ctx, sub))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("failed to grade submissions: %w", err)
	}

	for i, sub := range subs {
		rec, ok := records.Load(i)
		if !ok {
			rec = NewRecord(sub, g.manifest)
			rec.Err = "submission was not graded"
		}
		if err := emit(rec); err != nil {
			return fmt.Errorf("failed to emit record of %s: %w", sub.StudentID, err)
		}
	}
	return nil
}

// GradeSubmission grades one archive. It never fails: every problem ends up
// in the returned record and in the gatherer's events.
func (g *Grader) GradeSubmission(ctx context.Context, sub Submission) (rec Record) {
	logger := g.logger.With("student", sub.StudentID)
	gath := g.newGath(sub)
	rec = NewRecord(sub, g.manifest)

	gath.StartSubmission(sub)
	defer func() {
		gath.FinishSubmission(rec)
	}()

	dir, err := os.MkdirTemp(g.scratch, "subm-*")
	if err != nil {
		err = fmt.Errorf("failed to create scratch dir: %w", err)
		logger.Error("cannot grade submission", "error", err)
		rec.Err = err.Error()
		gath.InternalError(err)
		return rec
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn("failed to remove scratch dir", "dir", dir, "error", err)
		}
	}()

	if err := archive.Extract(sub.ArchivePath, dir); err != nil {
		if errors.Is(err, archive.ErrCorruptArchive) {
			logger.Warn("corrupt archive", "archive", sub.ArchivePath, "error", err)
			rec.Corrupt = true
			gath.CorruptArchive(err)
		} else {
			logger.Error("failed to extract archive", "archive", sub.ArchivePath, "error", err)
			rec.Err = err.Error()
			gath.InternalError(err)
		}
		return rec
	}

	root, err := archive.ResolveRoot(dir)
	if err != nil {
		rec.Err = err.Error()
		gath.InternalError(err)
		return rec
	}
	logger.Debug("extracted submission", "root", root)

	validation := layout.Validate(root, g.manifest)
	for _, issue := range validation.Issues {
		if slot := rec.SubProject(issue.SubProject); slot != nil {
			slot.Issue = issue.String()
		}
		gath.MissingSubProject(issue)
	}

	for _, sp := range g.asg.SubProjects {
		if !validation.Usable(sp.Name) {
			continue
		}
		rec.SetSubProject(g.gradeSubProject(ctx, gath, filepath.Join(root, sp.Name), sp))
	}

	found, err := layout.HasReport(root, g.asg.ReportExt)
	if err != nil {
		logger.Warn("report check failed", "error", err)
	}
	rec.Report = verdictOf(found)
	gath.CheckReport(found, g.asg.ReportExt)

	return rec
}

func (g *Grader) gradeSubProject(ctx context.Context, gath Gatherer, dir string,
	sp assignment.SubProject) SubProjectResult {

	res := SubProjectResult{Name: sp.Name}
	env := []string{"GRADER_SUBPROJECT=" + sp.Name}
	errored := false

	gath.StartSubProject(sp.Name, len(sp.Tests))

	if g.asg.BuildCmd != "" {
		build, err := g.runner.Build(ctx, dir, g.asg.BuildCmd, env...)
		res.Build = build
		gath.FinishBuild(sp.Name, build, err)
		if err != nil || build.Failed() {
			errored = true
		}
	}

	for i, tc := range sp.Tests {
		index := i + 1
		if errored && g.asg.StopOnError {
			res.Ignored++
			gath.IgnoreTest(sp.Name, index)
			continue
		}
		gath.ReachTest(sp.Name, tc, index)
		tr := g.runTest(ctx, dir, tc, index, env)
		if tr.Outcome == FailError {
			errored = true
		}
		res.Tests = append(res.Tests, tr)
		gath.FinishTest(sp.Name, tc, tr)
	}

	res.Verdict = AggregateVerdict(res.Tests, errored)
	gath.FinishSubProject(res)
	return res
}

func (g *Grader) runTest(ctx context.Context, dir string, tc assignment.TestCase,
	index int, env []string) TestResult {

	tr := TestResult{Index: index, Limit: tc.Limit}

	run, err := g.runner.Run(ctx, dir, g.asg.RunCmd, []byte(tc.Input), tc.Limit, env...)
	if err != nil {
		tr.Outcome = FailError
		tr.ExitCode = -1
		tr.Stderr = err.Error()
		return tr
	}

	tr.Elapsed = run.Elapsed
	tr.Stdout = string(run.Stdout)
	tr.Stderr = string(run.Stderr)
	tr.ExitCode = run.ExitCode
	tr.Truncated = run.Truncated

	switch {
	case run.TimedOut:
		tr.Outcome = FailTimeout
	case run.ExitCode != 0:
		tr.Outcome = FailError
	default:
		switch compare.Compare(tr.Stdout, tc.Expected) {
		case compare.Exact:
			tr.Outcome = Pass
		case compare.WhitespaceOnly:
			tr.Outcome = PassWhitespaceOnly
		default:
			tr.Outcome = FailMismatch
		}
	}
	return tr
}
