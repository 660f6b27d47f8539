package respbuilder_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/programme-lv/grader/api"
	"github.com/programme-lv/grader/internal/gatherer/respbuilder"
	"github.com/programme-lv/grader/internal/grading"
	"github.com/programme-lv/grader/internal/layout"
	"github.com/programme-lv/grader/internal/sandbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var manifest = layout.Manifest{
	{Name: "Problem_1", Required: []string{"Cargo.toml"}},
	{Name: "Problem_2", Required: []string{"Cargo.toml"}},
}

func TestRecord(t *testing.T) {
	b := respbuilder.New("0192-uuid", nil)
	sub := grading.Submission{StudentID: "2020001", ArchivePath: "/in/Assignment_1_2020001.zip"}

	_, ok := b.Record()
	assert.False(t, ok)

	b.StartSubmission(sub)
	b.IgnoreTest("Problem_1", 2)

	rec := grading.NewRecord(sub, manifest)
	rec.SetSubProject(grading.SubProjectResult{
		Name:    "Problem_1",
		Verdict: grading.VerdictFail,
		Build:   &sandbox.Result{Elapsed: 3 * time.Second},
		Tests: []grading.TestResult{{
			Index: 1, Outcome: grading.FailError, ExitCode: 101,
			Elapsed: 40 * time.Millisecond, Limit: 2 * time.Second, Stderr: "panicked",
		}},
		Ignored: 1,
	})
	rec.SubProjects[1].Issue = "missing folder Problem_2"
	rec.Report = grading.VerdictPass
	b.FinishSubmission(rec)

	r, ok := b.Record()
	require.True(t, ok)
	assert.Equal(t, "0192-uuid", r.SubmUuid)
	assert.Equal(t, "2020001", r.StudentID)
	assert.Equal(t, "Assignment_1_2020001.zip", r.Archive)
	assert.Equal(t, api.Graded, r.Status)
	assert.Equal(t, "O", r.Report)
	assert.Nil(t, r.ErrorMessage)

	require.Len(t, r.SubProjects, 2)
	p1 := r.SubProjects[0]
	assert.Equal(t, "X", p1.Verdict)
	require.NotNil(t, p1.Build)
	assert.True(t, p1.Build.Success)
	require.Len(t, p1.TestResults, 1)
	assert.Equal(t, "error", p1.TestResults[0].Outcome)
	assert.Equal(t, int64(2000), p1.TestResults[0].LimitMillis)
	assert.Equal(t, int64(101), *p1.TestResults[0].ExitCode)
	assert.Equal(t, "panicked", *p1.TestResults[0].Stderr)
	assert.Nil(t, p1.TestResults[0].Stdout)
	assert.Equal(t, []int32{2}, p1.Ignored)

	p2 := r.SubProjects[1]
	assert.Equal(t, "-", p2.Verdict)
	require.NotNil(t, p2.Issue)
	assert.Equal(t, "missing folder Problem_2", *p2.Issue)
}

func TestErrorStatuses(t *testing.T) {
	sub := grading.Submission{StudentID: "s", ArchivePath: "s.zip"}

	var sent api.Record
	b := respbuilder.New("u", func(r api.Record) { sent = r })
	b.StartSubmission(sub)
	b.CorruptArchive(errors.New("not a zip"))
	b.FinishSubmission(grading.NewRecord(sub, manifest))
	assert.Equal(t, api.CorruptArchiveStatus, sent.Status)
	assert.Equal(t, "not a zip", *sent.ErrorMessage)
	assert.Equal(t, "X", sent.Report)

	b = respbuilder.New("u", func(r api.Record) { sent = r })
	rec := grading.NewRecord(sub, manifest)
	rec.Err = "failed to create scratch dir"
	b.FinishSubmission(rec)
	assert.Equal(t, api.InternalError, sent.Status)
	assert.Equal(t, "failed to create scratch dir", *sent.ErrorMessage)
}

func TestBuildFailureMessage(t *testing.T) {
	b := respbuilder.New("u", nil)
	sub := grading.Submission{StudentID: "s"}
	rec := grading.NewRecord(sub, manifest)
	rec.SubProjects[0].Build = &sandbox.Result{ExitCode: 1, Stderr: []byte("error[E0308]: mismatched types")}
	b.FinishSubmission(rec)
	r, _ := b.Record()
	require.NotNil(t, r.SubProjects[0].Build)
	assert.False(t, r.SubProjects[0].Build.Success)
	assert.Equal(t, "error[E0308]: mismatched types", *r.SubProjects[0].Build.Error)
}

func TestTrimToRect(t *testing.T) {
	assert.Equal(t, "", respbuilder.TrimToRect("", 2, 3))
	assert.Equal(t, "ab\ncd", respbuilder.TrimToRect("ab\ncd", 2, 3))
	assert.Equal(t, "abc[...]\nd\n[...]", respbuilder.TrimToRect("abcdef\nd\ne", 2, 3))

	long := strings.Repeat("x\n", 100)
	assert.Equal(t, 40, strings.Count(respbuilder.TrimToRect(long, 40, 80), "\n"))
}

func TestRuntimeData(t *testing.T) {
	assert.Nil(t, respbuilder.RuntimeData(nil, 1, 1))
	d := respbuilder.RuntimeData(&sandbox.Result{
		Stdout: []byte("out"), ExitCode: -1, TimedOut: true, Elapsed: 2 * time.Second,
	}, 40, 80)
	assert.Equal(t, "out", d.Stdout)
	assert.Equal(t, int64(-1), d.ExitCode)
	assert.Equal(t, int64(2000), d.WallMillis)
	assert.True(t, d.TimedOut)
}
