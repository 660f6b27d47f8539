package natsgath_test

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/programme-lv/grader/api"
	"github.com/programme-lv/grader/internal/assignment"
	"github.com/programme-lv/grader/internal/gatherer/natsgath"
	"github.com/programme-lv/grader/internal/grading"
	"github.com/programme-lv/grader/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu   sync.Mutex
	subj []string
	msgs [][]byte
	err  error
}

func (p *fakePublisher) Publish(subj string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subj = append(p.subj, subj)
	p.msgs = append(p.msgs, data)
	return p.err
}

func (p *fakePublisher) types(t *testing.T) []api.MsgType {
	var out []api.MsgType
	for _, m := range p.msgs {
		var h api.Header
		require.NoError(t, json.Unmarshal(m, &h))
		out = append(out, h.MsgType)
	}
	return out
}

func TestStream(t *testing.T) {
	pub := &fakePublisher{}
	sub := grading.Submission{StudentID: "2020001", ArchivePath: "/in/a.zip"}
	g := natsgath.New(pub, "grader.events", "subm-1", nil)
	tc := assignment.TestCase{Input: "5\n", Expected: strings.Repeat("y", 100), Limit: time.Second}

	g.StartSubmission(sub)
	g.MissingSubProject(layout.Issue{SubProject: "Problem_2"})
	g.StartSubProject("Problem_1", 2)
	g.ReachTest("Problem_1", tc, 1)
	g.FinishTest("Problem_1", tc, grading.TestResult{Index: 1, Outcome: grading.FailTimeout, ExitCode: -1, Elapsed: time.Second})
	g.IgnoreTest("Problem_1", 2)
	g.FinishSubProject(grading.SubProjectResult{Name: "Problem_1", Verdict: grading.VerdictFail,
		Tests: []grading.TestResult{{Outcome: grading.FailTimeout}}, Ignored: 1})
	g.CheckReport(true, ".pdf")
	rec := grading.NewRecord(sub, layout.Manifest{{Name: "Problem_1"}, {Name: "Problem_2"}})
	g.FinishSubmission(rec)

	assert.Equal(t, []api.MsgType{
		api.StartSubmissionMsg,
		api.SkipSubProjectMsg,
		api.StartSubProjectMsg,
		api.ReachTestMsg,
		api.FinishTestMsg,
		api.IgnoreTestMsg,
		api.FinishSubProjectMsg,
		api.CheckReportMsg,
		api.FinishSubmissionMsg,
	}, pub.types(t))
	for _, s := range pub.subj {
		assert.Equal(t, "grader.events", s)
	}

	var start api.StartSubmission
	require.NoError(t, json.Unmarshal(pub.msgs[0], &start))
	assert.Equal(t, "subm-1", start.SubmUuid)
	assert.Equal(t, "2020001", start.StudentID)
	assert.Equal(t, "a.zip", start.Archive)

	var skip api.SkipSubProject
	require.NoError(t, json.Unmarshal(pub.msgs[1], &skip))
	assert.Equal(t, "missing folder Problem_2", skip.Reason)

	var reach api.ReachTest
	require.NoError(t, json.Unmarshal(pub.msgs[3], &reach))
	require.NotNil(t, reach.Answer)
	assert.Equal(t, strings.Repeat("y", 80)+"[...]", *reach.Answer)

	var finish api.FinishTest
	require.NoError(t, json.Unmarshal(pub.msgs[4], &finish))
	assert.Equal(t, "timeout", finish.Outcome)
	assert.True(t, finish.Submission.TimedOut)

	var sp api.FinishSubProject
	require.NoError(t, json.Unmarshal(pub.msgs[6], &sp))
	assert.Equal(t, 2, sp.Total)
	assert.Equal(t, "X", sp.Verdict)

	var done api.FinishSubmission
	require.NoError(t, json.Unmarshal(pub.msgs[8], &done))
	assert.Equal(t, []string{"-", "-", "X"}, done.Symbols)
	assert.False(t, done.InternalError)
}

func TestPublishErrorDoesNotPanic(t *testing.T) {
	pub := &fakePublisher{err: errors.New("connection closed")}
	g := natsgath.Factory(pub, "s", nil)(grading.Submission{StudentID: "x"})
	g.StartSubmission(grading.Submission{StudentID: "x"})
	g.CorruptArchive(errors.New("bad"))
	assert.Len(t, pub.msgs, 2)
}

func TestFactoryAssignsDistinctIds(t *testing.T) {
	pub := &fakePublisher{}
	f := natsgath.Factory(pub, "s", nil)
	for _, id := range []string{"a", "b"} {
		sub := grading.Submission{StudentID: id}
		f(sub).StartSubmission(sub)
	}
	var h1, h2 api.Header
	require.NoError(t, json.Unmarshal(pub.msgs[0], &h1))
	require.NoError(t, json.Unmarshal(pub.msgs[1], &h2))
	assert.NotEmpty(t, h1.SubmUuid)
	assert.NotEqual(t, h1.SubmUuid, h2.SubmUuid)
}
