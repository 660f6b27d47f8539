package summary_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/programme-lv/grader/internal/grading"
	"github.com/programme-lv/grader/internal/layout"
	"github.com/programme-lv/grader/internal/summary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var manifest = layout.Manifest{
	{Name: "Problem_1"}, {Name: "Problem_2"}, {Name: "Problem_3"},
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	w := summary.NewWriter(&buf, manifest.Names())

	a := grading.NewRecord(grading.Submission{StudentID: "2020001"}, manifest)
	a.SubProjects[0].Verdict = grading.VerdictPass
	a.SubProjects[1].Verdict = grading.VerdictPass
	a.SubProjects[2].Verdict = grading.VerdictFail
	a.Report = grading.VerdictPass
	require.NoError(t, w.Write(a))
	require.NoError(t, w.Write(grading.NewRecord(grading.Submission{StudentID: "2020002"}, manifest)))

	assert.Equal(t, "Student ID,Problem_1,Problem_2,Problem_3,Report\n"+
		"2020001,O,O,X,O\n"+
		"2020002,-,-,-,X\n", buf.String())
	assert.Equal(t, 2, w.Rows())
}

func TestHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	w := summary.NewWriter(&buf, manifest.Names())
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Flush())
	assert.Equal(t, "Student ID,Problem_1,Problem_2,Problem_3,Report\n", buf.String())
}

func TestQuotesIds(t *testing.T) {
	var buf bytes.Buffer
	w := summary.NewWriter(&buf, []string{"P"})
	rec := grading.NewRecord(grading.Submission{StudentID: "smith, j"}, layout.Manifest{{Name: "P"}})
	require.NoError(t, w.Write(rec))
	assert.Contains(t, buf.String(), "\"smith, j\",-,X\n")
}

func TestColumnMismatch(t *testing.T) {
	w := summary.NewWriter(&bytes.Buffer{}, []string{"P"})
	assert.Error(t, w.Write(grading.NewRecord(grading.Submission{}, manifest)))
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("read-only fs") }

func TestWriteError(t *testing.T) {
	w := summary.NewWriter(failingWriter{}, manifest.Names())
	err := w.Write(grading.NewRecord(grading.Submission{}, manifest))
	assert.ErrorContains(t, err, "read-only fs")
}
