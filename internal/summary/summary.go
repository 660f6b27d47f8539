// Package summary writes the per-student verdict table as CSV.
package summary

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/programme-lv/grader/internal/grading"
)

type Writer struct {
	csv    *csv.Writer
	names  []string
	header bool
	rows   int
}

// NewWriter returns a writer whose columns are Student ID, one column per
// sub-project name, then Report.
func NewWriter(w io.Writer, subProjects []string) *Writer {
	return &Writer{csv: csv.NewWriter(w), names: subProjects}
}

// WriteHeader writes the header row. Write calls it on first use.
func (w *Writer) WriteHeader() error {
	if w.header {
		return nil
	}
	w.header = true
	row := make([]string, 0, len(w.names)+2)
	row = append(row, "Student ID")
	row = append(row, w.names...)
	row = append(row, "Report")
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}
	return nil
}

// Write appends the row of rec and flushes it.
func (w *Writer) Write(rec grading.Record) error {
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if len(rec.SubProjects) != len(w.names) {
		return fmt.Errorf("record of %s has %d sub-projects, table has %d",
			rec.Submission.StudentID, len(rec.SubProjects), len(w.names))
	}
	row := append([]string{rec.Submission.StudentID}, rec.Symbols()...)
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("failed to write summary row: %w", err)
	}
	w.rows++
	return w.Flush()
}

// Rows returns the number of records written.
func (w *Writer) Rows() int {
	return w.rows
}

func (w *Writer) Flush() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("failed to flush summary: %w", err)
	}
	return nil
}
