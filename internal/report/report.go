// Package report renders and persists scoring reports.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jamesainslie/go-vtc/fmeasure"
)

// Header is the CSV column order.
var Header = []string{"class", "precision", "recall", "f1", "reference", "hypothesis", "true_positive", "files"}

// Render prints the report as an aligned table with percentages, followed
// by the coverage line.
func Render(w io.Writer, r *fmeasure.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%-10s %9s %9s %9s %12s %6s\n", "Class", "Prec %", "Rec %", "F1 %", "Ref (s)", "Files")
	fmt.Fprintln(&b, strings.Repeat("-", 60))
	for _, row := range r.Rows {
		writeRow(&b, row)
	}
	fmt.Fprintln(&b, strings.Repeat("-", 60))
	writeRow(&b, r.Macro)

	fmt.Fprintf(&b, "\nMacro average over %d classes with reference speech.\n", r.Averaged)
	fmt.Fprintf(&b, "Scored %d of %d files.\n", r.FilesScored, r.FilesTotal())

	_, err := io.WriteString(w, b.String())
	return err
}

func writeRow(b *strings.Builder, row fmeasure.Row) {
	fmt.Fprintf(b, "%-10s %9.2f %9.2f %9.2f %12.2f %6d\n",
		row.Class, 100*row.Precision, 100*row.Recall, 100*row.F1, row.Reference, row.Files)
}

// Records returns the report as CSV records, header first and the macro row
// last.
func Records(r *fmeasure.Report) [][]string {
	records := [][]string{Header}
	for _, row := range r.Rows {
		records = append(records, record(row))
	}
	return append(records, record(r.Macro))
}

func record(row fmeasure.Row) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	return []string{
		row.Class,
		f(row.Precision),
		f(row.Recall),
		f(row.F1),
		f(row.Reference),
		f(row.Hypothesis),
		f(row.TruePositive),
		strconv.Itoa(row.Files),
	}
}

// WriteCSV writes the report to w.
func WriteCSV(w io.Writer, r *fmeasure.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(Records(r)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// Save writes the report as CSV to path, creating parent directories.
func Save(path string, r *fmeasure.Report) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close report: %w", cerr)
		}
	}()

	return WriteCSV(f, r)
}
