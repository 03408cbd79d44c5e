package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jamesainslie/go-vtc/fmeasure"
)

func sampleReport(t *testing.T) *fmeasure.Report {
	t.Helper()
	acc := fmeasure.NewAccumulator([]string{"KCHI", "SPEECH"})
	err := acc.Add(fmeasure.FileResult{
		URI: "a",
		Scores: map[string]fmeasure.Components{
			"KCHI":   {Reference: 4, Hypothesis: 4, TruePositive: 2},
			"SPEECH": {Reference: 10, Hypothesis: 10, TruePositive: 10},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := acc.Skip("b"); err != nil {
		t.Fatal(err)
	}
	return acc.Report()
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "report.csv")

	if err := Save(path, sampleReport(t)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	if len(records) != 4 {
		t.Fatalf("got %d records, want 4", len(records))
	}
	if diff := cmp.Diff(Header, records[0]); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	want := []string{"KCHI", "0.500000", "0.500000", "0.500000", "4.000000", "4.000000", "2.000000", "1"}
	if diff := cmp.Diff(want, records[1]); diff != "" {
		t.Errorf("KCHI row mismatch (-want +got):\n%s", diff)
	}
	if records[3][0] != fmeasure.MacroClass {
		t.Errorf("last row class = %q, want %q", records[3][0], fmeasure.MacroClass)
	}
	if records[3][3] != "0.750000" {
		t.Errorf("macro f1 = %s, want 0.750000", records[3][3])
	}
}

func TestRender(t *testing.T) {
	var b strings.Builder
	if err := Render(&b, sampleReport(t)); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := b.String()
	for _, want := range []string{"KCHI", "SPEECH", "macro", "50.00", "Scored 1 of 2 files."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
