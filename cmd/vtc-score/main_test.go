package main

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    options
		wantErr string
	}{
		{name: "complete", opts: options{Database: "db.yml", ApplyFolder: "hyp", ReportPath: "r.csv"}},
		{name: "missing database", opts: options{ApplyFolder: "hyp", ReportPath: "r.csv"}, wantErr: "--database"},
		{name: "missing report", opts: options{Database: "db.yml", ApplyFolder: "hyp"}, wantErr: "--report-path"},
		{name: "negative workers", opts: options{Database: "db.yml", ApplyFolder: "hyp", ReportPath: "r.csv", Workers: -1}, wantErr: "--workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestScoreCommand(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"database.yml": `protocols:
  X.SpeakerDiarization.BBT2:
    test:
      uri: test.txt
      annotation: ref.rttm
      annotated: test.uem
`,
		"test.txt":   "a\n",
		"ref.rttm":   "SPEAKER a 1 0 4 <NA> <NA> FEM <NA> <NA>\n",
		"test.uem":   "a 1 0 10\n",
		"hyp/a.rttm": "SPEAKER a 1 0 4 <NA> <NA> FEM <NA> <NA>\nSPEAKER a 1 0 4 <NA> <NA> SPEECH <NA> <NA>\n",
	})
	reportPath := filepath.Join(dir, "out", "report.csv")

	cmd := newRootCmd()
	cmd.SetArgs([]string{
		"--database", filepath.Join(dir, "database.yml"),
		"--apply-folder", filepath.Join(dir, "hyp"),
		"--report-path", reportPath,
		"--workers", "2",
		"--no-progress",
	})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	f, err := os.Open(reportPath)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	last := records[len(records)-1]
	if last[0] != "macro" || last[3] != "1.000000" {
		t.Errorf("macro row = %v, want f1 1.000000", last)
	}
}

func TestScoreCommand_EnvironmentOverride(t *testing.T) {
	t.Setenv("VTC_CLASSES", "nope")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--database", "db.yml", "--apply-folder", "hyp", "--report-path", "r.csv", "--no-progress"})
	cmd.SetErr(&strings.Builder{})
	err := cmd.ExecuteContext(context.Background())
	if err == nil || !strings.Contains(err.Error(), "nope") {
		t.Errorf("expected unknown profile error naming nope, got: %v", err)
	}
}
