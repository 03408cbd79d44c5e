package rttm

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jamesainslie/go-vtc/timeline"
)

func seg(start, end float64) timeline.Segment {
	return timeline.Segment{Start: start, End: end}
}

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Record
		wantErr bool
	}{
		{
			name: "speaker record",
			line: "SPEAKER bbt_01 1 12.50 3.25 <NA> <NA> KCHI <NA> <NA>",
			want: Record{Type: "SPEAKER", URI: "bbt_01", Channel: "1", Onset: 12.5, Duration: 3.25, Label: "KCHI"},
		},
		{
			name: "trailing fields missing",
			line: "SPEAKER bbt_01 1 0 1 <NA> <NA> FEM",
			want: Record{Type: "SPEAKER", URI: "bbt_01", Channel: "1", Onset: 0, Duration: 1, Label: "FEM"},
		},
		{
			name:    "bad onset",
			line:    "SPEAKER bbt_01 1 abc 1 <NA> <NA> FEM <NA> <NA>",
			wantErr: true,
		},
		{
			name:    "negative duration",
			line:    "SPEAKER bbt_01 1 3 -1 <NA> <NA> FEM <NA> <NA>",
			wantErr: true,
		},
		{
			name:    "too few fields",
			line:    "SPEAKER bbt_01 1 3 1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecord(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRecord() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedRecord) {
					t.Errorf("expected ErrMalformedRecord, got: %v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseRecord() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParse_SkipsMalformedRecords(t *testing.T) {
	input := `# comment
SPEAKER a 1 0.0 2.0 <NA> <NA> FEM <NA> <NA>
SPEAKER a 1 oops 2.0 <NA> <NA> FEM <NA> <NA>

SPEAKER a 1 1.0 2.0 <NA> <NA> KCHI <NA> <NA>
SPEAKER b 1 5.0 1.0 <NA> <NA> MAL <NA> <NA>
`
	anns, warnings, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(warnings) != 1 || !errors.Is(warnings[0], ErrMalformedRecord) {
		t.Errorf("warnings = %v, want one ErrMalformedRecord", warnings)
	}
	if len(anns) != 2 {
		t.Fatalf("got %d annotations, want 2", len(anns))
	}

	a := anns["a"]
	if diff := cmp.Diff([]string{"FEM", "KCHI"}, a.Labels()); diff != "" {
		t.Errorf("Labels() mismatch (-want +got):\n%s", diff)
	}
	if got := a.Duration("KCHI"); got != 2 {
		t.Errorf("Duration(KCHI) = %v, want 2", got)
	}
}

func TestLoadDir_AggregatesByURI(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"part1.rttm": "SPEAKER a 1 0 2 <NA> <NA> SPEECH <NA> <NA>\n",
		"part2.rttm": "SPEAKER a 1 4 2 <NA> <NA> SPEECH <NA> <NA>\nSPEAKER b 1 0 1 <NA> <NA> SPEECH <NA> <NA>\n",
		"notes.txt":  "SPEAKER c 1 0 1 <NA> <NA> SPEECH <NA> <NA>\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	anns, warnings, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if len(anns) != 2 {
		t.Fatalf("got %d annotations, want 2", len(anns))
	}

	want := []timeline.Segment{seg(0, 2), seg(4, 6)}
	if diff := cmp.Diff(want, anns["a"].LabelTimeline("SPEECH").Segments()); diff != "" {
		t.Errorf("SPEECH for a mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, _, err := LoadFile(filepath.Join(t.TempDir(), "missing.rttm"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got: %v", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	input := "SPEAKER a 1 0.500 1.500 <NA> <NA> FEM <NA> <NA>\n"
	anns, _, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, anns["a"]); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if buf.String() != input {
		t.Errorf("Write() = %q, want %q", buf.String(), input)
	}
}

func TestParseUEM(t *testing.T) {
	input := `a 1 0.0 10.0
a 1 20.0 30.0
b 1 5.0 2.0
b 1 0.0 4.0
`
	extents, warnings, err := ParseUEM(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseUEM() error = %v", err)
	}
	if len(warnings) != 1 {
		t.Errorf("got %d warnings, want 1: %v", len(warnings), warnings)
	}

	want := []timeline.Segment{seg(0, 10), seg(20, 30)}
	if diff := cmp.Diff(want, extents["a"].Segments()); diff != "" {
		t.Errorf("extent a mismatch (-want +got):\n%s", diff)
	}
	if got := extents["b"].Duration(); got != 4 {
		t.Errorf("extent b duration = %v, want 4", got)
	}

	var buf bytes.Buffer
	if err := WriteUEM(&buf, []string{"a"}, extents); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "a 1 0.000 10.000\na 1 20.000 30.000\n"; got != want {
		t.Errorf("WriteUEM() = %q, want %q", got, want)
	}
}
