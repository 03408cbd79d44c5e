package corpus

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jamesainslie/go-vtc/timeline"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

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

func TestLoad_SharedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"database.yml": `protocols:
  X.SpeakerDiarization.BBT2:
    test:
      uri: lists/test.txt
      annotation: rttm/test.rttm
      annotated: uem/test.uem
`,
		"lists/test.txt": "# test files\nbbt_01\nbbt_02\n\nbbt_03\n",
		"rttm/test.rttm": `SPEAKER bbt_01 1 0 2 <NA> <NA> FEM <NA> <NA>
SPEAKER bbt_01 1 bad 2 <NA> <NA> FEM <NA> <NA>
SPEAKER bbt_02 1 1 3 <NA> <NA> KCHI <NA> <NA>
`,
		"uem/test.uem": "bbt_01 1 0 10\nbbt_03 1 0 5\n",
	})

	db, err := LoadDatabase(filepath.Join(dir, "database.yml"))
	if err != nil {
		t.Fatalf("LoadDatabase() error = %v", err)
	}
	if diff := cmp.Diff([]string{"X.SpeakerDiarization.BBT2"}, db.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	files, err := db.Load("X.SpeakerDiarization.BBT2", "test", quietLogger())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("got %d files, want 3", len(files))
	}

	tests := []struct {
		uri        string
		wantRef    float64
		wantExtent []timeline.Segment
	}{
		{uri: "bbt_01", wantRef: 2, wantExtent: []timeline.Segment{{Start: 0, End: 10}}},
		// No UEM entry: falls back to the reference extent.
		{uri: "bbt_02", wantRef: 3, wantExtent: []timeline.Segment{{Start: 1, End: 4}}},
		// No reference records: annotated but silent.
		{uri: "bbt_03", wantRef: 0, wantExtent: []timeline.Segment{{Start: 0, End: 5}}},
	}
	for i, tt := range tests {
		f := files[i]
		if f.URI != tt.uri {
			t.Errorf("files[%d].URI = %q, want %q", i, f.URI, tt.uri)
			continue
		}
		if got := f.Reference.Support().Duration(); got != tt.wantRef {
			t.Errorf("%s reference duration = %v, want %v", tt.uri, got, tt.wantRef)
		}
		if diff := cmp.Diff(tt.wantExtent, f.Annotated.Segments()); diff != "" {
			t.Errorf("%s extent mismatch (-want +got):\n%s", tt.uri, diff)
		}
	}
}

func TestLoad_PerFileTemplate(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"database.yml": `protocols:
  P:
    test:
      uri: test.txt
      annotation: rttm/{uri}.rttm
      annotated: uem/{uri}.uem
`,
		"test.txt":    "a\nb\n",
		"rttm/a.rttm": "SPEAKER a 1 0 1 <NA> <NA> MAL <NA> <NA>\n",
		"uem/a.uem":   "a 1 0 3\n",
		"uem/b.uem":   "b 1 0 3\n",
	})

	db, err := LoadDatabase(filepath.Join(dir, "database.yml"))
	if err != nil {
		t.Fatal(err)
	}
	files, err := db.Load("P", "test", quietLogger())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// b has no reference file and is skipped.
	if len(files) != 1 || files[0].URI != "a" {
		t.Fatalf("files = %+v, want only a", files)
	}
	if got := files[0].Annotated.Duration(); got != 3 {
		t.Errorf("annotated duration = %v, want 3", got)
	}
}

func TestLoad_DirectoryReferences(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"database.yml": `protocols:
  P:
    test:
      uri: test.txt
      annotation: rttm
`,
		"test.txt":    "a\nb\n",
		"rttm/a.rttm": "SPEAKER a 1 0 1 <NA> <NA> MAL <NA> <NA>\n",
		"rttm/b.rttm": "SPEAKER b 1 0 2 <NA> <NA> FEM <NA> <NA>\n",
		"rttm/notes":  "ignored\n",
	})

	db, err := LoadDatabase(filepath.Join(dir, "database.yml"))
	if err != nil {
		t.Fatal(err)
	}
	files, err := db.Load("P", "test", quietLogger())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	if got := files[1].Reference.Duration("FEM"); got != 2 {
		t.Errorf("b FEM duration = %v, want 2", got)
	}
}

func TestLoad_UnknownProtocolAndSubset(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"database.yml": `protocols:
  P:
    test:
      uri: test.txt
      annotation: ref.rttm
`,
	})
	db, err := LoadDatabase(filepath.Join(dir, "database.yml"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := db.Load("Q", "test", quietLogger()); !errors.Is(err, ErrUnknownProtocol) {
		t.Errorf("expected ErrUnknownProtocol, got: %v", err)
	}
	if _, err := db.Load("P", "train", quietLogger()); !errors.Is(err, ErrUnknownSubset) {
		t.Errorf("expected ErrUnknownSubset, got: %v", err)
	}
}

func TestReadURIs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list.txt")
	if err := os.WriteFile(path, []byte("  a  \n# skip\n\nb\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadURIs(path)
	if err != nil {
		t.Fatalf("ReadURIs() error = %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Errorf("ReadURIs() mismatch (-want +got):\n%s", diff)
	}
}
