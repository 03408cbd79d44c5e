// Package rttm reads RTTM label files and UEM evaluation maps.
package rttm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jamesainslie/go-vtc/annotation"
	"github.com/jamesainslie/go-vtc/timeline"
)

// ErrMalformedRecord indicates a line that could not be parsed. The line is
// dropped and parsing continues.
var ErrMalformedRecord = errors.New("rttm: malformed record")

// minFields is the number of leading RTTM fields read:
// type, uri, channel, onset, duration, <NA>, <NA>, label.
const minFields = 8

// Record is one parsed RTTM line.
type Record struct {
	Type     string
	URI      string
	Channel  string
	Onset    float64
	Duration float64
	Label    string
}

// Segment returns [Onset, Onset+Duration).
func (r Record) Segment() timeline.Segment {
	return timeline.Segment{Start: r.Onset, End: r.Onset + r.Duration}
}

// ParseRecord parses a single RTTM line.
func ParseRecord(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) < minFields {
		return Record{}, fmt.Errorf("%w: %d fields, want at least %d", ErrMalformedRecord, len(fields), minFields)
	}

	onset, err := parseSeconds(fields[3])
	if err != nil {
		return Record{}, fmt.Errorf("%w: onset: %w", ErrMalformedRecord, err)
	}
	duration, err := parseSeconds(fields[4])
	if err != nil {
		return Record{}, fmt.Errorf("%w: duration: %w", ErrMalformedRecord, err)
	}

	return Record{
		Type:     fields[0],
		URI:      fields[1],
		Channel:  fields[2],
		Onset:    onset,
		Duration: duration,
		Label:    fields[7],
	}, nil
}

func parseSeconds(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %s", s)
	}
	return v, nil
}

// skipLine reports whether a line carries no record.
func skipLine(line string) bool {
	line = strings.TrimSpace(line)
	return line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";;")
}

// Parse reads RTTM records from r and groups them into one annotation per
// URI. Malformed records are skipped and returned as warnings; the error is
// non-nil only when reading fails.
func Parse(r io.Reader) (map[string]*annotation.Annotation, []error, error) {
	out := make(map[string]*annotation.Annotation)
	warnings, err := parseInto(out, r, "")
	return out, warnings, err
}

func parseInto(out map[string]*annotation.Annotation, r io.Reader, source string) ([]error, error) {
	var warnings []error
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if skipLine(line) {
			continue
		}

		rec, err := ParseRecord(line)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("%s:%d: %w", source, lineNo, err))
			continue
		}

		a, ok := out[rec.URI]
		if !ok {
			a = annotation.New(rec.URI)
			out[rec.URI] = a
		}
		if err := a.Add(rec.Segment(), rec.Label); err != nil {
			warnings = append(warnings, fmt.Errorf("%s:%d: %w: %w", source, lineNo, ErrMalformedRecord, err))
		}
	}

	if err := scanner.Err(); err != nil {
		return warnings, fmt.Errorf("scan %s: %w", source, err)
	}
	return warnings, nil
}

// LoadFile parses a single RTTM file.
func LoadFile(path string) (map[string]*annotation.Annotation, []error, error) {
	out := make(map[string]*annotation.Annotation)
	warnings, err := loadInto(out, path)
	return out, warnings, err
}

func loadInto(out map[string]*annotation.Annotation, path string) ([]error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return parseInto(out, f, path)
}

// LoadDir parses every .rttm file in dir. Records for the same URI are
// merged into one annotation regardless of the file they come from.
func LoadDir(dir string) (map[string]*annotation.Annotation, []error, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.rttm"))
	if err != nil {
		return nil, nil, fmt.Errorf("glob %s: %w", dir, err)
	}
	sort.Strings(paths)
	return LoadFiles(paths...)
}

// LoadFiles parses the given RTTM files, merging annotations by URI.
func LoadFiles(paths ...string) (map[string]*annotation.Annotation, []error, error) {
	out := make(map[string]*annotation.Annotation)
	var warnings []error
	for _, path := range paths {
		w, err := loadInto(out, path)
		warnings = append(warnings, w...)
		if err != nil {
			return nil, warnings, fmt.Errorf("loading %s: %w", filepath.Base(path), err)
		}
	}
	return out, warnings, nil
}

// Write writes every entry of a as a SPEAKER record in insertion order.
func Write(w io.Writer, a *annotation.Annotation) error {
	bw := bufio.NewWriter(w)
	for _, e := range a.Entries() {
		if e.Segment.Empty() {
			continue
		}
		_, err := fmt.Fprintf(bw, "SPEAKER %s 1 %.3f %.3f <NA> <NA> %s <NA> <NA>\n",
			a.URI(), e.Segment.Start, e.Segment.Duration(), e.Label)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}
