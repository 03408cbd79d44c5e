package rttm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jamesainslie/go-vtc/timeline"
)

// ParseUEM reads "uri channel start end" lines into one evaluated timeline
// per URI. Malformed lines are skipped and returned as warnings.
func ParseUEM(r io.Reader) (map[string]timeline.Timeline, []error, error) {
	segments := make(map[string][]timeline.Segment)
	var warnings []error

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if skipLine(line) {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 4 {
			warnings = append(warnings, fmt.Errorf("uem:%d: %w: %d fields, want 4", lineNo, ErrMalformedRecord, len(fields)))
			continue
		}
		start, err := parseSeconds(fields[2])
		if err != nil {
			warnings = append(warnings, fmt.Errorf("uem:%d: %w: start: %w", lineNo, ErrMalformedRecord, err))
			continue
		}
		end, err := parseSeconds(fields[3])
		if err != nil {
			warnings = append(warnings, fmt.Errorf("uem:%d: %w: end: %w", lineNo, ErrMalformedRecord, err))
			continue
		}
		s, err := timeline.NewSegment(start, end)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("uem:%d: %w: %w", lineNo, ErrMalformedRecord, err))
			continue
		}
		segments[fields[0]] = append(segments[fields[0]], s)
	}
	if err := scanner.Err(); err != nil {
		return nil, warnings, fmt.Errorf("scan uem: %w", err)
	}

	out := make(map[string]timeline.Timeline, len(segments))
	for uri, segs := range segments {
		out[uri] = timeline.New(segs...)
	}
	return out, warnings, nil
}

// LoadUEM parses a UEM file.
func LoadUEM(path string) (map[string]timeline.Timeline, []error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseUEM(f)
}

// WriteUEM writes one line per segment of every timeline, URIs in the given
// order.
func WriteUEM(w io.Writer, uris []string, extents map[string]timeline.Timeline) error {
	bw := bufio.NewWriter(w)
	for _, uri := range uris {
		for _, s := range extents[uri].Segments() {
			if _, err := fmt.Fprintf(bw, "%s 1 %.3f %.3f\n", uri, s.Start, s.End); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
