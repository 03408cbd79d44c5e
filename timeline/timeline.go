package timeline

import (
	"slices"
	"strings"
)

// Timeline is a sorted set of non-empty segments in which no two segments
// overlap or touch. The zero value is an empty timeline.
//
// Timelines are immutable: every operation returns a new value.
type Timeline struct {
	segments []Segment
}

// New builds a coalesced timeline from arbitrary segments. Empty segments are
// dropped; overlapping and adjacent segments are merged.
func New(segments ...Segment) Timeline {
	if len(segments) == 0 {
		return Timeline{}
	}

	sorted := make([]Segment, 0, len(segments))
	for _, s := range segments {
		if !s.Empty() {
			sorted = append(sorted, s)
		}
	}
	slices.SortFunc(sorted, func(a, b Segment) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		case a.End < b.End:
			return -1
		case a.End > b.End:
			return 1
		}
		return 0
	})

	var out []Segment
	for _, s := range sorted {
		out = appendCoalesced(out, s)
	}
	return Timeline{segments: out}
}

// appendCoalesced appends s to out, merging it into the last segment when
// they overlap or touch. out must be sorted by start and s.Start must not
// precede the last start.
func appendCoalesced(out []Segment, s Segment) []Segment {
	if s.Empty() {
		return out
	}
	if n := len(out); n > 0 && s.Start <= out[n-1].End {
		if s.End > out[n-1].End {
			out[n-1].End = s.End
		}
		return out
	}
	return append(out, s)
}

// Segments returns a copy of the timeline's segments in order.
func (t Timeline) Segments() []Segment {
	return slices.Clone(t.segments)
}

// Len returns the number of segments.
func (t Timeline) Len() int {
	return len(t.segments)
}

// Empty reports whether the timeline covers no time.
func (t Timeline) Empty() bool {
	return len(t.segments) == 0
}

// Duration returns the total covered time.
func (t Timeline) Duration() float64 {
	var d float64
	for _, s := range t.segments {
		d += s.Duration()
	}
	return d
}

// Extent returns the smallest segment covering the whole timeline.
func (t Timeline) Extent() Segment {
	if len(t.segments) == 0 {
		return Segment{}
	}
	return Segment{Start: t.segments[0].Start, End: t.segments[len(t.segments)-1].End}
}

// Equal reports whether both timelines cover exactly the same time.
func (t Timeline) Equal(o Timeline) bool {
	return slices.Equal(t.segments, o.segments)
}

// Union returns the time covered by t or o.
func (t Timeline) Union(o Timeline) Timeline {
	if o.Empty() {
		return t
	}
	if t.Empty() {
		return o
	}

	out := make([]Segment, 0, len(t.segments)+len(o.segments))
	i, j := 0, 0
	for i < len(t.segments) || j < len(o.segments) {
		var next Segment
		if j >= len(o.segments) || (i < len(t.segments) && t.segments[i].Start <= o.segments[j].Start) {
			next = t.segments[i]
			i++
		} else {
			next = o.segments[j]
			j++
		}
		out = appendCoalesced(out, next)
	}
	return Timeline{segments: out}
}

// Intersect returns the time covered by both t and o, using a single linear
// merge over the two sorted segment lists.
func (t Timeline) Intersect(o Timeline) Timeline {
	if t.Empty() || o.Empty() {
		return Timeline{}
	}

	var out []Segment
	i, j := 0, 0
	for i < len(t.segments) && j < len(o.segments) {
		a, b := t.segments[i], o.segments[j]
		out = appendCoalesced(out, a.Intersect(b))

		// Advance whichever segment finishes first.
		if a.End < b.End {
			i++
		} else {
			j++
		}
	}
	return Timeline{segments: out}
}

// Crop returns the part of t inside the segment.
func (t Timeline) Crop(s Segment) Timeline {
	return t.Intersect(New(s))
}

// Gaps returns the parts of within not covered by t.
func (t Timeline) Gaps(within Segment) Timeline {
	if within.Empty() {
		return Timeline{}
	}

	var out []Segment
	cursor := within.Start
	for _, s := range t.segments {
		if s.End <= within.Start {
			continue
		}
		if s.Start >= within.End {
			break
		}
		if s.Start > cursor {
			out = append(out, Segment{Start: cursor, End: s.Start})
		}
		if s.End > cursor {
			cursor = s.End
		}
	}
	if cursor < within.End {
		out = append(out, Segment{Start: cursor, End: within.End})
	}
	return Timeline{segments: out}
}

func (t Timeline) String() string {
	parts := make([]string, len(t.segments))
	for i, s := range t.segments {
		parts[i] = s.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Overlap returns the duration of time covered by both a and b.
func Overlap(a, b Timeline) float64 {
	return a.Intersect(b).Duration()
}
