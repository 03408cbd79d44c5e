// Package timeline provides half-open time segments and coalesced sets of
// segments with union, intersection and cropping.
package timeline

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSegment indicates a segment whose end precedes its start or whose
// bounds are negative or not finite.
var ErrInvalidSegment = errors.New("timeline: invalid segment")

// Segment is the half-open interval [Start, End) in seconds.
type Segment struct {
	Start float64
	End   float64
}

// NewSegment returns the segment [start, end).
func NewSegment(start, end float64) (Segment, error) {
	s := Segment{Start: start, End: end}
	if err := s.Validate(); err != nil {
		return Segment{}, err
	}
	return s, nil
}

// Validate reports whether the segment is well formed. Segments are never
// clamped: a reversed segment is an error.
func (s Segment) Validate() error {
	if math.IsNaN(s.Start) || math.IsNaN(s.End) || math.IsInf(s.Start, 0) || math.IsInf(s.End, 0) {
		return fmt.Errorf("%w: [%v, %v) is not finite", ErrInvalidSegment, s.Start, s.End)
	}
	if s.Start < 0 {
		return fmt.Errorf("%w: start %v is negative", ErrInvalidSegment, s.Start)
	}
	if s.End < s.Start {
		return fmt.Errorf("%w: end %v precedes start %v", ErrInvalidSegment, s.End, s.Start)
	}
	return nil
}

// Duration returns End - Start, or 0 for empty and reversed segments.
func (s Segment) Duration() float64 {
	if s.End <= s.Start {
		return 0
	}
	return s.End - s.Start
}

// Empty reports whether the segment covers no time.
func (s Segment) Empty() bool {
	return s.End <= s.Start
}

// Intersect returns the overlap of s and o. The result is empty when they
// do not overlap.
func (s Segment) Intersect(o Segment) Segment {
	start := math.Max(s.Start, o.Start)
	end := math.Min(s.End, o.End)
	if end < start {
		end = start
	}
	return Segment{Start: start, End: end}
}

// Overlaps reports whether s and o share a non-empty portion of time.
func (s Segment) Overlaps(o Segment) bool {
	return !s.Intersect(o).Empty()
}

// Contains reports whether o lies within s.
func (s Segment) Contains(o Segment) bool {
	return s.Start <= o.Start && o.End <= s.End
}

func (s Segment) String() string {
	return fmt.Sprintf("[%.3f, %.3f)", s.Start, s.End)
}
