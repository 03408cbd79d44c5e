// Package annotation implements a multi-label temporal annotation: segments
// of time paired with tracks and labels, where overlapping segments may carry
// different labels.
package annotation

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/emirpasic/gods/v2/maps/treemap"

	"github.com/jamesainslie/go-vtc/timeline"
)

// Entry is one labelled occurrence of a segment.
type Entry struct {
	Segment timeline.Segment
	Track   string
	Label   string
}

type key struct {
	segment timeline.Segment
	track   string
}

// Annotation maps (segment, track) pairs to labels. The same segment may
// appear on several tracks with different labels.
//
// An Annotation is not safe for concurrent mutation. Read-only use from
// several goroutines is safe once the label index has been built, which any
// query does.
type Annotation struct {
	uri     string
	entries []Entry
	pos     map[key]int
	tracks  map[timeline.Segment]int

	index *treemap.Map[string, timeline.Timeline]
}

// New returns an empty annotation for the given file identifier.
func New(uri string) *Annotation {
	return &Annotation{
		uri:    uri,
		pos:    make(map[key]int),
		tracks: make(map[timeline.Segment]int),
	}
}

// URI returns the file identifier.
func (a *Annotation) URI() string {
	return a.uri
}

// Add labels seg on a fresh track. It fails if seg is invalid. Empty
// segments are accepted and stored but never contribute any duration.
func (a *Annotation) Add(seg timeline.Segment, label string) error {
	if err := seg.Validate(); err != nil {
		return fmt.Errorf("annotation %s: %w", a.uri, err)
	}
	track := a.nextTrack(seg)
	a.put(seg, track, label)
	return nil
}

// Set labels seg on the given track, replacing any label the pair had.
func (a *Annotation) Set(seg timeline.Segment, track, label string) error {
	if err := seg.Validate(); err != nil {
		return fmt.Errorf("annotation %s: %w", a.uri, err)
	}
	a.put(seg, track, label)
	return nil
}

func (a *Annotation) put(seg timeline.Segment, track, label string) {
	k := key{segment: seg, track: track}
	if i, ok := a.pos[k]; ok {
		a.entries[i].Label = label
	} else {
		a.pos[k] = len(a.entries)
		a.entries = append(a.entries, Entry{Segment: seg, Track: track, Label: label})
	}
	a.index = nil
}

// insert stores the entry on track, or on a fresh track when another entry
// already holds (seg, track).
func (a *Annotation) insert(seg timeline.Segment, track, label string) {
	if _, taken := a.pos[key{segment: seg, track: track}]; taken {
		track = a.nextTrack(seg)
	}
	a.put(seg, track, label)
}

func (a *Annotation) nextTrack(seg timeline.Segment) string {
	for {
		n := a.tracks[seg]
		a.tracks[seg] = n + 1
		track := strconv.Itoa(n)
		if _, taken := a.pos[key{segment: seg, track: track}]; !taken {
			return track
		}
	}
}

// Len returns the number of entries.
func (a *Annotation) Len() int {
	return len(a.entries)
}

// Entries returns a copy of the entries in insertion order.
func (a *Annotation) Entries() []Entry {
	return slices.Clone(a.entries)
}

// labelIndex returns the label -> coalesced timeline index, building it when
// the annotation changed since the last query.
func (a *Annotation) labelIndex() *treemap.Map[string, timeline.Timeline] {
	if a.index != nil {
		return a.index
	}

	raw := make(map[string][]timeline.Segment)
	for _, e := range a.entries {
		raw[e.Label] = append(raw[e.Label], e.Segment)
	}
	index := treemap.New[string, timeline.Timeline]()
	for label, segs := range raw {
		index.Put(label, timeline.New(segs...))
	}
	a.index = index
	return index
}

// Labels returns the distinct labels in sorted order.
func (a *Annotation) Labels() []string {
	return a.labelIndex().Keys()
}

// HasLabel reports whether any entry carries label.
func (a *Annotation) HasLabel(label string) bool {
	_, ok := a.labelIndex().Get(label)
	return ok
}

// LabelTimeline returns the union of all segments carrying label. An absent
// label yields an empty timeline.
func (a *Annotation) LabelTimeline(label string) timeline.Timeline {
	tl, _ := a.labelIndex().Get(label)
	return tl
}

// Duration returns the time covered by label.
func (a *Annotation) Duration(label string) float64 {
	return a.LabelTimeline(label).Duration()
}

// Support returns the time covered by any label.
func (a *Annotation) Support() timeline.Timeline {
	var support timeline.Timeline
	a.labelIndex().Each(func(_ string, tl timeline.Timeline) {
		support = support.Union(tl)
	})
	return support
}

// Extent returns the segment spanning every entry.
func (a *Annotation) Extent() timeline.Segment {
	return a.Support().Extent()
}

// Copy returns a deep copy of the annotation.
func (a *Annotation) Copy() *Annotation {
	out := New(a.uri)
	for _, e := range a.entries {
		out.put(e.Segment, e.Track, e.Label)
	}
	for seg, n := range a.tracks {
		out.tracks[seg] = n
	}
	return out
}

// Crop returns a new annotation holding only the parts of each entry that lie
// within extent. An entry spanning a gap of extent is split; pieces of zero
// duration are dropped. Labels are preserved, and so are tracks unless two
// entries crop down to the same (segment, track) pair.
func (a *Annotation) Crop(extent timeline.Timeline) *Annotation {
	out := New(a.uri)
	for _, e := range a.entries {
		pieces := timeline.New(e.Segment).Intersect(extent)
		for _, p := range pieces.Segments() {
			out.insert(p, e.Track, e.Label)
		}
	}
	return out
}

// Subset returns a new annotation holding only entries whose label is one of
// labels.
func (a *Annotation) Subset(labels ...string) *Annotation {
	out := New(a.uri)
	for _, e := range a.entries {
		if slices.Contains(labels, e.Label) {
			out.put(e.Segment, e.Track, e.Label)
		}
	}
	return out
}
