package taxonomy

import (
	"github.com/jamesainslie/go-vtc/annotation"
	"github.com/jamesainslie/go-vtc/timeline"
)

// Deriver adds a profile's meta labels to annotations over its base classes.
type Deriver struct {
	profile *Profile
}

// NewDeriver validates p and returns a Deriver for it.
func NewDeriver(p *Profile) (*Deriver, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Deriver{profile: p}, nil
}

// Profile returns the profile the deriver was built from.
func (d *Deriver) Profile() *Profile {
	return d.profile
}

// Derive returns a new annotation holding the base-class entries of a plus
// one entry per segment of every union and intersection label. Labels that
// are not base classes are dropped. Meta labels are computed from base-class
// timelines only, so they never depend on each other.
func (d *Deriver) Derive(a *annotation.Annotation) *annotation.Annotation {
	out := a.Subset(d.profile.Classes...)

	for _, name := range d.profile.UnionLabels() {
		var tl timeline.Timeline
		for _, c := range d.profile.Unions[name] {
			tl = tl.Union(a.LabelTimeline(c))
		}
		addTimeline(out, tl, name)
	}

	for _, name := range d.profile.IntersectionLabels() {
		classes := d.profile.Intersections[name]
		tl := a.LabelTimeline(classes[0])
		for _, c := range classes[1:] {
			tl = tl.Intersect(a.LabelTimeline(c))
		}
		addTimeline(out, tl, name)
	}

	return out
}

// addTimeline labels every segment of tl. Timeline segments are always
// valid, so Add cannot fail.
func addTimeline(a *annotation.Annotation, tl timeline.Timeline, label string) {
	for _, s := range tl.Segments() {
		_ = a.Add(s, label)
	}
}
