package annotation

// Mapping rewrites labels. A label mapped to the empty string is deleted.
type Mapping map[string]string

// Relabel returns a new annotation with labels rewritten through mapping.
// Labels missing from mapping are kept unchanged when keepMissing is set and
// deleted otherwise.
func (a *Annotation) Relabel(mapping Mapping, keepMissing bool) *Annotation {
	out := New(a.uri)
	for _, e := range a.entries {
		label, mapped := mapping[e.Label]
		switch {
		case mapped && label == "":
			continue
		case !mapped && !keepMissing:
			continue
		case !mapped:
			label = e.Label
		}
		out.put(e.Segment, e.Track, label)
	}
	return out
}
