// Package fmeasure scores detection annotations against a reference with a
// per-class detection F-measure, accumulated over a corpus and macro
// averaged across classes.
package fmeasure

import (
	"github.com/jamesainslie/go-vtc/annotation"
	"github.com/jamesainslie/go-vtc/timeline"
)

// Components holds the durations compared for one class.
type Components struct {
	Reference    float64 // seconds of reference
	Hypothesis   float64 // seconds of hypothesis
	TruePositive float64 // seconds where both agree
}

// FalsePositive returns hypothesis time not found in the reference.
func (c Components) FalsePositive() float64 {
	return c.Hypothesis - c.TruePositive
}

// FalseNegative returns reference time missed by the hypothesis.
func (c Components) FalseNegative() float64 {
	return c.Reference - c.TruePositive
}

func (c Components) add(o Components) Components {
	return Components{
		Reference:    c.Reference + o.Reference,
		Hypothesis:   c.Hypothesis + o.Hypothesis,
		TruePositive: c.TruePositive + o.TruePositive,
	}
}

// FileResult is the immutable contribution of one file.
type FileResult struct {
	URI     string
	Classes []string
	Scores  map[string]Components
}

// Score compares ref and hyp over extent for every class. Both annotations
// are cropped to extent first, so nothing outside it is counted.
func Score(uri string, ref, hyp *annotation.Annotation, extent timeline.Timeline, classes []string) FileResult {
	ref = ref.Crop(extent)
	hyp = hyp.Crop(extent)

	res := FileResult{
		URI:     uri,
		Classes: classes,
		Scores:  make(map[string]Components, len(classes)),
	}
	for _, class := range classes {
		r := ref.LabelTimeline(class)
		h := hyp.LabelTimeline(class)
		res.Scores[class] = Components{
			Reference:    r.Duration(),
			Hypothesis:   h.Duration(),
			TruePositive: timeline.Overlap(r, h),
		}
	}
	return res
}
