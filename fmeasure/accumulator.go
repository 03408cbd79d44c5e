package fmeasure

import (
	"errors"
	"fmt"
	"slices"
)

// ErrReported indicates an update to an accumulator whose report has
// already been produced.
var ErrReported = errors.New("fmeasure: accumulator already reported")

// Totals holds corpus-wide components for one class.
type Totals struct {
	Components
	Files int
}

// Accumulator sums per-file results over a corpus. It starts accumulating
// and moves to reported the first time Report is called; after that every
// update fails with ErrReported.
//
// Accumulator is not safe for concurrent use. Score files concurrently and
// Add the results from a single goroutine, or Merge per-worker accumulators.
type Accumulator struct {
	classes []string
	totals  map[string]*Totals
	files   int
	skipped []string
	report  *Report
}

// NewAccumulator returns an empty accumulator for the given classes, in the
// order they are reported.
func NewAccumulator(classes []string) *Accumulator {
	a := &Accumulator{
		classes: slices.Clone(classes),
		totals:  make(map[string]*Totals, len(classes)),
	}
	for _, c := range classes {
		a.totals[c] = &Totals{}
	}
	return a
}

// Classes returns the scored classes in report order.
func (a *Accumulator) Classes() []string {
	return slices.Clone(a.classes)
}

// Reported reports whether the accumulator is frozen.
func (a *Accumulator) Reported() bool {
	return a.report != nil
}

// Add sums one file's result into the totals. Classes unknown to the
// accumulator are ignored.
func (a *Accumulator) Add(res FileResult) error {
	if a.Reported() {
		return fmt.Errorf("add %s: %w", res.URI, ErrReported)
	}
	for _, c := range a.classes {
		comp, ok := res.Scores[c]
		if !ok {
			continue
		}
		t := a.totals[c]
		t.Components = t.Components.add(comp)
		t.Files++
	}
	a.files++
	return nil
}

// Skip records a reference file that was not scored, for coverage.
func (a *Accumulator) Skip(uri string) error {
	if a.Reported() {
		return fmt.Errorf("skip %s: %w", uri, ErrReported)
	}
	a.skipped = append(a.skipped, uri)
	return nil
}

// Merge adds the totals of another accumulating accumulator. Both must
// still be accumulating.
func (a *Accumulator) Merge(o *Accumulator) error {
	if a.Reported() || o.Reported() {
		return fmt.Errorf("merge: %w", ErrReported)
	}
	for _, c := range a.classes {
		ot, ok := o.totals[c]
		if !ok {
			continue
		}
		t := a.totals[c]
		t.Components = t.Components.add(ot.Components)
		t.Files += ot.Files
	}
	a.files += o.files
	a.skipped = append(a.skipped, o.skipped...)
	return nil
}

// Totals returns a copy of the running totals for class.
func (a *Accumulator) Totals(class string) (Totals, bool) {
	t, ok := a.totals[class]
	if !ok {
		return Totals{}, false
	}
	return *t, true
}

// Report freezes the accumulator and returns the per-class and macro
// averaged scores. Later calls return the same report.
func (a *Accumulator) Report() *Report {
	if a.report != nil {
		return a.report
	}

	r := &Report{
		FilesScored: a.files,
		Skipped:     slices.Clone(a.skipped),
	}
	for _, c := range a.classes {
		r.Rows = append(r.Rows, newRow(c, *a.totals[c]))
	}
	r.Macro, r.Averaged = macro(r.Rows)
	r.Macro.Files = a.files

	a.report = r
	return r
}
