package fmeasure

// MacroClass names the summary row of a report.
const MacroClass = "macro"

// Row holds the scores of one class over the corpus.
type Row struct {
	Class        string
	Precision    float64
	Recall       float64
	F1           float64
	Reference    float64 // total reference duration, seconds
	Hypothesis   float64
	TruePositive float64
	Files        int
}

// Report is the frozen outcome of an Accumulator.
type Report struct {
	Rows  []Row
	Macro Row

	// Averaged counts the classes that entered the macro average.
	Averaged    int
	FilesScored int
	Skipped     []string
}

// FilesTotal returns scored plus skipped files.
func (r *Report) FilesTotal() int {
	return r.FilesScored + len(r.Skipped)
}

// Row returns the row for class.
func (r *Report) Row(class string) (Row, bool) {
	if class == MacroClass {
		return r.Macro, true
	}
	for _, row := range r.Rows {
		if row.Class == class {
			return row, true
		}
	}
	return Row{}, false
}

func newRow(class string, t Totals) Row {
	p, rc, f := Rates(t.Components)
	return Row{
		Class:        class,
		Precision:    p,
		Recall:       rc,
		F1:           f,
		Reference:    t.Reference,
		Hypothesis:   t.Hypothesis,
		TruePositive: t.TruePositive,
		Files:        t.Files,
	}
}

// Rates returns detection precision, recall and F1 for c. Precision is 1
// when there is no hypothesis, recall is 1 when there is no reference and
// F1 is 0 when both rates are 0.
func Rates(c Components) (precision, recall, f1 float64) {
	precision = 1
	if c.Hypothesis > 0 {
		precision = c.TruePositive / c.Hypothesis
	}
	recall = 1
	if c.Reference > 0 {
		recall = c.TruePositive / c.Reference
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return precision, recall, f1
}

// macro averages rows with positive reference duration. Classes never seen
// in the reference are left out rather than scored as 0 or 1.
func macro(rows []Row) (Row, int) {
	m := Row{Class: MacroClass}
	var n int
	for _, row := range rows {
		m.Reference += row.Reference
		m.Hypothesis += row.Hypothesis
		m.TruePositive += row.TruePositive
		if row.Reference <= 0 {
			continue
		}
		m.Precision += row.Precision
		m.Recall += row.Recall
		m.F1 += row.F1
		n++
	}
	if n > 0 {
		m.Precision /= float64(n)
		m.Recall /= float64(n)
		m.F1 /= float64(n)
	}
	return m, n
}
