// Package vtc evaluates voice type classifiers and speech activity detectors
// against reference annotations with a macro-averaged detection F-measure.
//
// # Quick Start
//
//	refs, _, err := rttm.LoadFile("reference.rttm")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	hyps, _, err := rttm.LoadDir("inference/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ev, err := vtc.New(taxonomy.Babytrain())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	var files []vtc.File
//	for uri, ref := range refs {
//	    files = append(files, vtc.File{
//	        URI:       uri,
//	        Reference: ref,
//	        Annotated: timeline.New(ref.Extent()),
//	    })
//	}
//	report, err := ev.Evaluate(ctx, files, hyps)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("macro F1: %.2f\n", report.Macro.F1)
//
// # Pipeline
//
// References go through an ordered list of stages (label mapping, then meta
// label derivation) before scoring. Hypotheses are scored as they are.
// Both are cropped to the annotated time of each file.
//
// # Thread Safety
//
// Evaluate scores files concurrently, bounded by WithWorkers, and sums the
// per-file results on the calling goroutine once all workers are done.
// An Evaluator may be reused across calls.
package vtc
