//go:build ignore

// Write a UEM file covering the reference extent of every file in an RTTM
// file or directory. Useful for protocols that ship without annotated
// regions, so every run scores the same time span.
// Usage: go run scripts/make-uem.go -rttm data/test.rttm -out data/test.uem
package main

import (
	"flag"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/jamesainslie/go-vtc/annotation"
	"github.com/jamesainslie/go-vtc/rttm"
	"github.com/jamesainslie/go-vtc/timeline"
)

func main() {
	in := flag.String("rttm", "", "Reference RTTM file or directory (required)")
	out := flag.String("out", "", "Output UEM file (required)")
	flag.Parse()

	if *in == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "Usage: make-uem -rttm REF -out OUT.uem")
		flag.PrintDefaults()
		os.Exit(1)
	}

	anns, err := load(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", *in, err)
		os.Exit(1)
	}

	extents := make(map[string]timeline.Timeline, len(anns))
	for uri, a := range anns {
		extents[uri] = timeline.New(a.Extent())
	}
	uris := slices.Sorted(maps.Keys(extents))

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", *out, err)
		os.Exit(1)
	}
	if err := rttm.WriteUEM(f, uris, extents); err != nil {
		_ = f.Close()
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *out, err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing %s: %v\n", *out, err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d files to %s\n", len(uris), *out)
}

func load(path string) (map[string]*annotation.Annotation, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var (
		anns     map[string]*annotation.Annotation
		warnings []error
	)
	if info.IsDir() {
		anns, warnings, err = rttm.LoadDir(path)
	} else {
		anns, warnings, err = rttm.LoadFile(path)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", w)
	}
	return anns, err
}
