package main

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"

	vtc "github.com/jamesainslie/go-vtc"
	"github.com/jamesainslie/go-vtc/annotation"
	"github.com/jamesainslie/go-vtc/rttm"
	"github.com/jamesainslie/go-vtc/taxonomy"
)

// Set by -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type options struct {
	classes string
	mapping string
	output  string
	raw     bool
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "vtc-inspect FILE.rttm",
		Short: "Print per-label durations of an RTTM file after preprocessing",
		Long: `vtc-inspect loads an RTTM file, applies the label mapping and the meta
label derivation of a class profile, and prints the speech duration of every
label per file. With --rttm the preprocessed annotations are written back out.`,
		Version:      fmt.Sprintf("%s (%s, %s)", version, commit, date),
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return run(stdout, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.classes, "classes", "babytrain", "Class profile name")
	f.StringVar(&opts.mapping, "mapping", "", "YAML label mapping")
	f.StringVar(&opts.output, "rttm", "", "Write the preprocessed annotations to this RTTM file")
	f.BoolVar(&opts.raw, "raw", false, "Skip mapping and derivation")

	return cmd
}

func run(stdout io.Writer, path string, opts options) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	anns, warnings, err := rttm.LoadFile(path)
	for _, w := range warnings {
		logger.Warn("dropping malformed record", "err", w)
	}
	if err != nil {
		return err
	}

	var evalOpts []vtc.Option
	if opts.mapping != "" {
		m, err := taxonomy.LoadMapping(opts.mapping)
		if err != nil {
			return err
		}
		evalOpts = append(evalOpts, vtc.WithMapping(m))
	}
	profile, err := taxonomy.Lookup(opts.classes, nil)
	if err != nil {
		return err
	}
	ev, err := vtc.New(profile, evalOpts...)
	if err != nil {
		return err
	}

	uris := slices.Sorted(maps.Keys(anns))
	out := make([]*annotation.Annotation, 0, len(uris))
	for _, uri := range uris {
		a := anns[uri]
		if !opts.raw {
			if a, err = ev.Preprocess(a); err != nil {
				return fmt.Errorf("%s: %w", uri, err)
			}
		}
		out = append(out, a)
		printDurations(stdout, a)
	}

	if opts.output != "" {
		return writeRTTM(opts.output, out)
	}
	return nil
}

func printDurations(w io.Writer, a *annotation.Annotation) {
	fmt.Fprintf(w, "%s (extent %s)\n", a.URI(), a.Extent())
	for _, label := range a.Labels() {
		fmt.Fprintf(w, "  %-10s %10.3f\n", label, a.Duration(label))
	}
	fmt.Fprintf(w, "  %-10s %10.3f\n", "(any)", a.Support().Duration())
}

func writeRTTM(path string, anns []*annotation.Annotation) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create rttm: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for _, a := range anns {
		if err := rttm.Write(f, a); err != nil {
			return err
		}
	}
	return nil
}
