package vtc

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/jamesainslie/go-vtc/annotation"
	"github.com/jamesainslie/go-vtc/fmeasure"
	"github.com/jamesainslie/go-vtc/taxonomy"
	"github.com/jamesainslie/go-vtc/timeline"
)

// File is one reference file of a corpus.
type File struct {
	URI       string
	Reference *annotation.Annotation

	// Annotated is the time that was actually annotated. Nothing outside it
	// is scored.
	Annotated timeline.Timeline
}

// Evaluator scores hypothesis annotations against a corpus for the classes
// of one profile.
type Evaluator struct {
	profile  *taxonomy.Profile
	classes  []string
	pipeline Stage
	workers  int
	logger   *slog.Logger
	progress func(string)
}

// New creates an Evaluator for profile. The profile is validated here so a
// misconfigured taxonomy fails before any file is read.
func New(profile *taxonomy.Profile, opts ...Option) (*Evaluator, error) {
	if profile == nil {
		return nil, ErrNilProfile
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	deriver, err := taxonomy.NewDeriver(profile)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", profile.Name, err)
	}

	stages := append(cfg.stages, Derive(deriver))

	return &Evaluator{
		profile:  profile,
		classes:  profile.EvaluatedClasses(),
		pipeline: Chain(stages...),
		workers:  cfg.workers,
		logger:   cfg.logger,
		progress: cfg.progress,
	}, nil
}

// Classes returns the scored classes in report order.
func (e *Evaluator) Classes() []string {
	return append([]string(nil), e.classes...)
}

// Preprocess runs the reference stages on a: configured stages first, then
// meta label derivation.
func (e *Evaluator) Preprocess(a *annotation.Annotation) (*annotation.Annotation, error) {
	return e.pipeline(a)
}

// ScoreFile preprocesses the reference of f and scores hyp against it.
func (e *Evaluator) ScoreFile(f File, hyp *annotation.Annotation) (fmeasure.FileResult, error) {
	ref, err := e.Preprocess(f.Reference)
	if err != nil {
		return fmeasure.FileResult{}, fmt.Errorf("preprocess %s: %w", f.URI, err)
	}
	return fmeasure.Score(f.URI, ref, hyp, f.Annotated, e.classes), nil
}

// Evaluate scores every file that has a hypothesis and returns the corpus
// report. Files without a hypothesis, and files whose preprocessing fails,
// are logged and counted as skipped. Files are scored concurrently; their
// results are summed in file order once every worker has finished.
func (e *Evaluator) Evaluate(ctx context.Context, files []File, hyps map[string]*annotation.Annotation) (*fmeasure.Report, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	results := make([]*fmeasure.FileResult, len(files))

	known := make(map[string]bool, len(files))
	for _, f := range files {
		known[f.URI] = true
	}
	for uri := range hyps {
		if !known[uri] {
			e.logger.Debug("hypothesis without reference, ignoring", "uri", uri)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, f := range files {
		hyp, ok := hyps[f.URI]
		if !ok {
			e.logger.Warn("missing hypothesis, skipping file", "uri", f.URI)
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.ScoreFile(f, hyp)
			if err != nil {
				e.logger.Warn("skipping file", "uri", f.URI, "err", err)
				return nil
			}
			results[i] = &res
			if e.progress != nil {
				e.progress(f.URI)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	acc := fmeasure.NewAccumulator(e.classes)
	for i, res := range results {
		var err error
		if res == nil {
			err = acc.Skip(files[i].URI)
		} else {
			err = acc.Add(*res)
		}
		if err != nil {
			return nil, err
		}
	}

	report := acc.Report()
	e.logger.Info("evaluation complete",
		"profile", e.profile.Name,
		"scored", report.FilesScored,
		"total", report.FilesTotal(),
		"macro_f1", report.Macro.F1,
	)
	return report, nil
}
