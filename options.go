package vtc

import (
	"log/slog"
	"runtime"

	"github.com/jamesainslie/go-vtc/annotation"
)

// Option configures an Evaluator.
type Option func(*config)

type config struct {
	workers  int
	logger   *slog.Logger
	stages   []Stage
	progress func(uri string)
}

func defaultConfig() config {
	return config{
		workers: runtime.NumCPU(),
		logger:  slog.Default(),
	}
}

// WithWorkers sets how many files are scored concurrently (default: runtime.NumCPU()).
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStages adds reference preprocessing stages, run in order before meta
// label derivation.
func WithStages(stages ...Stage) Option {
	return func(c *config) {
		c.stages = append(c.stages, stages...)
	}
}

// WithMapping relabels references through m before derivation. Labels
// missing from m are kept.
func WithMapping(m annotation.Mapping) Option {
	return WithStages(Relabel(m, true))
}

// WithProgress registers a callback run once per scored file. It is called
// from worker goroutines and must be safe for concurrent use.
func WithProgress(fn func(uri string)) Option {
	return func(c *config) {
		c.progress = fn
	}
}
