package vtc

import (
	"fmt"

	"github.com/jamesainslie/go-vtc/annotation"
	"github.com/jamesainslie/go-vtc/taxonomy"
)

// Stage is a pure reference transform. Stages must not modify their input.
type Stage func(*annotation.Annotation) (*annotation.Annotation, error)

// Relabel returns a stage rewriting labels through m.
func Relabel(m annotation.Mapping, keepMissing bool) Stage {
	return func(a *annotation.Annotation) (*annotation.Annotation, error) {
		return a.Relabel(m, keepMissing), nil
	}
}

// Derive returns a stage adding the meta labels of d's profile.
func Derive(d *taxonomy.Deriver) Stage {
	return func(a *annotation.Annotation) (*annotation.Annotation, error) {
		return d.Derive(a), nil
	}
}

// Chain runs stages in order, feeding each one the previous output.
func Chain(stages ...Stage) Stage {
	return func(a *annotation.Annotation) (*annotation.Annotation, error) {
		for i, s := range stages {
			out, err := s(a)
			if err != nil {
				return nil, fmt.Errorf("stage %d: %w", i, err)
			}
			a = out
		}
		return a, nil
	}
}
