// Package taxonomy describes the classes a detector is scored on: base
// classes plus meta labels derived as unions or intersections of them.
package taxonomy

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/samber/lo"
)

// Sentinel errors for profile configuration problems. All of them are fatal:
// they are reported before any file is scored.
var (
	// ErrUnknownClass indicates a meta label built from an undeclared class.
	ErrUnknownClass = errors.New("taxonomy: unknown class")

	// ErrDuplicateClass indicates a label declared more than once.
	ErrDuplicateClass = errors.New("taxonomy: duplicate class")

	// ErrEmptyProfile indicates a profile without base classes.
	ErrEmptyProfile = errors.New("taxonomy: profile has no classes")

	// ErrUnknownProfile indicates a profile name that is not registered.
	ErrUnknownProfile = errors.New("taxonomy: unknown profile")
)

// Profile is a named class taxonomy.
type Profile struct {
	Name    string   `yaml:"-"`
	Classes []string `yaml:"classes"`

	// Unions hold when any of their classes is active.
	Unions map[string][]string `yaml:"unions"`

	// Intersections hold when all of their classes are active.
	Intersections map[string][]string `yaml:"intersections"`

	// ScoreIntersections adds intersection labels to the scored classes.
	ScoreIntersections bool `yaml:"score_intersections"`
}

// Babytrain is the four speaker-role profile with a SPEECH union.
func Babytrain() *Profile {
	return &Profile{
		Name:    "babytrain",
		Classes: []string{"MAL", "FEM", "CHI", "KCHI"},
		Unions: map[string][]string{
			"SPEECH": {"MAL", "FEM", "CHI", "KCHI"},
		},
		Intersections: map[string][]string{},
	}
}

// Builtin returns the profiles shipped with the module, keyed by name.
func Builtin() map[string]*Profile {
	return map[string]*Profile{
		"babytrain": Babytrain(),
	}
}

// Validate checks that every meta label refers to declared base classes and
// that no label is declared twice.
func (p *Profile) Validate() error {
	if len(p.Classes) == 0 {
		return fmt.Errorf("%w: %q", ErrEmptyProfile, p.Name)
	}

	if dup := lo.FindDuplicates(p.Classes); len(dup) > 0 {
		return fmt.Errorf("%w: %v in profile %q", ErrDuplicateClass, dup, p.Name)
	}

	seen := lo.SliceToMap(p.Classes, func(c string) (string, bool) { return c, true })

	var errs []error
	check := func(kind string, defs map[string][]string) {
		for _, name := range sortedKeys(defs) {
			if seen[name] {
				errs = append(errs, fmt.Errorf("%w: %s label %q in profile %q", ErrDuplicateClass, kind, name, p.Name))
			}
			seen[name] = true

			if len(defs[name]) == 0 {
				errs = append(errs, fmt.Errorf("%w: %s label %q has no classes", ErrUnknownClass, kind, name))
			}
			for _, c := range defs[name] {
				if !slices.Contains(p.Classes, c) {
					errs = append(errs, fmt.Errorf("%w: %q in %s label %q of profile %q", ErrUnknownClass, c, kind, name, p.Name))
				}
			}
		}
	}
	check("union", p.Unions)
	check("intersection", p.Intersections)

	return errors.Join(errs...)
}

// UnionLabels returns the union label names in sorted order.
func (p *Profile) UnionLabels() []string {
	return sortedKeys(p.Unions)
}

// IntersectionLabels returns the intersection label names in sorted order.
func (p *Profile) IntersectionLabels() []string {
	return sortedKeys(p.Intersections)
}

// AllLabels returns base classes followed by union then intersection labels.
func (p *Profile) AllLabels() []string {
	labels := slices.Clone(p.Classes)
	labels = append(labels, p.UnionLabels()...)
	return append(labels, p.IntersectionLabels()...)
}

// EvaluatedClasses returns the labels that are scored: base classes and union
// labels, plus intersection labels when ScoreIntersections is set.
func (p *Profile) EvaluatedClasses() []string {
	labels := slices.Clone(p.Classes)
	labels = append(labels, p.UnionLabels()...)
	if p.ScoreIntersections {
		labels = append(labels, p.IntersectionLabels()...)
	}
	return labels
}

func sortedKeys(m map[string][]string) []string {
	return slices.Sorted(maps.Keys(m))
}
