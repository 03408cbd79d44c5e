package taxonomy

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/go-vtc/annotation"
)

type profileFile struct {
	Profiles map[string]*Profile `yaml:"profiles"`
}

// ParseProfiles decodes a YAML document with a top-level "profiles" map.
// Profiles are validated as they are decoded.
func ParseProfiles(r io.Reader) (map[string]*Profile, error) {
	var f profileFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}

	out := make(map[string]*Profile, len(f.Profiles))
	for name, p := range f.Profiles {
		if p == nil {
			return nil, fmt.Errorf("%w: %q", ErrEmptyProfile, name)
		}
		p.Name = name
		if err := p.Validate(); err != nil {
			return nil, err
		}
		out[name] = p
	}
	return out, nil
}

// LoadProfiles reads profiles from a YAML file.
func LoadProfiles(path string) (map[string]*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseProfiles(f)
}

// Lookup resolves name among the builtin profiles and extra, with extra
// taking precedence. The returned profile is validated.
func Lookup(name string, extra map[string]*Profile) (*Profile, error) {
	p, ok := extra[name]
	if !ok {
		p, ok = Builtin()[name]
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

type mappingFile struct {
	Mapping map[string]*string `yaml:"mapping"`
}

// ParseMapping decodes a YAML document with a top-level "mapping" table of
// source label to target label. A null target deletes the source label.
func ParseMapping(r io.Reader) (annotation.Mapping, error) {
	var f mappingFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode mapping: %w", err)
	}

	m := make(annotation.Mapping, len(f.Mapping))
	for from, to := range f.Mapping {
		if to == nil {
			m[from] = ""
			continue
		}
		m[from] = *to
	}
	return m, nil
}

// LoadMapping reads a label mapping from a YAML file.
func LoadMapping(path string) (annotation.Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mapping: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseMapping(f)
}
