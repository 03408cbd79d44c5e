// Package corpus resolves named evaluation protocols to reference files.
package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	vtc "github.com/jamesainslie/go-vtc"
	"github.com/jamesainslie/go-vtc/annotation"
	"github.com/jamesainslie/go-vtc/rttm"
	"github.com/jamesainslie/go-vtc/timeline"
)

var (
	// ErrUnknownProtocol indicates a protocol missing from the database.
	ErrUnknownProtocol = errors.New("corpus: unknown protocol")

	// ErrUnknownSubset indicates a subset missing from a protocol.
	ErrUnknownSubset = errors.New("corpus: unknown subset")
)

// uriPlaceholder is replaced by each file identifier in per-file paths.
const uriPlaceholder = "{uri}"

// Subset locates the files of one protocol subset. Paths are relative to
// the database file unless absolute.
type Subset struct {
	URI        string `yaml:"uri"`        // list of file identifiers, one per line
	Annotation string `yaml:"annotation"` // RTTM file, directory, glob, or path with {uri}
	Annotated  string `yaml:"annotated"`  // optional UEM file or path with {uri}
}

// Protocol maps subset names (train, development, test) to their files.
type Protocol map[string]Subset

// Database is a set of named protocols.
type Database struct {
	Protocols map[string]Protocol `yaml:"protocols"`

	dir string
}

// LoadDatabase reads a protocol database from a YAML file.
func LoadDatabase(path string) (*Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read database: %w", err)
	}

	var db Database
	if err := yaml.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("parse database %s: %w", path, err)
	}
	db.dir = filepath.Dir(path)
	return &db, nil
}

// Names returns the protocol names in sorted order.
func (d *Database) Names() []string {
	names := make([]string, 0, len(d.Protocols))
	for name := range d.Protocols {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Subset returns the subset of a protocol with paths resolved.
func (d *Database) Subset(protocol, subset string) (Subset, error) {
	p, ok := d.Protocols[protocol]
	if !ok {
		return Subset{}, fmt.Errorf("%w: %q", ErrUnknownProtocol, protocol)
	}
	s, ok := p[subset]
	if !ok {
		return Subset{}, fmt.Errorf("%w: %q in protocol %q", ErrUnknownSubset, subset, protocol)
	}
	if s.URI == "" || s.Annotation == "" {
		return Subset{}, fmt.Errorf("protocol %q subset %q: uri and annotation are required", protocol, subset)
	}
	return Subset{
		URI:        d.resolve(s.URI),
		Annotation: d.resolve(s.Annotation),
		Annotated:  d.resolve(s.Annotated),
	}, nil
}

func (d *Database) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(d.dir, path)
}

// Load returns the reference files of a protocol subset in list order.
// Files whose reference cannot be read are logged and left out. Files
// without an annotated extent are evaluated over their reference extent.
func (d *Database) Load(protocol, subset string, logger *slog.Logger) ([]vtc.File, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s, err := d.Subset(protocol, subset)
	if err != nil {
		return nil, err
	}

	uris, err := ReadURIs(s.URI)
	if err != nil {
		return nil, err
	}

	refs, err := loadReferences(s.Annotation, uris, logger)
	if err != nil {
		return nil, err
	}
	extents, err := loadExtents(s.Annotated, uris, logger)
	if err != nil {
		return nil, err
	}

	files := make([]vtc.File, 0, len(uris))
	for _, uri := range uris {
		ref, ok := refs[uri]
		if !ok {
			continue
		}
		extent, ok := extents[uri]
		if !ok {
			logger.Debug("no annotated extent, using reference extent", "uri", uri)
			extent = timeline.New(ref.Extent())
		}
		files = append(files, vtc.File{URI: uri, Reference: ref, Annotated: extent})
	}

	logger.Info("loaded protocol", "protocol", protocol, "subset", subset, "files", len(files), "listed", len(uris))
	return files, nil
}

// ReadURIs reads one file identifier per line, ignoring blank lines and
// lines starting with #.
func ReadURIs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open uri list: %w", err)
	}
	defer func() { _ = f.Close() }()

	var uris []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		uris = append(uris, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan uri list: %w", err)
	}
	return uris, nil
}

// loadReferences reads reference annotations for uris. With a {uri} path
// each file is read on its own and a failure only drops that file. With a
// shared file, directory or glob, listed files that have no record get an
// empty reference.
func loadReferences(path string, uris []string, logger *slog.Logger) (map[string]*annotation.Annotation, error) {
	refs := make(map[string]*annotation.Annotation, len(uris))

	if strings.Contains(path, uriPlaceholder) {
		for _, uri := range uris {
			p := strings.ReplaceAll(path, uriPlaceholder, uri)
			anns, warnings, err := rttm.LoadFile(p)
			logWarnings(logger, warnings)
			if err != nil {
				logger.Warn("skipping file, reference unreadable", "uri", uri, "path", p, "err", err)
				continue
			}
			ref, ok := anns[uri]
			if !ok {
				ref = annotation.New(uri)
			}
			refs[uri] = ref
		}
		return refs, nil
	}

	paths, err := expand(path, ".rttm")
	if err != nil {
		return nil, err
	}
	anns, warnings, err := rttm.LoadFiles(paths...)
	logWarnings(logger, warnings)
	if err != nil {
		return nil, fmt.Errorf("load references: %w", err)
	}
	for _, uri := range uris {
		ref, ok := anns[uri]
		if !ok {
			logger.Debug("no reference records, file is silent", "uri", uri)
			ref = annotation.New(uri)
		}
		refs[uri] = ref
	}
	return refs, nil
}

func loadExtents(path string, uris []string, logger *slog.Logger) (map[string]timeline.Timeline, error) {
	extents := make(map[string]timeline.Timeline)
	if path == "" {
		return extents, nil
	}

	if strings.Contains(path, uriPlaceholder) {
		for _, uri := range uris {
			p := strings.ReplaceAll(path, uriPlaceholder, uri)
			m, warnings, err := rttm.LoadUEM(p)
			logWarnings(logger, warnings)
			if err != nil {
				logger.Warn("annotated extent unreadable", "uri", uri, "path", p, "err", err)
				continue
			}
			if tl, ok := m[uri]; ok {
				extents[uri] = tl
			}
		}
		return extents, nil
	}

	paths, err := expand(path, ".uem")
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		m, warnings, err := rttm.LoadUEM(p)
		logWarnings(logger, warnings)
		if err != nil {
			return nil, fmt.Errorf("load annotated: %w", err)
		}
		for uri, tl := range m {
			extents[uri] = extents[uri].Union(tl)
		}
	}
	return extents, nil
}

// expand turns a file, directory or glob into a sorted list of files. A
// directory yields its files with the given extension.
func expand(path, ext string) ([]string, error) {
	if strings.ContainsAny(path, "*?[") {
		paths, err := filepath.Glob(path)
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", path, err)
		}
		slices.Sort(paths)
		return paths, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ext {
			continue
		}
		paths = append(paths, filepath.Join(path, entry.Name()))
	}
	return paths, nil
}

func logWarnings(logger *slog.Logger, warnings []error) {
	for _, w := range warnings {
		logger.Warn("dropping malformed record", "err", w)
	}
}
