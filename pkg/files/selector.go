package files

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/jshint-go/jshint/pkg/config"
	"github.com/jshint-go/jshint/pkg/engine"
	"github.com/rs/zerolog"
)

// Selector expands glob patterns against the filesystem.
type Selector struct {
	logger zerolog.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithLogger sets the selector's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Selector) {
		s.logger = logger
	}
}

// NewSelector creates a selector.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "files").Logger()
	return s
}

// PatternsFrom returns the patterns for one side of the selection. Explicit
// patterns win when non-nil, even if empty. Otherwise the configuration
// value under key is used: a string is one pattern, a sequence of strings is
// several, and null means none.
func PatternsFrom(key string, explicit []string, cfg config.Value) ([]string, error) {
	if explicit != nil {
		return explicit, nil
	}

	switch cfg.Kind() {
	case config.KindNull:
		return nil, nil
	case config.KindString:
		s, _ := cfg.Str()
		return []string{s}, nil
	case config.KindSequence:
		items := cfg.Items()
		patterns := make([]string, 0, len(items))
		for i, item := range items {
			s, ok := item.Str()
			if !ok {
				return nil, engine.NewUnsupportedValueKindError(fmt.Sprintf("%s[%d]", key, i), item.Kind().String())
			}
			patterns = append(patterns, s)
		}
		return patterns, nil
	default:
		return nil, engine.NewUnsupportedValueKindError(key, cfg.Kind().String())
	}
}

// Select returns the files matched by include minus those matched by
// exclude, in include order. A pattern matching nothing is not an error.
func (s *Selector) Select(include, exclude []string) ([]string, error) {
	included, err := s.expand(include)
	if err != nil {
		return nil, err
	}
	excluded, err := s.expand(exclude)
	if err != nil {
		return nil, err
	}

	skip := make(map[string]bool, len(excluded))
	for _, e := range excluded {
		skip[e.canonical] = true
	}

	selected := make([]string, 0, len(included))
	for _, f := range included {
		if skip[f.canonical] {
			continue
		}
		if !isCheckable(f.path) {
			s.logger.Debug().Str("path", f.path).Msg("Skipping empty or non-regular file")
			continue
		}
		selected = append(selected, f.path)
	}

	s.logger.Debug().
		Int("included", len(included)).
		Int("excluded", len(excluded)).
		Int("selected", len(selected)).
		Msg("Files selected")

	return selected, nil
}

type match struct {
	path      string
	canonical string
}

// expand globs every pattern and removes duplicate files, keeping the first
// occurrence.
func (s *Selector) expand(patterns []string) ([]match, error) {
	var out []match
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		hits, err := doublestar.FilepathGlob(filepath.FromSlash(pattern))
		if err != nil {
			return nil, fmt.Errorf("expand pattern %q: %w", pattern, err)
		}
		s.logger.Trace().Str("pattern", pattern).Int("matches", len(hits)).Msg("Pattern expanded")

		for _, hit := range hits {
			c := canonicalPath(hit)
			if seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, match{path: hit, canonical: c})
		}
	}
	return out, nil
}

// canonicalPath resolves path to an absolute, symlink-free form so that the
// same file reached two ways compares equal.
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

func isCheckable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}
