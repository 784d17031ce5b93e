package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jshint-go/jshint/pkg/engine"
	"github.com/rs/zerolog"
)

// Keys with special handling. The path keys belong to file selection and
// are stripped before the configuration reaches the engine.
const (
	PathsKey        = "paths"
	ExcludePathsKey = "exclude_paths"
	PredefKey       = "predef"
)

// DefaultUserConfigPath is used when no user configuration path is given.
const DefaultUserConfigPath = "config/jshint.yml"

//go:embed defaults/jshint.yml
var defaultConfig []byte

// Source identifies where a layer came from.
type Source string

const (
	SourceBuiltin Source = "builtin"
	SourceDefault Source = "default"
	SourceUser    Source = "user"
)

// Layer is one configuration document.
type Layer struct {
	// Name identifies the layer ("default" or "user").
	Name string

	// Source indicates where the layer was loaded from.
	Source Source

	// Path is the file path, empty for the built-in default.
	Path string

	// Data holds the layer's values in document order.
	Data *Mapping
}

// Resolution is the outcome of resolving the configuration layers.
type Resolution struct {
	// Config is the merged, normalized mapping with path keys stripped.
	Config *Mapping

	// Paths and ExcludePaths are the values of the stripped path keys,
	// null when absent.
	Paths        Value
	ExcludePaths Value

	// Layers lists the layers in merge order.
	Layers []*Layer
}

// Store loads and merges configuration layers.
type Store struct {
	logger   zerolog.Logger
	starlark *StarlarkEvaluator
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the store's logger.
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithStarlarkTimeout bounds evaluation of Starlark user configs.
func WithStarlarkTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		s.starlark = NewStarlarkEvaluator(d)
	}
}

// NewStore creates a configuration store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		logger:   zerolog.Nop(),
		starlark: NewStarlarkEvaluator(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "config").Logger()
	return s
}

// Resolve merges the default layer at defaultPath (the built-in defaults
// when empty) with the user layer at userPath. The default layer must load;
// a missing or unreadable user layer counts as empty.
func (s *Store) Resolve(ctx context.Context, defaultPath, userPath string) (*Resolution, error) {
	def, err := s.loadDefault(defaultPath)
	if err != nil {
		return nil, err
	}

	user, err := s.loadUser(ctx, userPath, def.Data)
	if err != nil {
		return nil, err
	}

	merged := Merge(def.Data, user.Data)

	if err := NormalizePredef(merged); err != nil {
		return nil, err
	}

	res := &Resolution{
		Paths:        takeKey(merged, PathsKey),
		ExcludePaths: takeKey(merged, ExcludePathsKey),
		Config:       merged,
		Layers:       []*Layer{def, user},
	}

	s.logger.Debug().
		Int("default_keys", def.Data.Len()).
		Int("user_keys", user.Data.Len()).
		Int("resolved_keys", merged.Len()).
		Msg("Configuration resolved")

	return res, nil
}

func (s *Store) loadDefault(path string) (*Layer, error) {
	if path == "" {
		data, err := ParseDocument(defaultConfig)
		if err != nil {
			return nil, engine.NewConfigLoadError("built-in default config is invalid", err)
		}
		return &Layer{Name: "default", Source: SourceBuiltin, Data: data}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, engine.NewConfigLoadError(fmt.Sprintf("cannot read default config %s", path), err)
	}
	data, err := ParseDocument(raw)
	if err != nil {
		return nil, engine.NewConfigLoadError(fmt.Sprintf("cannot parse default config %s", path), err)
	}
	return &Layer{Name: "default", Source: SourceDefault, Path: path, Data: data}, nil
}

func (s *Store) loadUser(ctx context.Context, path string, defaults *Mapping) (*Layer, error) {
	layer := &Layer{Name: "user", Source: SourceUser, Path: path, Data: NewMapping()}
	if path == "" {
		return layer, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		s.logger.Debug().Err(err).Str("path", path).Msg("User config not readable, using defaults only")
		return layer, nil
	}

	var data *Mapping
	if isStarlark(path) {
		data, err = s.starlark.Evaluate(ctx, path, string(raw), defaults)
	} else {
		data, err = ParseDocument(raw)
	}
	if err != nil {
		return nil, fmt.Errorf("user config %s: %w", path, err)
	}

	layer.Data = data
	return layer, nil
}

// NormalizePredef collapses a sequence-valued predef into one comma-joined
// string. Names containing commas are not escaped.
func NormalizePredef(m *Mapping) error {
	v, ok := m.Get(PredefKey)
	if !ok || v.Kind() != KindSequence {
		return nil
	}

	var names []string
	if err := flattenNames(PredefKey, v, &names); err != nil {
		return err
	}
	m.Set(PredefKey, String(strings.Join(names, ",")))
	return nil
}

func flattenNames(key string, v Value, out *[]string) error {
	switch v.Kind() {
	case KindSequence:
		for _, item := range v.Items() {
			if err := flattenNames(key, item, out); err != nil {
				return err
			}
		}
	case KindMapping:
		return engine.NewUnsupportedValueKindError(key, "mapping inside predef list")
	case KindNull:
		*out = append(*out, "")
	case KindString:
		*out = append(*out, v.s)
	default:
		*out = append(*out, Encode(v))
	}
	return nil
}

func takeKey(m *Mapping, key string) Value {
	v, ok := m.Get(key)
	if !ok {
		return Null()
	}
	m.Delete(key)
	return v
}
