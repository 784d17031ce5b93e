package lint

import (
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/jshint-go/jshint/pkg/config"
	"github.com/jshint-go/jshint/pkg/engine"
	"github.com/jshint-go/jshint/pkg/policy"
	"github.com/jshint-go/jshint/pkg/stores"
	"github.com/jshint-go/jshint/pkg/telemetry"
	"github.com/rs/zerolog"
)

// Options select what is linted and with which configuration.
type Options struct {
	// Paths are include patterns. Nil falls back to the configuration's
	// paths key; an empty non-nil slice selects nothing.
	Paths []string `validate:"omitempty,dive,required"`

	// ExcludePaths are exclude patterns, with the same fallback as Paths.
	ExcludePaths []string `validate:"omitempty,dive,required"`

	// ConfigPath is the user configuration. A missing or unreadable path,
	// a directory included, counts as empty.
	ConfigPath string

	// DefaultConfigPath replaces the built-in defaults when set. It must
	// exist and parse.
	DefaultConfigPath string `validate:"omitempty,filepath"`

	// PolicyDirs are extra .rego/.json policy files or directories.
	PolicyDirs []string `validate:"omitempty,dive,required"`

	// DisablePolicies skips policy evaluation.
	DisablePolicies bool

	// EnabledPolicies turns on policies that are loaded disabled.
	EnabledPolicies []string `validate:"omitempty,dive,required"`

	// DisabledPolicies turns off individual policies by name.
	DisabledPolicies []string `validate:"omitempty,dive,required"`
}

var optionsValidator = validator.New()

// Validate checks the options' structure.
func (o Options) Validate() error {
	if err := optionsValidator.Struct(o); err != nil {
		return fmt.Errorf("invalid lint options: %w", err)
	}
	return nil
}

// Option configures a Linter.
type Option func(*Linter)

// WithRuntime sets how the runtime and engine are launched.
func WithRuntime(rt engine.Runtime) Option {
	return func(l *Linter) {
		l.runtime = rt
		l.runtimeSet = true
	}
}

// WithPrecondition shares a runtime check between linters, so a verified
// runtime is not probed again.
func WithPrecondition(p *engine.Precondition) Option {
	return func(l *Linter) {
		l.precond = p
	}
}

// WithInvokerOptions passes options to the engine invoker.
func WithInvokerOptions(opts ...engine.InvokerOption) Option {
	return func(l *Linter) {
		l.invokerOpts = append(l.invokerOpts, opts...)
	}
}

// WithPolicyEngine uses an existing policy engine instead of building one.
func WithPolicyEngine(e *policy.Engine) Option {
	return func(l *Linter) {
		l.policies = e
	}
}

// WithSchemaRegistry checks the resolved configuration against the options
// schema and logs violations as warnings.
func WithSchemaRegistry(sr *config.SchemaRegistry) Option {
	return func(l *Linter) {
		l.schemas = sr
	}
}

// WithHistory records every run in store.
func WithHistory(store stores.Store) Option {
	return func(l *Linter) {
		l.history = store
	}
}

// WithTelemetry sets the logger, tracer and metrics.
func WithTelemetry(tel *telemetry.Telemetry) Option {
	return func(l *Linter) {
		l.tel = tel
	}
}

// WithLogger overrides the telemetry logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Linter) {
		l.logger = telemetry.WrapLogger(logger)
	}
}

// WithBanner sets where the "Running JSHint..." banner goes. Nil silences it.
func WithBanner(w io.Writer) Option {
	return func(l *Linter) {
		if w == nil {
			w = io.Discard
		}
		l.banner = w
	}
}
