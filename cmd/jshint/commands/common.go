package commands

import (
	"context"
	"time"

	"github.com/jshint-go/jshint/pkg/config"
	"github.com/jshint-go/jshint/pkg/engine"
	"github.com/jshint-go/jshint/pkg/lint"
	"github.com/jshint-go/jshint/pkg/stores"
	"github.com/jshint-go/jshint/pkg/telemetry"
	"github.com/spf13/cobra"
)

// selectionFlags are the file selection flags shared by lint and files.
type selectionFlags struct {
	paths        []string
	excludePaths []string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.paths, "paths", nil, "include glob patterns (default: the paths configuration key)")
	cmd.Flags().StringSliceVar(&f.excludePaths, "exclude-paths", nil, "exclude glob patterns (default: the exclude_paths configuration key)")
}

// options builds lint options. Positional arguments add include patterns.
// A flag that was not given stays nil so the configuration supplies it.
func (f *selectionFlags) options(cmd *cobra.Command, args []string) lint.Options {
	opts := lint.Options{
		ConfigPath:        configPath,
		DefaultConfigPath: defaultConfigPath,
	}

	if cmd.Flags().Changed("paths") || len(args) > 0 {
		opts.Paths = append(append([]string{}, f.paths...), args...)
	}
	if cmd.Flags().Changed("exclude-paths") {
		opts.ExcludePaths = append([]string{}, f.excludePaths...)
	}
	return opts
}

func runtimeFromFlags(timeout time.Duration) engine.Runtime {
	dir := vendorDir
	if dir == "" {
		dir = engine.DefaultVendorDir()
	}
	rt := engine.DefaultRuntime(dir)
	rt.Timeout = timeout
	return rt
}

// policyFlags are the policy flags shared by lint and validate.
type policyFlags struct {
	dirs    []string
	enable  []string
	disable []string
}

func (f *policyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.dirs, "policy-dir", nil, "additional .rego or .json policy files or directories")
	cmd.Flags().StringSliceVar(&f.enable, "enable-policy", nil, "turn on a policy that is loaded disabled")
	cmd.Flags().StringSliceVar(&f.disable, "disable-policy", nil, "turn off a policy by name")
}

func (f *policyFlags) apply(opts *lint.Options) {
	opts.PolicyDirs = f.dirs
	opts.EnabledPolicies = f.enable
	opts.DisabledPolicies = f.disable
}

// telemetryFrom returns the telemetry the root command put in ctx.
func telemetryFrom(ctx context.Context) *telemetry.Telemetry {
	if t := telemetry.FromTelemetryContext(ctx); t != nil {
		return t
	}
	return telemetry.Nop()
}

func linterOptions(ctx context.Context, rt engine.Runtime) []lint.Option {
	return []lint.Option{
		lint.WithRuntime(rt),
		lint.WithTelemetry(telemetryFrom(ctx)),
		lint.WithSchemaRegistry(config.NewSchemaRegistry()),
	}
}

// openHistory opens the run history database, or returns nil when no
// database was configured.
func openHistory(ctx context.Context) (*stores.SQLiteStore, error) {
	if historyDB == "" {
		return nil, nil
	}
	return stores.Open(ctx, historyDB)
}
