package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/jshint-go/jshint/pkg/config"
	"github.com/jshint-go/jshint/pkg/telemetry"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	logLevel          string
	logFormat         string
	configPath        string
	defaultConfigPath string
	vendorDir         string
	historyDB         string
	metricsFile       string
	traceExporter     string
	otlpEndpoint      string

	// tel is set up by the root command before any subcommand runs and
	// flushed by run once it returns. Subcommands read it from their context.
	tel *telemetry.Telemetry
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	return run(ctx, newRootCommand(version, commit, buildDate))
}

// run executes rootCmd and then flushes telemetry whether or not the command
// failed. Cobra skips post-run hooks after a RunE error, and a failed lint
// run still has metrics to write.
func run(ctx context.Context, rootCmd *cobra.Command) error {
	err := rootCmd.ExecuteContext(ctx)
	if tel == nil {
		return err
	}

	if serr := tel.Shutdown(context.WithoutCancel(ctx)); serr != nil {
		log.Warn().Err(serr).Msg("Failed to flush telemetry")
		if err == nil {
			err = serr
		}
	}
	tel = nil
	return err
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jshint",
		Short: "Run JSHint over a project's JavaScript files",
		Long: `jshint checks JavaScript sources with the JSHint engine running on Java.

The lint configuration is resolved from a default layer and a user layer
(YAML, JSON or Starlark), the files to check are selected with glob patterns
and the engine is run once over all of them.

Features:
  - Layered configuration with a CUE option schema
  - Rego policies over the resolved configuration
  - Watch mode
  - Run history in SQLite
  - Prometheus metrics and OpenTelemetry traces`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupTelemetry(version); err != nil {
				return err
			}
			cmd.SetContext(tel.WithContext(cmd.Context()))
			return nil
		},
	}

	defaultLevel := os.Getenv("LOG_LEVEL")
	if defaultLevel == "" {
		defaultLevel = "info"
	}

	// Persistent flags available to all commands
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logLevel, "log-level", defaultLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", "console", "log format (console, json)")
	flags.StringVarP(&configPath, "config", "c", envOr("JSHINT_CONFIG", config.DefaultUserConfigPath), "user configuration file (.yml, .json or .star)")
	flags.StringVar(&defaultConfigPath, "default-config", "", "default configuration file (built-in defaults when empty)")
	flags.StringVar(&vendorDir, "vendor-dir", "", "directory holding the JSHint jars and script (default $JSHINT_VENDOR_DIR or next to the binary)")
	flags.StringVar(&historyDB, "history-db", os.Getenv("JSHINT_HISTORY_DB"), "SQLite database recording lint runs")
	flags.StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
	flags.StringVar(&traceExporter, "trace-exporter", "none", "trace exporter (none, stdout, otlp)")
	flags.StringVar(&otlpEndpoint, "otlp-endpoint", "", "OTLP collector endpoint for the otlp exporter")

	// Add subcommands
	rootCmd.AddCommand(newLintCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newFilesCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newDoctorCommand())
	rootCmd.AddCommand(newHistoryCommand())

	return rootCmd
}

func setupTelemetry(version string) error {
	cfg := telemetry.DefaultConfig()
	cfg.ServiceVersion = version
	cfg.Logging.Level = logLevel
	cfg.Logging.Format = logFormat
	cfg.Tracing.Exporter = traceExporter
	cfg.Tracing.Endpoint = otlpEndpoint
	cfg.Metrics.TextfilePath = metricsFile

	t, err := telemetry.NewTelemetry(cfg)
	if err != nil {
		return err
	}
	tel = t

	// The logger's own level applies from here on.
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	log.Logger = tel.Logger.Zerolog()
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
