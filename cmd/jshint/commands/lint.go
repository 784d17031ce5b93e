package commands

import (
	"io"
	"os"
	"time"

	"github.com/jshint-go/jshint/pkg/lint"
	"github.com/jshint-go/jshint/pkg/telemetry"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newLintCommand() *cobra.Command {
	var (
		selection selectionFlags
		policies  policyFlags
		noPolicy  bool
		timeout   time.Duration
		watch     bool
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "lint [patterns...]",
		Short: "Run JSHint over the selected files",
		Long: `Run JSHint over the selected JavaScript files.

The run:
  - Resolves the default and user configuration layers
  - Selects files from the include and exclude patterns
  - Checks that a Java runtime is available
  - Evaluates configuration policies
  - Invokes the engine once over all files

Engine findings are printed by the engine. The command exits 1 when the
engine reports problems and 2 on any other failure.`,
		Example: `  # Lint with config/jshint.yml
  jshint lint

  # Lint explicit patterns
  jshint lint 'public/javascripts/**/*.js' --exclude-paths 'public/javascripts/vendor/**'

  # Skip one built-in policy
  jshint lint --disable-policy predef-identifiers

  # Re-run on every change
  jshint lint --watch

  # Record the run and export metrics
  jshint lint --history-db .jshint/history.db --metrics-file jshint.prom`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			opts := selection.options(cmd, args)
			policies.apply(&opts)
			opts.DisablePolicies = noPolicy

			lopts := linterOptions(ctx, runtimeFromFlags(timeout))

			var banner io.Writer = os.Stderr
			if quiet {
				banner = nil
			}
			lopts = append(lopts, lint.WithBanner(banner))

			history, err := openHistory(ctx)
			if err != nil {
				return err
			}
			if history != nil {
				defer history.Close()
				lopts = append(lopts, lint.WithHistory(history))
			}

			log.Debug().
				Str("config", opts.ConfigPath).
				Strs("paths", opts.Paths).
				Strs("exclude_paths", opts.ExcludePaths).
				Bool("watch", watch).
				Msg("Starting lint")

			if watch {
				logger := telemetry.FromContext(ctx).NewComponentLogger("watch")
				return lint.Watch(ctx, opts, lint.WatchOptions{
					OnResult: func(err error) {
						if err != nil {
							logger.WithError(err).Error("Lint run failed")
							return
						}
						logger.Info("JSHint passed")
					},
				}, lopts...)
			}

			l, err := lint.New(ctx, opts, lopts...)
			if err != nil {
				return err
			}
			return l.Run(ctx)
		},
	}

	selection.register(cmd)
	policies.register(cmd)
	cmd.Flags().BoolVar(&noPolicy, "no-policy", false, "skip policy evaluation")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "bound the engine run (0 means no limit)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-run on source or configuration changes")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print the banner")

	return cmd
}
