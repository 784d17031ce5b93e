package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/jshint-go/jshint/pkg/engine"
	"github.com/spf13/cobra"
)

func newDoctorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the Java runtime and engine files",
		Long: `Check that the tool can run the engine.

This command reports:
  - Where the java executable resolves to
  - Whether the probe jar, engine jar and script exist
  - Whether the run history database answers, when one is configured
  - The outcome of the runtime probe`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			tel := telemetryFrom(ctx)
			rt := runtimeFromFlags(0)

			java, err := exec.LookPath(rt.Java)
			if err != nil {
				java = "not found"
			}
			fmt.Fprintf(out, "java:        %s\n", java)

			for _, f := range []struct{ label, path string }{
				{"probe jar:", rt.ProbeJar},
				{"engine jar:", rt.EngineJar},
				{"script:", rt.Script},
			} {
				status := "ok"
				if _, err := os.Stat(f.path); err != nil {
					status = "missing"
				}
				fmt.Fprintf(out, "%-12s %s (%s)\n", f.label, f.path, status)
			}

			if err := checkHistory(ctx, out); err != nil {
				return err
			}

			op := tel.StartOperation(ctx, "lint.probe")
			err = engine.NewPrecondition(rt).Verify(op.Ctx)
			op.End(err)
			if err != nil {
				tel.Metrics.RecordProbe("failed")
				return err
			}
			tel.Metrics.RecordProbe("ok")

			op.Logger.WithField("java", java).
				WithField("elapsed", op.Timer.Duration().String()).
				Debug("Runtime probe passed")
			fmt.Fprintln(out, "Java runtime OK")
			return nil
		},
	}

	return cmd
}

// checkHistory reports whether the history database opens and answers.
func checkHistory(ctx context.Context, out io.Writer) error {
	if historyDB == "" {
		return nil
	}

	store, err := openHistory(ctx)
	if err != nil {
		fmt.Fprintf(out, "%-12s %s (unavailable)\n", "history:", historyDB)
		return fmt.Errorf("history database: %w", err)
	}
	defer store.Close()

	if err := store.HealthCheck(ctx); err != nil {
		fmt.Fprintf(out, "%-12s %s (unhealthy)\n", "history:", historyDB)
		return fmt.Errorf("history database: %w", err)
	}
	fmt.Fprintf(out, "%-12s %s (ok)\n", "history:", historyDB)
	return nil
}
