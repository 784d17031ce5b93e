package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jshint-go/jshint/pkg/stores"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newHistoryCommand() *cobra.Command {
	var (
		limit  int
		prune  int
		show   string
		remove string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded lint runs",
		Long: `Show lint runs recorded with --history-db, newest first.

Each run records its status (passed, failed or error), duration, number of
files and a digest of the configuration it ran with.`,
		Example: `  # Last 20 runs
  jshint history --history-db .jshint/history.db

  # Keep only the 100 newest runs
  jshint history --history-db .jshint/history.db --prune 100

  # Show one run by ID or ID prefix
  jshint history --history-db .jshint/history.db --show 1f0c2a9e`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("no history database: set --history-db or JSHINT_HISTORY_DB")
			}
			defer store.Close()

			out := cmd.OutOrStdout()

			if show != "" {
				run, err := findRun(ctx, store, show)
				if err != nil {
					return err
				}
				return writeRun(out, run)
			}

			if remove != "" {
				run, err := findRun(ctx, store, remove)
				if err != nil {
					return err
				}
				if err := store.DeleteRun(ctx, run.ID); err != nil {
					return err
				}
				fmt.Fprintf(out, "Deleted run %s\n", run.ID)
				return nil
			}

			if cmd.Flags().Changed("prune") {
				removed, err := store.PruneRuns(ctx, prune)
				if err != nil {
					return err
				}
				log.Info().Int64("removed", removed).Int("kept", prune).Msg("Pruned run history")
			}

			runs, err := store.ListRuns(ctx, limit, 0)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tSTARTED\tSTATUS\tDURATION\tFILES\tCONFIG")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					shortID(r.ID),
					r.StartedAt.Local().Format(time.DateTime),
					r.Status,
					r.Duration.Round(time.Millisecond),
					r.FileCount,
					r.ConfigDigest,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	cmd.Flags().IntVar(&prune, "prune", 0, "delete all but the newest N runs")
	cmd.Flags().StringVar(&show, "show", "", "show one run by ID or unique ID prefix")
	cmd.Flags().StringVar(&remove, "delete", "", "delete one run by ID or unique ID prefix")
	cmd.MarkFlagsMutuallyExclusive("show", "delete")

	return cmd
}

// findRun looks a run up by its full ID, then by a unique ID prefix.
func findRun(ctx context.Context, store *stores.SQLiteStore, id string) (*stores.Run, error) {
	if run, err := store.GetRun(ctx, id); err == nil {
		return run, nil
	}

	// A negative limit lists every run.
	runs, err := store.ListRuns(ctx, -1, 0)
	if err != nil {
		return nil, err
	}

	var match *stores.Run
	for _, r := range runs {
		if !strings.HasPrefix(r.ID, id) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("run ID prefix %q is ambiguous", id)
		}
		match = r
	}
	if match == nil {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	return match, nil
}

func writeRun(w io.Writer, r *stores.Run) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", r.ID)
	fmt.Fprintf(tw, "Started:\t%s\n", r.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(tw, "Status:\t%s\n", r.Status)
	fmt.Fprintf(tw, "Duration:\t%s\n", r.Duration.Round(time.Millisecond))
	fmt.Fprintf(tw, "Files:\t%d\n", r.FileCount)
	fmt.Fprintf(tw, "Config:\t%s\n", r.ConfigDigest)
	if r.Error != "" {
		fmt.Fprintf(tw, "Error:\t%s\n", r.Error)
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
