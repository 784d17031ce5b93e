package commands

import (
	"fmt"

	"github.com/jshint-go/jshint/pkg/lint"
	"github.com/spf13/cobra"
)

func newFilesCommand() *cobra.Command {
	var selection selectionFlags

	cmd := &cobra.Command{
		Use:   "files [patterns...]",
		Short: "List the files a lint run would check",
		Long: `List the files a lint run would check, one per line, in the order the
engine receives them. Empty files and files matched by an exclude pattern
are left out.`,
		Example: `  # Files selected by the configuration
  jshint files

  # Files selected by explicit patterns
  jshint files 'src/**/*.js' --exclude-paths 'src/vendor/**'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := selection.options(cmd, args)
			opts.DisablePolicies = true

			l, err := lint.New(cmd.Context(), opts, linterOptions(cmd.Context(), runtimeFromFlags(0))...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, f := range l.Files() {
				fmt.Fprintln(out, f)
			}
			return nil
		},
	}

	selection.register(cmd)

	return cmd
}
