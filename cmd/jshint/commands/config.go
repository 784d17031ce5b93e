package commands

import (
	"fmt"
	"io"

	"github.com/jshint-go/jshint/pkg/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCommand() *cobra.Command {
	var (
		token  bool
		layers bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		Long: `Show the configuration handed to the engine.

The default and user layers are merged, predef is normalized and the
paths and exclude_paths keys are removed. The result is printed as YAML
in the order the engine receives it, or as the serialized argument.`,
		Example: `  # Print the resolved configuration
  jshint config

  # Print the engine argument
  jshint config --token

  # Print each layer before merging
  jshint config --layers`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := config.NewStore(config.WithLogger(log.Logger))
			res, err := store.Resolve(cmd.Context(), defaultConfigPath, configPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if token {
				fmt.Fprintln(out, config.Serialize(res.Config))
				return nil
			}

			if layers {
				for _, layer := range res.Layers {
					source := layer.Path
					if source == "" {
						source = string(layer.Source)
					}
					fmt.Fprintf(out, "# %s (%s)\n", layer.Name, source)
					if err := writeYAML(out, layer.Data); err != nil {
						return err
					}
				}
				return nil
			}

			return writeYAML(out, res.Config)
		},
	}

	cmd.Flags().BoolVar(&token, "token", false, "print the serialized engine argument")
	cmd.Flags().BoolVar(&layers, "layers", false, "print each layer before merging")

	return cmd
}

func writeYAML(w io.Writer, m *config.Mapping) error {
	if m.Len() == 0 {
		_, err := fmt.Fprintln(w, "{}")
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return enc.Close()
}
