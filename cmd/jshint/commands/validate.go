package commands

import (
	"fmt"

	"github.com/jshint-go/jshint/pkg/config"
	"github.com/jshint-go/jshint/pkg/engine"
	"github.com/jshint-go/jshint/pkg/lint"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	var (
		strict   bool
		policies policyFlags
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the resolved configuration",
		Long: `Validate the resolved configuration without running the engine.

This command checks:
  - Both layers load and every value can be serialized
  - Option types against the CUE options schema
  - Policy compliance (OPA/rego) over the configuration and file list

Every loaded policy is listed with its severity and whether it is on.
Blocking policy violations always fail. With --strict, schema issues and
policy warnings fail too.`,
		Example: `  # Validate config/jshint.yml
  jshint validate

  # Fail on any finding
  jshint validate --strict

  # Add team policies
  jshint validate --policy-dir ./policies

  # Skip a built-in policy
  jshint validate --disable-policy no-evil`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			opts := lint.Options{
				ConfigPath:        configPath,
				DefaultConfigPath: defaultConfigPath,
			}
			policies.apply(&opts)

			l, err := lint.New(ctx, opts, lint.WithRuntime(runtimeFromFlags(0)), lint.WithTelemetry(telemetryFrom(ctx)))
			if err != nil {
				return err
			}

			for _, p := range l.PolicyEngine().ListPolicies() {
				state := "on"
				if !p.Enabled {
					state = "off"
				}
				fmt.Fprintf(out, "policy %s (%s, %s)\n", p.Name, p.Severity, state)
			}

			issues, err := config.NewSchemaRegistry().Check(config.OptionsSchema, l.Config())
			if err != nil {
				return err
			}
			for _, issue := range issues {
				fmt.Fprintf(out, "schema: %s\n", issue)
			}

			result, err := l.EvaluatePolicies(ctx, "validate")
			if err != nil {
				return err
			}
			for _, msg := range result.Errors {
				fmt.Fprintf(out, "policy error: %s\n", msg)
			}
			for _, w := range result.Warnings {
				fmt.Fprintf(out, "%s [%s]: %s\n", w.Severity, w.Policy, w.Message)
			}
			for _, v := range result.Violations {
				fmt.Fprintf(out, "%s [%s]: %s\n", v.Severity, v.Policy, v.Message)
			}

			log.Info().
				Int("files", len(l.Files())).
				Int("schema_issues", len(issues)).
				Int("warnings", len(result.Warnings)).
				Int("violations", len(result.Violations)).
				Str("config_digest", l.Digest()).
				Msg("Configuration validated")

			if !result.Allowed {
				return engine.NewPolicyDeniedError(fmt.Sprintf("%d blocking policy violation(s)", len(result.Violations)))
			}
			if strict && (len(issues) > 0 || len(result.Warnings) > 0 || len(result.Errors) > 0) {
				return engine.NewPolicyDeniedError(fmt.Sprintf("strict validation failed with %d finding(s)",
					len(issues)+len(result.Warnings)+len(result.Errors)))
			}

			fmt.Fprintln(out, "Configuration is valid")
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail on schema issues and policy warnings")
	policies.register(cmd)

	return cmd
}
