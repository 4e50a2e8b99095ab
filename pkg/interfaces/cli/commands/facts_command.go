package commands

import (
	"github.com/spf13/cobra"

	"github.com/vsinha/rebalance/pkg/infrastructure/config"
	"github.com/vsinha/rebalance/pkg/interfaces/cli/output"
)

func newFactsCmd(global *globalOptions) *cobra.Command {
	var (
		source PlanSource
		target TargetFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "facts",
		Short: "Print the fact sheet a proposer would receive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target.HasDelta = cmd.Flags().Changed("delta")
			req, err := target.request()
			if err != nil {
				return err
			}

			cfg, err := config.Load(global.configFile)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			repo, closeRepo, err := source.open(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			engine, _, err := newEngine(cfg, repo, nil, newLogger(global.verbose))
			if err != nil {
				return err
			}

			facts, err := engine.Facts(ctx, req)
			if err != nil {
				return err
			}
			return output.GenerateFacts(facts, output.Config{Format: format, Out: cmd.OutOrStdout()})
		},
	}

	addSourceFlags(cmd, &source)
	addTargetFlags(cmd, &target)
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json")
	return cmd
}
