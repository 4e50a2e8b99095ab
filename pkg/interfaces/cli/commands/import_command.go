package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/rebalance/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/rebalance/pkg/infrastructure/repositories/sqlite"
)

func newImportCmd(global *globalOptions) *cobra.Command {
	var planFile, dbFile string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a plan CSV into a SQLite plan database",
		Long: `Import upserts every plan row into the database, so re-importing a
corrected export replaces the affected (date, line, item) rows.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			progress(out, global.verbose, "📂 Loading %s...", planFile)
			entries, err := csv.NewLoader().LoadPlan(planFile)
			if err != nil {
				return fmt.Errorf("error loading plan: %w", err)
			}

			repo, err := sqlite.Open(ctx, dbFile)
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.LoadEntriesContext(ctx, entries); err != nil {
				return fmt.Errorf("failed to import plan: %w", err)
			}

			total, err := repo.Count(ctx)
			if err != nil {
				return err
			}
			_, _ = successColor.Fprintf(out, "✓ Imported %d rows into %s (%d total)\n", len(entries), dbFile, total)
			return nil
		},
	}

	cmd.Flags().StringVar(&planFile, "plan", "", "Path to plan CSV file")
	cmd.Flags().StringVar(&dbFile, "db", "", "Path to SQLite plan database")
	_ = cmd.MarkFlagRequired("plan")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}
