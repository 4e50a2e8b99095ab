package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/vsinha/rebalance/pkg/infrastructure/config"
	"github.com/vsinha/rebalance/pkg/interfaces/cli/output"
)

// Config holds configuration for the reallocate command
type Config struct {
	Source       PlanSource
	Target       TargetFlags
	ConfigFile   string
	ProposalFile string
	ProposerCmd  string
	OutputDir    string
	Format       string
	Verbose      bool
}

// ReallocateCommand handles one reallocation run
type ReallocateCommand struct {
	config Config
	out    io.Writer
}

// NewReallocateCommand creates a new reallocate command with the given configuration
func NewReallocateCommand(config Config, out io.Writer) *ReallocateCommand {
	return &ReallocateCommand{
		config: config,
		out:    out,
	}
}

// Execute runs the reallocation and renders the report
func (c *ReallocateCommand) Execute(ctx context.Context) error {
	req, err := c.config.Target.request()
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	cfg, err := config.Load(c.config.ConfigFile)
	if err != nil {
		return err
	}

	progress(c.out, c.config.Verbose, "📂 Loading plan...")
	repo, closeRepo, err := c.config.Source.open(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	proposer, err := newProposer(cfg, c.config.ProposalFile, c.config.ProposerCmd)
	if err != nil {
		return err
	}

	logger := newLogger(c.config.Verbose)
	engine, store, err := newEngine(cfg, repo, proposer, logger)
	if err != nil {
		return err
	}

	progress(c.out, c.config.Verbose, "🔄 Reallocating %s...", req.Target)
	start := time.Now()
	report, err := engine.Reallocate(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		return fmt.Errorf("error running reallocation: %w", err)
	}

	if c.config.Verbose {
		recorded, _ := store.ReadEvents(report.RunID.String(), 0)
		progress(c.out, true, "✅ Run %s completed in %v (%d events)\n", report.RunID, elapsed, len(recorded))
	}

	return output.Generate(report, output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
		Elapsed:   elapsed,
		Out:       c.out,
	})
}

func newReallocateCmd(global *globalOptions) *cobra.Command {
	var cfg Config

	cmd := &cobra.Command{
		Use:   "reallocate",
		Short: "Move production into or out of one line on one date",
		Long: `Reallocate reduces or increases the load of one (date, line) slot.

Candidate moves from a proposal file or proposer command are validated
against slack, pallet size, mobility, capacity and the workday calendar.
Fallback planning covers whatever the proposal leaves unmet.`,
		Example: `  rebalance reallocate --plan plan.csv --date 2026-01-21 --line 조립1 --delta=-500
  rebalance reallocate --db plan.db --date 2026-01-21 --line 조립2 --utilization 80 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.ConfigFile = global.configFile
			cfg.Verbose = global.verbose
			cfg.Target.HasDelta = cmd.Flags().Changed("delta")
			return NewReallocateCommand(cfg, cmd.OutOrStdout()).Execute(cmd.Context())
		},
	}

	addSourceFlags(cmd, &cfg.Source)
	addTargetFlags(cmd, &cfg.Target)
	cmd.Flags().StringVar(&cfg.ProposalFile, "proposal", "", "Path to a proposal JSON file")
	cmd.Flags().StringVar(&cfg.ProposerCmd, "proposer-cmd", "", "Command that reads the fact sheet on stdin and prints a proposal")
	cmd.Flags().StringVar(&cfg.Format, "format", "text", "Output format: text, json, csv, svg")
	cmd.Flags().StringVar(&cfg.OutputDir, "output", "", "Output directory for results (optional)")
	return cmd
}

func addSourceFlags(cmd *cobra.Command, source *PlanSource) {
	cmd.Flags().StringVar(&source.PlanFile, "plan", "", "Path to plan CSV file")
	cmd.Flags().StringVar(&source.DBFile, "db", "", "Path to SQLite plan database")
	cmd.MarkFlagsMutuallyExclusive("plan", "db")
}

func addTargetFlags(cmd *cobra.Command, target *TargetFlags) {
	cmd.Flags().StringVar(&target.Date, "date", "", "Target date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&target.Line, "line", "", "Target line")
	cmd.Flags().Int64Var(&target.Delta, "delta", 0, "Signed change in load (negative reduces)")
	cmd.Flags().StringVar(&target.Utilization, "utilization", "", "Target utilization percent of line capacity")
	cmd.MarkFlagsMutuallyExclusive("delta", "utilization")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("line")
}
