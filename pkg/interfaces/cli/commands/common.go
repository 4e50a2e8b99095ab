package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"github.com/vsinha/rebalance/pkg/application/services/reallocation"
	"github.com/vsinha/rebalance/pkg/domain/entities"
	"github.com/vsinha/rebalance/pkg/domain/repositories"
	"github.com/vsinha/rebalance/pkg/infrastructure/config"
	"github.com/vsinha/rebalance/pkg/infrastructure/events"
	"github.com/vsinha/rebalance/pkg/infrastructure/proposal"
	"github.com/vsinha/rebalance/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/rebalance/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/rebalance/pkg/infrastructure/repositories/sqlite"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

// PlanSource selects where the production plan is read from.
// Exactly one of PlanFile and DBFile must be set.
type PlanSource struct {
	PlanFile string
	DBFile   string
}

func (s PlanSource) validate() error {
	switch {
	case s.PlanFile == "" && s.DBFile == "":
		return fmt.Errorf("either --plan or --db is required")
	case s.PlanFile != "" && s.DBFile != "":
		return fmt.Errorf("--plan and --db are mutually exclusive")
	}
	return nil
}

// open loads the plan source into a repository. The returned close
// function releases the store.
func (s PlanSource) open(ctx context.Context) (repositories.PlanRepository, func() error, error) {
	if err := s.validate(); err != nil {
		return nil, nil, err
	}

	if s.DBFile != "" {
		repo, err := sqlite.Open(ctx, s.DBFile)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	}

	entries, err := csv.NewLoader().LoadPlan(s.PlanFile)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading plan: %w", err)
	}
	repo := memory.NewPlanRepository(len(entries))
	if err := repo.LoadEntries(entries); err != nil {
		return nil, nil, fmt.Errorf("failed to load plan into repository: %w", err)
	}
	return repo, func() error { return nil }, nil
}

// TargetFlags describe the slot to reallocate and how much to move
type TargetFlags struct {
	Date        string
	Line        string
	Delta       int64
	HasDelta    bool
	Utilization string
}

func (f TargetFlags) request() (reallocation.Request, error) {
	if f.Date == "" || f.Line == "" {
		return reallocation.Request{}, fmt.Errorf("--date and --line are required")
	}
	date, err := entities.ParseDate(f.Date)
	if err != nil {
		return reallocation.Request{}, err
	}

	req := reallocation.Request{Target: entities.NewLocation(date, entities.LineID(f.Line))}

	if f.HasDelta && f.Utilization != "" {
		return reallocation.Request{}, fmt.Errorf("--delta and --utilization are mutually exclusive")
	}
	if f.HasDelta {
		delta := entities.Quantity(f.Delta)
		req.Delta = &delta
	}
	if f.Utilization != "" {
		pct, err := decimal.NewFromString(strings.TrimSuffix(strings.TrimSpace(f.Utilization), "%"))
		if err != nil {
			return reallocation.Request{}, fmt.Errorf("invalid --utilization %q: %w", f.Utilization, err)
		}
		req.Utilization = decimal.NewNullDecimal(pct)
	}
	return req, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newProposer picks the proposer: a proposal file wins over a command
// flag, which wins over the configured command. Nil means fallback only.
func newProposer(cfg *config.Config, proposalFile, proposerCmd string) (reallocation.Proposer, error) {
	if proposalFile != "" {
		return proposal.NewFileProposer(proposalFile), nil
	}
	var (
		p   *proposal.CommandProposer
		err error
	)
	switch {
	case proposerCmd != "":
		p, err = proposal.NewCommandProposer(proposerCmd, cfg.ProposerTimeout())
	case cfg.Proposer.Command != "" && len(cfg.Proposer.Args) > 0:
		p, err = proposal.NewCommandProposerArgs(cfg.Proposer.Command, cfg.Proposer.Args, cfg.ProposerTimeout())
	case cfg.Proposer.Command != "":
		p, err = proposal.NewCommandProposer(cfg.Proposer.Command, cfg.ProposerTimeout())
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// newEngine wires the engine from configuration. Events are logged at
// debug level as they are recorded.
func newEngine(
	cfg *config.Config,
	repo repositories.PlanRepository,
	proposer reallocation.Proposer,
	logger *slog.Logger,
) (*reallocation.Engine, *events.InMemoryEventStore, error) {
	engineConfig, err := cfg.EngineConfig()
	if err != nil {
		return nil, nil, err
	}

	store := events.NewInMemoryEventStore()
	logEvents := &events.HandlerFunc{
		Types: events.AllReallocationEvents,
		Fn: func(e events.Event) error {
			logger.Debug("event", "type", e.Type(), "run_id", e.StreamID(), "version", e.Version(), "data", e.Data())
			return nil
		},
	}
	if err := store.Subscribe(logEvents.Types, logEvents); err != nil {
		return nil, nil, err
	}

	opts := []reallocation.Option{
		reallocation.WithEventStore(store),
		reallocation.WithLogger(logger),
	}
	if proposer != nil {
		opts = append(opts, reallocation.WithProposer(proposer))
	}
	return reallocation.NewEngine(engineConfig, repo, opts...), store, nil
}

func progress(w io.Writer, verbose bool, format string, args ...interface{}) {
	if verbose {
		_, _ = infoColor.Fprintf(w, format+"\n", args...)
	}
}
