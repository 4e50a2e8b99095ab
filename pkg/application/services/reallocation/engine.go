package reallocation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/rebalance/pkg/application/dto"
	"github.com/vsinha/rebalance/pkg/domain/entities"
	"github.com/vsinha/rebalance/pkg/domain/repositories"
	"github.com/vsinha/rebalance/pkg/domain/services"
	"github.com/vsinha/rebalance/pkg/infrastructure/events"
)

// Proposer suggests candidate moves for a fact sheet. Its output is
// untrusted: every candidate is validated before it counts.
type Proposer interface {
	Propose(ctx context.Context, facts *dto.FactSheet) (*dto.Proposal, error)
}

// EngineConfig holds the static policy of the reallocation engine
type EngineConfig struct {
	Capacities entities.LineCapacity
	Rules      []services.MobilityRule
	// HorizonWorkdays is how many workdays after the target are surveyed (0 = default)
	HorizonWorkdays int
	WorkdayPolicy   services.WorkdayPolicy
	// OKThresholdPct is the achievement needed for StatusOK (zero = default)
	OKThresholdPct decimal.Decimal
	// DefaultUtilizationPct is used when a request has neither delta nor utilization
	DefaultUtilizationPct decimal.Decimal
}

// Request targets one (date, line) slot. Delta, when set, is the signed
// change in load; otherwise Utilization (or the configured default) is
// converted into a delta.
type Request struct {
	Target      entities.Location
	Delta       *entities.Quantity
	Utilization decimal.NullDecimal
	// Window narrows the plan snapshot; the zero range loads the whole plan
	Window entities.DateRange
}

// Engine runs the reallocation pipeline: slack analysis, capacity survey,
// mobility classification, proposal validation, fallback and aggregation.
// Each call to Reallocate owns its own capacity table, so an Engine may
// serve concurrent requests.
type Engine struct {
	config   EngineConfig
	repo     repositories.PlanRepository
	proposer Proposer
	events   events.EventStore
	logger   *slog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithProposer sets the external proposer. Without one the engine relies
// on fallback alone.
func WithProposer(p Proposer) Option {
	return func(e *Engine) {
		e.proposer = p
	}
}

// WithEventStore records every run as an event stream keyed by run id
func WithEventStore(store events.EventStore) Option {
	return func(e *Engine) {
		e.events = store
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an engine, filling zero config values with defaults
func NewEngine(config EngineConfig, repo repositories.PlanRepository, opts ...Option) *Engine {
	if config.HorizonWorkdays <= 0 {
		config.HorizonWorkdays = services.DefaultHorizonWorkdays
	}
	if config.OKThresholdPct.IsZero() {
		config.OKThresholdPct = DefaultOKThresholdPct
	}
	if config.DefaultUtilizationPct.IsZero() {
		config.DefaultUtilizationPct = DefaultUtilizationPct
	}

	e := &Engine{
		config: config,
		repo:   repo,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// run is the per-request state shared by the pipeline stages
type run struct {
	id          uuid.UUID
	target      entities.Location
	currentLoad entities.Quantity
	capacity    entities.Quantity
	direction   entities.Direction
	quantity    entities.Quantity
	// targetLoad is the load the request aims for; utilization is set
	// only when it was derived from a utilization percentage
	targetLoad  entities.Quantity
	utilization decimal.NullDecimal

	calendar *services.Calendar
	items    []*entities.MovableItem
	movable  *entities.MovableSet
	// survey covers every surveyed slot; table is the subset moves may land on
	survey *entities.CapacityTable
	table  *entities.CapacityTable

	diagnostics []dto.Diagnostic
}

// Facts builds the fact sheet a proposer would receive for the request
func (e *Engine) Facts(ctx context.Context, req Request) (*dto.FactSheet, error) {
	r, err := e.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	return e.factSheet(r), nil
}

// Reallocate runs the full pipeline for one request. Only a target with
// no plan data, an unknown target line, or a failure reading the plan
// store returns an error; everything else is reported in the result.
func (e *Engine) Reallocate(ctx context.Context, req Request) (*dto.ReallocationReport, error) {
	r, err := e.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	log := e.logger.With("run_id", r.id.String(), "target", r.target.String())
	log.Info("reallocation started",
		"direction", r.direction.String(),
		"quantity", int64(r.quantity),
		"current_load", int64(r.currentLoad),
		"items", len(r.items),
		"slots", r.table.Len())
	e.emit(r.id, events.NewRunStartedEvent(r.id.String(), r.target, r.direction, r.quantity))

	report := &dto.ReallocationReport{
		RunID:       r.id,
		Target:      r.target,
		Direction:   r.direction,
		Requested:   r.quantity,
		CurrentLoad: r.currentLoad,
		TargetLoad:  r.targetLoad,
		Capacity:    r.capacity,

		TargetUtilizationPct: r.utilization,

		Items:       factItems(r.items),
		Diagnostics: r.diagnostics,
	}

	validator := NewValidator(r.table, r.movable, r.calendar)

	if r.quantity == 0 {
		report.StrategySource = "none"
		report.Explanation = "no action required"
	} else {
		proposal, failure := e.propose(ctx, r, log)
		if failure != nil {
			report.Diagnostics = append(report.Diagnostics, *failure)
		}
		if proposal != nil {
			report.Strategy = proposal.Strategy
			report.Explanation = proposal.Explanation
			report.StrategySource = proposal.Source
			report.Proposed = len(proposal.Moves)

			accepted, diags := validator.Validate(StageProposal, proposal.Moves)
			report.Accepted = append(report.Accepted, accepted...)
			report.Diagnostics = append(report.Diagnostics, diags...)
			e.emitMoves(r.id, StageProposal, accepted, diags)
			log.Info("proposal validated", "proposed", len(proposal.Moves), "accepted", len(accepted))
		} else {
			report.StrategySource = "fallback"
		}

		remaining := r.quantity - entities.TotalQuantity(report.Accepted)
		if remaining > 0 {
			planner := NewFallbackPlanner(validator, r.table, r.movable, r.target)
			moves, diags := planner.Plan(r.direction, remaining)
			report.Accepted = append(report.Accepted, moves...)
			report.Diagnostics = append(report.Diagnostics, diags...)
			e.emitMoves(r.id, StageFallback, moves, diags)
			log.Info("fallback completed", "needed", int64(remaining), "moves", len(moves))
		}
	}

	summary := Summarize(r.quantity, report.Accepted, e.config.OKThresholdPct)
	report.Achieved = summary.Achieved
	report.AchievementPct = summary.AchievementPct
	report.Status = summary.Status
	report.Moves = MergeMoves(report.Accepted)
	report.Slots = factSlots(r.survey)

	if report.Achieved < r.quantity {
		e.emit(r.id, events.NewShortfallReportedEvent(r.id.String(), r.quantity, report.Achieved))
	}
	e.emit(r.id, events.NewRunCompletedEvent(r.id.String(), report.Achieved, report.Status, len(report.Moves)))

	log.Info("reallocation completed",
		"achieved", int64(report.Achieved),
		"achievement_pct", report.AchievementPct.StringFixed(1),
		"status", report.Status.String(),
		"moves", len(report.Moves),
		"diagnostics", len(report.Diagnostics))

	return report, nil
}

// prepare loads the snapshot and builds the run's fresh state
func (e *Engine) prepare(ctx context.Context, req Request) (*run, error) {
	target := entities.NewLocation(req.Target.Date, req.Target.Line)
	if target.Date.IsZero() || target.Line == "" {
		return nil, fmt.Errorf("target date and line are required")
	}

	capacity, err := e.config.Capacities.Max(target.Line)
	if err != nil {
		return nil, err
	}

	entries, err := e.repo.Snapshot(ctx, req.Window)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan snapshot: %w", err)
	}
	if !hasEntries(entries, target) {
		return nil, fmt.Errorf("%w: %s", entities.ErrDataUnavailable, target)
	}

	r := &run{
		id:          uuid.New(),
		target:      target,
		capacity:    capacity,
		currentLoad: services.SlotLoad(entries, target),
		calendar:    services.NewCalendar(entries, e.config.WorkdayPolicy),
	}

	delta, err := ResolveDelta(r.currentLoad, capacity, req, e.config.DefaultUtilizationPct)
	if err != nil {
		return nil, err
	}
	r.direction, r.quantity = entities.DirectionOf(delta)
	r.targetLoad = r.currentLoad + delta
	if req.Delta == nil {
		r.utilization = decimal.NewNullDecimal(e.config.DefaultUtilizationPct)
		if req.Utilization.Valid {
			r.utilization = req.Utilization
		}
	}

	if r.calendar.Degraded() {
		r.diagnostics = append(r.diagnostics, dto.Diagnostic{
			Kind:    dto.WorkdayDegraded,
			Stage:   "survey",
			Index:   -1,
			Message: fmt.Sprintf("plan carries no workday flags; workdays decided by %s policy", r.calendar.Policy()),
		})
	}

	flag, err := e.repo.IsWorkday(ctx, target.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to read workday flag: %w", err)
	}
	if flag == entities.NonWorkday {
		r.diagnostics = append(r.diagnostics, dto.Diagnostic{
			Kind:    dto.TargetNotWorkday,
			Stage:   "survey",
			Index:   -1,
			Message: fmt.Sprintf("target date %s is flagged as a non-workday", target.Date.Format(entities.DateLayout)),
		})
	}

	classifier := services.NewMobilityClassifier(e.config.Rules, e.config.Capacities.Lines())
	r.survey = services.SurveyCapacity(entries, r.calendar, e.config.Capacities, target, e.config.HorizonWorkdays)

	if r.direction == entities.Reduce {
		r.items = services.BuildMovableItems(entries, target, classifier)
		r.table = r.survey
	} else {
		for _, source := range e.increaseSources(r) {
			r.items = append(r.items, services.BuildMovableItems(entries, source, classifier)...)
		}
		// increases can only land on the target itself
		r.table = r.survey.Subset(target)
	}
	r.movable = entities.NewMovableSet(r.items)

	return r, nil
}

// increaseSources lists the slots an increase may pull from: the other
// lines on the target date, then the target line on the next workdays
func (e *Engine) increaseSources(r *run) []entities.Location {
	var sources []entities.Location
	for _, line := range e.config.Capacities.Lines() {
		if line != r.target.Line {
			sources = append(sources, entities.NewLocation(r.target.Date, line))
		}
	}
	for _, day := range r.calendar.NextWorkdays(r.target.Date, e.config.HorizonWorkdays) {
		sources = append(sources, entities.NewLocation(day, r.target.Line))
	}
	return sources
}

func (e *Engine) factSheet(r *run) *dto.FactSheet {
	return BuildFactSheet(r.target, r.direction, r.quantity, r.currentLoad, r.capacity, r.items, r.table)
}

// propose asks the proposer for candidates. A failing proposer yields a
// diagnostic instead of a proposal so fallback takes over.
func (e *Engine) propose(ctx context.Context, r *run, log *slog.Logger) (*dto.Proposal, *dto.Diagnostic) {
	if e.proposer == nil {
		return nil, nil
	}

	proposal, err := e.proposer.Propose(ctx, e.factSheet(r))
	if err == nil && proposal == nil {
		err = errors.New("proposer returned no proposal")
	}
	if err != nil {
		log.Warn("proposer failed", "error", err)
		return nil, &dto.Diagnostic{
			Kind:    dto.ProposerFailed,
			Stage:   StageProposal,
			Index:   -1,
			Message: err.Error(),
		}
	}

	if proposal.Source == "" {
		proposal.Source = "proposer"
	}
	return proposal, nil
}

func (e *Engine) emit(runID uuid.UUID, event events.Event) {
	if e.events == nil {
		return
	}
	if err := e.events.AppendEvent(runID.String(), event); err != nil {
		e.logger.Warn("failed to record event", "run_id", runID.String(), "type", event.Type(), "error", err)
	}
}

func (e *Engine) emitMoves(runID uuid.UUID, stage string, moves []entities.Move, diags []dto.Diagnostic) {
	for _, m := range moves {
		e.emit(runID, events.NewMoveAcceptedEvent(runID.String(), stage, m))
	}
	for _, d := range diags {
		if d.Kind == dto.ProposalInvalid {
			e.emit(runID, events.NewMoveRejectedEvent(runID.String(), d.Stage, d.Item, d.Message))
		}
	}
}

// hasEntries reports whether the plan has any row at the target slot.
// A slot whose rows are all zero is still planned.
func hasEntries(entries []*entities.PlanEntry, target entities.Location) bool {
	key := target.String()
	for _, entry := range entries {
		if entry.Location().String() == key {
			return true
		}
	}
	return false
}
