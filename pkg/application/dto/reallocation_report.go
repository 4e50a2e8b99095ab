package dto

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/rebalance/pkg/domain/entities"
)

// ReallocationReport contains the complete output of a reallocation run
type ReallocationReport struct {
	RunID       uuid.UUID          `json:"run_id"`
	Target      entities.Location  `json:"target"`
	Direction   entities.Direction `json:"direction"`
	Requested   entities.Quantity  `json:"requested"`
	CurrentLoad entities.Quantity  `json:"current_load"`
	TargetLoad  entities.Quantity  `json:"target_load"`
	Capacity    entities.Quantity  `json:"capacity"`
	// TargetUtilizationPct is set when the request named a utilization
	// instead of a delta
	TargetUtilizationPct decimal.NullDecimal `json:"target_utilization_pct"`

	// Items lists every item analyzed as a potential source, movable or not
	Items []FactItem `json:"items"`
	// Slots is the destination capacity after all accepted moves
	Slots []FactSlot `json:"slots"`

	Proposed       int               `json:"proposed"`
	Accepted       []entities.Move   `json:"-"`
	Moves          []entities.Move   `json:"moves"`
	Diagnostics    []Diagnostic      `json:"diagnostics"`
	Achieved       entities.Quantity `json:"achieved"`
	AchievementPct decimal.Decimal   `json:"achievement_pct"`
	Status         entities.Status   `json:"status"`
	StrategySource string            `json:"strategy_source"`
	Strategy       string            `json:"strategy,omitempty"`
	Explanation    string            `json:"explanation,omitempty"`
}

// FinalLoad returns the target slot's load after the accepted moves
func (r *ReallocationReport) FinalLoad() entities.Quantity {
	if r.Direction == entities.Reduce {
		return r.CurrentLoad - r.Achieved
	}
	return r.CurrentLoad + r.Achieved
}

// Shortfall returns how much of the request was not met
func (r *ReallocationReport) Shortfall() entities.Quantity {
	if r.Achieved >= r.Requested {
		return 0
	}
	return r.Requested - r.Achieved
}

// DiagnosticsOf returns the diagnostics of one kind
func (r *ReallocationReport) DiagnosticsOf(kind DiagnosticKind) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// DiagnosticKind classifies a report diagnostic
type DiagnosticKind int

const (
	// ProposalInvalid is a candidate move rejected by validation
	ProposalInvalid DiagnosticKind = iota
	// CapacityAdjusted is a move shrunk to fit destination headroom
	CapacityAdjusted
	// ShortfallUnresolved means the request was not fully met after fallback
	ShortfallUnresolved
	// ProposerFailed means the external proposer produced nothing usable
	ProposerFailed
	// WorkdayDegraded means workdays were decided by policy, not plan data
	WorkdayDegraded
	// TargetNotWorkday means the plan store flags the target date as closed
	TargetNotWorkday
)

// String method for DiagnosticKind enum
func (k DiagnosticKind) String() string {
	switch k {
	case ProposalInvalid:
		return "ProposalInvalid"
	case CapacityAdjusted:
		return "CapacityAdjusted"
	case ShortfallUnresolved:
		return "ShortfallUnresolved"
	case ProposerFailed:
		return "ProposerFailed"
	case WorkdayDegraded:
		return "WorkdayDegraded"
	case TargetNotWorkday:
		return "TargetNotWorkday"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the kind by name
func (k DiagnosticKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Diagnostic is an advisory note attached to a report.
// Index is the candidate's position within its stage, or -1.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Stage   string         `json:"stage"`
	Index   int            `json:"index"`
	Item    string         `json:"item,omitempty"`
	Message string         `json:"message"`
}

func (d Diagnostic) String() string {
	prefix := fmt.Sprintf("[%s]", d.Stage)
	if d.Index >= 0 {
		prefix = fmt.Sprintf("[%s #%d]", d.Stage, d.Index+1)
	}
	if d.Item != "" {
		return fmt.Sprintf("%s %s: %s", prefix, d.Item, d.Message)
	}
	return fmt.Sprintf("%s %s", prefix, d.Message)
}
