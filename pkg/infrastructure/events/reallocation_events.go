package events

import (
	"github.com/vsinha/rebalance/pkg/domain/entities"
)

// Event types recorded for a reallocation run
const (
	RunStartedEvent        = "run.started"
	MoveAcceptedEvent      = "move.accepted"
	MoveAdjustedEvent      = "move.adjusted"
	MoveRejectedEvent      = "move.rejected"
	ShortfallReportedEvent = "shortfall.reported"
	RunCompletedEvent      = "run.completed"
)

// AllReallocationEvents lists every event type a run can emit
var AllReallocationEvents = []string{
	RunStartedEvent,
	MoveAcceptedEvent,
	MoveAdjustedEvent,
	MoveRejectedEvent,
	ShortfallReportedEvent,
	RunCompletedEvent,
}

// RunStartedData describes the target of a run
type RunStartedData struct {
	Target    entities.Location
	Direction entities.Direction
	Requested entities.Quantity
}

// MoveData carries an accepted or adjusted move and the stage that produced it
type MoveData struct {
	Stage string
	Move  entities.Move
}

// MoveRejectedData carries the item of a rejected candidate and the reason
type MoveRejectedData struct {
	Stage  string
	Item   string
	Reason string
}

// ShortfallData records the quantity left unresolved after fallback
type ShortfallData struct {
	Requested entities.Quantity
	Achieved  entities.Quantity
	Shortfall entities.Quantity
}

// RunCompletedData summarizes a finished run
type RunCompletedData struct {
	Achieved entities.Quantity
	Status   entities.Status
	Moves    int
}

func NewRunStartedEvent(runID string, target entities.Location, direction entities.Direction, requested entities.Quantity) Event {
	return NewEvent(RunStartedEvent, runID, RunStartedData{
		Target:    target,
		Direction: direction,
		Requested: requested,
	})
}

// NewMoveAcceptedEvent returns a move.adjusted event when the move was
// shrunk to fit capacity, move.accepted otherwise
func NewMoveAcceptedEvent(runID, stage string, move entities.Move) Event {
	eventType := MoveAcceptedEvent
	if move.Adjusted {
		eventType = MoveAdjustedEvent
	}
	return NewEvent(eventType, runID, MoveData{Stage: stage, Move: move})
}

func NewMoveRejectedEvent(runID, stage, item, reason string) Event {
	return NewEvent(MoveRejectedEvent, runID, MoveRejectedData{
		Stage:  stage,
		Item:   item,
		Reason: reason,
	})
}

func NewShortfallReportedEvent(runID string, requested, achieved entities.Quantity) Event {
	return NewEvent(ShortfallReportedEvent, runID, ShortfallData{
		Requested: requested,
		Achieved:  achieved,
		Shortfall: requested - achieved,
	})
}

func NewRunCompletedEvent(runID string, achieved entities.Quantity, status entities.Status, moves int) Event {
	return NewEvent(RunCompletedEvent, runID, RunCompletedData{
		Achieved: achieved,
		Status:   status,
		Moves:    moves,
	})
}
