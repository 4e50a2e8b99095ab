package events

import (
	"errors"
	"testing"
	"time"

	"github.com/vsinha/rebalance/pkg/domain/entities"
)

func TestInMemoryEventStore_AppendAndRead(t *testing.T) {
	store := NewInMemoryEventStore()
	target := entities.NewLocation(time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC), "LINE1")

	if err := store.AppendEvent("run-1", NewRunStartedEvent("run-1", target, entities.Reduce, 500)); err != nil {
		t.Fatalf("AppendEvent failed: %v", err)
	}
	if err := store.AppendEvent("run-1", NewRunCompletedEvent("run-1", 450, entities.StatusOK, 2)); err != nil {
		t.Fatalf("AppendEvent failed: %v", err)
	}
	if err := store.AppendEvent("run-2", NewRunCompletedEvent("run-2", 0, entities.StatusPartial, 0)); err != nil {
		t.Fatalf("AppendEvent failed: %v", err)
	}

	events, err := store.ReadEvents("run-1", 0)
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Version() != 1 || events[1].Version() != 2 {
		t.Errorf("Expected versions 1 and 2, got %d and %d", events[0].Version(), events[1].Version())
	}
	if events[1].Type() != RunCompletedEvent {
		t.Errorf("Expected %s, got %s", RunCompletedEvent, events[1].Type())
	}

	tail, _ := store.ReadEvents("run-1", 2)
	if len(tail) != 1 {
		t.Errorf("Expected 1 event from version 2, got %d", len(tail))
	}

	all, _ := store.ReadAllEvents(0)
	if len(all) != 3 {
		t.Errorf("Expected 3 events overall, got %d", len(all))
	}

	streams := store.Streams()
	if len(streams) != 2 || streams[0] != "run-1" || streams[1] != "run-2" {
		t.Errorf("Unexpected streams: %v", streams)
	}

	if err := store.AppendEvent("", NewRunCompletedEvent("", 0, entities.StatusOK, 0)); err == nil {
		t.Error("Expected error for empty stream id")
	}
}

func TestInMemoryEventStore_SynchronousSubscribers(t *testing.T) {
	store := NewInMemoryEventStore()

	var seen []string
	handler := &HandlerFunc{
		Types: []string{MoveAcceptedEvent, MoveAdjustedEvent},
		Fn: func(e Event) error {
			seen = append(seen, e.Type())
			return nil
		},
	}
	if err := store.Subscribe(handler.Types, handler); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	move := entities.Move{Item: "WL-LHD", Quantity: 100}
	adjusted := move
	adjusted.Adjusted = true

	_ = store.AppendEvent("run", NewMoveAcceptedEvent("run", "proposal", move))
	_ = store.AppendEvent("run", NewMoveRejectedEvent("run", "proposal", "X", "unknown item"))
	_ = store.AppendEvent("run", NewMoveAcceptedEvent("run", "fallback", adjusted))

	if len(seen) != 2 || seen[0] != MoveAcceptedEvent || seen[1] != MoveAdjustedEvent {
		t.Errorf("Expected accepted then adjusted, got %v", seen)
	}

	_ = store.Unsubscribe(handler)
	_ = store.AppendEvent("run", NewMoveAcceptedEvent("run", "proposal", move))
	if len(seen) != 2 {
		t.Errorf("Expected no delivery after unsubscribe, got %d events", len(seen))
	}
}

func TestInMemoryEventStore_HandlerErrorStillAppends(t *testing.T) {
	store := NewInMemoryEventStore()
	failing := &HandlerFunc{
		Types: []string{ShortfallReportedEvent},
		Fn:    func(Event) error { return errors.New("sink down") },
	}
	_ = store.Subscribe(failing.Types, failing)

	if err := store.AppendEvent("run", NewShortfallReportedEvent("run", 500, 300)); err == nil {
		t.Error("Expected handler failure to be reported")
	}

	events, _ := store.ReadEvents("run", 1)
	if len(events) != 1 {
		t.Fatalf("Expected event to be stored despite handler failure, got %d", len(events))
	}
	data, ok := events[0].Data().(ShortfallData)
	if !ok || data.Shortfall != 200 {
		t.Errorf("Expected shortfall 200, got %+v", events[0].Data())
	}
}
