package entities

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLineCapacity(t *testing.T) {
	caps := LineCapacity{"LINE3": 3600, "LINE1": 3300, "LINE2": 3700}

	lines := caps.Lines()
	if len(lines) != 3 || lines[0] != "LINE1" || lines[2] != "LINE3" {
		t.Errorf("Expected sorted lines, got %v", lines)
	}

	if got, err := caps.Max("LINE2"); err != nil || got != 3700 {
		t.Errorf("Expected 3700, got %d (%v)", got, err)
	}

	if _, err := caps.Max("LINE9"); !errors.Is(err, ErrUnknownLine) {
		t.Errorf("Expected ErrUnknownLine, got %v", err)
	}
}

func TestCapacityTable_ConsumeAndClone(t *testing.T) {
	day := time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC)
	loc := NewLocation(day, "LINE2")

	table := NewCapacityTable()
	table.Put(DestinationSlot{Location: loc, CurrentLoad: 3580, Remaining: 120, Max: 3700})

	clone := table.Clone()

	if err := table.Consume(loc, 100); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if rem, _ := table.Remaining(loc); rem != 20 {
		t.Errorf("Expected 20 remaining, got %d", rem)
	}
	if rem, _ := clone.Remaining(loc); rem != 120 {
		t.Errorf("Expected clone untouched at 120, got %d", rem)
	}

	if err := table.Consume(loc, 50); err == nil {
		t.Error("Expected error consuming beyond remaining headroom")
	}
	if err := table.Consume(NewLocation(day, "LINE9"), 1); err == nil {
		t.Error("Expected error consuming from unknown slot")
	}
	if _, ok := table.Remaining(NewLocation(day, "LINE9")); ok {
		t.Error("Expected unknown slot to be reported as missing")
	}
}

func TestCapacityTable_SlotsOrdered(t *testing.T) {
	day := time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC)

	table := NewCapacityTable()
	table.Put(DestinationSlot{Location: NewLocation(day.AddDate(0, 0, 1), "LINE1"), Max: 10})
	table.Put(DestinationSlot{Location: NewLocation(day, "LINE2"), Max: 10})
	table.Put(DestinationSlot{Location: NewLocation(day, "LINE1"), Max: 10})

	slots := table.Slots()
	expected := []string{"2026-01-21_LINE1", "2026-01-21_LINE2", "2026-01-22_LINE1"}
	for i, slot := range slots {
		if slot.Location.String() != expected[i] {
			t.Errorf("Slot %d: expected %s, got %s", i, expected[i], slot.Location)
		}
	}
}

func TestDestinationSlot_UsageRate(t *testing.T) {
	slot := DestinationSlot{CurrentLoad: 2475, Max: 3300}
	if !slot.UsageRate().Equal(decimal.NewFromInt(75)) {
		t.Errorf("Expected 75%%, got %s", slot.UsageRate())
	}

	empty := DestinationSlot{CurrentLoad: 10}
	if !empty.UsageRate().IsZero() {
		t.Errorf("Expected zero usage for zero max, got %s", empty.UsageRate())
	}
}

func TestCapacityTable_SubsetSharesSlots(t *testing.T) {
	day := time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC)
	target := NewLocation(day, "LINE1")
	other := NewLocation(day, "LINE2")

	table := NewCapacityTable()
	table.Put(DestinationSlot{Location: target, Remaining: 500, Max: 1000})
	table.Put(DestinationSlot{Location: other, Remaining: 300, Max: 1000})

	subset := table.Subset(target, NewLocation(day, "LINE9"))
	if subset.Len() != 1 {
		t.Fatalf("Expected 1 slot in subset, got %d", subset.Len())
	}
	if subset.Slot(other) != nil {
		t.Error("Expected subset to exclude unrequested slots")
	}

	if err := subset.Consume(target, 200); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if rem, _ := table.Remaining(target); rem != 300 {
		t.Errorf("Expected consumption through subset to reach parent, got %d remaining", rem)
	}
}
