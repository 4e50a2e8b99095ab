package memory

import (
	"context"
	"testing"
	"time"

	"github.com/vsinha/rebalance/pkg/domain/entities"
)

func mustEntry(t *testing.T, date string, line entities.LineID, item entities.ItemName, actual entities.Quantity, flag entities.WorkdayFlag) *entities.PlanEntry {
	t.Helper()
	d, err := entities.ParseDate(date)
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	entry, err := entities.NewPlanEntry(d, line, item, 0, actual, 50, flag)
	if err != nil {
		t.Fatalf("NewPlanEntry failed: %v", err)
	}
	return entry
}

func TestPlanRepository_Snapshot(t *testing.T) {
	repo := NewPlanRepository(4)
	err := repo.LoadEntries([]*entities.PlanEntry{
		mustEntry(t, "2026-01-22", "LINE1", "B", 100, entities.Workday),
		mustEntry(t, "2026-01-21", "LINE2", "A", 200, entities.Workday),
		mustEntry(t, "2026-01-21", "LINE1", "A", 300, entities.Workday),
		mustEntry(t, "2026-01-21", "LINE1", "A", 350, entities.Workday), // replaces
	})
	if err != nil {
		t.Fatalf("LoadEntries failed: %v", err)
	}

	if repo.Len() != 3 {
		t.Fatalf("Expected 3 entries after replacement, got %d", repo.Len())
	}

	all, err := repo.Snapshot(context.Background(), entities.DateRange{})
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	expected := []string{"2026-01-21_LINE1", "2026-01-21_LINE2", "2026-01-22_LINE1"}
	for i, entry := range all {
		if entry.Location().String() != expected[i] {
			t.Errorf("Entry %d: expected %s, got %s", i, expected[i], entry.Location())
		}
	}
	if all[0].ActualQty != 350 {
		t.Errorf("Expected replaced quantity 350, got %d", all[0].ActualQty)
	}

	// snapshot entries are copies
	all[0].ActualQty = 0
	again, _ := repo.Snapshot(context.Background(), entities.DateRange{})
	if again[0].ActualQty != 350 {
		t.Error("Expected snapshot mutation not to reach the store")
	}

	day := time.Date(2026, 1, 22, 0, 0, 0, 0, time.UTC)
	ranged, _ := repo.Snapshot(context.Background(), entities.DateRange{From: day})
	if len(ranged) != 1 || ranged[0].Item != "B" {
		t.Errorf("Expected only the 2026-01-22 entry, got %d entries", len(ranged))
	}
}

func TestPlanRepository_IsWorkday(t *testing.T) {
	repo := NewPlanRepository(4)
	_ = repo.LoadEntries([]*entities.PlanEntry{
		mustEntry(t, "2026-01-24", "LINE1", "A", 0, entities.NonWorkday),
		mustEntry(t, "2026-01-26", "LINE1", "A", 0, entities.NonWorkday),
		mustEntry(t, "2026-01-26", "LINE2", "A", 10, entities.Workday),
		mustEntry(t, "2026-01-27", "LINE1", "A", 10, entities.WorkdayUnknown),
	})

	tests := []struct {
		date   string
		expect entities.WorkdayFlag
	}{
		{"2026-01-24", entities.NonWorkday},
		{"2026-01-26", entities.Workday},
		{"2026-01-27", entities.WorkdayUnknown},
		{"2026-01-30", entities.WorkdayUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			d, _ := entities.ParseDate(tt.date)
			flag, err := repo.IsWorkday(context.Background(), d)
			if err != nil {
				t.Fatalf("IsWorkday failed: %v", err)
			}
			if flag != tt.expect {
				t.Errorf("Expected %s, got %s", tt.expect, flag)
			}
		})
	}
}

func TestPlanRepository_CancelledContext(t *testing.T) {
	repo := NewPlanRepository(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.Snapshot(ctx, entities.DateRange{}); err == nil {
		t.Error("Expected error from cancelled context")
	}
}
