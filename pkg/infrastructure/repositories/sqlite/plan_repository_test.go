package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/vsinha/rebalance/pkg/domain/entities"
)

func day(s string) time.Time {
	d, err := entities.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func entry(t *testing.T, date string, line entities.LineID, item entities.ItemName, demand, actual entities.Quantity, flag entities.WorkdayFlag) *entities.PlanEntry {
	t.Helper()
	e, err := entities.NewPlanEntry(day(date), line, item, demand, actual, 50, flag)
	if err != nil {
		t.Fatalf("NewPlanEntry failed: %v", err)
	}
	return e
}

func openTestRepo(t *testing.T) *PlanRepository {
	t.Helper()
	repo, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestPlanRepository_SnapshotOrderAndRange(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	err := repo.LoadEntries([]*entities.PlanEntry{
		entry(t, "2026-01-23", "LINE1", "T6-BETA", 300, 300, entities.Workday),
		entry(t, "2026-01-21", "LINE2", "FILLER", 0, 3400, entities.Workday),
		entry(t, "2026-01-21", "LINE1", "T6-ALPHA", 0, 400, entities.Workday),
		entry(t, "2026-01-25", "LINE1", "T6-BETA", 0, 0, entities.NonWorkday),
	})
	if err != nil {
		t.Fatalf("LoadEntries failed: %v", err)
	}

	all, err := repo.Snapshot(ctx, entities.DateRange{})
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("Expected 4 entries, got %d", len(all))
	}
	if all[0].Item != "T6-ALPHA" || all[1].Line != "LINE2" || all[3].Workday != entities.NonWorkday {
		t.Errorf("Unexpected order: %s %s %s", all[0].Item, all[1].Line, all[3].Workday)
	}
	if all[0].PalletSize != 50 || all[0].ActualQty != 400 {
		t.Errorf("Unexpected round trip: %+v", all[0])
	}

	window, err := repo.Snapshot(ctx, entities.DateRange{From: day("2026-01-22"), To: day("2026-01-24")})
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(window) != 1 || window[0].DemandQty != 300 {
		t.Errorf("Expected only the 2026-01-23 entry, got %d entries", len(window))
	}
}

func TestPlanRepository_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	_ = repo.LoadEntries([]*entities.PlanEntry{entry(t, "2026-01-21", "LINE1", "X", 0, 100, entities.WorkdayUnknown)})
	_ = repo.LoadEntries([]*entities.PlanEntry{entry(t, "2026-01-21", "LINE1", "X", 0, 250, entities.Workday)})

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 row after upsert, got %d", n)
	}

	entries, _ := repo.Snapshot(ctx, entities.DateRange{})
	if entries[0].ActualQty != 250 || entries[0].Workday != entities.Workday {
		t.Errorf("Expected replaced row, got %+v", entries[0])
	}
}

func TestPlanRepository_IsWorkday(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	_ = repo.LoadEntries([]*entities.PlanEntry{
		entry(t, "2026-01-21", "LINE1", "A", 0, 1, entities.Workday),
		entry(t, "2026-01-21", "LINE2", "B", 0, 1, entities.WorkdayUnknown),
		entry(t, "2026-01-24", "LINE1", "A", 0, 0, entities.NonWorkday),
		entry(t, "2026-01-26", "LINE1", "A", 0, 1, entities.WorkdayUnknown),
	})

	tests := []struct {
		date string
		want entities.WorkdayFlag
	}{
		{"2026-01-21", entities.Workday},
		{"2026-01-24", entities.NonWorkday},
		{"2026-01-26", entities.WorkdayUnknown},
		{"2026-02-01", entities.WorkdayUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			got, err := repo.IsWorkday(ctx, day(tt.date))
			if err != nil {
				t.Fatalf("IsWorkday failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestPlanRepository_FileDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "plan.db")

	repo, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := repo.LoadEntriesContext(ctx, []*entities.PlanEntry{entry(t, "2026-01-21", "LINE1", "A", 0, 10, entities.Workday)}); err != nil {
		t.Fatalf("LoadEntriesContext failed: %v", err)
	}
	repo.Close()

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	n, _ := reopened.Count(ctx)
	if n != 1 {
		t.Errorf("Expected persisted row, got %d rows", n)
	}
}
