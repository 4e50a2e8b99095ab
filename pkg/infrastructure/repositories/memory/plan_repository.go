package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vsinha/rebalance/pkg/domain/entities"
	"github.com/vsinha/rebalance/pkg/domain/repositories"
)

type entryKey struct {
	date string
	line entities.LineID
	item entities.ItemName
}

// PlanRepository provides in-memory production plan storage
type PlanRepository struct {
	mu         sync.RWMutex
	entries    []entities.PlanEntry
	entriesMap map[entryKey]int
}

// NewPlanRepository creates a new in-memory plan repository
func NewPlanRepository(expectedEntries int) *PlanRepository {
	return &PlanRepository{
		entries:    make([]entities.PlanEntry, 0, expectedEntries),
		entriesMap: make(map[entryKey]int, expectedEntries),
	}
}

// Verify interface compliance
var _ repositories.PlanRepository = (*PlanRepository)(nil)

// LoadEntries loads plan entries into the repository. A second entry for
// the same (date, line, item) replaces the first.
func (r *PlanRepository) LoadEntries(entries []*entities.PlanEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range entries {
		r.addEntry(*entry)
	}
	return nil
}

func (r *PlanRepository) addEntry(entry entities.PlanEntry) {
	entry.Date = entities.Day(entry.Date)
	key := entryKey{date: entry.Date.Format(entities.DateLayout), line: entry.Line, item: entry.Item}
	if index, exists := r.entriesMap[key]; exists {
		r.entries[index] = entry
		return
	}
	r.entriesMap[key] = len(r.entries)
	r.entries = append(r.entries, entry)
}

// Snapshot returns copies of the entries in range ordered by date, line and item
func (r *PlanRepository) Snapshot(ctx context.Context, dateRange entities.DateRange) ([]*entities.PlanEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var snapshot []*entities.PlanEntry
	for i := range r.entries {
		if !dateRange.Contains(r.entries[i].Date) {
			continue
		}
		entry := r.entries[i]
		snapshot = append(snapshot, &entry)
	}

	sort.SliceStable(snapshot, func(i, j int) bool {
		a, b := snapshot[i], snapshot[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Item < b.Item
	})
	return snapshot, nil
}

// IsWorkday returns Workday if any entry on the date is flagged as one,
// NonWorkday if entries exist and all are flagged closed, and
// WorkdayUnknown otherwise
func (r *PlanRepository) IsWorkday(ctx context.Context, date time.Time) (entities.WorkdayFlag, error) {
	if err := ctx.Err(); err != nil {
		return entities.WorkdayUnknown, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	day := entities.Day(date)
	flag := entities.WorkdayUnknown
	for i := range r.entries {
		if !r.entries[i].Date.Equal(day) {
			continue
		}
		switch r.entries[i].Workday {
		case entities.Workday:
			return entities.Workday, nil
		case entities.NonWorkday:
			flag = entities.NonWorkday
		}
	}
	return flag, nil
}

// Len returns the number of stored entries
func (r *PlanRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}
