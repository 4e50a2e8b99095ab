package repositories

import (
	"context"
	"time"

	"github.com/vsinha/rebalance/pkg/domain/entities"
)

// PlanRepository provides read access to the production plan.
// The reallocation core never writes back through it.
type PlanRepository interface {
	// Snapshot returns every plan entry whose date falls in the range.
	// A zero bound is open, so DateRange{} returns the whole plan.
	Snapshot(ctx context.Context, dateRange entities.DateRange) ([]*entities.PlanEntry, error)

	// IsWorkday reports the stored workday flag for a date.
	// WorkdayUnknown means the store has no flag for it.
	IsWorkday(ctx context.Context, date time.Time) (entities.WorkdayFlag, error)

	LoadEntries(entries []*entities.PlanEntry) error
}
