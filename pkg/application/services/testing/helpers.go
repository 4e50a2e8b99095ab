package testing

import (
	"time"

	"github.com/vsinha/rebalance/pkg/domain/entities"
	"github.com/vsinha/rebalance/pkg/domain/services"
	"github.com/vsinha/rebalance/pkg/infrastructure/repositories/memory"
)

// TargetDate is the date every scenario reallocates
var TargetDate = time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC)

// Day parses a YYYY-MM-DD date - panics on invalid input
func Day(s string) time.Time {
	d, err := entities.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Loc builds a location from a date string and line
func Loc(date string, line entities.LineID) entities.Location {
	return entities.NewLocation(Day(date), line)
}

// MustPlanEntry is a helper for tests - panics on validation error
func MustPlanEntry(
	date string,
	line entities.LineID,
	item entities.ItemName,
	demand, actual, palletSize entities.Quantity,
	flag entities.WorkdayFlag,
) *entities.PlanEntry {
	entry, err := entities.NewPlanEntry(Day(date), line, item, demand, actual, palletSize, flag)
	if err != nil {
		panic(err)
	}
	return entry
}

// ScenarioCapacities returns the three-line plant used by the scenarios
func ScenarioCapacities() entities.LineCapacity {
	return entities.LineCapacity{
		"LINE1": 3300,
		"LINE2": 3700,
		"LINE3": 3600,
	}
}

// ScenarioRules returns the mobility rules used by the scenarios:
// T6 and WL- items run on any line, A2XX items never run on LINE3
func ScenarioRules() []services.MobilityRule {
	return []services.MobilityRule{
		{Marker: "T6", Class: entities.MultiLineFlexible},
		{Marker: "WL-", Class: entities.MultiLineFlexible},
		{
			Marker:        "A2XX",
			Class:         entities.RestrictedPair,
			Lines:         []entities.LineID{"LINE1", "LINE2"},
			ExcludedLines: []entities.LineID{"LINE3"},
		},
	}
}

// NewRepository loads entries into a fresh in-memory plan repository
func NewRepository(entries ...*entities.PlanEntry) *memory.PlanRepository {
	repo := memory.NewPlanRepository(len(entries))
	if err := repo.LoadEntries(entries); err != nil {
		panic(err)
	}
	return repo
}

// BuildReduceScenario creates a plan where LINE1 on the target date runs
// 1700 units across three items:
//
//	FIX-GAMMA 1000 (fixed line, no demand)
//	T6-ALPHA   400 (flexible, no demand)
//	T6-BETA    300 (flexible, 300 due on 2026-01-23)
//
// Same-day headroom is 300 on LINE2 and 400 on LINE3; the only later
// workday is 2026-01-23 with 3000 headroom on LINE1.
func BuildReduceScenario() *memory.PlanRepository {
	w := entities.Workday
	return NewRepository(
		MustPlanEntry("2026-01-21", "LINE1", "FIX-GAMMA", 0, 1000, 50, w),
		MustPlanEntry("2026-01-21", "LINE1", "T6-ALPHA", 0, 400, 50, w),
		MustPlanEntry("2026-01-21", "LINE1", "T6-BETA", 0, 300, 50, w),
		MustPlanEntry("2026-01-21", "LINE2", "FILLER-B", 0, 3400, 100, w),
		MustPlanEntry("2026-01-21", "LINE3", "FILLER-C", 0, 3200, 100, w),
		MustPlanEntry("2026-01-23", "LINE1", "T6-BETA", 300, 300, 50, w),
	)
}

// BuildIncreaseScenario creates a plan where LINE1 on the target date runs
// 2000 units with 1300 headroom. LINE2 runs a flexible T6-DELTA (200) and
// a restricted A2XX-KAPPA (200); LINE1 runs FIX-LATE (500) on 2026-01-22.
func BuildIncreaseScenario() *memory.PlanRepository {
	w := entities.Workday
	return NewRepository(
		MustPlanEntry("2026-01-21", "LINE1", "BASE-ITEM", 0, 2000, 100, w),
		MustPlanEntry("2026-01-21", "LINE2", "A2XX-KAPPA", 0, 200, 50, w),
		MustPlanEntry("2026-01-21", "LINE2", "T6-DELTA", 0, 200, 50, w),
		MustPlanEntry("2026-01-22", "LINE1", "FIX-LATE", 0, 500, 50, w),
	)
}

// BuildShrinkScenario creates a plan where WL-LHD (400 movable, pallet 50)
// runs on LINE1 and LINE2 has 120 headroom on the target date
func BuildShrinkScenario() *memory.PlanRepository {
	w := entities.Workday
	return NewRepository(
		MustPlanEntry("2026-01-21", "LINE1", "WL-LHD", 0, 400, 50, w),
		MustPlanEntry("2026-01-21", "LINE1", "FIX-BASE", 0, 2000, 100, w),
		MustPlanEntry("2026-01-21", "LINE2", "FILLER-B", 0, 3580, 10, w),
		MustPlanEntry("2026-01-21", "LINE3", "FILLER-C", 0, 3600, 100, w),
	)
}
