package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/vsinha/rebalance/pkg/domain/entities"
)

// SlackResult is the outcome of analyzing one item at one date
type SlackResult struct {
	CumulativeDemand entities.Quantity
	CumulativeActual entities.Quantity
	FutureSlack      entities.Quantity
	MaxMovable       entities.Quantity
	BufferDays       int
	LastDue          time.Time
}

type dailyTotals struct {
	date   time.Time
	demand entities.Quantity
	actual entities.Quantity
}

// AnalyzeSlack computes how much of currentQty can leave the target date
// without breaking any committed demand of the item.
//
// Running totals of demand and actual production are taken up to and
// including the target date. A positive cumulative surplus is movable
// outright (capped at currentQty). Otherwise the dates after the target
// must absorb the removal: a non-negative future surplus frees the whole
// current quantity, a future deficit reduces it.
func AnalyzeSlack(series []*entities.PlanEntry, target time.Time, currentQty entities.Quantity) (SlackResult, error) {
	if len(series) == 0 {
		return SlackResult{}, fmt.Errorf("%w: empty date series", entities.ErrInsufficientData)
	}

	days := aggregateByDate(series)
	targetDay := entities.Day(target)

	var result SlackResult
	foundTarget := false
	var futureDemand, futureActual entities.Quantity

	for _, day := range days {
		switch {
		case day.date.After(targetDay):
			futureDemand += day.demand
			futureActual += day.actual
		default:
			result.CumulativeDemand += day.demand
			result.CumulativeActual += day.actual
			if day.date.Equal(targetDay) {
				foundTarget = true
			}
		}
		if day.demand > 0 {
			result.LastDue = day.date
		}
	}

	if !foundTarget {
		return SlackResult{}, fmt.Errorf("%w: no entry on %s", entities.ErrInsufficientData, targetDay.Format(entities.DateLayout))
	}

	result.FutureSlack = futureActual - futureDemand
	cumulativeSlack := result.CumulativeActual - result.CumulativeDemand

	switch {
	case cumulativeSlack > 0:
		result.MaxMovable = entities.MinQuantity(cumulativeSlack, currentQty)
	case result.FutureSlack >= 0:
		result.MaxMovable = currentQty
	default:
		result.MaxMovable = currentQty + result.FutureSlack
		if result.MaxMovable < 0 {
			result.MaxMovable = 0
		}
	}

	if result.LastDue.IsZero() {
		result.BufferDays = entities.NoDueDateBufferDays
	} else {
		result.BufferDays = entities.DaysBetween(targetDay, result.LastDue)
	}

	return result, nil
}

// aggregateByDate sums an item's entries per date (an item may run on
// several lines the same day) and returns them in date order
func aggregateByDate(series []*entities.PlanEntry) []dailyTotals {
	byDate := make(map[string]*dailyTotals)
	for _, entry := range series {
		key := entry.Date.Format(entities.DateLayout)
		totals, exists := byDate[key]
		if !exists {
			totals = &dailyTotals{date: entities.Day(entry.Date)}
			byDate[key] = totals
		}
		totals.demand += entry.DemandQty
		totals.actual += entry.ActualQty
	}

	days := make([]dailyTotals, 0, len(byDate))
	for _, totals := range byDate {
		days = append(days, *totals)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].date.Before(days[j].date) })
	return days
}

// BuildMovableItems analyzes every item planned at the source slot.
// Items whose series cannot be analyzed are skipped; the returned slice
// keeps plan order and includes items below one pallet of slack so
// callers can report them.
func BuildMovableItems(
	entries []*entities.PlanEntry,
	source entities.Location,
	classifier *MobilityClassifier,
) []*entities.MovableItem {
	seriesByItem := make(map[entities.ItemName][]*entities.PlanEntry)
	for _, entry := range entries {
		seriesByItem[entry.Item] = append(seriesByItem[entry.Item], entry)
	}

	var items []*entities.MovableItem
	seen := make(map[entities.ItemName]bool)

	for _, entry := range entries {
		if entry.Location().String() != source.String() || entry.ActualQty <= 0 {
			continue
		}
		if seen[entry.Item] {
			continue
		}
		seen[entry.Item] = true

		currentQty := sourceQuantity(entries, entry.Item, source)
		slack, err := AnalyzeSlack(seriesByItem[entry.Item], source.Date, currentQty)
		if err != nil {
			continue
		}

		items = append(items, &entities.MovableItem{
			Item:       entry.Item,
			Source:     source,
			CurrentQty: currentQty,
			PalletSize: entry.PalletSize,
			MaxMovable: slack.MaxMovable,
			BufferDays: slack.BufferDays,
			LastDue:    slack.LastDue,
			Mobility:   classifier.Classify(entry.Item, source.Line),
		})
	}

	return items
}

// sourceQuantity sums the planned quantity of an item at one slot
func sourceQuantity(entries []*entities.PlanEntry, item entities.ItemName, source entities.Location) entities.Quantity {
	var total entities.Quantity
	for _, entry := range entries {
		if entry.Item == item && entry.Location().String() == source.String() {
			total += entry.ActualQty
		}
	}
	return total
}
