package services

import (
	"github.com/vsinha/rebalance/pkg/domain/entities"
)

// DefaultHorizonWorkdays is how many future workdays the surveyor covers
const DefaultHorizonWorkdays = 10

// SurveyCapacity builds a fresh capacity table for one reallocation run.
//
// The table covers every configured line on the target date (the target
// line included, so increases have a destination) and the target line on
// the next horizon workdays. Lines without a configured capacity are
// left out, which makes moves to them fail validation.
func SurveyCapacity(
	entries []*entities.PlanEntry,
	calendar *Calendar,
	capacities entities.LineCapacity,
	target entities.Location,
	horizon int,
) *entities.CapacityTable {
	loads := currentLoads(entries)
	table := entities.NewCapacityTable()

	for _, line := range capacities.Lines() {
		addSlot(table, loads, capacities, entities.NewLocation(target.Date, line))
	}

	if _, ok := capacities[target.Line]; !ok {
		return table
	}

	for _, day := range calendar.NextWorkdays(target.Date, horizon) {
		addSlot(table, loads, capacities, entities.NewLocation(day, target.Line))
	}

	return table
}

func addSlot(
	table *entities.CapacityTable,
	loads map[string]entities.Quantity,
	capacities entities.LineCapacity,
	loc entities.Location,
) {
	capacity := capacities[loc.Line]
	load := loads[loc.String()]
	table.Put(entities.DestinationSlot{
		Location:    loc,
		CurrentLoad: load,
		Remaining:   capacity - load,
		Max:         capacity,
	})
}

// currentLoads sums planned production per (date, line)
func currentLoads(entries []*entities.PlanEntry) map[string]entities.Quantity {
	loads := make(map[string]entities.Quantity)
	for _, entry := range entries {
		loads[entry.Location().String()] += entry.ActualQty
	}
	return loads
}

// SlotLoad returns the planned production at one slot
func SlotLoad(entries []*entities.PlanEntry, loc entities.Location) entities.Quantity {
	var total entities.Quantity
	key := loc.String()
	for _, entry := range entries {
		if entry.Location().String() == key {
			total += entry.ActualQty
		}
	}
	return total
}
