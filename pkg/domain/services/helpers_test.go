package services

import (
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

func planEntry(date string, line entities.LineID, item entities.ItemName, demand, actual, pallet entities.Quantity, flag entities.WorkdayFlag) *entities.PlanEntry {
	e, err := entities.NewPlanEntry(day(date), line, item, demand, actual, pallet, flag)
	if err != nil {
		panic(err)
	}
	return e
}
