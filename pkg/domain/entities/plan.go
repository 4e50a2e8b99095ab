package entities

import (
	"fmt"
	"time"
)

// DateLayout is the canonical date format used in plan data and locations
const DateLayout = "2006-01-02"

// WorkdayFlag records whether a plan date is an operating day
type WorkdayFlag int

const (
	// WorkdayUnknown means the plan store carried no workday information
	WorkdayUnknown WorkdayFlag = iota
	Workday
	NonWorkday
)

// String method for WorkdayFlag enum
func (w WorkdayFlag) String() string {
	switch w {
	case WorkdayUnknown:
		return "Unknown"
	case Workday:
		return "Workday"
	case NonWorkday:
		return "NonWorkday"
	default:
		return "Unknown"
	}
}

// Known reports whether the flag carries workday information
func (w WorkdayFlag) Known() bool {
	return w == Workday || w == NonWorkday
}

// WorkdayFlagFromBool converts a plain boolean flag
func WorkdayFlagFromBool(isWorkday bool) WorkdayFlag {
	if isWorkday {
		return Workday
	}
	return NonWorkday
}

// Day truncates t to midnight UTC so dates compare and key consistently
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date, ignoring any trailing time component
func ParseDate(s string) (time.Time, error) {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return t, nil
}

// DaysBetween returns the number of whole days from a to b
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// PlanEntry is one (date, line, item) row of the production plan.
// DemandQty is the committed (due) quantity, ActualQty the planned production.
type PlanEntry struct {
	Date       time.Time
	Line       LineID
	Item       ItemName
	DemandQty  Quantity
	ActualQty  Quantity
	PalletSize Quantity
	Workday    WorkdayFlag
}

// NewPlanEntry creates a validated PlanEntry
func NewPlanEntry(
	date time.Time,
	line LineID,
	item ItemName,
	demandQty, actualQty, palletSize Quantity,
	workday WorkdayFlag,
) (*PlanEntry, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("plan date cannot be empty")
	}
	if string(line) == "" {
		return nil, fmt.Errorf("line cannot be empty")
	}
	if string(item) == "" {
		return nil, fmt.Errorf("item name cannot be empty")
	}
	if demandQty < 0 {
		return nil, fmt.Errorf("demand quantity cannot be negative, got %d", demandQty)
	}
	if actualQty < 0 {
		return nil, fmt.Errorf("actual quantity cannot be negative, got %d", actualQty)
	}
	if palletSize <= 0 {
		return nil, fmt.Errorf("pallet size must be positive, got %d", palletSize)
	}

	return &PlanEntry{
		Date:       Day(date),
		Line:       line,
		Item:       item,
		DemandQty:  demandQty,
		ActualQty:  actualQty,
		PalletSize: palletSize,
		Workday:    workday,
	}, nil
}

// Location returns the (date, line) slot the entry belongs to
func (e *PlanEntry) Location() Location {
	return Location{Date: e.Date, Line: e.Line}
}

// DateRange bounds a plan snapshot. A zero bound is open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether date falls inside the range, bounds inclusive
func (r DateRange) Contains(date time.Time) bool {
	d := Day(date)
	if !r.From.IsZero() && d.Before(Day(r.From)) {
		return false
	}
	if !r.To.IsZero() && d.After(Day(r.To)) {
		return false
	}
	return true
}
