package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vsinha/rebalance/pkg/domain/entities"
)

// WorkdayPolicy decides workdays for dates the plan carries no flag for
type WorkdayPolicy int

const (
	// AssumeWorkday treats unflagged dates as operating days
	AssumeWorkday WorkdayPolicy = iota
	// StrictWorkday treats unflagged dates as closed
	StrictWorkday
)

// String method for WorkdayPolicy enum
func (p WorkdayPolicy) String() string {
	switch p {
	case AssumeWorkday:
		return "assume_workday"
	case StrictWorkday:
		return "strict"
	default:
		return "unknown"
	}
}

// ParseWorkdayPolicy parses a policy name
func ParseWorkdayPolicy(s string) (WorkdayPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "assume_workday", "assume":
		return AssumeWorkday, nil
	case "strict":
		return StrictWorkday, nil
	default:
		return AssumeWorkday, fmt.Errorf("invalid workday policy: %s (expected: assume_workday or strict)", s)
	}
}

// Calendar answers workday questions for one plan snapshot.
//
// When any entry carries a workday flag the snapshot is authoritative:
// flagged dates answer for themselves and dates missing from the plan are
// closed. When no entry carries a flag the calendar is degraded and the
// policy answers for every date.
type Calendar struct {
	flags   map[string]entities.WorkdayFlag
	dates   []time.Time
	flagged bool
	policy  WorkdayPolicy
}

// NewCalendar builds a calendar from plan entries
func NewCalendar(entries []*entities.PlanEntry, policy WorkdayPolicy) *Calendar {
	c := &Calendar{
		flags:  make(map[string]entities.WorkdayFlag),
		policy: policy,
	}

	for _, entry := range entries {
		key := entry.Date.Format(entities.DateLayout)
		current, seen := c.flags[key]
		if !seen {
			c.dates = append(c.dates, entities.Day(entry.Date))
			c.flags[key] = entry.Workday
		}
		if entry.Workday.Known() {
			c.flagged = true
			// one operating line makes the date a workday
			if current != entities.Workday {
				c.flags[key] = entry.Workday
			}
		}
	}

	sort.Slice(c.dates, func(i, j int) bool { return c.dates[i].Before(c.dates[j]) })
	return c
}

// Degraded reports whether workdays are decided by policy alone
func (c *Calendar) Degraded() bool {
	return !c.flagged
}

// Policy returns the policy used for unflagged dates
func (c *Calendar) Policy() WorkdayPolicy {
	return c.policy
}

// IsWorkday reports whether production may be scheduled on date
func (c *Calendar) IsWorkday(date time.Time) bool {
	flag, present := c.flags[entities.Day(date).Format(entities.DateLayout)]
	if flag.Known() {
		return flag == entities.Workday
	}
	if c.flagged && !present {
		return false
	}
	return c.policy == AssumeWorkday
}

// NextWorkdays returns up to n workdays strictly after the given date
func (c *Calendar) NextWorkdays(after time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	start := entities.Day(after)
	workdays := make([]time.Time, 0, n)

	if c.Degraded() {
		// no calendar data: scan the next n calendar days
		for i := 1; i <= n; i++ {
			d := start.AddDate(0, 0, i)
			if c.IsWorkday(d) {
				workdays = append(workdays, d)
			}
		}
		return workdays
	}

	for _, d := range c.dates {
		if !d.After(start) {
			continue
		}
		if c.IsWorkday(d) {
			workdays = append(workdays, d)
			if len(workdays) == n {
				break
			}
		}
	}
	return workdays
}
