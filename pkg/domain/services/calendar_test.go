package services

import (
	"testing"

	"github.com/vsinha/rebalance/pkg/domain/entities"
)

func TestCalendar_Authoritative(t *testing.T) {
	entries := []*entities.PlanEntry{
		planEntry("2026-01-21", "LINE1", "X", 0, 10, 1, entities.Workday),
		planEntry("2026-01-22", "LINE1", "X", 0, 10, 1, entities.Workday),
		planEntry("2026-01-24", "LINE1", "X", 0, 0, 1, entities.NonWorkday),
		// a single operating line makes the date a workday
		planEntry("2026-01-26", "LINE1", "X", 0, 0, 1, entities.NonWorkday),
		planEntry("2026-01-26", "LINE2", "X", 0, 10, 1, entities.Workday),
		planEntry("2026-01-27", "LINE1", "X", 0, 10, 1, entities.Workday),
	}

	cal := NewCalendar(entries, AssumeWorkday)
	if cal.Degraded() {
		t.Fatal("Expected authoritative calendar")
	}

	tests := []struct {
		date   string
		expect bool
	}{
		{"2026-01-21", true},
		{"2026-01-23", false}, // absent from plan
		{"2026-01-24", false},
		{"2026-01-26", true},
	}
	for _, tt := range tests {
		if got := cal.IsWorkday(day(tt.date)); got != tt.expect {
			t.Errorf("IsWorkday(%s): expected %t, got %t", tt.date, tt.expect, got)
		}
	}

	next := cal.NextWorkdays(day("2026-01-21"), 2)
	if len(next) != 2 {
		t.Fatalf("Expected 2 workdays, got %d", len(next))
	}
	if next[0].Format(entities.DateLayout) != "2026-01-22" || next[1].Format(entities.DateLayout) != "2026-01-26" {
		t.Errorf("Unexpected workdays: %v", next)
	}
}

func TestCalendar_DegradedPolicies(t *testing.T) {
	entries := []*entities.PlanEntry{
		planEntry("2026-01-21", "LINE1", "X", 0, 10, 1, entities.WorkdayUnknown),
	}

	assume := NewCalendar(entries, AssumeWorkday)
	if !assume.Degraded() {
		t.Fatal("Expected degraded calendar without flags")
	}
	if !assume.IsWorkday(day("2026-02-01")) {
		t.Error("Expected assume_workday to accept any date")
	}
	if got := len(assume.NextWorkdays(day("2026-01-21"), 10)); got != 10 {
		t.Errorf("Expected 10 scanned workdays, got %d", got)
	}

	strict := NewCalendar(entries, StrictWorkday)
	if strict.IsWorkday(day("2026-01-21")) {
		t.Error("Expected strict policy to reject unflagged dates")
	}
	if got := len(strict.NextWorkdays(day("2026-01-21"), 10)); got != 0 {
		t.Errorf("Expected no workdays under strict policy, got %d", got)
	}
}

func TestParseWorkdayPolicy(t *testing.T) {
	if p, err := ParseWorkdayPolicy("strict"); err != nil || p != StrictWorkday {
		t.Errorf("Expected strict, got %s (%v)", p, err)
	}
	if p, err := ParseWorkdayPolicy("assume_workday"); err != nil || p != AssumeWorkday {
		t.Errorf("Expected assume_workday, got %s (%v)", p, err)
	}
	if _, err := ParseWorkdayPolicy("sometimes"); err == nil {
		t.Error("Expected error for unknown policy")
	}
}
