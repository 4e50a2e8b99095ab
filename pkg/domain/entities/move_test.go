package entities

import (
	"testing"
	"time"
)

func TestMove_Validation(t *testing.T) {
	day := time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC)
	from := NewLocation(day, "LINE1")
	to := NewLocation(day, "LINE2")

	validMove, err := NewMove("WL-LHD", 200, 50, from, to, "spread load")
	if err != nil {
		t.Fatalf("Expected valid move creation to succeed: %v", err)
	}
	if validMove.Pallets != 4 {
		t.Errorf("Expected 4 pallets, got %d", validMove.Pallets)
	}

	testCases := []struct {
		name        string
		item        ItemName
		quantity    Quantity
		pallet      Quantity
		from        Location
		to          Location
		expectError string
	}{
		{"empty item", "", 50, 50, from, to, "item name cannot be empty"},
		{"zero quantity", "ITEM", 0, 50, from, to, "quantity must be positive, got 0"},
		{"not pallet multiple", "ITEM", 75, 50, from, to, "quantity 75 is not a multiple of pallet size 50"},
		{"missing destination", "ITEM", 50, 50, from, Location{}, "move locations cannot be empty"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewMove(tc.item, tc.quantity, tc.pallet, tc.from, tc.to, "")
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestDirectionOf(t *testing.T) {
	dir, qty := DirectionOf(-500)
	if dir != Reduce || qty != 500 {
		t.Errorf("Expected Reduce 500, got %s %d", dir, qty)
	}
	dir, qty = DirectionOf(300)
	if dir != Increase || qty != 300 {
		t.Errorf("Expected Increase 300, got %s %d", dir, qty)
	}
}

func TestQuantity_PalletHelpers(t *testing.T) {
	var q Quantity = 120
	if q.FloorToPallet(50) != 100 {
		t.Errorf("Expected 100, got %d", q.FloorToPallet(50))
	}
	if q.Pallets(50) != 2 {
		t.Errorf("Expected 2 pallets, got %d", q.Pallets(50))
	}
	if q.IsPalletMultiple(50) {
		t.Error("Expected 120 not to be a multiple of 50")
	}
	if !q.IsPalletMultiple(40) {
		t.Error("Expected 120 to be a multiple of 40")
	}
	if q.FloorToPallet(0) != 0 || q.IsPalletMultiple(0) {
		t.Error("Expected zero pallet size to be rejected")
	}
	if MinQuantity(300, 120, 500) != 120 {
		t.Errorf("Expected 120, got %d", MinQuantity(300, 120, 500))
	}
}

func TestMovableSet_SpendAndLookup(t *testing.T) {
	day := time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC)
	lineA := NewLocation(day, "LINE1")
	lineB := NewLocation(day, "LINE2")

	set := NewMovableSet([]*MovableItem{
		{Item: "T6-STD", Source: lineA, PalletSize: 40, MaxMovable: 400},
		{Item: "T6-STD", Source: lineB, PalletSize: 40, MaxMovable: 200},
		{Item: "J9-BASE", Source: lineA, PalletSize: 30, MaxMovable: 90},
	})

	if _, ok := set.Lookup("T6-STD", Location{}); ok {
		t.Error("Expected ambiguous lookup without source to fail")
	}
	item, ok := set.Lookup("J9-BASE", Location{})
	if !ok {
		t.Fatal("Expected unique item to resolve without source")
	}

	if err := set.Spend(item, 60); err != nil {
		t.Fatalf("Spend failed: %v", err)
	}
	if set.Remaining(item) != 30 {
		t.Errorf("Expected 30 remaining, got %d", set.Remaining(item))
	}

	clone := set.Clone()
	if err := set.Spend(item, 60); err == nil {
		t.Error("Expected overspend to fail")
	}
	if err := clone.Spend(item, 30); err != nil {
		t.Errorf("Expected clone to carry spending but allow remainder: %v", err)
	}
	if set.Remaining(item) != 30 {
		t.Errorf("Expected original unaffected by clone, got %d", set.Remaining(item))
	}
}

func TestMobility_Permits(t *testing.T) {
	day := time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC)
	src := NewLocation(day, "LINE1")

	restricted := Mobility{Class: RestrictedPair, CrossLines: []LineID{"LINE2"}}
	fixed := Mobility{Class: FixedLine}

	tests := []struct {
		name     string
		mobility Mobility
		to       Location
		expect   bool
	}{
		{"restricted to alternate", restricted, NewLocation(day, "LINE2"), true},
		{"restricted to excluded", restricted, NewLocation(day, "LINE3"), false},
		{"same slot", restricted, src, false},
		{"fixed later date", fixed, NewLocation(day.AddDate(0, 0, 1), "LINE1"), true},
		{"fixed other line", fixed, NewLocation(day, "LINE2"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mobility.Permits(src, tt.to); got != tt.expect {
				t.Errorf("Expected Permits=%t, got %t", tt.expect, got)
			}
		})
	}
}

func TestParseMobilityClass(t *testing.T) {
	for input, expected := range map[string]MobilityClass{
		"MultiLineFlexible": MultiLineFlexible,
		"restricted_pair":   RestrictedPair,
		"fixed":             FixedLine,
	} {
		got, err := ParseMobilityClass(input)
		if err != nil {
			t.Errorf("ParseMobilityClass(%q) failed: %v", input, err)
		}
		if got != expected {
			t.Errorf("ParseMobilityClass(%q): expected %s, got %s", input, expected, got)
		}
	}

	if _, err := ParseMobilityClass("teleport"); err == nil {
		t.Error("Expected error for unknown class")
	}
}
