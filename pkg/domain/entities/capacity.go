package entities

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// LineCapacity maps each line to its maximum daily quantity
type LineCapacity map[LineID]Quantity

// Lines returns the configured lines in sorted order
func (c LineCapacity) Lines() []LineID {
	lines := make([]LineID, 0, len(c))
	for line := range c {
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i] < lines[j] })
	return lines
}

// Max returns the daily capacity of a line
func (c LineCapacity) Max(line LineID) (Quantity, error) {
	capacity, ok := c[line]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownLine, line)
	}
	return capacity, nil
}

// DestinationSlot is the capacity state of one (date, line)
type DestinationSlot struct {
	Location    Location
	CurrentLoad Quantity
	Remaining   Quantity
	Max         Quantity
}

var hundred = decimal.NewFromInt(100)

// UsageRate returns the current load as a percentage of max
func (s *DestinationSlot) UsageRate() decimal.Decimal {
	if s.Max <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(s.CurrentLoad)).Div(decimal.NewFromInt(int64(s.Max))).Mul(hundred)
}

// CapacityTable holds the destination slots of a single reallocation run.
// Remaining headroom is consumed in place as moves are accepted, so one
// table must never be shared between runs.
type CapacityTable struct {
	slots map[string]*DestinationSlot
	order []string
}

// NewCapacityTable creates an empty capacity table
func NewCapacityTable() *CapacityTable {
	return &CapacityTable{
		slots: make(map[string]*DestinationSlot),
	}
}

// Put adds or replaces a slot
func (t *CapacityTable) Put(slot DestinationSlot) {
	key := slot.Location.String()
	if _, exists := t.slots[key]; !exists {
		t.order = append(t.order, key)
	}
	s := slot
	t.slots[key] = &s
}

// Slot returns the slot at loc, or nil if the table does not cover it
func (t *CapacityTable) Slot(loc Location) *DestinationSlot {
	return t.slots[loc.String()]
}

// Remaining returns the headroom left at loc and whether loc is covered
func (t *CapacityTable) Remaining(loc Location) (Quantity, bool) {
	slot := t.Slot(loc)
	if slot == nil {
		return 0, false
	}
	return slot.Remaining, true
}

// Consume draws qty from the headroom at loc
func (t *CapacityTable) Consume(loc Location, qty Quantity) error {
	slot := t.Slot(loc)
	if slot == nil {
		return fmt.Errorf("no capacity slot for %s", loc)
	}
	if qty > slot.Remaining {
		return fmt.Errorf("cannot consume %d at %s: only %d remaining", qty, loc, slot.Remaining)
	}
	slot.Remaining -= qty
	return nil
}

// Slots returns all slots ordered by date, then line
func (t *CapacityTable) Slots() []*DestinationSlot {
	slots := make([]*DestinationSlot, 0, len(t.order))
	for _, key := range t.order {
		slots = append(slots, t.slots[key])
	}
	sort.SliceStable(slots, func(i, j int) bool {
		if !slots[i].Location.Date.Equal(slots[j].Location.Date) {
			return slots[i].Location.Date.Before(slots[j].Location.Date)
		}
		return slots[i].Location.Line < slots[j].Location.Line
	})
	return slots
}

// Len returns the number of slots in the table
func (t *CapacityTable) Len() int {
	return len(t.slots)
}

// Clone returns an independent copy of the table
func (t *CapacityTable) Clone() *CapacityTable {
	clone := NewCapacityTable()
	for _, key := range t.order {
		clone.Put(*t.slots[key])
	}
	return clone
}

// Subset returns a table restricted to the given locations. Slots are
// shared with t, so consuming through the subset also consumes in t.
// Locations t does not cover are skipped.
func (t *CapacityTable) Subset(locs ...Location) *CapacityTable {
	subset := NewCapacityTable()
	for _, loc := range locs {
		key := loc.String()
		slot, ok := t.slots[key]
		if !ok {
			continue
		}
		if _, exists := subset.slots[key]; !exists {
			subset.order = append(subset.order, key)
		}
		subset.slots[key] = slot
	}
	return subset
}
