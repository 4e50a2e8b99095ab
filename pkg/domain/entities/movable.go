package entities

import (
	"fmt"
	"time"
)

// NoDueDateBufferDays is the buffer assigned to items with no committed demand
const NoDueDateBufferDays = 999

// MovableItem is an item at a source slot with the quantity that can leave
// that slot without breaching any future commitment
type MovableItem struct {
	Item       ItemName
	Source     Location
	CurrentQty Quantity
	PalletSize Quantity
	MaxMovable Quantity
	BufferDays int
	LastDue    time.Time // zero when the item has no committed demand
	Mobility   Mobility
}

// IsMovable reports whether at least one pallet can move
func (m *MovableItem) IsMovable() bool {
	return m.PalletSize > 0 && m.MaxMovable >= m.PalletSize
}

type movableKey struct {
	item   ItemName
	source string
}

// MovableSet indexes the movable items of a run and tracks how much of each
// item's slack has already been spent by accepted moves
type MovableSet struct {
	items []*MovableItem
	index map[movableKey]int
	spent map[movableKey]Quantity
}

// NewMovableSet creates a set from the given items, keeping their order
func NewMovableSet(items []*MovableItem) *MovableSet {
	set := &MovableSet{
		items: make([]*MovableItem, 0, len(items)),
		index: make(map[movableKey]int, len(items)),
		spent: make(map[movableKey]Quantity, len(items)),
	}
	for _, item := range items {
		set.Add(item)
	}
	return set
}

// Add inserts an item; a second item for the same (item, source) replaces the first
func (s *MovableSet) Add(item *MovableItem) {
	key := movableKey{item: item.Item, source: item.Source.String()}
	if i, exists := s.index[key]; exists {
		s.items[i] = item
		return
	}
	s.index[key] = len(s.items)
	s.items = append(s.items, item)
}

// Items returns the items in insertion order
func (s *MovableSet) Items() []*MovableItem {
	return s.items
}

// Len returns the number of items
func (s *MovableSet) Len() int {
	return len(s.items)
}

// Get returns the item at the given source
func (s *MovableSet) Get(item ItemName, source Location) (*MovableItem, bool) {
	i, ok := s.index[movableKey{item: item, source: source.String()}]
	if !ok {
		return nil, false
	}
	return s.items[i], true
}

// Lookup finds an item by name. When source is zero the name must be unique
// in the set.
func (s *MovableSet) Lookup(item ItemName, source Location) (*MovableItem, bool) {
	if !source.IsZero() {
		return s.Get(item, source)
	}
	var found *MovableItem
	for _, candidate := range s.items {
		if candidate.Item != item {
			continue
		}
		if found != nil {
			return nil, false
		}
		found = candidate
	}
	return found, found != nil
}

// Remaining returns how much of the item's slack is still unspent
func (s *MovableSet) Remaining(item *MovableItem) Quantity {
	key := movableKey{item: item.Item, source: item.Source.String()}
	return item.MaxMovable - s.spent[key]
}

// Spend records qty of the item's slack as used
func (s *MovableSet) Spend(item *MovableItem, qty Quantity) error {
	if qty > s.Remaining(item) {
		return fmt.Errorf("cannot spend %d of %s at %s: only %d movable", qty, item.Item, item.Source, s.Remaining(item))
	}
	key := movableKey{item: item.Item, source: item.Source.String()}
	s.spent[key] += qty
	return nil
}

// Clone returns a copy sharing the item definitions but with independent spending
func (s *MovableSet) Clone() *MovableSet {
	clone := NewMovableSet(s.items)
	for key, qty := range s.spent {
		clone.spent[key] = qty
	}
	return clone
}
