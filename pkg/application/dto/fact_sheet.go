package dto

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/rebalance/pkg/domain/entities"
)

// FactSheet is the machine-readable summary handed to a proposer
type FactSheet struct {
	Target      entities.Location  `json:"target"`
	Direction   entities.Direction `json:"direction"`
	Quantity    entities.Quantity  `json:"quantity"`
	CurrentLoad entities.Quantity  `json:"current_load"`
	Capacity    entities.Quantity  `json:"capacity"`
	Items       []FactItem         `json:"items"`
	Slots       []FactSlot         `json:"slots"`
}

// MovableItems returns the items with at least one pallet of slack
func (f *FactSheet) MovableItems() []FactItem {
	var out []FactItem
	for _, item := range f.Items {
		if item.Movable {
			out = append(out, item)
		}
	}
	return out
}

// FactItem describes one source item
type FactItem struct {
	Item       entities.ItemName      `json:"item"`
	Source     entities.Location      `json:"source"`
	CurrentQty entities.Quantity      `json:"current_qty"`
	PalletSize entities.Quantity      `json:"plt"`
	MaxMovable entities.Quantity      `json:"max_movable"`
	BufferDays int                    `json:"buffer_days"`
	LastDue    string                 `json:"last_due,omitempty"`
	Class      entities.MobilityClass `json:"mobility"`
	CrossLines []entities.LineID      `json:"cross_lines,omitempty"`
	Movable    bool                   `json:"movable"`
}

// FactSlot describes one destination slot
type FactSlot struct {
	Location    entities.Location `json:"location"`
	CurrentLoad entities.Quantity `json:"current_load"`
	Remaining   entities.Quantity `json:"remaining"`
	Max         entities.Quantity `json:"max"`
	UsageRate   decimal.Decimal   `json:"usage_rate"`
}

// Proposal is a proposer's answer: a strategy summary plus candidate moves
type Proposal struct {
	Strategy    string
	Explanation string
	Moves       []entities.Candidate
	// Source names where the proposal came from, for the report
	Source string
}
