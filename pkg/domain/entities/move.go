package entities

import (
	"fmt"
)

// Direction is the sign of a requested change at the target slot
type Direction int

const (
	// Reduce moves quantity out of the target slot
	Reduce Direction = iota
	// Increase pulls quantity into the target slot
	Increase
)

// String method for Direction enum
func (d Direction) String() string {
	switch d {
	case Reduce:
		return "Reduce"
	case Increase:
		return "Increase"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the direction by name
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DirectionOf returns the direction and magnitude of a signed delta
func DirectionOf(delta Quantity) (Direction, Quantity) {
	if delta < 0 {
		return Reduce, -delta
	}
	return Increase, delta
}

// Status is the overall outcome of a reallocation run
type Status int

const (
	StatusOK Status = iota
	StatusPartial
)

// String method for Status enum
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusPartial:
		return "PARTIAL"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the status by name
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Candidate is a proposed move that has not been validated yet.
// Locations stay as text because proposals come from untrusted sources.
type Candidate struct {
	Item     string
	Quantity Quantity
	From     string
	To       string
	Reason   string
}

// Move is an accepted relocation of quantity between two slots
type Move struct {
	Item             ItemName `json:"item"`
	Quantity         Quantity `json:"qty"`
	Pallets          int64    `json:"plt"`
	From             Location `json:"from"`
	To               Location `json:"to"`
	Reason           string   `json:"reason"`
	Adjusted         bool     `json:"adjusted"`
	OriginalQuantity Quantity `json:"original_qty,omitempty"`
}

// NewMove creates a validated Move
func NewMove(item ItemName, quantity, palletSize Quantity, from, to Location, reason string) (*Move, error) {
	if string(item) == "" {
		return nil, fmt.Errorf("item name cannot be empty")
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	if !quantity.IsPalletMultiple(palletSize) {
		return nil, fmt.Errorf("quantity %d is not a multiple of pallet size %d", quantity, palletSize)
	}
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("move locations cannot be empty")
	}

	return &Move{
		Item:     item,
		Quantity: quantity,
		Pallets:  quantity.Pallets(palletSize),
		From:     from,
		To:       to,
		Reason:   reason,
	}, nil
}

// Candidate converts an accepted move back into candidate form
func (m Move) Candidate() Candidate {
	return Candidate{
		Item:     string(m.Item),
		Quantity: m.Quantity,
		From:     m.From.String(),
		To:       m.To.String(),
		Reason:   m.Reason,
	}
}

// TotalQuantity sums the quantities of the given moves
func TotalQuantity(moves []Move) Quantity {
	var total Quantity
	for _, m := range moves {
		total += m.Quantity
	}
	return total
}
