package reallocation

import (
	"fmt"

	"github.com/vsinha/rebalance/pkg/application/dto"
	"github.com/vsinha/rebalance/pkg/domain/entities"
	"github.com/vsinha/rebalance/pkg/domain/services"
)

// Validator accepts, repairs or rejects candidate moves against the hard
// constraints of one run. It is the only writer of the run's capacity
// table and movable set, and consumes them in call order.
type Validator struct {
	table    *entities.CapacityTable
	movable  *entities.MovableSet
	calendar *services.Calendar
}

// NewValidator creates a validator over the run's mutable state
func NewValidator(table *entities.CapacityTable, movable *entities.MovableSet, calendar *services.Calendar) *Validator {
	return &Validator{
		table:    table,
		movable:  movable,
		calendar: calendar,
	}
}

// Validate checks candidates in list order. A rejected candidate never
// stops the batch; every rejection and adjustment yields a diagnostic.
func (v *Validator) Validate(stage string, candidates []entities.Candidate) ([]entities.Move, []dto.Diagnostic) {
	var accepted []entities.Move
	var diagnostics []dto.Diagnostic

	for i, candidate := range candidates {
		move, diag := v.ValidateOne(candidate)
		if diag != nil {
			diag.Stage = stage
			diag.Index = i
			diagnostics = append(diagnostics, *diag)
		}
		if move != nil {
			accepted = append(accepted, *move)
		}
	}

	return accepted, diagnostics
}

// ValidateOne runs the ordered checks on a single candidate.
// On acceptance the destination headroom and the item's slack are
// consumed before returning. The diagnostic is non-nil for rejections
// and for moves shrunk to fit capacity.
func (v *Validator) ValidateOne(c entities.Candidate) (*entities.Move, *dto.Diagnostic) {
	reject := func(format string, args ...interface{}) (*entities.Move, *dto.Diagnostic) {
		return nil, &dto.Diagnostic{
			Kind:    dto.ProposalInvalid,
			Index:   -1,
			Item:    c.Item,
			Message: fmt.Sprintf(format, args...),
		}
	}

	// 1. item known at its source
	item, ok := v.lookup(c)
	if !ok {
		if c.From == "" {
			return reject("unknown item")
		}
		return reject("unknown item at %s", c.From)
	}

	// 2. positive quantity
	if c.Quantity <= 0 {
		return reject("quantity must be positive, got %d", c.Quantity)
	}

	// 3. within slack
	if movable := v.movable.Remaining(item); c.Quantity > movable {
		return reject("exceeds slack: %d requested, %d movable", c.Quantity, movable)
	}

	// 4. whole pallets
	if !c.Quantity.IsPalletMultiple(item.PalletSize) {
		return reject("not a pallet multiple: %d is not a multiple of %d", c.Quantity, item.PalletSize)
	}

	// 5. destination parses
	to, err := entities.ParseLocation(c.To)
	if err != nil {
		return reject("malformed destination %q", c.To)
	}

	// 6. mobility
	if !item.Mobility.Permits(item.Source, to) {
		return reject("mobility violation: %s item cannot move %s -> %s", item.Mobility.Class, item.Source, to)
	}

	// 7. destination surveyed
	slot := v.table.Slot(to)
	if slot == nil {
		return reject("unknown destination capacity at %s", to)
	}

	// 8. capacity, shrinking to whole pallets when possible
	qty := c.Quantity
	adjusted := false
	if qty > slot.Remaining {
		if slot.Remaining < item.PalletSize {
			return reject("capacity exhausted at %s: %d remaining", to, slot.Remaining)
		}
		qty = slot.Remaining.FloorToPallet(item.PalletSize)
		adjusted = true
	}

	// 9. workday
	if !v.calendar.IsWorkday(to.Date) {
		return reject("non-workday: %s", to.Date.Format(entities.DateLayout))
	}

	move, err := entities.NewMove(item.Item, qty, item.PalletSize, item.Source, to, c.Reason)
	if err != nil {
		return reject("%v", err)
	}
	if err := v.table.Consume(to, qty); err != nil {
		return reject("%v", err)
	}
	if err := v.movable.Spend(item, qty); err != nil {
		return reject("%v", err)
	}

	if !adjusted {
		return move, nil
	}

	move.Adjusted = true
	move.OriginalQuantity = c.Quantity
	return move, &dto.Diagnostic{
		Kind:    dto.CapacityAdjusted,
		Index:   -1,
		Item:    c.Item,
		Message: fmt.Sprintf("quantity adjusted %d -> %d to fit %s", c.Quantity, qty, to),
	}
}

// lookup resolves the candidate's item. An empty source matches by name
// alone, which only succeeds when the name is unique in the set.
func (v *Validator) lookup(c entities.Candidate) (*entities.MovableItem, bool) {
	var source entities.Location
	if c.From != "" {
		parsed, err := entities.ParseLocation(c.From)
		if err != nil {
			return nil, false
		}
		source = parsed
	}
	return v.movable.Lookup(entities.ItemName(c.Item), source)
}
