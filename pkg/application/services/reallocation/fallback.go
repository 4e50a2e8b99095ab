package reallocation

import (
	"fmt"
	"sort"

	"github.com/vsinha/rebalance/pkg/application/dto"
	"github.com/vsinha/rebalance/pkg/domain/entities"
)

// Fallback stage names, as they appear on diagnostics
const (
	StageProposal        = "proposal"
	StageFallbackSameDay = "fallback/same-day"
	StageFallbackFuture  = "fallback/future"
	StageFallback        = "fallback"
)

// FallbackPlanner greedily completes a shortfall. Every move it generates
// goes through the validator, so it never consumes capacity or slack
// directly.
type FallbackPlanner struct {
	validator *Validator
	table     *entities.CapacityTable
	movable   *entities.MovableSet
	target    entities.Location

	moves       []entities.Move
	diagnostics []dto.Diagnostic
	submitted   int
}

// NewFallbackPlanner creates a planner sharing the validator's table and set
func NewFallbackPlanner(
	validator *Validator,
	table *entities.CapacityTable,
	movable *entities.MovableSet,
	target entities.Location,
) *FallbackPlanner {
	return &FallbackPlanner{
		validator: validator,
		table:     table,
		movable:   movable,
		target:    target,
	}
}

// Plan tries to move remaining more quantity in the given direction and
// returns the accepted moves. A shortfall left after both passes is
// reported as a ShortfallUnresolved diagnostic.
func (p *FallbackPlanner) Plan(direction entities.Direction, remaining entities.Quantity) ([]entities.Move, []dto.Diagnostic) {
	p.moves = nil
	p.diagnostics = nil
	p.submitted = 0

	if remaining <= 0 {
		return nil, nil
	}

	switch direction {
	case entities.Reduce:
		remaining = p.reduceSameDay(remaining)
		remaining = p.reduceFuture(remaining)
	case entities.Increase:
		remaining = p.increaseSameDay(remaining)
		remaining = p.increaseFuture(remaining)
	}

	if remaining > 0 {
		p.diagnostics = append(p.diagnostics, dto.Diagnostic{
			Kind:    dto.ShortfallUnresolved,
			Stage:   StageFallback,
			Index:   -1,
			Message: fmt.Sprintf("shortfall of %d remains after fallback", remaining),
		})
	}

	return p.moves, p.diagnostics
}

// reduceSameDay moves target-slot items to other lines on the target
// date, most buffered items first, each time picking the line with the
// most headroom
func (p *FallbackPlanner) reduceSameDay(remaining entities.Quantity) entities.Quantity {
	for _, item := range p.itemsAt(p.target) {
		for remaining > 0 {
			dest := p.roomiestSameDayLine(item)
			if dest == nil {
				break
			}
			take := p.take(item, remaining, dest.Remaining)
			if take <= 0 {
				break
			}
			reason := fmt.Sprintf("same-day transfer to %s (buffer %dd)", dest.Location.Line, item.BufferDays)
			moved, ok := p.submit(StageFallbackSameDay, item, take, dest.Location, reason)
			if !ok {
				break
			}
			remaining -= moved
		}
		if remaining <= 0 {
			break
		}
	}
	return remaining
}

// reduceFuture defers target-slot items to later workdays on the same line
func (p *FallbackPlanner) reduceFuture(remaining entities.Quantity) entities.Quantity {
	future := p.futureSlots()
	for _, item := range p.itemsAt(p.target) {
		for _, slot := range future {
			if remaining <= 0 {
				return remaining
			}
			take := p.take(item, remaining, slot.Remaining)
			if take <= 0 {
				continue
			}
			reason := fmt.Sprintf("deferred to %s (buffer %dd)", slot.Location.Date.Format(entities.DateLayout), item.BufferDays)
			if moved, ok := p.submit(StageFallbackFuture, item, take, slot.Location, reason); ok {
				remaining -= moved
			}
		}
	}
	return remaining
}

// increaseSameDay pulls flexible items from other lines on the target date.
// Restricted and fixed items are never sourced cross-line here.
func (p *FallbackPlanner) increaseSameDay(remaining entities.Quantity) entities.Quantity {
	var sources []*entities.MovableItem
	for _, item := range p.movable.Items() {
		if item.Source.SameDay(p.target) &&
			item.Source.Line != p.target.Line &&
			item.Mobility.Class == entities.MultiLineFlexible {
			sources = append(sources, item)
		}
	}
	sortByBuffer(sources)

	for _, item := range sources {
		if remaining <= 0 {
			break
		}
		headroom, ok := p.table.Remaining(p.target)
		if !ok {
			break
		}
		take := p.take(item, remaining, headroom)
		if take <= 0 {
			continue
		}
		reason := fmt.Sprintf("pulled from %s (buffer %dd)", item.Source.Line, item.BufferDays)
		if moved, ok := p.submit(StageFallbackSameDay, item, take, p.target, reason); ok {
			remaining -= moved
		}
	}
	return remaining
}

// increaseFuture pulls items forward from later dates on the target line.
// A source day never gives up more than it produces.
func (p *FallbackPlanner) increaseFuture(remaining entities.Quantity) entities.Quantity {
	var sources []*entities.MovableItem
	budget := make(map[string]entities.Quantity)
	for _, item := range p.movable.Items() {
		if item.Source.Line == p.target.Line && item.Source.Date.After(p.target.Date) {
			sources = append(sources, item)
			budget[item.Source.String()] += item.CurrentQty
		}
	}
	sortByBuffer(sources)
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Source.Date.Before(sources[j].Source.Date)
	})

	for _, item := range sources {
		if remaining <= 0 {
			break
		}
		headroom, ok := p.table.Remaining(p.target)
		if !ok {
			break
		}
		key := item.Source.String()
		take := p.take(item, entities.MinQuantity(remaining, budget[key]), headroom)
		if take <= 0 {
			continue
		}
		reason := fmt.Sprintf("pulled forward from %s (buffer %dd)", item.Source.Date.Format(entities.DateLayout), item.BufferDays)
		if moved, ok := p.submit(StageFallbackFuture, item, take, p.target, reason); ok {
			remaining -= moved
			budget[key] -= moved
		}
	}
	return remaining
}

// take is the largest whole-pallet quantity within the need, the item's
// unspent slack and the destination headroom
func (p *FallbackPlanner) take(item *entities.MovableItem, need, headroom entities.Quantity) entities.Quantity {
	return entities.MinQuantity(need, p.movable.Remaining(item), headroom).FloorToPallet(item.PalletSize)
}

func (p *FallbackPlanner) submit(
	stage string,
	item *entities.MovableItem,
	qty entities.Quantity,
	to entities.Location,
	reason string,
) (entities.Quantity, bool) {
	candidate := entities.Candidate{
		Item:     string(item.Item),
		Quantity: qty,
		From:     item.Source.String(),
		To:       to.String(),
		Reason:   reason,
	}

	move, diag := p.validator.ValidateOne(candidate)
	if diag != nil {
		diag.Stage = stage
		diag.Index = p.submitted
		p.diagnostics = append(p.diagnostics, *diag)
	}
	p.submitted++

	if move == nil {
		return 0, false
	}
	p.moves = append(p.moves, *move)
	return move.Quantity, true
}

// itemsAt returns the items sourced at loc, most buffered first
func (p *FallbackPlanner) itemsAt(loc entities.Location) []*entities.MovableItem {
	var items []*entities.MovableItem
	for _, item := range p.movable.Items() {
		if item.Source.String() == loc.String() {
			items = append(items, item)
		}
	}
	sortByBuffer(items)
	return items
}

// roomiestSameDayLine picks the permitted other line on the target date
// with the most headroom. Ties go to the first line in table order.
func (p *FallbackPlanner) roomiestSameDayLine(item *entities.MovableItem) *entities.DestinationSlot {
	var best *entities.DestinationSlot
	for _, slot := range p.table.Slots() {
		if !slot.Location.SameDay(p.target) || slot.Location.Line == item.Source.Line {
			continue
		}
		if !item.Mobility.AllowsLine(slot.Location.Line) || slot.Remaining < item.PalletSize {
			continue
		}
		if best == nil || slot.Remaining > best.Remaining {
			best = slot
		}
	}
	return best
}

// futureSlots returns the target line's slots after the target date
func (p *FallbackPlanner) futureSlots() []*entities.DestinationSlot {
	var slots []*entities.DestinationSlot
	for _, slot := range p.table.Slots() {
		if slot.Location.Line == p.target.Line && slot.Location.Date.After(p.target.Date) {
			slots = append(slots, slot)
		}
	}
	return slots
}

// sortByBuffer orders items by buffer days descending, keeping plan order on ties
func sortByBuffer(items []*entities.MovableItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].BufferDays > items[j].BufferDays
	})
}
