package reallocation

import (
	"fmt"
	"io"
	"strings"

	"github.com/vsinha/rebalance/pkg/application/dto"
	"github.com/vsinha/rebalance/pkg/domain/entities"
)

// BuildFactSheet summarizes the analyzed items and destination slots of a run
func BuildFactSheet(
	target entities.Location,
	direction entities.Direction,
	quantity, currentLoad, capacity entities.Quantity,
	items []*entities.MovableItem,
	table *entities.CapacityTable,
) *dto.FactSheet {
	return &dto.FactSheet{
		Target:      target,
		Direction:   direction,
		Quantity:    quantity,
		CurrentLoad: currentLoad,
		Capacity:    capacity,
		Items:       factItems(items),
		Slots:       factSlots(table),
	}
}

func factItems(items []*entities.MovableItem) []dto.FactItem {
	facts := make([]dto.FactItem, 0, len(items))
	for _, item := range items {
		fact := dto.FactItem{
			Item:       item.Item,
			Source:     item.Source,
			CurrentQty: item.CurrentQty,
			PalletSize: item.PalletSize,
			MaxMovable: item.MaxMovable,
			BufferDays: item.BufferDays,
			Class:      item.Mobility.Class,
			CrossLines: item.Mobility.CrossLines,
			Movable:    item.IsMovable(),
		}
		if !item.LastDue.IsZero() {
			fact.LastDue = item.LastDue.Format(entities.DateLayout)
		}
		facts = append(facts, fact)
	}
	return facts
}

func factSlots(table *entities.CapacityTable) []dto.FactSlot {
	slots := table.Slots()
	facts := make([]dto.FactSlot, 0, len(slots))
	for _, slot := range slots {
		facts = append(facts, dto.FactSlot{
			Location:    slot.Location,
			CurrentLoad: slot.CurrentLoad,
			Remaining:   slot.Remaining,
			Max:         slot.Max,
			UsageRate:   slot.UsageRate(),
		})
	}
	return facts
}

// WriteFactSheet renders the fact sheet as plain text for human proposers.
// Only movable items are listed.
func WriteFactSheet(w io.Writer, facts *dto.FactSheet) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Target: %s\n", facts.Target)
	fmt.Fprintf(&b, "Request: %s %d (load %d of %d)\n", strings.ToLower(facts.Direction.String()), facts.Quantity, facts.CurrentLoad, facts.Capacity)
	b.WriteString("\nMovable items:\n")

	movable := facts.MovableItems()
	if len(movable) == 0 {
		b.WriteString("  (none)\n")
	}
	for i, item := range movable {
		fmt.Fprintf(&b, "%3d. %s @ %s | current %d | max movable %d | PLT %d | buffer %dd | %s",
			i+1, item.Item, item.Source, item.CurrentQty, item.MaxMovable, item.PalletSize, item.BufferDays, item.Class)
		if len(item.CrossLines) > 0 {
			lines := make([]string, len(item.CrossLines))
			for j, line := range item.CrossLines {
				lines[j] = string(line)
			}
			fmt.Fprintf(&b, " -> %s", strings.Join(lines, ","))
		}
		b.WriteString("\n")
	}

	b.WriteString("\nDestination capacity:\n")
	for _, slot := range facts.Slots {
		fmt.Fprintf(&b, "  - %s: %d remaining (usage %s%%)\n", slot.Location, slot.Remaining, slot.UsageRate.StringFixed(1))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
