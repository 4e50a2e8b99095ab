package reallocation

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/rebalance/pkg/domain/entities"
)

// DefaultOKThresholdPct is the achievement at which a run counts as OK
var DefaultOKThresholdPct = decimal.NewFromInt(90)

var hundred = decimal.NewFromInt(100)

type mergeKey struct {
	item entities.ItemName
	from string
	to   string
}

// MergeMoves combines moves sharing (item, from, to). Quantities and
// pallets are summed, distinct reasons are joined with "; " and the
// adjusted flags are OR-ed. An adjusted merge carries the sum of what
// each part originally asked for, so it is never below the quantity. The result is ordered by
// quantity descending, then item, source and destination.
func MergeMoves(moves []entities.Move) []entities.Move {
	merged := make(map[mergeKey]*entities.Move)
	reasons := make(map[mergeKey][]string)
	var order []mergeKey

	for _, m := range moves {
		key := mergeKey{item: m.Item, from: m.From.String(), to: m.To.String()}
		existing, ok := merged[key]
		if !ok {
			copied := m
			copied.Reason = ""
			copied.OriginalQuantity = 0
			merged[key] = &copied
			existing = &copied
			order = append(order, key)
		} else {
			existing.Quantity += m.Quantity
			existing.Pallets += m.Pallets
		}
		existing.Adjusted = existing.Adjusted || m.Adjusted
		if m.Adjusted {
			existing.OriginalQuantity += m.OriginalQuantity
		} else {
			existing.OriginalQuantity += m.Quantity
		}
		if m.Reason != "" && !contains(reasons[key], m.Reason) {
			reasons[key] = append(reasons[key], m.Reason)
		}
	}

	result := make([]entities.Move, 0, len(order))
	for _, key := range order {
		m := merged[key]
		m.Reason = strings.Join(reasons[key], "; ")
		if !m.Adjusted {
			m.OriginalQuantity = 0
		}
		result = append(result, *m)
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		if a.Item != b.Item {
			return a.Item < b.Item
		}
		if a.From.String() != b.From.String() {
			return a.From.String() < b.From.String()
		}
		return a.To.String() < b.To.String()
	})

	return result
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// Summary is the achievement of a run against its request
type Summary struct {
	Achieved       entities.Quantity
	AchievementPct decimal.Decimal
	Status         entities.Status
}

// Summarize computes achievement over the accepted moves. A zero request
// needs no action and is fully achieved.
func Summarize(requested entities.Quantity, moves []entities.Move, thresholdPct decimal.Decimal) Summary {
	achieved := entities.TotalQuantity(moves)

	pct := hundred
	if requested > 0 {
		pct = decimal.NewFromInt(int64(achieved)).
			Div(decimal.NewFromInt(int64(requested))).
			Mul(hundred)
	}

	status := entities.StatusPartial
	if pct.GreaterThanOrEqual(thresholdPct) {
		status = entities.StatusOK
	}

	return Summary{
		Achieved:       achieved,
		AchievementPct: pct,
		Status:         status,
	}
}
