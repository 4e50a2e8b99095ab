package reallocation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/rebalance/pkg/domain/entities"
)

// DefaultUtilizationPct is the utilization target used when a request
// names neither a delta nor a utilization
var DefaultUtilizationPct = decimal.NewFromInt(75)

// ResolveDelta converts a request into a signed delta at the target slot.
// An explicit delta wins; otherwise the utilization target (or the
// default) is turned into a target load floor(capacity * pct / 100) and
// the delta is the distance from the current load.
func ResolveDelta(current, capacity entities.Quantity, req Request, defaultPct decimal.Decimal) (entities.Quantity, error) {
	if req.Delta != nil {
		return *req.Delta, nil
	}

	pct := defaultPct
	if req.Utilization.Valid {
		pct = req.Utilization.Decimal
	}
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return 0, fmt.Errorf("utilization must be between 0 and 100, got %s", pct)
	}
	if capacity <= 0 {
		return 0, fmt.Errorf("capacity must be positive, got %d", capacity)
	}

	target := decimal.NewFromInt(int64(capacity)).Mul(pct).Div(hundred).Floor()
	return entities.Quantity(target.IntPart()) - current, nil
}
