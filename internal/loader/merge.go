package loader

import (
	"github.com/shopspring/decimal"

	"trading-backoffice/internal/models"
)

// mergeSnapshots collapses rows sharing a business key into one
// volume-weighted row. Output preserves first-seen key order. A group whose
// quantities net to exactly zero is kept unmerged: offsetting positions
// stay visible instead of vanishing. Returns the merged rows and the number
// of collapsed groups.
func mergeSnapshots(positions []models.NetPosition) ([]models.NetPosition, int) {
	order := make([]models.PositionKey, 0, len(positions))
	groups := make(map[models.PositionKey][]models.NetPosition, len(positions))

	for _, p := range positions {
		k := p.Key()
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], p)
	}

	out := make([]models.NetPosition, 0, len(positions))
	merged := 0

	for _, k := range order {
		group := groups[k]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}

		var qty int64
		for _, p := range group {
			qty += p.NetQty
		}
		if qty == 0 {
			out = append(out, group...)
			continue
		}

		notional := decimal.Zero
		for _, p := range group {
			notional = notional.Add(p.AvgPrice.Mul(decimal.NewFromInt(p.NetQty)))
		}
		vwap := notional.Div(decimal.NewFromInt(qty)).Round(3)

		// Rows in a group share the business key, so the first row's
		// identity fields stand for the whole group.
		head := group[0]
		head.NetQty = qty
		head.AvgPrice = vwap
		out = append(out, head)
		merged++
	}

	return out, merged
}
