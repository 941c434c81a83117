package costfolio

import (
	"sort"

	"github.com/costfolio/costfolio/date"
)

// PositionGrid holds the daily quantity of every asset, forward filled:
// a day without transactions carries the last known quantity, and days
// before an asset's first transaction are zero.
type PositionGrid struct {
	assets []string
	hist   map[string]*date.History[Quantity]
}

// BuildDailyQuantities folds a transaction stream into a position grid.
// The stream is ordered and summed per asset; the grid then answers
// quantity-as-of queries for any day.
func BuildDailyQuantities(txs []Transaction) *PositionGrid {
	ordered := make([]Transaction, len(txs))
	copy(ordered, txs)
	SortTransactions(ordered)

	totals := make(map[string]Quantity)
	g := &PositionGrid{hist: make(map[string]*date.History[Quantity])}
	for _, tx := range ordered {
		h, ok := g.hist[tx.Asset]
		if !ok {
			h = &date.History[Quantity]{}
			g.hist[tx.Asset] = h
			g.assets = append(g.assets, tx.Asset)
		}
		total := totals[tx.Asset].Add(tx.Quantity)
		totals[tx.Asset] = total
		h.Append(tx.Date(), total)
	}
	sort.Strings(g.assets)
	return g
}

// Assets returns every asset that ever appears in the grid, sorted.
func (g *PositionGrid) Assets() []string { return g.assets }

// Quantity returns the asset's holding at end of the given day.
func (g *PositionGrid) Quantity(asset string, on date.Date) Quantity {
	h, ok := g.hist[asset]
	if !ok {
		return Q(0)
	}
	_, qty, ok := h.ValueAsOf(on)
	if !ok {
		return Q(0)
	}
	return qty
}

// Holdings returns the nonzero positions at end of the given day,
// keyed by asset.
func (g *PositionGrid) Holdings(on date.Date) map[string]Quantity {
	out := make(map[string]Quantity)
	for _, asset := range g.assets {
		if qty := g.Quantity(asset, on); !qty.IsZero() {
			out[asset] = qty
		}
	}
	return out
}

// Span returns the range from the first transaction day to the last.
// It reports false for an empty grid.
func (g *PositionGrid) Span() (date.Range, bool) {
	var from, to date.Date
	first := true
	for _, h := range g.hist {
		for day := range h.Values() {
			if first || day.Before(from) {
				from = day
			}
			if first || to.Before(day) {
				to = day
			}
			first = false
		}
	}
	if first {
		return date.Range{}, false
	}
	rng, err := date.NewRange(from, to)
	if err != nil {
		return date.Range{}, false
	}
	return rng, true
}
