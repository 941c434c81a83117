package costfolio

import "github.com/costfolio/costfolio/date"

// lot is one open acquisition: a quantity still held and its per-unit basis.
type lot struct {
	Acquired date.Date
	Quantity Quantity
	UnitCost Money
	Quality  BasisQuality
}

func (l lot) basis() Money { return l.UnitCost.Mul(l.Quantity) }

// book tracks the open lots of a single asset under one cost basis method.
//
// Under FIFO the lots are kept in acquisition order and consumed oldest
// first. Under average cost every addition is blended into a single pooled
// lot whose acquisition date is the earliest contributing inflow; the pool
// resets when the position returns to zero.
type book struct {
	method CostBasisMethod
	lots   []lot
}

func newBook(method CostBasisMethod) *book { return &book{method: method} }

func (b *book) total() Quantity {
	sum := Q(0)
	for _, l := range b.lots {
		sum = sum.Add(l.Quantity)
	}
	return sum
}

// add opens a new lot. Under average cost it blends into the pooled lot.
func (b *book) add(l lot) {
	if b.method == AverageCost && len(b.lots) == 1 {
		p := b.lots[0]
		qty := p.Quantity.Add(l.Quantity)
		cost := p.basis().Add(l.basis()).Div(qty)
		acquired := p.Acquired
		if l.Acquired.Before(acquired) {
			acquired = l.Acquired
		}
		b.lots[0] = lot{Acquired: acquired, Quantity: qty, UnitCost: cost, Quality: p.Quality.worse(l.Quality)}
		return
	}
	b.lots = append(b.lots, l)
}

// consume closes quantity qty against the open lots, oldest first, and
// returns the per-lot matches. The second result is the shortfall: a
// positive value means the book could not cover the full quantity.
func (b *book) consume(qty Quantity, on date.Date) ([]LotMatch, Quantity) {
	var matches []LotMatch
	rest := qty
	for len(b.lots) > 0 && rest.IsPositive() {
		l := &b.lots[0]
		take := rest
		if l.Quantity.LessThan(take) {
			take = l.Quantity
		}
		matches = append(matches, LotMatch{
			Acquired:    l.Acquired,
			Quantity:    take,
			CostBasis:   l.UnitCost.Mul(take),
			HoldingDays: on.DaysSince(l.Acquired),
			Term:        TermOf(l.Acquired, on),
			Quality:     l.Quality,
		})
		l.Quantity = l.Quantity.Sub(take)
		rest = rest.Sub(take)
		if l.Quantity.IsZero() {
			b.lots = b.lots[1:]
		}
	}
	return matches, rest
}

// carve removes quantity qty from the open lots, oldest first, preserving
// each portion's acquisition date and unit cost. It is how transfers move
// basis between accounts without realizing a gain. The second result is
// the shortfall, as for consume.
func (b *book) carve(qty Quantity) ([]lot, Quantity) {
	var carved []lot
	rest := qty
	for len(b.lots) > 0 && rest.IsPositive() {
		l := &b.lots[0]
		take := rest
		if l.Quantity.LessThan(take) {
			take = l.Quantity
		}
		carved = append(carved, lot{Acquired: l.Acquired, Quantity: take, UnitCost: l.UnitCost, Quality: l.Quality})
		l.Quantity = l.Quantity.Sub(take)
		rest = rest.Sub(take)
		if l.Quantity.IsZero() {
			b.lots = b.lots[1:]
		}
	}
	return carved, rest
}
