package resolver

import (
	"context"

	"github.com/costfolio/costfolio/date"
	"github.com/shopspring/decimal"
)

// Fixed is the terminal tier: a static table of pinned prices, typically
// stablecoins pinned to 1.0 in the reporting currency.
type Fixed struct {
	pins map[string]decimal.Decimal
}

// NewFixed pins each asset to a constant price.
func NewFixed(pins map[string]decimal.Decimal) *Fixed {
	cp := make(map[string]decimal.Decimal, len(pins))
	for asset, price := range pins {
		cp[asset] = price
	}
	return &Fixed{pins: cp}
}

// Stablecoins returns a Fixed tier pinning the given assets to 1.0.
func Stablecoins(assets ...string) *Fixed {
	pins := make(map[string]decimal.Decimal, len(assets))
	one := decimal.NewFromInt(1)
	for _, a := range assets {
		pins[a] = one
	}
	return &Fixed{pins: pins}
}

func (f *Fixed) Tier() Tier { return TierFixed }

func (f *Fixed) Lookup(_ context.Context, asset string, _ date.Date) (decimal.Decimal, bool, error) {
	price, ok := f.pins[asset]
	return price, ok, nil
}
