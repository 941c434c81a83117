package costfolio

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/costfolio/costfolio/date"
	"github.com/costfolio/costfolio/resolver"
)

// AssetValuation is one asset's contribution to a daily snapshot.
type AssetValuation struct {
	Asset    string        `json:"asset"`
	Quantity Quantity      `json:"quantity"`
	Price    Money         `json:"price"`
	Tier     resolver.Tier `json:"tier"`
	Value    Money         `json:"value"`
}

// ValuationSnapshot is the portfolio's value at end of one day. Assets
// whose price could not be resolved contribute zero and are listed in
// Unresolved so the gap is visible instead of silently flattening the
// curve.
type ValuationSnapshot struct {
	Date       date.Date        `json:"date"`
	Total      Money            `json:"total"`
	Assets     []AssetValuation `json:"assets"`
	Unresolved []string         `json:"unresolved,omitempty"`
}

// ValuationOptions configures BuildTimeSeries.
type ValuationOptions struct {
	Quoter   Quoter
	Currency string
	// Workers bounds how many days are valued in parallel. Defaults to 4.
	Workers int
	Logger  *slog.Logger
}

// BuildTimeSeries values the grid for every day of the range and returns
// one snapshot per day, in date order. Stale prices count as resolved;
// only assets with no usable price at all end up in Unresolved.
func BuildTimeSeries(ctx context.Context, grid *PositionGrid, rng date.Range, opts ValuationOptions) []ValuationSnapshot {
	if opts.Currency == "" {
		opts.Currency = "USD"
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	days := make([]date.Date, 0, rng.Len())
	for day := range rng.Days() {
		days = append(days, day)
	}
	snaps := make([]ValuationSnapshot, len(days))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				snaps[i] = snapshotDay(ctx, grid, days[i], opts)
			}
		}()
	}
send:
	for i := range days {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break send
		}
	}
	close(jobs)
	wg.Wait()
	return snaps
}

func snapshotDay(ctx context.Context, grid *PositionGrid, day date.Date, opts ValuationOptions) ValuationSnapshot {
	snap := ValuationSnapshot{Date: day, Total: M(0, opts.Currency)}
	holdings := grid.Holdings(day)

	assets := make([]string, 0, len(holdings))
	for asset := range holdings {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	for _, asset := range assets {
		qty := holdings[asset]
		av := AssetValuation{
			Asset:    asset,
			Quantity: qty,
			Price:    M(0, opts.Currency),
			Tier:     resolver.TierUnresolved,
			Value:    M(0, opts.Currency),
		}
		if opts.Quoter != nil {
			q, err := opts.Quoter.Quote(ctx, asset, day)
			if err == nil && q.Resolved() {
				av.Price = M(q.Price, opts.Currency)
				av.Tier = q.Tier
				av.Value = av.Price.Mul(qty)
			}
		}
		if av.Tier == resolver.TierUnresolved {
			opts.Logger.Warn("asset unresolved in snapshot", "asset", asset, "date", day.String())
			snap.Unresolved = append(snap.Unresolved, asset)
		}
		snap.Total = snap.Total.Add(av.Value)
		snap.Assets = append(snap.Assets, av)
	}
	return snap
}
