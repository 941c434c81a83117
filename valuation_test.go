package costfolio

import (
	"context"
	"testing"

	"github.com/costfolio/costfolio/date"
	"github.com/costfolio/costfolio/resolver"
	"github.com/shopspring/decimal"
)

func TestBuildTimeSeries(t *testing.T) {
	txs := []Transaction{
		tx("t1", "2023-01-10", "BTC", Buy, 1, 20000),
		tx("t2", "2023-01-11", "ETH", Buy, 2, 1500),
	}
	quoter := &fakeQuoter{prices: map[string]float64{
		"BTC|2023-01-10": 20000,
		"BTC|2023-01-11": 21000,
		"BTC|2023-01-12": 22000,
		"ETH|2023-01-11": 1500,
		"ETH|2023-01-12": 1600,
	}}
	grid := BuildDailyQuantities(txs)
	rng, _ := date.NewRange(date.MustParse("2023-01-10"), date.MustParse("2023-01-12"))

	snaps := BuildTimeSeries(context.Background(), grid, rng, ValuationOptions{
		Quoter: quoter, Currency: "USD", Workers: 2,
	})
	if len(snaps) != 3 {
		t.Fatalf("got %d snapshots, want 3", len(snaps))
	}
	// Snapshots come back in date order regardless of worker scheduling.
	for i, day := range []string{"2023-01-10", "2023-01-11", "2023-01-12"} {
		if snaps[i].Date != date.MustParse(day) {
			t.Fatalf("snapshot %d is %s, want %s", i, snaps[i].Date, day)
		}
	}
	if want := M(20000, "USD"); !snaps[0].Total.Equal(want) {
		t.Errorf("day 1 total %s, want %s", snaps[0].Total, want)
	}
	if want := M(24000, "USD"); !snaps[1].Total.Equal(want) {
		t.Errorf("day 2 total %s, want %s", snaps[1].Total, want)
	}
	if want := M(25200, "USD"); !snaps[2].Total.Equal(want) {
		t.Errorf("day 3 total %s, want %s", snaps[2].Total, want)
	}
}

func TestUnresolvedAssetSurfacesInSnapshot(t *testing.T) {
	txs := []Transaction{
		tx("t1", "2023-01-10", "BTC", Buy, 1, 20000),
		tx("t2", "2023-01-10", "MYSTERY", Buy, 100, 0),
	}
	quoter := &fakeQuoter{prices: map[string]float64{"BTC|2023-01-10": 20000}}
	grid := BuildDailyQuantities(txs)
	rng, _ := date.NewRange(date.MustParse("2023-01-10"), date.MustParse("2023-01-10"))

	snaps := BuildTimeSeries(context.Background(), grid, rng, ValuationOptions{Quoter: quoter, Currency: "USD"})
	s := snaps[0]
	if len(s.Unresolved) != 1 || s.Unresolved[0] != "MYSTERY" {
		t.Fatalf("unresolved = %v, want [MYSTERY]", s.Unresolved)
	}
	// The unpriced asset contributes zero rather than poisoning the total.
	if want := M(20000, "USD"); !s.Total.Equal(want) {
		t.Errorf("total %s, want %s", s.Total, want)
	}
}

// staleQuoter serves every request as a stale quote.
type staleQuoter struct{}

func (staleQuoter) Quote(_ context.Context, asset string, on date.Date) (resolver.Quote, error) {
	return resolver.Quote{
		Asset: asset, Date: on,
		Price: decimal.NewFromInt(100),
		Tier:  resolver.TierStale,
		AsOf:  on.Add(-3),
	}, nil
}

func TestStaleQuoteCountsAsResolved(t *testing.T) {
	txs := []Transaction{tx("t1", "2023-01-10", "BTC", Buy, 1, 0)}
	grid := BuildDailyQuantities(txs)
	rng, _ := date.NewRange(date.MustParse("2023-01-10"), date.MustParse("2023-01-10"))

	snaps := BuildTimeSeries(context.Background(), grid, rng, ValuationOptions{Quoter: staleQuoter{}, Currency: "USD"})
	s := snaps[0]
	if len(s.Unresolved) != 0 {
		t.Fatalf("stale price listed as unresolved: %v", s.Unresolved)
	}
	if want := M(100, "USD"); !s.Total.Equal(want) {
		t.Errorf("total %s, want %s", s.Total, want)
	}
	if s.Assets[0].Tier != resolver.TierStale {
		t.Errorf("tier %s, want %s", s.Assets[0].Tier, resolver.TierStale)
	}
}
