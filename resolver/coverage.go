package resolver

import (
	"context"

	"github.com/costfolio/costfolio/date"
)

// Coverage summarizes how a set of assets resolved over a day range.
type Coverage struct {
	Assets  int
	Days    int
	ByTier  map[Tier]int
	Missing []Request
}

// Resolved returns how many (asset, day) pairs got a usable price.
func (c Coverage) Resolved() int {
	n := 0
	for tier, count := range c.ByTier {
		if tier != TierUnresolved {
			n += count
		}
	}
	return n
}

// EnsureCoverage resolves every asset for every day of the range, warming
// the writable tiers through the usual write-through path, and reports
// what resolved where. Unresolvable pairs are listed in Missing.
func (r *Resolver) EnsureCoverage(ctx context.Context, assets []string, rng date.Range) Coverage {
	var reqs []Request
	for day := range rng.Days() {
		for _, asset := range assets {
			reqs = append(reqs, Request{Asset: asset, Date: day})
		}
	}
	cov := Coverage{
		Assets: len(assets),
		Days:   rng.Len(),
		ByTier: make(map[Tier]int),
	}
	for _, q := range r.ResolveBatch(ctx, reqs) {
		tier := q.Tier
		if tier == "" {
			tier = TierUnresolved
		}
		cov.ByTier[tier]++
		if !q.Resolved() {
			cov.Missing = append(cov.Missing, Request{Asset: q.Asset, Date: q.Date})
		}
	}
	return cov
}
