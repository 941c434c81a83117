package cmd

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/costfolio/costfolio"
	"github.com/costfolio/costfolio/resolver"
	"github.com/google/subcommands"
)

type fetchCmd struct {
	app
	from string
	to   string
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "warm the price caches for the stream's assets" }
func (*fetchCmd) Usage() string {
	return `fetch [-from YYYY-MM-DD] [-to YYYY-MM-DD]:
  Resolve a price for every asset and day the stream touches, writing
  hits back into the primary store and the local cache.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.from, "from", "", "first day to fetch")
	f.StringVar(&c.to, "to", "", "last day to fetch")
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.config()
	if err != nil {
		return fail(err)
	}
	log := c.logger()
	txs, err := c.transactions(cfg)
	if err != nil {
		return fail(err)
	}
	eng, err := c.openEngine(cfg, log)
	if err != nil {
		return fail(err)
	}
	defer eng.Close()

	grid := costfolio.BuildDailyQuantities(txs)
	rng, err := resolveRange(c.from, c.to, grid)
	if err != nil {
		return fail(err)
	}
	cov := eng.resolver.EnsureCoverage(ctx, grid.Assets(), rng)

	fmt.Printf("resolved %d of %d asset-days over %s\n", cov.Resolved(), cov.Assets*cov.Days, rng)
	tiers := make([]string, 0, len(cov.ByTier))
	for tier := range cov.ByTier {
		tiers = append(tiers, string(tier))
	}
	sort.Strings(tiers)
	for _, tier := range tiers {
		fmt.Printf("  %-10s %d\n", tier, cov.ByTier[resolver.Tier(tier)])
	}
	if len(cov.Missing) > 0 {
		var miss []string
		for _, m := range cov.Missing {
			miss = append(miss, fmt.Sprintf("%s@%s", m.Asset, m.Date))
		}
		fmt.Printf("unresolved: %s\n", strings.Join(miss, " "))
	}
	return subcommands.ExitSuccess
}
