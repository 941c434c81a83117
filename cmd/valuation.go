package cmd

import (
	"context"
	"flag"

	"github.com/costfolio/costfolio"
	"github.com/costfolio/costfolio/date"
	"github.com/costfolio/costfolio/renderer"
	"github.com/google/subcommands"
)

type valuationCmd struct {
	app
	from string
	to   string
	on   string
	out  string
}

func (*valuationCmd) Name() string     { return "valuation" }
func (*valuationCmd) Synopsis() string { return "daily portfolio value series" }
func (*valuationCmd) Usage() string {
	return `valuation [-from YYYY-MM-DD] [-to YYYY-MM-DD] [-date YYYY-MM-DD] [-o file.jsonl]:
  Value the portfolio for every day of the range. With -date, print a
  single day's breakdown instead. With -o, also write the series as
  jsonl.
`
}

func (c *valuationCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.from, "from", "", "first day of the range")
	f.StringVar(&c.to, "to", "", "last day of the range")
	f.StringVar(&c.on, "date", "", "single day breakdown")
	f.StringVar(&c.out, "o", "", "write the series to this jsonl file")
}

func (c *valuationCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	opts := costfolio.ValuationOptions{
		Quoter:   eng.resolver,
		Currency: cfg.Currency,
		Workers:  cfg.Workers,
		Logger:   log,
	}

	if c.on != "" {
		day, err := date.Parse(c.on)
		if err != nil {
			return fail(err)
		}
		rng, err := date.NewRange(day, day)
		if err != nil {
			return fail(err)
		}
		snaps := costfolio.BuildTimeSeries(ctx, grid, rng, opts)
		printMarkdown(renderer.Snapshot(snaps[0]))
		return subcommands.ExitSuccess
	}

	rng, err := resolveRange(c.from, c.to, grid)
	if err != nil {
		return fail(err)
	}
	snaps := costfolio.BuildTimeSeries(ctx, grid, rng, opts)
	if c.out != "" {
		if err := costfolio.SaveJSONL(c.out, snaps); err != nil {
			return fail(err)
		}
	}
	printMarkdown(renderer.Valuation(snaps))
	return subcommands.ExitSuccess
}
