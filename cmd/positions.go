package cmd

import (
	"context"
	"flag"

	"github.com/costfolio/costfolio"
	"github.com/costfolio/costfolio/date"
	"github.com/costfolio/costfolio/renderer"
	"github.com/google/subcommands"
)

type positionsCmd struct {
	app
	on string
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "held quantity per asset on a day" }
func (*positionsCmd) Usage() string {
	return `positions [-date YYYY-MM-DD] [-accounts a,b]:
  Print the forward-filled holdings on a day, today by default.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.on, "date", "", "day to report, defaults to today")
}

func (c *positionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.config()
	if err != nil {
		return fail(err)
	}
	txs, err := c.transactions(cfg)
	if err != nil {
		return fail(err)
	}
	on := date.Today()
	if c.on != "" {
		if on, err = date.Parse(c.on); err != nil {
			return fail(err)
		}
	}
	grid := costfolio.BuildDailyQuantities(txs)
	printMarkdown(renderer.Positions(grid, on))
	return subcommands.ExitSuccess
}
