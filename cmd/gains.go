package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/costfolio/costfolio"
	"github.com/costfolio/costfolio/renderer"
	"github.com/google/subcommands"
)

type gainsCmd struct {
	app
	from string
	to   string
	out  string
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "realized gains per asset" }
func (*gainsCmd) Usage() string {
	return `gains [-from YYYY-MM-DD] [-to YYYY-MM-DD] [-o file.jsonl]:
  Replay the stream and report realized gains per asset over the range.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.from, "from", "", "first day of the range")
	f.StringVar(&c.to, "to", "", "last day of the range")
	f.StringVar(&c.out, "o", "", "write the disposal records to this jsonl file")
}

func (c *gainsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	ledger := costfolio.NewLedger(ledgerOptions(cfg, eng.resolver, log))
	disposals, err := ledger.ProcessAll(ctx, txs)
	if err != nil {
		// A broken stream still yields records for healthy assets;
		// report what we can but say what went wrong.
		fmt.Fprintln(os.Stderr, "cfo:", err)
	}
	for _, warn := range ledger.Warnings() {
		fmt.Fprintln(os.Stderr, "cfo: warning:", warn)
	}

	grid := costfolio.BuildDailyQuantities(txs)
	rng, rerr := resolveRange(c.from, c.to, grid)
	if rerr != nil {
		return fail(rerr)
	}
	if c.out != "" {
		if err := costfolio.SaveJSONL(c.out, disposals); err != nil {
			return fail(err)
		}
	}
	report := costfolio.BuildGainsReport(rng, disposals, cfg.Currency)
	report.AttachOpenPositions(ledger)
	printMarkdown(renderer.Gains(report))
	if err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
