package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/costfolio/costfolio"
	"github.com/costfolio/costfolio/renderer"
	"github.com/google/subcommands"
)

type taxCmd struct {
	app
	year int
	out  string
}

func (*taxCmd) Name() string     { return "tax" }
func (*taxCmd) Synopsis() string { return "yearly tax report, short and long term" }
func (*taxCmd) Usage() string {
	return `tax [-year YYYY] [-o file.jsonl]:
  Bucket the year's disposals by holding period. Stablecoin disposals
  are excluded.
`
}

func (c *taxCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.IntVar(&c.year, "year", time.Now().Year(), "tax year")
	f.StringVar(&c.out, "o", "", "write the report's disposal records to this jsonl file")
}

func (c *taxCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	disposals, perr := ledger.ProcessAll(ctx, txs)
	if perr != nil {
		fmt.Fprintln(os.Stderr, "cfo:", perr)
	}

	report := costfolio.BuildTaxReport(c.year, disposals, cfg.StableAssets, cfg.Currency)
	if c.out != "" {
		if err := costfolio.SaveJSONL(c.out, report.Records); err != nil {
			return fail(err)
		}
	}
	printMarkdown(renderer.Tax(report))
	if perr != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
