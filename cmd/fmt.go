package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/costfolio/costfolio"
	"github.com/google/subcommands"
)

type fmtCmd struct {
	app
	check bool
}

func (*fmtCmd) Name() string     { return "fmt" }
func (*fmtCmd) Synopsis() string { return "rewrite the stream in canonical order" }
func (*fmtCmd) Usage() string {
	return `fmt [-check]:
  Validate every transaction and rewrite the stream sorted by timestamp.
  With -check, report problems without touching the file.
`
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.BoolVar(&c.check, "check", false, "validate only, do not rewrite")
}

func (c *fmtCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.config()
	if err != nil {
		return fail(err)
	}
	txs, err := costfolio.LoadTransactions(cfg.Transactions)
	if err != nil {
		return fail(err)
	}

	bad := 0
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, "cfo:", err)
			bad++
		}
	}
	if bad > 0 {
		fmt.Fprintf(os.Stderr, "cfo: %d malformed transaction(s) in %s\n", bad, cfg.Transactions)
		return subcommands.ExitFailure
	}
	if c.check {
		fmt.Printf("%s: %d transactions, all valid\n", cfg.Transactions, len(txs))
		return subcommands.ExitSuccess
	}
	if err := costfolio.SaveTransactions(cfg.Transactions, txs); err != nil {
		return fail(err)
	}
	fmt.Printf("%s: %d transactions rewritten\n", cfg.Transactions, len(txs))
	return subcommands.ExitSuccess
}
