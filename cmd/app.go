// Package cmd implements the cfo subcommands.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/costfolio/costfolio"
	"github.com/costfolio/costfolio/coingecko"
	"github.com/costfolio/costfolio/config"
	"github.com/costfolio/costfolio/date"
	"github.com/costfolio/costfolio/pricedb"
	"github.com/costfolio/costfolio/resolver"
	"github.com/costfolio/costfolio/resolver/sqlitetier"
	"github.com/google/subcommands"
)

// app carries the flags shared by every subcommand.
type app struct {
	configPath string
	accounts   string
	verbose    bool
}

func (a *app) setFlags(f *flag.FlagSet) {
	f.StringVar(&a.configPath, "config", "costfolio.yaml", "configuration file")
	f.StringVar(&a.accounts, "accounts", "", "comma separated account filter")
	f.BoolVar(&a.verbose, "v", false, "verbose logging")
}

func (a *app) logger() *slog.Logger {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (a *app) config() (config.Config, error) {
	return config.Load(a.configPath)
}

// transactions loads the canonical stream, folds aliased symbols, and
// applies the account filter.
func (a *app) transactions(cfg config.Config) ([]costfolio.Transaction, error) {
	txs, err := costfolio.LoadTransactions(cfg.Transactions)
	if err != nil {
		return nil, err
	}
	for i := range txs {
		txs[i].Asset = cfg.CanonicalAsset(txs[i].Asset)
	}
	if a.accounts == "" {
		return txs, nil
	}
	keep := costfolio.ByAccounts(strings.Split(a.accounts, ",")...)
	return costfolio.FilterTransactions(txs, keep), nil
}

// engine is the wired resolver chain plus the stores behind it.
type engine struct {
	resolver *resolver.Resolver
	store    *sqlitetier.Store
	cache    *pricedb.DB
}

// Close flushes the price cache and closes the primary store.
func (e *engine) Close() error {
	if err := e.cache.Flush(); err != nil {
		e.store.Close()
		return err
	}
	return e.store.Close()
}

// openEngine wires the full tier chain: primary, cache, external, fixed.
func (a *app) openEngine(cfg config.Config, log *slog.Logger) (*engine, error) {
	store, err := sqlitetier.Open(cfg.PriceDB)
	if err != nil {
		return nil, err
	}
	cache, err := pricedb.Open(cfg.PriceCacheDir)
	if err != nil {
		store.Close()
		return nil, err
	}
	gecko := coingecko.New(coingecko.Options{
		APIKey:            cfg.CoinGecko.APIKey,
		Currency:          strings.ToLower(cfg.Currency),
		RequestsPerMinute: cfg.CoinGecko.RequestsPerMinute,
		CacheDir:          cfg.HTTPCacheDir,
		Logger:            log,
	})
	r := resolver.New(resolver.Options{
		Tiers:        []resolver.Source{store, cache, gecko, resolver.Stablecoins(cfg.StableAssets...)},
		MaxStaleDays: cfg.MaxStaleDays,
		Workers:      cfg.Workers,
		MemoTTL:      0,
		Logger:       log,
	})
	return &engine{resolver: r, store: store, cache: cache}, nil
}

// ledgerOptions maps the configuration onto the ledger.
func ledgerOptions(cfg config.Config, quoter costfolio.Quoter, log *slog.Logger) costfolio.LedgerOptions {
	methods := make(map[string]costfolio.CostBasisMethod, len(cfg.Methods))
	for asset, m := range cfg.Methods {
		methods[asset] = costfolio.CostBasisMethod(m)
	}
	return costfolio.LedgerOptions{
		Method:       costfolio.CostBasisMethod(cfg.Method),
		Methods:      methods,
		Currency:     cfg.Currency,
		Quoter:       quoter,
		StableAssets: cfg.StableAssets,
		Logger:       log,
	}
}

// rangeFlag parses -from/-to flags, defaulting to the stream's own span.
func resolveRange(from, to string, grid *costfolio.PositionGrid) (date.Range, error) {
	span, ok := grid.Span()
	if !ok {
		return date.Range{}, fmt.Errorf("no transactions to report on")
	}
	lo, hi := span.From, date.Today()
	if hi.Before(span.To) {
		hi = span.To
	}
	if from != "" {
		d, err := date.Parse(from)
		if err != nil {
			return date.Range{}, fmt.Errorf("invalid -from: %w", err)
		}
		lo = d
	}
	if to != "" {
		d, err := date.Parse(to)
		if err != nil {
			return date.Range{}, fmt.Errorf("invalid -to: %w", err)
		}
		hi = d
	}
	return date.NewRange(lo, hi)
}

// fail prints the error and maps it to an exit status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, "cfo:", err)
	return subcommands.ExitFailure
}

// Register registers every cfo subcommand on the default commander.
func Register() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&positionsCmd{}, "reports")
	subcommands.Register(&valuationCmd{}, "reports")
	subcommands.Register(&gainsCmd{}, "reports")
	subcommands.Register(&taxCmd{}, "reports")
	subcommands.Register(&fetchCmd{}, "prices")
	subcommands.Register(&fmtCmd{}, "stream")
	subcommands.Register(&topicCmd{}, "help")
}

// Execute runs the commander.
func Execute(ctx context.Context) int {
	flag.Parse()
	return int(subcommands.Execute(ctx))
}
