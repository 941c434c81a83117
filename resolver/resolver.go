// Package resolver turns (asset, day) pairs into prices by walking an
// ordered chain of price sources: a primary store, a local cache, external
// providers, then fixed pins. Hits from later tiers are written back to
// earlier writable tiers, and when every tier misses the resolver falls
// back to the most recent cached price before asking for a stale quote to
// be accepted.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/costfolio/costfolio/date"
	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// Tier names the source that served a quote.
type Tier string

const (
	TierPrimary    Tier = "primary"
	TierCache      Tier = "cache"
	TierExternal   Tier = "external"
	TierFixed      Tier = "fixed"
	TierStale      Tier = "stale"
	TierUnresolved Tier = "unresolved"
)

// Quote is a resolved (or unresolved) price for one asset on one day.
//
// AsOf is the day the price was actually recorded. It equals Date except
// for stale quotes, where it names the older day the price came from.
type Quote struct {
	Asset string          `json:"asset"`
	Date  date.Date       `json:"date"`
	Price decimal.Decimal `json:"price"`
	Tier  Tier            `json:"tier"`
	AsOf  date.Date       `json:"as_of"`
}

// Resolved reports whether the quote carries a usable price.
func (q Quote) Resolved() bool { return q.Tier != TierUnresolved && q.Tier != "" }

// Stale reports whether the price was carried forward from an earlier day.
func (q Quote) Stale() bool { return q.Tier == TierStale }

// Source is one tier of the resolution chain.
type Source interface {
	// Tier names the tier for quotes served by this source.
	Tier() Tier
	// Lookup returns the asset's price on exactly the given day. The
	// boolean is false on a miss; errors mean the source itself failed.
	Lookup(ctx context.Context, asset string, on date.Date) (decimal.Decimal, bool, error)
}

// Writer is implemented by sources that accept write-through of prices
// found further down the chain.
type Writer interface {
	Write(ctx context.Context, asset string, on date.Date, price decimal.Decimal) error
}

// Historied is implemented by sources that can serve the most recent price
// at or before a day, enabling the stale fallback.
type Historied interface {
	LookupAsOf(ctx context.Context, asset string, on date.Date) (decimal.Decimal, date.Date, bool, error)
}

// Options configures a Resolver.
type Options struct {
	// Tiers is the resolution chain, highest priority first.
	Tiers []Source
	// MaxStaleDays bounds how far back the stale fallback may reach.
	// Zero disables the fallback.
	MaxStaleDays int
	// Workers bounds the parallelism of ResolveBatch. Defaults to 4.
	Workers int
	// MemoTTL is how long resolved quotes are memoized in process.
	// Zero disables memoization.
	MemoTTL time.Duration
	Logger  *slog.Logger
}

// Resolver resolves prices through a tier chain. Safe for concurrent use.
type Resolver struct {
	opts Options
	log  *slog.Logger
	memo *gocache.Cache

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New returns a Resolver over the given tier chain.
func New(opts Options) *Resolver {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	r := &Resolver{
		opts:  opts,
		log:   opts.Logger,
		locks: make(map[string]*sync.Mutex),
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	if opts.MemoTTL > 0 {
		r.memo = gocache.New(opts.MemoTTL, 2*opts.MemoTTL)
	}
	return r
}

func key(asset string, on date.Date) string { return asset + "|" + on.String() }

// lockFor serializes write-through for one (asset, day) so concurrent
// resolutions of the same key do not race on the backing stores.
func (r *Resolver) lockFor(k string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.locks[k]
	if !ok {
		m = &sync.Mutex{}
		r.locks[k] = m
	}
	return m
}

// Quote resolves the asset's price on the given day. When every tier
// misses and the stale fallback finds nothing, the returned quote has
// TierUnresolved; a tier failure is reported in err but does not stop
// resolution through the remaining tiers.
func (r *Resolver) Quote(ctx context.Context, asset string, on date.Date) (Quote, error) {
	k := key(asset, on)
	if r.memo != nil {
		if v, ok := r.memo.Get(k); ok {
			return v.(Quote), nil
		}
	}

	var firstErr error
	for i, src := range r.opts.Tiers {
		price, ok, err := src.Lookup(ctx, asset, on)
		if err != nil {
			r.log.Warn("price tier failed", "tier", src.Tier(), "asset", asset, "date", on.String(), "err", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("tier %s: %w", src.Tier(), err)
			}
			continue
		}
		if !ok {
			continue
		}
		q := Quote{Asset: asset, Date: on, Price: price, Tier: src.Tier(), AsOf: on}
		r.writeThrough(ctx, q, i)
		r.remember(k, q)
		return q, nil
	}

	if q, ok := r.staleFallback(ctx, asset, on); ok {
		r.remember(k, q)
		return q, nil
	}

	r.log.Warn("price unresolved", "asset", asset, "date", on.String())
	return Quote{Asset: asset, Date: on, Tier: TierUnresolved}, firstErr
}

func (r *Resolver) remember(k string, q Quote) {
	if r.memo != nil {
		r.memo.SetDefault(k, q)
	}
}

// writeThrough copies a hit from tier hit into every earlier writable tier.
func (r *Resolver) writeThrough(ctx context.Context, q Quote, hit int) {
	var writers []Writer
	for _, src := range r.opts.Tiers[:hit] {
		if w, ok := src.(Writer); ok {
			writers = append(writers, w)
		}
	}
	if len(writers) == 0 {
		return
	}
	m := r.lockFor(key(q.Asset, q.Date))
	m.Lock()
	defer m.Unlock()
	for _, w := range writers {
		if err := w.Write(ctx, q.Asset, q.Date, q.Price); err != nil {
			r.log.Warn("price write-through failed", "asset", q.Asset, "date", q.Date.String(), "err", err)
		}
	}
}

// staleFallback serves the most recent price at or before the day from any
// tier with history, bounded by MaxStaleDays.
func (r *Resolver) staleFallback(ctx context.Context, asset string, on date.Date) (Quote, bool) {
	if r.opts.MaxStaleDays <= 0 {
		return Quote{}, false
	}
	best, found := Quote{}, false
	for _, src := range r.opts.Tiers {
		h, ok := src.(Historied)
		if !ok {
			continue
		}
		price, asOf, ok, err := h.LookupAsOf(ctx, asset, on)
		if err != nil || !ok {
			continue
		}
		if on.DaysSince(asOf) > r.opts.MaxStaleDays {
			continue
		}
		if !found || best.AsOf.Before(asOf) {
			best = Quote{Asset: asset, Date: on, Price: price, Tier: TierStale, AsOf: asOf}
			found = true
		}
	}
	if found {
		r.log.Debug("serving stale price", "asset", asset, "date", on.String(), "as_of", best.AsOf.String())
	}
	return best, found
}

// Request is one (asset, day) pair for ResolveBatch.
type Request struct {
	Asset string
	Date  date.Date
}

// ResolveBatch resolves many requests with bounded parallelism, returning
// quotes in request order. Individual failures surface as unresolved
// quotes rather than aborting the batch.
func (r *Resolver) ResolveBatch(ctx context.Context, reqs []Request) []Quote {
	quotes := make([]Quote, len(reqs))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				q, _ := r.Quote(ctx, reqs[i].Asset, reqs[i].Date)
				quotes[i] = q
			}
		}()
	}
send:
	for i := range reqs {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break send
		}
	}
	close(jobs)
	wg.Wait()
	return quotes
}
