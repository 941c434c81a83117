package costfolio

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/costfolio/costfolio/date"
	"github.com/costfolio/costfolio/resolver"
)

// Quoter resolves an asset's fair market price for a calendar day. The
// ledger consults it whenever a transaction carries no price of its own.
type Quoter interface {
	Quote(ctx context.Context, asset string, on date.Date) (resolver.Quote, error)
}

// LedgerOptions configures a Ledger.
type LedgerOptions struct {
	// Method is the default cost basis method for every asset.
	Method CostBasisMethod
	// Methods overrides the method per asset symbol.
	Methods map[string]CostBasisMethod
	// Currency is the reporting currency, e.g. "USD".
	Currency string
	// Quoter supplies fair market prices. May be nil, in which case
	// unpriced flows get a zero basis.
	Quoter Quoter
	// StableAssets are pinned to 1.0 in the reporting currency.
	StableAssets []string
	Logger       *slog.Logger
}

// Ledger replays a canonical transaction stream into open acquisition lots
// and realized disposal records.
//
// Lots are tracked per asset across accounts. A disposal that exceeds the
// held quantity poisons its asset: the oversell is reported as an error and
// every later transaction for that asset is ignored, since the stream is
// authoritative and a shortfall means the stream itself is broken.
type Ledger struct {
	opts   LedgerOptions
	stable map[string]bool
	log    *slog.Logger

	books     map[string]*book
	stash     map[string][]lot
	stashFrom map[string]stashOrigin
	poisoned  map[string]*OversellError
	disposals []DisposalRecord
	warnings  []error
}

// stashOrigin remembers which transaction parked lots under a transfer group.
type stashOrigin struct {
	txID  string
	asset string
}

// NewLedger returns an empty ledger.
func NewLedger(opts LedgerOptions) *Ledger {
	if opts.Method == "" {
		opts.Method = FIFO
	}
	if opts.Currency == "" {
		opts.Currency = "USD"
	}
	l := &Ledger{
		opts:      opts,
		stable:    make(map[string]bool, len(opts.StableAssets)),
		log:       opts.Logger,
		books:     make(map[string]*book),
		stash:     make(map[string][]lot),
		stashFrom: make(map[string]stashOrigin),
		poisoned:  make(map[string]*OversellError),
	}
	if l.log == nil {
		l.log = slog.Default()
	}
	for _, a := range opts.StableAssets {
		l.stable[a] = true
	}
	return l
}

func (l *Ledger) methodFor(asset string) CostBasisMethod {
	if m, ok := l.opts.Methods[asset]; ok {
		return m
	}
	return l.opts.Method
}

func (l *Ledger) bookFor(asset string) *book {
	b, ok := l.books[asset]
	if !ok {
		b = newBook(l.methodFor(asset))
		l.books[asset] = b
	}
	return b
}

// price returns the fair market unit price of asset on the given day and a
// quality grade for bases built on it. Stable assets are pinned to 1.0.
func (l *Ledger) price(ctx context.Context, asset string, on date.Date) (Money, BasisQuality) {
	if l.stable[asset] {
		return M(1, l.opts.Currency), BasisExact
	}
	if l.opts.Quoter == nil {
		return M(0, l.opts.Currency), BasisZero
	}
	q, err := l.opts.Quoter.Quote(ctx, asset, on)
	if err != nil || !q.Resolved() {
		l.log.Warn("no price for flow, basis is zero", "asset", asset, "date", on.String())
		if err != nil {
			l.warnings = append(l.warnings, err)
		}
		return M(0, l.opts.Currency), BasisZero
	}
	return M(q.Price, l.opts.Currency), BasisFairMarket
}

// Apply replays one transaction. The transaction must already be valid;
// ProcessAll handles validation and ordering for whole streams.
//
// An oversell returns the *OversellError and poisons the asset. Applying
// further transactions for a poisoned asset is a no-op returning nil.
func (l *Ledger) Apply(ctx context.Context, tx Transaction) error {
	if _, bad := l.poisoned[tx.Asset]; bad {
		return nil
	}
	if tx.Quantity.IsPositive() {
		l.applyInflow(ctx, tx)
		return nil
	}
	return l.applyOutflow(ctx, tx)
}

func (l *Ledger) applyInflow(ctx context.Context, tx Transaction) {
	b := l.bookFor(tx.Asset)

	if tx.Kind == TransferIn && tx.TransferGroupID != "" {
		if stashed, ok := l.stash[tx.TransferGroupID]; ok {
			for _, s := range stashed {
				b.add(s)
			}
			delete(l.stash, tx.TransferGroupID)
			delete(l.stashFrom, tx.TransferGroupID)
			return
		}
		// No matching transfer_out seen yet. The stream is sorted, so
		// the pair leg is genuinely absent: fall through to a fair
		// market value lot and record the anomaly.
		l.warnings = append(l.warnings, &UnpairedTransferError{
			Asset: tx.Asset, TransactionID: tx.ID, GroupID: tx.TransferGroupID,
		})
	}

	unitCost, quality := M(0, l.opts.Currency), BasisZero
	switch {
	case l.stable[tx.Asset]:
		unitCost, quality = M(1, l.opts.Currency), BasisExact
	case tx.HasUnitPrice():
		unitCost, quality = M(tx.UnitPrice.Decimal(), l.opts.Currency), BasisExact
	default:
		unitCost, quality = l.price(ctx, tx.Asset, tx.Date())
	}
	// A purchase fee is capitalized into the lot's basis.
	if tx.Kind == Buy && !tx.Fee.IsZero() {
		basis := unitCost.Mul(tx.Quantity).Add(M(tx.Fee.Decimal(), l.opts.Currency))
		unitCost = basis.Div(tx.Quantity)
	}
	b.add(lot{Acquired: tx.Date(), Quantity: tx.Quantity, UnitCost: unitCost, Quality: quality})
}

func (l *Ledger) applyOutflow(ctx context.Context, tx Transaction) error {
	b := l.bookFor(tx.Asset)
	qty := tx.Quantity.Abs()

	if tx.Kind == TransferOut {
		held := b.total()
		carved, short := b.carve(qty)
		if short.IsPositive() {
			return l.poison(tx, qty, held)
		}
		if tx.TransferGroupID != "" {
			l.stash[tx.TransferGroupID] = carved
			l.stashFrom[tx.TransferGroupID] = stashOrigin{txID: tx.ID, asset: tx.Asset}
		}
		// Without a group id the quantity simply leaves the portfolio,
		// basis and all. Nothing is realized.
		return nil
	}

	held := b.total()
	matches, short := b.consume(qty, tx.Date())
	if short.IsPositive() {
		return l.poison(tx, qty, held)
	}

	var unitPrice Money
	quality := BasisExact
	switch {
	case l.stable[tx.Asset]:
		unitPrice = M(1, l.opts.Currency)
	case tx.HasUnitPrice():
		unitPrice = M(tx.UnitPrice.Decimal(), l.opts.Currency)
	default:
		unitPrice, quality = l.price(ctx, tx.Asset, tx.Date())
	}

	basis := M(0, l.opts.Currency)
	for _, m := range matches {
		basis = basis.Add(m.CostBasis)
		quality = quality.worse(m.Quality)
	}
	proceeds := unitPrice.Mul(qty)
	fee := M(tx.Fee.Decimal(), l.opts.Currency)
	l.disposals = append(l.disposals, DisposalRecord{
		TransactionID: tx.ID,
		Asset:         tx.Asset,
		Date:          tx.Date(),
		Method:        b.method,
		Quantity:      qty,
		Proceeds:      proceeds,
		CostBasis:     basis,
		Fee:           fee,
		Gain:          proceeds.Sub(basis).Sub(fee),
		Quality:       quality,
		Matches:       matches,
	})
	return nil
}

func (l *Ledger) poison(tx Transaction, requested, held Quantity) error {
	err := &OversellError{
		Asset:         tx.Asset,
		TransactionID: tx.ID,
		Date:          tx.Date(),
		Requested:     requested,
		Available:     held,
	}
	l.poisoned[tx.Asset] = err
	l.log.Error("oversell, halting asset", "asset", tx.Asset, "transaction", tx.ID)
	return err
}

// ProcessAll validates, orders and replays a whole stream. Malformed
// transactions are rejected, oversells halt their asset; both are joined
// into the returned error while healthy assets keep processing.
func (l *Ledger) ProcessAll(ctx context.Context, txs []Transaction) ([]DisposalRecord, error) {
	ordered := make([]Transaction, len(txs))
	copy(ordered, txs)
	SortTransactions(ordered)

	var errs []error
	for _, tx := range ordered {
		if err := tx.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := l.Apply(ctx, tx); err != nil {
			errs = append(errs, err)
		}
	}
	for group, stashed := range l.stash {
		if len(stashed) == 0 {
			continue
		}
		origin := l.stashFrom[group]
		l.warnings = append(l.warnings, &UnpairedTransferError{
			Asset:         origin.asset,
			TransactionID: origin.txID,
			GroupID:       group,
		})
	}
	return l.Disposals(), errors.Join(errs...)
}

// Disposals returns the realized disposal records in chronological order.
func (l *Ledger) Disposals() []DisposalRecord {
	out := make([]DisposalRecord, len(l.disposals))
	copy(out, l.disposals)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Warnings returns non-fatal anomalies seen while replaying the stream,
// such as unpaired transfer legs and unpriced flows.
func (l *Ledger) Warnings() []error { return l.warnings }

// Holdings returns the open quantity per asset after the replay.
func (l *Ledger) Holdings() map[string]Quantity {
	out := make(map[string]Quantity, len(l.books))
	for asset, b := range l.books {
		if total := b.total(); !total.IsZero() {
			out[asset] = total
		}
	}
	return out
}

// CostBasis returns the total remaining basis of an asset's open lots.
func (l *Ledger) CostBasis(asset string) Money {
	basis := M(0, l.opts.Currency)
	if b, ok := l.books[asset]; ok {
		for _, lt := range b.lots {
			basis = basis.Add(lt.basis())
		}
	}
	return basis
}

// OpenLots returns the asset's open lots as matches against the given day,
// useful for unrealized gain reporting.
func (l *Ledger) OpenLots(asset string, on date.Date) []LotMatch {
	b, ok := l.books[asset]
	if !ok {
		return nil
	}
	out := make([]LotMatch, 0, len(b.lots))
	for _, lt := range b.lots {
		out = append(out, LotMatch{
			Acquired:    lt.Acquired,
			Quantity:    lt.Quantity,
			CostBasis:   lt.basis(),
			HoldingDays: on.DaysSince(lt.Acquired),
			Term:        TermOf(lt.Acquired, on),
			Quality:     lt.Quality,
		})
	}
	return out
}
