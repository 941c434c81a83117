package costfolio

import (
	"fmt"
	"sort"
	"time"

	"github.com/costfolio/costfolio/date"
	"github.com/google/uuid"
)

// Kind classifies a canonical transaction.
type Kind string

const (
	Buy           Kind = "buy"
	Sell          Kind = "sell"
	TransferIn    Kind = "transfer_in"
	TransferOut   Kind = "transfer_out"
	StakingReward Kind = "staking_reward"
	DividendKind  Kind = "dividend"
	Interest      Kind = "interest"
	FeeKind       Kind = "fee"
	Other         Kind = "other"
)

// Direction returns the expected sign of the transaction quantity:
// +1 for inflows, -1 for outflows, 0 when either is acceptable.
func (k Kind) Direction() int {
	switch k {
	case Buy, TransferIn, StakingReward, DividendKind, Interest:
		return 1
	case Sell, TransferOut, FeeKind:
		return -1
	default:
		return 0
	}
}

// RequiresFairMarketValue reports whether an inflow of this kind must be
// costed at the resolved market price when no transaction price is given.
func (k Kind) RequiresFairMarketValue() bool {
	switch k {
	case StakingReward, DividendKind, Interest:
		return true
	default:
		return false
	}
}

// ParseKind parses a canonical kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Buy, Sell, TransferIn, TransferOut, StakingReward, DividendKind, Interest, FeeKind, Other:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown transaction kind: %q", s)
	}
}

// Transaction is one record of the canonical transaction stream. It is
// produced by the ingestion collaborators and never mutated here.
//
// Quantity is signed: positive for inflows, negative for outflows. A zero
// UnitPrice means the stream carried no price for this transaction.
type Transaction struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	Asset           string    `json:"asset"`
	Kind            Kind      `json:"kind"`
	Quantity        Quantity  `json:"quantity"`
	UnitPrice       Quantity  `json:"unit_price,omitzero"`
	Fee             Quantity  `json:"fee,omitzero"`
	AccountID       string    `json:"account_id"`
	TransferGroupID string    `json:"transfer_group_id,omitempty"`
}

// NewTransactionID returns a fresh canonical transaction id.
func NewTransactionID() string { return uuid.NewString() }

// Date returns the transaction's UTC calendar day.
func (t Transaction) Date() date.Date { return date.FromTime(t.Timestamp) }

// HasUnitPrice reports whether the stream carried a price for this transaction.
func (t Transaction) HasUnitPrice() bool { return !t.UnitPrice.IsZero() }

// Validate checks the transaction against the canonical-stream invariants.
// It returns a *MalformedTransactionError describing the first violation.
func (t Transaction) Validate() error {
	switch {
	case t.ID == "":
		return &MalformedTransactionError{ID: t.ID, Reason: "missing transaction id"}
	case t.Asset == "":
		return &MalformedTransactionError{ID: t.ID, Reason: "missing asset symbol"}
	case t.Timestamp.IsZero():
		return &MalformedTransactionError{ID: t.ID, Reason: "missing timestamp"}
	case t.AccountID == "":
		return &MalformedTransactionError{ID: t.ID, Reason: "missing account id"}
	}
	if _, err := ParseKind(string(t.Kind)); err != nil {
		return &MalformedTransactionError{ID: t.ID, Reason: err.Error()}
	}
	if t.Quantity.IsZero() {
		return &MalformedTransactionError{ID: t.ID, Reason: "zero quantity"}
	}
	switch dir := t.Kind.Direction(); {
	case dir > 0 && !t.Quantity.IsPositive():
		return &MalformedTransactionError{ID: t.ID, Reason: fmt.Sprintf("kind %q expects a positive quantity, got %s", t.Kind, t.Quantity)}
	case dir < 0 && !t.Quantity.IsNegative():
		return &MalformedTransactionError{ID: t.ID, Reason: fmt.Sprintf("kind %q expects a negative quantity, got %s", t.Kind, t.Quantity)}
	}
	if t.UnitPrice.IsNegative() {
		return &MalformedTransactionError{ID: t.ID, Reason: "negative unit price"}
	}
	if t.Fee.IsNegative() {
		return &MalformedTransactionError{ID: t.ID, Reason: "negative fee"}
	}
	return nil
}

// SortTransactions orders the stream ascending by timestamp, breaking
// same-instant ties by transaction id so consumption order is deterministic.
func SortTransactions(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Timestamp.Equal(txs[j].Timestamp) {
			return txs[i].ID < txs[j].ID
		}
		return txs[i].Timestamp.Before(txs[j].Timestamp)
	})
}

// ByAccounts returns a predicate keeping transactions of the given accounts.
// An empty account list keeps everything.
func ByAccounts(accounts ...string) func(Transaction) bool {
	if len(accounts) == 0 {
		return func(Transaction) bool { return true }
	}
	set := make(map[string]struct{}, len(accounts))
	for _, a := range accounts {
		set[a] = struct{}{}
	}
	return func(tx Transaction) bool {
		_, ok := set[tx.AccountID]
		return ok
	}
}

// FilterTransactions returns the transactions matching the predicate,
// preserving order.
func FilterTransactions(txs []Transaction, keep func(Transaction) bool) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	return out
}
