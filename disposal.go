package costfolio

import "github.com/costfolio/costfolio/date"

// LongTermDays is the minimum holding period, in days, for a disposal
// portion to be classified as long term.
const LongTermDays = 365

// Term classifies a disposal portion by holding period.
type Term string

const (
	ShortTerm Term = "short"
	LongTerm  Term = "long"
)

// TermOf classifies the holding period between acquisition and disposal.
func TermOf(acquired, disposed date.Date) Term {
	if disposed.DaysSince(acquired) >= LongTermDays {
		return LongTerm
	}
	return ShortTerm
}

// BasisQuality grades the provenance of a lot's cost basis.
type BasisQuality string

const (
	// BasisExact means the basis came from a transaction-level price.
	BasisExact BasisQuality = "exact"
	// BasisFairMarket means the basis was valued at a resolved market price.
	BasisFairMarket BasisQuality = "fmv"
	// BasisZero means no price could be established and the basis is zero.
	BasisZero BasisQuality = "zero"
)

// worse returns the lower-confidence of two qualities.
func (q BasisQuality) worse(o BasisQuality) BasisQuality {
	rank := func(q BasisQuality) int {
		switch q {
		case BasisExact:
			return 2
		case BasisFairMarket:
			return 1
		default:
			return 0
		}
	}
	if rank(o) < rank(q) {
		return o
	}
	return q
}

// LotMatch is the portion of one acquisition lot consumed by a disposal.
type LotMatch struct {
	Acquired    date.Date    `json:"acquired"`
	Quantity    Quantity     `json:"quantity"`
	CostBasis   Money        `json:"cost_basis"`
	HoldingDays int          `json:"holding_days"`
	Term        Term         `json:"term"`
	Quality     BasisQuality `json:"quality"`
}

// DisposalRecord is the full accounting of one disposal transaction:
// which lots it consumed, at what basis, and the resulting gain.
//
// Gain is Proceeds minus CostBasis minus Fee. Matches sum to Quantity
// and their bases sum to CostBasis.
type DisposalRecord struct {
	TransactionID string          `json:"transaction_id"`
	Asset         string          `json:"asset"`
	Date          date.Date       `json:"date"`
	Method        CostBasisMethod `json:"method"`
	Quantity      Quantity        `json:"quantity"`
	Proceeds      Money           `json:"proceeds"`
	CostBasis     Money           `json:"cost_basis"`
	Fee           Money           `json:"fee,omitzero"`
	Gain          Money           `json:"gain"`
	Quality       BasisQuality    `json:"quality"`
	Matches       []LotMatch      `json:"matches"`
}

// TermGain returns the record's gain attributable to the given term,
// apportioning proceeds and fee pro rata over the matched quantity.
func (r DisposalRecord) TermGain(term Term) Money {
	gain := M(0, r.Gain.Currency())
	if r.Quantity.IsZero() {
		return gain
	}
	unitProceeds := r.Proceeds.Div(r.Quantity)
	unitFee := r.Fee.Div(r.Quantity)
	for _, m := range r.Matches {
		if m.Term != term {
			continue
		}
		portion := unitProceeds.Mul(m.Quantity).Sub(m.CostBasis).Sub(unitFee.Mul(m.Quantity))
		gain = gain.Add(portion)
	}
	return gain
}
