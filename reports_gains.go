package costfolio

import (
	"sort"

	"github.com/costfolio/costfolio/date"
)

// AssetGains aggregates the realized disposals of one asset. Open and
// RemainingBasis describe what is still held after the replay; see
// AttachOpenPositions.
type AssetGains struct {
	Asset          string   `json:"asset"`
	Disposals      int      `json:"disposals"`
	Proceeds       Money    `json:"proceeds"`
	CostBasis      Money    `json:"cost_basis"`
	Fees           Money    `json:"fees,omitzero"`
	Gain           Money    `json:"gain"`
	Open           Quantity `json:"open,omitzero"`
	RemainingBasis Money    `json:"remaining_basis,omitzero"`
}

// GainsReport summarizes realized gains per asset over a day range.
type GainsReport struct {
	Range    date.Range   `json:"range"`
	Currency string       `json:"currency"`
	Assets   []AssetGains `json:"assets"`
	Total    Money        `json:"total"`
}

// BuildGainsReport folds disposal records falling inside the range into a
// per-asset realized gains report.
func BuildGainsReport(rng date.Range, disposals []DisposalRecord, currency string) GainsReport {
	byAsset := make(map[string]*AssetGains)
	for _, d := range disposals {
		if !rng.Contains(d.Date) {
			continue
		}
		g, ok := byAsset[d.Asset]
		if !ok {
			g = &AssetGains{
				Asset:     d.Asset,
				Proceeds:  M(0, currency),
				CostBasis: M(0, currency),
				Fees:      M(0, currency),
				Gain:      M(0, currency),
			}
			byAsset[d.Asset] = g
		}
		g.Disposals++
		g.Proceeds = g.Proceeds.Add(d.Proceeds)
		g.CostBasis = g.CostBasis.Add(d.CostBasis)
		g.Fees = g.Fees.Add(d.Fee)
		g.Gain = g.Gain.Add(d.Gain)
	}

	report := GainsReport{Range: rng, Currency: currency, Total: M(0, currency)}
	for _, g := range byAsset {
		report.Assets = append(report.Assets, *g)
		report.Total = report.Total.Add(g.Gain)
	}
	sort.Slice(report.Assets, func(i, j int) bool { return report.Assets[i].Asset < report.Assets[j].Asset })
	return report
}

// AttachOpenPositions fills each asset's open quantity and remaining cost
// basis from the ledger that produced the disposals. Assets still held but
// never disposed get a row of their own.
func (r *GainsReport) AttachOpenPositions(l *Ledger) {
	seen := make(map[string]bool, len(r.Assets))
	for i := range r.Assets {
		a := &r.Assets[i]
		seen[a.Asset] = true
		a.Open = l.Holdings()[a.Asset]
		a.RemainingBasis = l.CostBasis(a.Asset)
	}
	for asset, open := range l.Holdings() {
		if seen[asset] {
			continue
		}
		r.Assets = append(r.Assets, AssetGains{
			Asset:          asset,
			Proceeds:       M(0, r.Currency),
			CostBasis:      M(0, r.Currency),
			Fees:           M(0, r.Currency),
			Gain:           M(0, r.Currency),
			Open:           open,
			RemainingBasis: l.CostBasis(asset),
		})
	}
	sort.Slice(r.Assets, func(i, j int) bool { return r.Assets[i].Asset < r.Assets[j].Asset })
}

// TaxSummary totals one holding-period bucket of a tax year.
type TaxSummary struct {
	Term      Term  `json:"term"`
	Lots      int   `json:"lots"`
	Proceeds  Money `json:"proceeds"`
	CostBasis Money `json:"cost_basis"`
	Gain      Money `json:"gain"`
}

// TaxReport splits a year's disposals into short and long term buckets.
// Stablecoin disposals are excluded since pinned prices make them tax
// noise; the excluded assets are listed so the omission is explicit.
type TaxReport struct {
	Year     int              `json:"year"`
	Currency string           `json:"currency"`
	Short    TaxSummary       `json:"short"`
	Long     TaxSummary       `json:"long"`
	Records  []DisposalRecord `json:"records"`
	Excluded []string         `json:"excluded,omitempty"`
}

// BuildTaxReport buckets the year's disposals by holding period,
// apportioning each record's proceeds and fee pro rata over its lot
// matches.
func BuildTaxReport(year int, disposals []DisposalRecord, stable []string, currency string) TaxReport {
	stableSet := make(map[string]bool, len(stable))
	for _, a := range stable {
		stableSet[a] = true
	}

	report := TaxReport{
		Year:     year,
		Currency: currency,
		Short:    TaxSummary{Term: ShortTerm, Proceeds: M(0, currency), CostBasis: M(0, currency), Gain: M(0, currency)},
		Long:     TaxSummary{Term: LongTerm, Proceeds: M(0, currency), CostBasis: M(0, currency), Gain: M(0, currency)},
	}
	excluded := make(map[string]bool)

	for _, d := range disposals {
		if d.Date.Year() != year {
			continue
		}
		if stableSet[d.Asset] {
			excluded[d.Asset] = true
			continue
		}
		report.Records = append(report.Records, d)
		unitProceeds := d.Proceeds.Div(d.Quantity)
		unitFee := d.Fee.Div(d.Quantity)
		for _, m := range d.Matches {
			proceeds := unitProceeds.Mul(m.Quantity)
			fee := unitFee.Mul(m.Quantity)
			sum := &report.Short
			if m.Term == LongTerm {
				sum = &report.Long
			}
			sum.Lots++
			sum.Proceeds = sum.Proceeds.Add(proceeds)
			sum.CostBasis = sum.CostBasis.Add(m.CostBasis)
			sum.Gain = sum.Gain.Add(proceeds.Sub(m.CostBasis).Sub(fee))
		}
	}
	for a := range excluded {
		report.Excluded = append(report.Excluded, a)
	}
	sort.Strings(report.Excluded)
	return report
}

// TotalGain returns the year's combined short and long term gain.
func (r TaxReport) TotalGain() Money { return r.Short.Gain.Add(r.Long.Gain) }
