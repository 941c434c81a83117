package renderer

import (
	"fmt"
	"strings"

	"github.com/costfolio/costfolio"
)

// Gains renders a realized gains report as markdown.
func Gains(r costfolio.GainsReport) string {
	sb := &strings.Builder{}
	title(sb, "Realized Gains %s", r.Range)

	if len(r.Assets) == 0 {
		sb.WriteString("No disposals in this period.\n")
		return sb.String()
	}

	header(sb, "Asset", "Disposals", "Proceeds", "Cost Basis", "Fees", "Gain", "Open", "Remaining Basis")
	for _, g := range r.Assets {
		open := ""
		if !g.Open.IsZero() {
			open = g.Open.String()
		}
		row(sb,
			g.Asset,
			fmt.Sprintf("%d", g.Disposals),
			g.Proceeds.String(),
			g.CostBasis.String(),
			g.Fees.String(),
			g.Gain.SignedString(),
			open,
			g.RemainingBasis.SignedString(),
		)
	}
	fmt.Fprintf(sb, "\nTotal realized gain: %s\n", r.Total.SignedString())
	return sb.String()
}

// Tax renders a yearly tax report as markdown: the short and long term
// buckets, then every disposal with its lot matches.
func Tax(r costfolio.TaxReport) string {
	sb := &strings.Builder{}
	title(sb, "Tax Report %d", r.Year)

	header(sb, "Term", "Lots", "Proceeds", "Cost Basis", "Gain")
	for _, s := range []costfolio.TaxSummary{r.Short, r.Long} {
		row(sb,
			string(s.Term),
			fmt.Sprintf("%d", s.Lots),
			s.Proceeds.String(),
			s.CostBasis.String(),
			s.Gain.SignedString(),
		)
	}
	fmt.Fprintf(sb, "\nTotal gain: %s\n", r.TotalGain().SignedString())

	if len(r.Excluded) > 0 {
		fmt.Fprintf(sb, "\nStablecoins excluded: %s\n", strings.Join(r.Excluded, ", "))
	}

	if len(r.Records) > 0 {
		section(sb, "Disposals")
		header(sb, "Date", "Asset", "Quantity", "Acquired", "Held (days)", "Term", "Basis", "Gain")
		for _, d := range r.Records {
			unitProceeds := d.Proceeds.Div(d.Quantity)
			unitFee := d.Fee.Div(d.Quantity)
			for _, m := range d.Matches {
				gain := unitProceeds.Mul(m.Quantity).Sub(m.CostBasis).Sub(unitFee.Mul(m.Quantity))
				row(sb,
					d.Date.String(),
					d.Asset,
					m.Quantity.String(),
					m.Acquired.String(),
					fmt.Sprintf("%d", m.HoldingDays),
					string(m.Term),
					m.CostBasis.String(),
					gain.SignedString(),
				)
			}
		}
	}
	return sb.String()
}
