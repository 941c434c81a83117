package renderer

import (
	"fmt"
	"strings"

	"github.com/costfolio/costfolio"
	"github.com/costfolio/costfolio/date"
)

// Valuation renders a daily value series as markdown. Days with
// unresolved assets are flagged so a flat spot in the curve is explained.
func Valuation(snaps []costfolio.ValuationSnapshot) string {
	sb := &strings.Builder{}
	if len(snaps) == 0 {
		title(sb, "Portfolio Value")
		sb.WriteString("Nothing to value.\n")
		return sb.String()
	}
	title(sb, "Portfolio Value %s..%s", snaps[0].Date, snaps[len(snaps)-1].Date)

	header(sb, "Date", "Total", "Unresolved")
	for _, s := range snaps {
		unresolved := ""
		if len(s.Unresolved) > 0 {
			unresolved = strings.Join(s.Unresolved, ", ")
		}
		row(sb, s.Date.String(), s.Total.String(), unresolved)
	}
	return sb.String()
}

// Snapshot renders one day's valuation with the per-asset breakdown.
func Snapshot(s costfolio.ValuationSnapshot) string {
	sb := &strings.Builder{}
	title(sb, "Portfolio on %s", s.Date)

	header(sb, "Asset", "Quantity", "Price", "Source", "Value")
	for _, a := range s.Assets {
		row(sb, a.Asset, a.Quantity.String(), a.Price.String(), string(a.Tier), a.Value.String())
	}
	fmt.Fprintf(sb, "\nTotal: %s\n", s.Total)
	if len(s.Unresolved) > 0 {
		fmt.Fprintf(sb, "\nUnpriced assets valued at zero: %s\n", strings.Join(s.Unresolved, ", "))
	}
	return sb.String()
}

// Positions renders the held quantities on a day as markdown.
func Positions(grid *costfolio.PositionGrid, on date.Date) string {
	sb := &strings.Builder{}
	title(sb, "Positions on %s", on)

	holdings := grid.Holdings(on)
	if len(holdings) == 0 {
		sb.WriteString("No open positions.\n")
		return sb.String()
	}
	header(sb, "Asset", "Quantity")
	for _, asset := range grid.Assets() {
		if qty, ok := holdings[asset]; ok {
			row(sb, asset, qty.String())
		}
	}
	return sb.String()
}
