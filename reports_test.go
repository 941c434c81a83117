package costfolio

import (
	"context"
	"testing"

	"github.com/costfolio/costfolio/date"
)

func replay(t *testing.T, method CostBasisMethod, stable []string, txs []Transaction) []DisposalRecord {
	t.Helper()
	l := NewLedger(LedgerOptions{Method: method, Currency: "USD", StableAssets: stable})
	disposals, err := l.ProcessAll(context.Background(), txs)
	if err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}
	return disposals
}

func TestTaxReportSplitsByHoldingPeriod(t *testing.T) {
	txs := []Transaction{
		tx("t1", "2022-01-01", "BTC", Buy, 1, 20000),
		tx("t2", "2023-11-01", "BTC", Buy, 1, 35000),
		// Consumes the 2022 lot (long) and half the 2023 lot (short).
		tx("t3", "2023-12-01", "BTC", Sell, -1.5, 40000),
	}
	disposals := replay(t, FIFO, nil, txs)
	report := BuildTaxReport(2023, disposals, nil, "USD")

	if report.Short.Lots != 1 || report.Long.Lots != 1 {
		t.Fatalf("lots short=%d long=%d, want 1 and 1", report.Short.Lots, report.Long.Lots)
	}
	// Long: 1 BTC, proceeds 40000 - basis 20000.
	if want := M(20000, "USD"); !report.Long.Gain.Equal(want) {
		t.Errorf("long gain %s, want %s", report.Long.Gain, want)
	}
	// Short: 0.5 BTC, proceeds 20000 - basis 17500.
	if want := M(2500, "USD"); !report.Short.Gain.Equal(want) {
		t.Errorf("short gain %s, want %s", report.Short.Gain, want)
	}
	if want := M(22500, "USD"); !report.TotalGain().Equal(want) {
		t.Errorf("total gain %s, want %s", report.TotalGain(), want)
	}
}

func TestTaxReportExcludesStablecoins(t *testing.T) {
	stable := []string{"USD", "USDC", "USDT", "DAI"}
	txs := []Transaction{
		tx("t1", "2023-01-01", "USDC", Buy, 1000, 0),
		tx("t2", "2023-06-01", "USDC", Sell, -1000, 0),
		tx("t3", "2023-01-01", "BTC", Buy, 1, 20000),
		tx("t4", "2023-06-01", "BTC", Sell, -1, 30000),
	}
	disposals := replay(t, FIFO, stable, txs)
	report := BuildTaxReport(2023, disposals, stable, "USD")

	if len(report.Records) != 1 || report.Records[0].Asset != "BTC" {
		t.Fatalf("records %v, want only the BTC disposal", report.Records)
	}
	if len(report.Excluded) != 1 || report.Excluded[0] != "USDC" {
		t.Errorf("excluded %v, want [USDC]", report.Excluded)
	}
	if want := M(10000, "USD"); !report.TotalGain().Equal(want) {
		t.Errorf("total gain %s, want %s", report.TotalGain(), want)
	}
}

func TestTaxReportIgnoresOtherYears(t *testing.T) {
	txs := []Transaction{
		tx("t1", "2022-01-01", "BTC", Buy, 2, 20000),
		tx("t2", "2022-06-01", "BTC", Sell, -1, 25000),
		tx("t3", "2023-06-01", "BTC", Sell, -1, 30000),
	}
	disposals := replay(t, FIFO, nil, txs)
	report := BuildTaxReport(2022, disposals, nil, "USD")
	if len(report.Records) != 1 {
		t.Fatalf("got %d records for 2022, want 1", len(report.Records))
	}
	if want := M(5000, "USD"); !report.TotalGain().Equal(want) {
		t.Errorf("2022 gain %s, want %s", report.TotalGain(), want)
	}
}

func TestGainsReportAggregatesPerAsset(t *testing.T) {
	txs := []Transaction{
		tx("t1", "2023-01-01", "BTC", Buy, 2, 20000),
		tx("t2", "2023-03-01", "BTC", Sell, -1, 25000),
		tx("t3", "2023-05-01", "BTC", Sell, -1, 18000),
		tx("t4", "2023-01-01", "ETH", Buy, 10, 1500),
		tx("t5", "2023-04-01", "ETH", Sell, -5, 2000),
	}
	disposals := replay(t, FIFO, nil, txs)
	report := BuildGainsReport(date.Year(2023), disposals, "USD")

	if len(report.Assets) != 2 {
		t.Fatalf("got %d assets, want 2", len(report.Assets))
	}
	btc := report.Assets[0]
	if btc.Asset != "BTC" || btc.Disposals != 2 {
		t.Fatalf("first asset %s with %d disposals, want BTC with 2", btc.Asset, btc.Disposals)
	}
	// +5000 and -2000.
	if want := M(3000, "USD"); !btc.Gain.Equal(want) {
		t.Errorf("BTC gain %s, want %s", btc.Gain, want)
	}
	if want := M(5500, "USD"); !report.Total.Equal(want) {
		t.Errorf("total %s, want %s", report.Total, want)
	}
}

func TestAttachOpenPositions(t *testing.T) {
	txs := []Transaction{
		tx("t1", "2023-01-01", "BTC", Buy, 2, 20000),
		tx("t2", "2023-03-01", "BTC", Sell, -1, 25000),
		tx("t3", "2023-01-01", "ETH", Buy, 10, 1500),
	}
	l := NewLedger(LedgerOptions{Method: FIFO, Currency: "USD"})
	disposals, err := l.ProcessAll(context.Background(), txs)
	if err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}
	report := BuildGainsReport(date.Year(2023), disposals, "USD")
	report.AttachOpenPositions(l)

	if len(report.Assets) != 2 {
		t.Fatalf("got %d assets, want BTC and the never-disposed ETH", len(report.Assets))
	}
	btc, eth := report.Assets[0], report.Assets[1]
	if !btc.Open.Equal(Q(1)) {
		t.Errorf("BTC open %s, want 1", btc.Open)
	}
	if want := M(20000, "USD"); !btc.RemainingBasis.Equal(want) {
		t.Errorf("BTC remaining basis %s, want %s", btc.RemainingBasis, want)
	}
	if eth.Asset != "ETH" || eth.Disposals != 0 || !eth.Open.Equal(Q(10)) {
		t.Errorf("ETH row %+v", eth)
	}
	if want := M(15000, "USD"); !eth.RemainingBasis.Equal(want) {
		t.Errorf("ETH remaining basis %s, want %s", eth.RemainingBasis, want)
	}
}

func TestGainsReportHonorsRange(t *testing.T) {
	txs := []Transaction{
		tx("t1", "2022-01-01", "BTC", Buy, 2, 20000),
		tx("t2", "2022-06-01", "BTC", Sell, -1, 25000),
		tx("t3", "2023-06-01", "BTC", Sell, -1, 30000),
	}
	disposals := replay(t, FIFO, nil, txs)
	report := BuildGainsReport(date.Year(2023), disposals, "USD")
	if want := M(10000, "USD"); !report.Total.Equal(want) {
		t.Errorf("2023 total %s, want %s", report.Total, want)
	}
}
