package costfolio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTransactionsRoundTrip(t *testing.T) {
	withFee := tx("t3", "2023-03-01", "BTC", Sell, -0.5, 25000)
	withFee.Fee = Q(12.5)
	grouped := tx("t4", "2023-04-01", "BTC", TransferOut, -0.25, 0)
	grouped.TransferGroupID = "g1"
	txs := []Transaction{
		tx("t2", "2023-02-01", "ETH", Buy, 2, 1500),
		tx("t1", "2023-01-01", "BTC", Buy, 1, 20000),
		withFee,
		grouped,
	}

	path := filepath.Join(t.TempDir(), "transactions.jsonl")
	if err := SaveTransactions(path, txs); err != nil {
		t.Fatalf("SaveTransactions: %v", err)
	}
	got, err := LoadTransactions(path)
	if err != nil {
		t.Fatalf("LoadTransactions: %v", err)
	}
	if len(got) != len(txs) {
		t.Fatalf("got %d transactions, want %d", len(got), len(txs))
	}
	// Canonical order on disk: t1 first despite input order.
	if got[0].ID != "t1" {
		t.Errorf("first transaction %s, want t1", got[0].ID)
	}
	for _, x := range got {
		if err := x.Validate(); err != nil {
			t.Errorf("round-tripped transaction invalid: %v", err)
		}
	}
	if !got[2].Fee.Equal(Q(12.5)) {
		t.Errorf("fee %s, want 12.5", got[2].Fee)
	}
	if got[3].TransferGroupID != "g1" {
		t.Errorf("transfer group %q, want g1", got[3].TransferGroupID)
	}
}

func TestLoadReportsFileAndLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jsonl")
	content := `{"id":"t1","timestamp":"2023-01-01T12:00:00Z","asset":"BTC","kind":"buy","quantity":"1","account_id":"main"}
{not json}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadTransactions(path)
	if err == nil {
		t.Fatal("want an error for the broken line")
	}
	if !strings.Contains(err.Error(), path+":2") {
		t.Errorf("error %q does not point at %s:2", err, path)
	}
}

func TestLoadSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gaps.jsonl")
	content := `{"id":"t1","timestamp":"2023-01-01T12:00:00Z","asset":"BTC","kind":"buy","quantity":"1","account_id":"main"}

{"id":"t2","timestamp":"2023-01-02T12:00:00Z","asset":"BTC","kind":"buy","quantity":"2","account_id":"main"}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadTransactions(path)
	if err != nil {
		t.Fatalf("LoadTransactions: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d transactions, want 2", len(got))
	}
}
