package pricedb

import (
	"context"
	"testing"

	"github.com/costfolio/costfolio/date"
	"github.com/shopspring/decimal"
)

func TestWriteFlushReopen(t *testing.T) {
	folder := t.TempDir()
	ctx := context.Background()

	db, err := Open(folder)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	day := date.MustParse("2024-03-01")
	if err := db.Write(ctx, "BTC", day, decimal.NewFromInt(65000)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := db.Write(ctx, "BTC", day.Add(1), decimal.NewFromInt(66000)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := db.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	reopened, err := Open(folder)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	price, ok, err := reopened.Lookup(ctx, "BTC", day)
	if err != nil || !ok {
		t.Fatalf("Lookup after reopen: ok=%v err=%v", ok, err)
	}
	if !price.Equal(decimal.NewFromInt(65000)) {
		t.Errorf("price %s, want 65000", price)
	}
	if got := reopened.Assets(); len(got) != 1 || got[0] != "BTC" {
		t.Errorf("assets %v, want [BTC]", got)
	}
	if got := reopened.Len("BTC"); got != 2 {
		t.Errorf("len %d, want 2", got)
	}
}

func TestLookupMisses(t *testing.T) {
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_, ok, err := db.Lookup(context.Background(), "BTC", date.MustParse("2024-03-01"))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if ok {
		t.Error("hit on an empty database")
	}
}

func TestLookupAsOf(t *testing.T) {
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()
	recorded := date.MustParse("2024-03-01")
	db.Write(ctx, "BTC", recorded, decimal.NewFromInt(65000))

	price, asOf, ok, err := db.LookupAsOf(ctx, "BTC", recorded.Add(4))
	if err != nil || !ok {
		t.Fatalf("LookupAsOf: ok=%v err=%v", ok, err)
	}
	if asOf != recorded {
		t.Errorf("as-of %s, want %s", asOf, recorded)
	}
	if !price.Equal(decimal.NewFromInt(65000)) {
		t.Errorf("price %s, want 65000", price)
	}

	_, _, ok, _ = db.LookupAsOf(ctx, "BTC", recorded.Add(-1))
	if ok {
		t.Error("hit before the first recorded day")
	}
}

func TestWriteOverwritesSameDay(t *testing.T) {
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()
	day := date.MustParse("2024-03-01")
	db.Write(ctx, "BTC", day, decimal.NewFromInt(65000))
	db.Write(ctx, "BTC", day, decimal.NewFromInt(65500))

	price, _, _ := db.Lookup(ctx, "BTC", day)
	if !price.Equal(decimal.NewFromInt(65500)) {
		t.Errorf("price %s, want the overwritten 65500", price)
	}
	if got := db.Len("BTC"); got != 1 {
		t.Errorf("len %d, want 1", got)
	}
}
