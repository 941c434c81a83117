package costfolio

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	valid := tx("t1", "2023-01-01", "BTC", Buy, 1, 20000)

	cases := []struct {
		name   string
		mutate func(*Transaction)
		ok     bool
	}{
		{"valid buy", func(*Transaction) {}, true},
		{"missing id", func(x *Transaction) { x.ID = "" }, false},
		{"missing asset", func(x *Transaction) { x.Asset = "" }, false},
		{"missing account", func(x *Transaction) { x.AccountID = "" }, false},
		{"unknown kind", func(x *Transaction) { x.Kind = "gift" }, false},
		{"zero quantity", func(x *Transaction) { x.Quantity = Q(0) }, false},
		{"negative buy", func(x *Transaction) { x.Quantity = Q(-1) }, false},
		{"positive sell", func(x *Transaction) { x.Kind = Sell }, false},
		{"negative price", func(x *Transaction) { x.UnitPrice = Q(-5) }, false},
		{"negative fee", func(x *Transaction) { x.Fee = Q(-1) }, false},
		{"other kind takes either sign", func(x *Transaction) { x.Kind = Other; x.Quantity = Q(-3) }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			x := valid
			tc.mutate(&x)
			err := x.Validate()
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok {
				var malformed *MalformedTransactionError
				if !errors.As(err, &malformed) {
					t.Errorf("error %v is not a MalformedTransactionError", err)
				}
			}
		})
	}
}

func TestSortTransactionsBreaksTiesByID(t *testing.T) {
	a := tx("b", "2023-01-01", "BTC", Buy, 1, 20000)
	b := tx("a", "2023-01-01", "BTC", Buy, 1, 20000)
	c := tx("c", "2022-12-31", "BTC", Buy, 1, 19000)

	txs := []Transaction{a, b, c}
	SortTransactions(txs)
	got := []string{txs[0].ID, txs[1].ID, txs[2].ID}
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order %v, want %v", got, want)
		}
	}
}

func TestKindDirections(t *testing.T) {
	inflows := []Kind{Buy, TransferIn, StakingReward, DividendKind, Interest}
	for _, k := range inflows {
		if k.Direction() != 1 {
			t.Errorf("%s direction %d, want 1", k, k.Direction())
		}
	}
	outflows := []Kind{Sell, TransferOut, FeeKind}
	for _, k := range outflows {
		if k.Direction() != -1 {
			t.Errorf("%s direction %d, want -1", k, k.Direction())
		}
	}
	if Other.Direction() != 0 {
		t.Errorf("other direction %d, want 0", Other.Direction())
	}
}
