package costfolio

import (
	"fmt"

	"github.com/costfolio/costfolio/date"
)

// MalformedTransactionError reports a canonical-stream record that violates
// the stream invariants. Malformed records are rejected, never repaired.
type MalformedTransactionError struct {
	ID     string
	Reason string
}

func (e *MalformedTransactionError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("malformed transaction: %s", e.Reason)
	}
	return fmt.Sprintf("malformed transaction %s: %s", e.ID, e.Reason)
}

// OversellError reports a disposal exceeding the quantity held for the asset.
// The stream is authoritative, so an oversell means the stream itself is
// inconsistent and processing of the asset halts.
type OversellError struct {
	Asset         string
	TransactionID string
	Date          date.Date
	Requested     Quantity
	Available     Quantity
}

func (e *OversellError) Error() string {
	return fmt.Sprintf("oversell of %s on %s (transaction %s): requested %s, held %s",
		e.Asset, e.Date, e.TransactionID, e.Requested, e.Available)
}

// UnpairedTransferError reports a transfer_in whose group id never matched a
// transfer_out, or the reverse. The ledger treats the orphan leg at fair
// market value but surfaces the anomaly to the caller.
type UnpairedTransferError struct {
	Asset         string
	TransactionID string
	GroupID       string
}

func (e *UnpairedTransferError) Error() string {
	return fmt.Sprintf("unpaired transfer leg for %s (transaction %s, group %s)",
		e.Asset, e.TransactionID, e.GroupID)
}
