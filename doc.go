// Package costfolio turns a canonical stream of asset transactions into
// realized gain/loss records and a daily valuation time series.
//
// The package is organised around four collaborators:
//
//   - the lot Ledger consumes transactions in chronological order and
//     maintains per-asset acquisition lots under FIFO or average-cost
//     accounting, emitting DisposalRecords on outflows;
//   - the position tracker folds the same stream into a forward-filled
//     daily quantity grid;
//   - the resolver subpackage answers price questions through an ordered
//     chain of tiers (primary store, local cache, external provider,
//     fixed table);
//   - the valuation assembler joins positions with resolved prices into
//     daily ValuationSnapshots.
//
// All quantities and amounts are exact decimals; nothing in this package
// rounds until a value is rendered.
package costfolio
