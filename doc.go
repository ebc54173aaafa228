// Package coinfolio turns cryptocurrency exchange exports into a valued portfolio.
//
// The pipeline has three stages:
//   - Ledger: every export row is one leg of an operation. The fiat leg of a trade is paired
//     with the coin leg closest in time, giving the fiat amount and the implied price of each
//     coin movement (see Reconcile and LedgerBuilder).
//   - Holdings: the ledger is folded into the fiat deposited and the net quantity and amount
//     invested per coin (see Holdings and Aggregator).
//   - Valuation: holdings are priced with a PriceSource, and returns over several horizons are
//     measured against a daily PriceMatrix (see HistoryBuilder and ApplyReturns).
//
// All amounts are decimal. Everything is recomputed from the exports on every run.
//
// This package serves as the foundation of the `coins` command-line tool.
package coinfolio
