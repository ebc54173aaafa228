package coinfolio

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// LedgerBuilder turns a directory of exchange exports into a reconciled ledger.
type LedgerBuilder struct {
	Currency  string        // settlement currency of the fiat legs
	Tolerance time.Duration // largest gap between the two legs of a trade

	logger *slog.Logger
}

// NewLedgerBuilder returns a builder settling trades in currency.
func NewLedgerBuilder(logger *slog.Logger, currency string) *LedgerBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerBuilder{Currency: currency, Tolerance: MatchTolerance, logger: logger}
}

// Build loads every export in dir, reconciles the legs and returns the ledger from the most
// recent transaction to the oldest.
func (b *LedgerBuilder) Build(dir string) ([]Transaction, error) {
	if b.Currency == "" {
		return nil, fmt.Errorf("%w: missing settlement currency", ErrConfiguration)
	}
	raw, err := LoadTransactions(dir, b.logger)
	if err != nil {
		return nil, err
	}
	b.logger.Info("loaded transactions", "dir", dir, "rows", len(raw))

	txs, err := Reconcile(raw, b.Currency, b.Tolerance)
	if err != nil {
		var rerr *ReconciliationError
		if errors.As(err, &rerr) {
			b.logger.Error("cannot pair fiat legs", "fiscal", rerr.Fiscal, "matched", rerr.Matched, "unmatched", len(rerr.Unmatched), "duplicated", len(rerr.Duplicated))
		}
		return nil, fmt.Errorf("cannot reconcile transactions in %q: %w", dir, err)
	}
	SortLedger(txs)
	b.logger.Debug("reconciled ledger", "transactions", len(txs))
	return txs, nil
}
