package coinfolio

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes. Every error returned by this package wraps one of them, so callers can
// tell a bad export apart from a flaky price source with errors.Is.
var (
	ErrConfiguration  = errors.New("configuration error")
	ErrNotFound       = errors.New("not found")
	ErrReconciliation = errors.New("reconciliation error")
	ErrNetwork        = errors.New("network error")
	ErrValidation     = errors.New("validation error")
)

// Price source failures.
var (
	// ErrPriceNotFound is returned when the price source does not know the coin.
	ErrPriceNotFound = fmt.Errorf("%w: coin unknown to price source", ErrNotFound)
	// ErrUnavailable is returned on a non-success response from the price source.
	ErrUnavailable = fmt.Errorf("%w: price source unavailable", ErrNetwork)
	// ErrNoData is returned when a time range yields an empty series.
	ErrNoData = fmt.Errorf("%w: no price data in range", ErrValidation)
)

// ReconciliationError reports fiat legs that could not be paired with exactly one coin leg.
type ReconciliationError struct {
	Fiscal     int              // number of fiat legs eligible for pairing
	Matched    int              // number of coin legs that received a fiat leg
	Unmatched  []RawTransaction // fiat legs no coin leg was paired with
	Duplicated []RawTransaction // fiat legs paired with more than one coin leg
}

func (e *ReconciliationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: %d fiat legs but %d matched coin legs", ErrReconciliation, e.Fiscal, e.Matched)
	for _, tx := range e.Unmatched {
		fmt.Fprintf(&b, "\n  unmatched %s", tx)
	}
	for _, tx := range e.Duplicated {
		fmt.Fprintf(&b, "\n  matched more than once %s", tx)
	}
	return b.String()
}

func (e *ReconciliationError) Unwrap() error { return ErrReconciliation }
