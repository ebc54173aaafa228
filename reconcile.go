package coinfolio

import (
	"cmp"
	"slices"
	"time"
)

// Reconcile pairs every fiat leg of a trade with the coin leg closest in time.
//
// Fiat legs are the rows of a paired operation in the settlement currency. Every other row is a
// coin leg and becomes one Transaction. A coin leg receives the nearest fiat leg at most
// tolerance away, ties going to the earlier fiat leg. Rows in the settlement currency that are
// not fiat legs (deposits, withdrawals) are never paired and are reclassified as fiat movements.
//
// Every fiat leg must be paired with exactly one coin leg, otherwise a *ReconciliationError is
// returned. The result is in chronological order.
func Reconcile(raw []RawTransaction, currency string, tolerance time.Duration) ([]Transaction, error) {
	var fiscal, main []RawTransaction
	for _, r := range raw {
		if r.isFiscal(currency) {
			fiscal = append(fiscal, r)
		} else {
			main = append(main, r)
		}
	}
	byTime := func(a, b RawTransaction) int { return a.Time.Compare(b.Time) }
	slices.SortStableFunc(fiscal, byTime)
	slices.SortStableFunc(main, byTime)

	used := make([]int, len(fiscal))
	txs := make([]Transaction, 0, len(main))
	matched := 0

	j := 0 // fiscal[:j] are all strictly before the current coin leg.
	for _, m := range main {
		tx := Transaction{
			UserID:     m.UserID,
			Time:       m.Time,
			Account:    m.Account,
			Operation:  m.Operation,
			Coin:       m.Coin,
			ChangeCoin: valid(m.Change),
			SourceFile: m.SourceFile,
		}

		if m.Coin == currency {
			// a fiat movement: the quantity is a fiscal amount, not a coin amount.
			tx.Coin, tx.ChangeCoin = "", null
			tx.Currency, tx.ChangeFiscal = currency, valid(m.Change)
			txs = append(txs, tx)
			continue
		}

		for j < len(fiscal) && fiscal[j].Time.Before(m.Time) {
			j++
		}
		if k := nearest(fiscal, j, m.Time, tolerance); k >= 0 {
			used[k]++
			matched++
			f := fiscal[k]
			tx.Currency = f.Coin
			tx.ChangeFiscal = valid(f.Change)
			if !m.Change.IsZero() {
				tx.PricePerCoin = valid(f.Change.Div(m.Change).Abs())
			}
		}
		txs = append(txs, tx)
	}

	err := &ReconciliationError{Fiscal: len(fiscal), Matched: matched}
	for k, n := range used {
		switch {
		case n == 0:
			err.Unmatched = append(err.Unmatched, fiscal[k])
		case n > 1:
			err.Duplicated = append(err.Duplicated, fiscal[k])
		}
	}
	if err.Fiscal != err.Matched || len(err.Unmatched) > 0 || len(err.Duplicated) > 0 {
		return nil, err
	}
	return txs, nil
}

// nearest returns the index of the fiscal leg closest to t among fiscal[j-1] and fiscal[j],
// or -1 if neither is within tolerance. fiscal[j-1] is before t and fiscal[j] is not.
func nearest(fiscal []RawTransaction, j int, t time.Time, tolerance time.Duration) int {
	best, gap := -1, tolerance
	for _, k := range []int{j - 1, j} {
		if k < 0 || k >= len(fiscal) {
			continue
		}
		d := fiscal[k].Time.Sub(t).Abs()
		if d < gap || (d == gap && best < 0) {
			best, gap = k, d
		}
	}
	return best
}

// SortLedger orders transactions from the most recent to the oldest. Rows with the same time
// keep their relative order.
func SortLedger(txs []Transaction) {
	slices.SortStableFunc(txs, func(a, b Transaction) int { return cmp.Compare(b.Time.UnixNano(), a.Time.UnixNano()) })
}
