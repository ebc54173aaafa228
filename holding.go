package coinfolio

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Holding is what a user holds once the ledger is folded: either a FiatHolding or a
// CoinHolding.
type Holding interface {
	User() string
	// Asset is the currency code or the coin ticker.
	Asset() string
	holding()
}

// FiatHolding is the net amount of fiat deposited by a user.
type FiatHolding struct {
	UserID   string
	Currency string
	Amount   decimal.Decimal
}

// CoinHolding is the net position of a user in one coin.
type CoinHolding struct {
	UserID   string
	Ticker   string
	Holdings decimal.Decimal // sum of coin changes
	Invested decimal.Decimal // absolute sum of paired fiat changes
	Since    time.Time       // earliest transaction
}

func (h FiatHolding) User() string  { return h.UserID }
func (h FiatHolding) Asset() string { return h.Currency }
func (FiatHolding) holding()        {}

func (h CoinHolding) User() string  { return h.UserID }
func (h CoinHolding) Asset() string { return h.Ticker }
func (CoinHolding) holding()        {}

// Holdings folds a ledger into holdings: one FiatHolding per user and one CoinHolding per
// user and coin still held.
//
// The FiatHolding sums the fiat changes of deposit operations. Deposit rows never reach the
// coin holdings, coin deposits included. Fiat movements of other operations are ignored.
// Coins whose holdings sum to zero are dropped.
//
// Fiat holdings come first, then coin holdings ordered by user and ticker.
func Holdings(ledger []Transaction, currency string) []Holding {
	type key struct{ user, ticker string }

	deposits := make(map[string]decimal.Decimal)
	coins := make(map[key]*CoinHolding)
	var users []string

	for _, tx := range ledger {
		if _, seen := deposits[tx.UserID]; !seen {
			deposits[tx.UserID] = decimal.Zero
			users = append(users, tx.UserID)
		}
		if tx.IsDeposit() {
			if tx.ChangeFiscal.Valid {
				deposits[tx.UserID] = deposits[tx.UserID].Add(tx.ChangeFiscal.Decimal)
			}
			continue
		}
		if tx.Coin == "" {
			continue // fiat movement
		}

		k := key{tx.UserID, tx.Coin}
		h, ok := coins[k]
		if !ok {
			h = &CoinHolding{UserID: tx.UserID, Ticker: tx.Coin, Since: tx.Time}
			coins[k] = h
		}
		if tx.ChangeCoin.Valid {
			h.Holdings = h.Holdings.Add(tx.ChangeCoin.Decimal)
		}
		if tx.ChangeFiscal.Valid {
			// signed for now, made absolute once every leg is summed.
			h.Invested = h.Invested.Add(tx.ChangeFiscal.Decimal)
		}
		if tx.Time.Before(h.Since) {
			h.Since = tx.Time
		}
	}

	slices.Sort(users)
	holdings := make([]Holding, 0, len(users)+len(coins))
	for _, u := range users {
		holdings = append(holdings, FiatHolding{UserID: u, Currency: currency, Amount: deposits[u]})
	}

	var held []CoinHolding
	for _, h := range coins {
		if h.Holdings.IsZero() {
			continue
		}
		h.Invested = h.Invested.Abs()
		held = append(held, *h)
	}
	slices.SortFunc(held, func(a, b CoinHolding) int {
		return cmp.Or(cmp.Compare(a.UserID, b.UserID), cmp.Compare(a.Ticker, b.Ticker))
	})
	for _, h := range held {
		holdings = append(holdings, h)
	}
	return holdings
}
