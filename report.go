package coinfolio

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report summarizes the positions of a user.
type Report struct {
	UserID         string
	Currency       string
	PriceTimestamp time.Time
	Deposit        Money      // net fiat deposited
	Invested       Money      // fiat invested in the priced coins
	Worth          Money      // current worth of the priced coins
	Return         Percent    // of Worth over Invested
	Unpriced       []string   // tickers that could not be priced
	Positions      []Position // coin positions, by decreasing worth
	Horizons       []Horizon
}

// NewReport summarizes positions valued in currency. The fiat position only contributes to
// the deposit. Unpriced coins are listed but left out of Invested, Worth and Return.
func NewReport(positions []Position, currency string) *Report {
	r := &Report{
		Currency: currency,
		Deposit:  M(decimal.Zero, currency),
		Invested: M(decimal.Zero, currency),
		Worth:    M(decimal.Zero, currency),
	}
	for _, p := range positions {
		if r.UserID == "" {
			r.UserID = p.UserID
		}
		if r.PriceTimestamp.IsZero() {
			r.PriceTimestamp = p.PriceTimestamp
		}
		if p.IsFiat() {
			r.Deposit = r.Deposit.Add(M(p.TotalFiatInvested, currency))
			continue
		}
		r.Positions = append(r.Positions, p)
		if p.CurrentWorth.Valid {
			r.Invested = r.Invested.Add(M(p.TotalFiatInvested, currency))
			r.Worth = r.Worth.Add(M(p.CurrentWorth.Decimal, currency))
		} else {
			r.Unpriced = append(r.Unpriced, p.Coin)
		}
	}
	r.Return = Ratio(growth(r.Invested.Value(), r.Worth.Value()))
	return r
}
