package renderer

import (
	"time"

	"github.com/etnz/coinfolio"
	"github.com/shopspring/decimal"
)

// Holdings is the holdings report with every value already formatted.
type Holdings struct {
	User      string
	Timestamp string
	Currency  string
	Return    string
	Worth     string
	Invested  string
	Deposit   string
	Unpriced  []string
	Columns   []string
	Rows      [][]string
}

// holdingsColumns are the fixed columns of a position, before the horizons.
var holdingsColumns = []string{"Coin", "Name", "Holdings", "Invested", "Since", "Price", "Worth", "Return"}

// NewHoldings formats a report.
func NewHoldings(r *coinfolio.Report, opts Options) *Holdings {
	h := &Holdings{
		User:      opts.mask(r.UserID),
		Timestamp: formatTime(r.PriceTimestamp),
		Currency:  r.Currency,
		Return:    r.Return.Arrow(),
		Worth:     opts.mask(r.Worth.String()),
		Invested:  opts.mask(r.Invested.String()),
		Deposit:   opts.mask(r.Deposit.String()),
		Unpriced:  r.Unpriced,
	}
	h.Columns = append(h.Columns, holdingsColumns...)
	for _, hz := range r.Horizons {
		h.Columns = append(h.Columns, hz.Label)
	}

	for _, p := range r.Positions {
		row := []string{
			p.Coin,
			orNull(p.CoinName),
			opts.mask(quantity(p.TotalHoldings)),
			opts.mask(money(decimal.NewNullDecimal(p.TotalFiatInvested), r.Currency)),
			opts.mask(formatDate(p.InvestedSince)),
			money(p.CoinPrice, r.Currency),
			opts.mask(money(p.CurrentWorth, r.Currency)),
			ratio(p.CurrentReturn),
		}
		for _, hz := range r.Horizons {
			if ret, ok := p.Return(hz); ok {
				row = append(row, ret.Arrow())
			} else {
				row = append(row, null)
			}
		}
		h.Rows = append(h.Rows, row)
	}
	return h
}

func orNull(s string) string {
	if s == "" {
		return null
	}
	return s
}

func quantity(d decimal.NullDecimal) string {
	if !d.Valid {
		return null
	}
	return d.Decimal.String()
}

func money(d decimal.NullDecimal, currency string) string {
	if !d.Valid {
		return null
	}
	return coinfolio.M(d.Decimal, currency).String()
}

func ratio(d decimal.NullDecimal) string {
	if !d.Valid {
		return null
	}
	return coinfolio.Ratio(d.Decimal).Arrow()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return null
	}
	return t.UTC().Format(time.DateOnly)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return null
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
