package coinfolio

import (
	"github.com/etnz/coinfolio/date"
	"github.com/shopspring/decimal"
)

// DefaultLookback is the number of days of the one year horizon. It stays below a year so that
// the day is always covered by a 365 days price history.
const DefaultLookback = 364

// Horizon is a past day a return is measured from: either a fixed number of days ago or the
// start of the current period.
type Horizon struct {
	Label  string
	Days   int         // days before the valuation day, when Period is zero
	Period date.Period // start of the current period, when non zero
}

// From returns the day the horizon starts from, when measured on day on.
func (h Horizon) From(on date.Date) date.Date {
	if h.Period != 0 {
		return on.StartOf(h.Period)
	}
	return on.Add(-h.Days)
}

func (h Horizon) String() string { return h.Label }

// Horizons returns the horizons reported for every coin, from the shortest to the longest.
// lookback is the length in days of the one year horizon.
func Horizons(lookback int) []Horizon {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return []Horizon{
		{Label: "1w", Days: 7},
		{Label: "1m", Days: 30},
		{Label: "3m", Days: 91},
		{Label: "6m", Days: 182},
		{Label: "YTD", Period: date.Yearly},
		{Label: "1y", Days: lookback},
	}
}

// ApplyReturns computes the horizon returns of every priced coin position against the
// historical prices in matrix, measured on day on.
//
// A return is the relative change between the price on the horizon day and the current price.
// Horizons without a price on that day are left out.
func ApplyReturns(positions []Position, matrix *PriceMatrix, horizons []Horizon, on date.Date) {
	for i := range positions {
		p := &positions[i]
		if p.IsFiat() || p.CoinName == "" || !p.CoinPrice.Valid {
			continue
		}
		for _, h := range horizons {
			then, ok := matrix.Price(h.From(on), p.CoinName)
			if !ok || then.IsZero() {
				continue
			}
			if p.Returns == nil {
				p.Returns = make(map[Horizon]Percent, len(horizons))
			}
			p.Returns[h] = Ratio(p.CoinPrice.Decimal.Sub(then).Div(then))
		}
	}
}

// growth returns (to - from) / from, substituting ZeroGuard for a zero denominator.
func growth(from, to decimal.Decimal) decimal.Decimal {
	den := from
	if den.IsZero() {
		den = ZeroGuard
	}
	return to.Sub(from).Div(den)
}
