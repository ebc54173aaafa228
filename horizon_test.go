package coinfolio

import (
	"testing"

	"github.com/etnz/coinfolio/date"
)

func TestHorizon_From(t *testing.T) {
	on := date.New(2025, 6, 10)
	want := map[string]date.Date{
		"1w":  date.New(2025, 6, 3),
		"1m":  date.New(2025, 5, 11),
		"3m":  date.New(2025, 3, 11),
		"6m":  date.New(2024, 12, 10),
		"YTD": date.New(2025, 1, 1),
		"1y":  date.New(2024, 6, 11),
	}
	for _, h := range Horizons(0) {
		if got := h.From(on); got != want[h.Label] {
			t.Errorf("%s.From(%v) = %v, want %v", h, on, got, want[h.Label])
		}
	}
}

func TestApplyReturns(t *testing.T) {
	on := date.New(2025, 6, 10)
	m := NewPriceMatrix("EUR")
	m.Upsert(on.Add(-7), PriceRow{"bitcoin": D("80000"), "ethereum": D("2000")})
	m.Upsert(on.Add(-30), PriceRow{"bitcoin": D("0")})
	m.Upsert(date.New(2025, 1, 1), PriceRow{"bitcoin": D("100000")})

	positions := []Position{
		{Coin: "EUR", Fiat: true, CoinPrice: valid(D("500"))},
		{Coin: "BTC", CoinName: "bitcoin", CoinPrice: valid(D("100000"))},
		{Coin: "ETH", CoinName: "ethereum", CoinPrice: valid(D("1500"))},
		{Coin: "XYZ"},
	}
	horizons := Horizons(364)
	ApplyReturns(positions, m, horizons, on)

	week, month, ytd := horizons[0], horizons[1], horizons[4]
	if r, ok := positions[1].Return(week); !ok || !r.Equal(25) {
		t.Errorf("BTC 1w return = %v, %v want 25, true", r, ok)
	}
	if r, ok := positions[1].Return(ytd); !ok || !r.Equal(0) {
		t.Errorf("BTC YTD return = %v, %v want 0, true", r, ok)
	}
	if _, ok := positions[1].Return(month); ok {
		t.Errorf("BTC 1m return is known against a zero price")
	}
	if r, ok := positions[2].Return(week); !ok || !r.Equal(-25) {
		t.Errorf("ETH 1w return = %v, %v want -25, true", r, ok)
	}
	if _, ok := positions[2].Return(ytd); ok {
		t.Errorf("ETH YTD return is known without a price on that day")
	}
	if len(positions[0].Returns) != 0 || len(positions[3].Returns) != 0 {
		t.Errorf("fiat or unpriced positions got returns: %v %v", positions[0].Returns, positions[3].Returns)
	}
}
