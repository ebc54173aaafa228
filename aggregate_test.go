package coinfolio

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

func newTestAggregator(src PriceSource) *Aggregator {
	a := NewAggregator(slog.Default(), src, DefaultAssets(), "EUR")
	a.now = fixedNow(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return a
}

func TestAggregate_SingleDeposit(t *testing.T) {
	src := newFakeSource()
	got, err := newTestAggregator(src).Aggregate(context.Background(), []Transaction{
		tx("2025-01-01 09:00:00", OperationDeposit, "", "", "500"),
	})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Aggregate() returned %d positions, want 1", len(got))
	}
	p := got[0]
	if !p.IsFiat() || p.Coin != "EUR" {
		t.Errorf("Aggregate()[0] = %v, want the EUR position", p)
	}
	for name, v := range map[string]string{
		"TotalFiatInvested": p.TotalFiatInvested.String(),
		"CoinPrice":         p.CoinPrice.Decimal.String(),
		"CurrentWorth":      p.CurrentWorth.Decimal.String(),
	} {
		if v != "500" {
			t.Errorf("%s = %v, want 500", name, v)
		}
	}
	if !p.CurrentReturn.Decimal.IsZero() {
		t.Errorf("CurrentReturn = %v, want 0", p.CurrentReturn)
	}
	if len(src.calls) != 0 {
		t.Errorf("Aggregate() called the price source %v, want no call", src.calls)
	}
}

func TestAggregate(t *testing.T) {
	src := newFakeSource()
	src.prices["bitcoin"] = D("20000")
	src.prices["ethereum"] = D("3000")

	ledger := []Transaction{
		tx("2025-01-01 09:00:00", OperationDeposit, "", "", "1000"),
		tx("2025-01-02 10:00:00", OperationTransactionRelated, "BTC", "0.01", "-100"),
		tx("2025-01-03 10:00:00", OperationTransactionRelated, "BTC", "0.01", "-150"),
		tx("2025-02-01 10:00:00", OperationTransactionRelated, "ETH", "0.5", "-1000"),
		tx("2025-02-02 10:00:00", OperationTransactionRelated, "DOGE", "100", "-10"),
		tx("2025-02-03 10:00:00", OperationTransactionRelated, "DOGE", "-100", "12"),
		tx("2025-02-04 10:00:00", "Distribution", "XYZ", "5", ""),
	}
	got, err := newTestAggregator(src).Aggregate(context.Background(), ledger)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	var coins []string
	for _, p := range got {
		coins = append(coins, p.Coin)
	}
	// ETH 1500, EUR 1000, BTC 400, XYZ unpriced. DOGE is sold out.
	want := []string{"ETH", "EUR", "BTC", "XYZ"}
	if len(coins) != len(want) {
		t.Fatalf("Aggregate() coins = %v, want %v", coins, want)
	}
	for i := range want {
		if coins[i] != want[i] {
			t.Errorf("Aggregate() coins = %v, want %v", coins, want)
			break
		}
	}

	for _, p := range got {
		if !p.PriceTimestamp.Equal(got[0].PriceTimestamp) {
			t.Errorf("%s PriceTimestamp = %v, want a shared timestamp", p.Coin, p.PriceTimestamp)
		}
		if p.IsFiat() || !p.CoinPrice.Valid {
			continue
		}
		// valuation consistency
		if w := p.CoinPrice.Decimal.Mul(p.TotalHoldings.Decimal); !w.Equal(p.CurrentWorth.Decimal) {
			t.Errorf("%s CurrentWorth = %v, want %v", p.Coin, p.CurrentWorth.Decimal, w)
		}
	}

	btc := got[2]
	if btc.CoinName != "bitcoin" || !btc.TotalFiatInvested.Equal(D("250")) {
		t.Errorf("BTC = %q invested %v, want bitcoin invested 250", btc.CoinName, btc.TotalFiatInvested)
	}
	if want := D("0.6"); !btc.CurrentReturn.Decimal.Equal(want) {
		t.Errorf("BTC CurrentReturn = %v, want %v", btc.CurrentReturn.Decimal, want)
	}
	if src.calls["bitcoin"] != 1 {
		t.Errorf("bitcoin was priced %d times, want once", src.calls["bitcoin"])
	}

	xyz := got[3]
	if xyz.CoinName != "" || xyz.CoinPrice.Valid || xyz.CurrentWorth.Valid || xyz.CurrentReturn.Valid {
		t.Errorf("XYZ = %+v, want no name, price, worth nor return", xyz)
	}
}

func TestAggregate_ZeroInvested(t *testing.T) {
	src := newFakeSource()
	src.prices["solana"] = D("100")
	got, err := newTestAggregator(src).Aggregate(context.Background(), []Transaction{
		tx("2025-01-03 10:00:00", "Distribution", "SOL", "2", ""),
	})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	sol := got[0]
	// (200 - 0) / 0.001
	if want := D("200000"); !sol.CurrentReturn.Decimal.Equal(want) {
		t.Errorf("CurrentReturn = %v, want %v", sol.CurrentReturn.Decimal, want)
	}
}

func TestAggregate_Errors(t *testing.T) {
	ledger := []Transaction{tx("2025-01-02 10:00:00", OperationTransactionRelated, "BTC", "0.01", "-100")}

	src := newFakeSource() // does not know bitcoin
	_, err := newTestAggregator(src).Aggregate(context.Background(), ledger)
	if !errors.Is(err, ErrPriceNotFound) || !errors.Is(err, ErrNotFound) {
		t.Errorf("Aggregate() error = %v, want %v", err, ErrPriceNotFound)
	}

	src.errs["bitcoin"] = ErrUnavailable
	_, err = newTestAggregator(src).Aggregate(context.Background(), ledger)
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Aggregate() error = %v, want %v", err, ErrNetwork)
	}

	_, err = newTestAggregator(src).Aggregate(context.Background(), nil)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Aggregate(nil) error = %v, want %v", err, ErrValidation)
	}
}

func TestUniverse(t *testing.T) {
	got := Universe([]Position{
		{Coin: "EUR", Fiat: true},
		{Coin: "ETH", CoinName: "ethereum"},
		{Coin: "XYZ"},
		{Coin: "BTC", CoinName: "bitcoin"},
	})
	if len(got) != 2 || got[0] != "bitcoin" || got[1] != "ethereum" {
		t.Errorf("Universe() = %v, want [bitcoin ethereum]", got)
	}
}
