package coinfolio

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PriceSample is one point of a price series.
type PriceSample struct {
	Time  time.Time
	Price decimal.Decimal
}

// PriceSource provides coin prices in a fiat currency.
//
// Coins are identified by the names of the asset table (e.g. "bitcoin").
// Implementations return errors wrapping ErrPriceNotFound when the coin is unknown,
// ErrUnavailable when the service fails and ErrNoData when a range is empty.
type PriceSource interface {
	// Price returns the current price of coin in currency.
	Price(ctx context.Context, coin, currency string) (decimal.Decimal, error)
	// PriceRange returns the price series of coin in currency between from and to, in
	// chronological order.
	PriceRange(ctx context.Context, coin, currency string, from, to time.Time) ([]PriceSample, error)
}
