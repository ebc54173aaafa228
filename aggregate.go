package coinfolio

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// ZeroGuard replaces a zero amount invested when computing a return.
var ZeroGuard = decimal.New(1, -3)

// Position is the valuation of a holding.
type Position struct {
	UserID            string
	Coin              string // ticker, or the settlement currency for the fiat position
	CoinName          string // empty when the ticker is not in the asset table
	Fiat              bool
	TotalHoldings     decimal.NullDecimal // null for the fiat position
	TotalFiatInvested decimal.Decimal
	InvestedSince     time.Time
	CoinPrice         decimal.NullDecimal // null when the coin could not be priced
	CurrentWorth      decimal.NullDecimal
	CurrentReturn     decimal.NullDecimal // as a fraction
	PriceTimestamp    time.Time
	Returns           map[Horizon]Percent // missing horizons have no historical price
}

// IsFiat reports whether p is the synthetic fiat position.
func (p Position) IsFiat() bool { return p.Fiat }

// Return returns the horizon return and whether it is known.
func (p Position) Return(h Horizon) (Percent, bool) {
	r, ok := p.Returns[h]
	return r, ok
}

// Aggregator folds a ledger into valued positions.
type Aggregator struct {
	Currency string

	source PriceSource
	assets *AssetTable
	logger *slog.Logger
	now    func() time.Time
}

// NewAggregator returns an aggregator pricing coins with source in currency.
func NewAggregator(logger *slog.Logger, source PriceSource, assets *AssetTable, currency string) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if assets == nil {
		assets = DefaultAssets()
	}
	return &Aggregator{Currency: currency, source: source, assets: assets, logger: logger, now: time.Now}
}

// Aggregate computes the current positions of a ledger, sorted by decreasing worth.
//
// Coins missing from the asset table are kept without price, worth nor return. Any price
// source error aborts the aggregation.
func (a *Aggregator) Aggregate(ctx context.Context, ledger []Transaction) ([]Position, error) {
	if a.Currency == "" {
		return nil, fmt.Errorf("%w: missing settlement currency", ErrConfiguration)
	}
	if len(ledger) == 0 {
		return nil, fmt.Errorf("%w: empty ledger", ErrValidation)
	}
	return a.Value(ctx, Holdings(ledger, a.Currency))
}

// Value prices every holding. Each coin is priced once.
func (a *Aggregator) Value(ctx context.Context, holdings []Holding) ([]Position, error) {
	prices := make(map[string]decimal.Decimal)
	positions := make([]Position, 0, len(holdings))

	for _, h := range holdings {
		switch h := h.(type) {
		case FiatHolding:
			positions = append(positions, Position{
				UserID:            h.UserID,
				Coin:              h.Currency,
				Fiat:              true,
				TotalFiatInvested: h.Amount,
				CoinPrice:         valid(h.Amount),
				CurrentWorth:      valid(h.Amount),
			})

		case CoinHolding:
			p := Position{
				UserID:            h.UserID,
				Coin:              h.Ticker,
				TotalHoldings:     valid(h.Holdings),
				TotalFiatInvested: h.Invested,
				InvestedSince:     h.Since,
			}
			name, ok := a.assets.Name(h.Ticker)
			if !ok {
				a.logger.Warn("coin not in asset table, left unpriced", "ticker", h.Ticker)
				positions = append(positions, p)
				continue
			}
			p.CoinName = name

			price, ok := prices[name]
			if !ok {
				var err error
				price, err = a.source.Price(ctx, name, a.Currency)
				if err != nil {
					return nil, fmt.Errorf("cannot price %s (%s): %w", h.Ticker, name, err)
				}
				prices[name] = price
				a.logger.Debug("priced coin", "coin", name, "price", price, "currency", a.Currency)
			}
			p.CoinPrice = valid(price)
			p.CurrentWorth = valid(price.Mul(h.Holdings))
			positions = append(positions, p)
		}
	}

	now := a.now().UTC()
	for i := range positions {
		p := &positions[i]
		p.PriceTimestamp = now
		if p.CurrentWorth.Valid {
			p.CurrentReturn = valid(growth(p.TotalFiatInvested, p.CurrentWorth.Decimal))
		}
	}
	SortPositions(positions)
	return positions, nil
}

// SortPositions orders positions by decreasing worth, unvalued positions last, then by coin.
func SortPositions(positions []Position) {
	slices.SortStableFunc(positions, func(a, b Position) int {
		switch {
		case a.CurrentWorth.Valid && !b.CurrentWorth.Valid:
			return -1
		case !a.CurrentWorth.Valid && b.CurrentWorth.Valid:
			return 1
		case a.CurrentWorth.Valid:
			if c := b.CurrentWorth.Decimal.Cmp(a.CurrentWorth.Decimal); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.Coin, b.Coin)
	})
}

// Universe returns the coin names of the priced positions with Bitcoin first, for which a price
// history is needed.
func Universe(positions []Position) []string {
	coins := []string{Bitcoin}
	for _, p := range positions {
		if p.CoinName != "" && !slices.Contains(coins, p.CoinName) {
			coins = append(coins, p.CoinName)
		}
	}
	return coins
}

// TodayPrices returns the current prices of the priced coin positions, by coin name.
func TodayPrices(positions []Position) PriceRow {
	row := make(PriceRow)
	for _, p := range positions {
		if !p.IsFiat() && p.CoinName != "" && p.CoinPrice.Valid {
			row[p.CoinName] = p.CoinPrice.Decimal
		}
	}
	return row
}
