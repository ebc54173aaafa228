// Package binance implements a coinfolio.PriceSource on the Binance spot market.
//
// Coins are priced from the market pairing their ticker with the currency, e.g. BTCEUR.
package binance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/etnz/coinfolio"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// invalidSymbol is the Binance error code for an unknown market.
const invalidSymbol = -1121

// maxKlines is the largest number of candles returned by a single request.
const maxKlines = 1000

// Source prices coins from Binance.
type Source struct {
	client  *binance.Client
	assets  *coinfolio.AssetTable
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Config holds the optional settings of a Source.
type Config struct {
	APIKey    string
	SecretKey string
	BaseURL   string        // defaults to the production API
	Throttle  time.Duration // minimum interval between two requests
	Timeout   time.Duration
}

// New returns a Source resolving coin names to tickers with assets.
func New(logger *slog.Logger, assets *coinfolio.AssetTable, cfg Config) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	client := binance.NewClient(cfg.APIKey, cfg.SecretKey)
	if cfg.BaseURL != "" {
		client.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	if cfg.Timeout > 0 {
		client.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	limit := rate.Inf
	if cfg.Throttle > 0 {
		limit = rate.Every(cfg.Throttle)
	}
	return &Source{client: client, assets: assets, limiter: rate.NewLimiter(limit, 1), logger: logger}
}

// symbol returns the market of coin in currency.
func (s *Source) symbol(coin, currency string) (string, error) {
	ticker, ok := s.assets.Ticker(coin)
	if !ok {
		return "", fmt.Errorf("%w: %q has no ticker", coinfolio.ErrPriceNotFound, coin)
	}
	return strings.ToUpper(ticker + currency), nil
}

// Price returns the last traded price of coin in currency.
func (s *Source) Price(ctx context.Context, coin, currency string) (decimal.Decimal, error) {
	symbol, err := s.symbol(coin, currency)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %v", coinfolio.ErrUnavailable, err)
	}
	prices, err := s.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return decimal.Decimal{}, wrap(symbol, err)
	}
	for _, p := range prices {
		if p.Symbol != symbol {
			continue
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("%w: invalid price %q for %s", coinfolio.ErrValidation, p.Price, symbol)
		}
		s.logger.Debug("binance price", "symbol", symbol, "price", price)
		return price, nil
	}
	return decimal.Decimal{}, fmt.Errorf("%w: %s", coinfolio.ErrPriceNotFound, symbol)
}

// PriceRange returns the daily closing prices of coin in currency between from and to, each
// timestamped at the opening of its day.
func (s *Source) PriceRange(ctx context.Context, coin, currency string, from, to time.Time) ([]coinfolio.PriceSample, error) {
	symbol, err := s.symbol(coin, currency)
	if err != nil {
		return nil, err
	}

	var samples []coinfolio.PriceSample
	start := from.UnixMilli()
	for start <= to.UnixMilli() {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", coinfolio.ErrUnavailable, err)
		}
		klines, err := s.client.NewKlinesService().
			Symbol(symbol).
			Interval("1d").
			StartTime(start).
			EndTime(to.UnixMilli()).
			Limit(maxKlines).
			Do(ctx)
		if err != nil {
			return nil, wrap(symbol, err)
		}
		for _, k := range klines {
			price, err := decimal.NewFromString(k.Close)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid close %q for %s", coinfolio.ErrValidation, k.Close, symbol)
			}
			samples = append(samples, coinfolio.PriceSample{Time: time.UnixMilli(k.OpenTime).UTC(), Price: price})
		}
		if len(klines) < maxKlines {
			break
		}
		start = klines[len(klines)-1].CloseTime + 1
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: %s from %s to %s", coinfolio.ErrNoData, symbol, from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	s.logger.Debug("binance price range", "symbol", symbol, "samples", len(samples))
	return samples, nil
}

// wrap classifies a Binance error.
func wrap(symbol string, err error) error {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) && apiErr.Code == invalidSymbol {
		return fmt.Errorf("%w: %s: %v", coinfolio.ErrPriceNotFound, symbol, apiErr)
	}
	return fmt.Errorf("%w: %s: %v", coinfolio.ErrUnavailable, symbol, err)
}

var _ coinfolio.PriceSource = (*Source)(nil)
