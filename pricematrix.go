package coinfolio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/etnz/coinfolio/date"
	"github.com/shopspring/decimal"
)

// PriceRow holds the prices of one day by coin name. A missing coin has no price that day.
type PriceRow map[string]decimal.Decimal

// PriceMatrix is a daily price history of several coins in one currency.
type PriceMatrix struct {
	Currency string

	rows  date.History[PriceRow]
	coins []string // sorted
}

// NewPriceMatrix returns an empty matrix in currency.
func NewPriceMatrix(currency string) *PriceMatrix {
	return &PriceMatrix{Currency: currency}
}

// Coins returns the coin names of the matrix, sorted.
func (m *PriceMatrix) Coins() []string { return slices.Clone(m.coins) }

// Days returns the days of the matrix in chronological order.
func (m *PriceMatrix) Days() []date.Date { return m.rows.Days() }

// Len returns the number of days.
func (m *PriceMatrix) Len() int { return m.rows.Len() }

// Row returns a copy of the prices of day.
func (m *PriceMatrix) Row(day date.Date) (PriceRow, bool) {
	row, ok := m.rows.Get(day)
	return maps.Clone(row), ok
}

// Price returns the price of coin on day, and false if unknown.
func (m *PriceMatrix) Price(day date.Date, coin string) (decimal.Decimal, bool) {
	row, ok := m.rows.Get(day)
	if !ok {
		return decimal.Decimal{}, false
	}
	p, ok := row[coin]
	return p, ok
}

// Upsert replaces the row of day by prices. Calling it twice with the same row leaves the matrix
// unchanged.
func (m *PriceMatrix) Upsert(day date.Date, prices PriceRow) {
	m.rows.Delete(day)
	m.rows.Append(day, maps.Clone(prices))
	for coin := range prices {
		m.addCoin(coin)
	}
}

// UpsertToday replaces the row of the day of t by prices, typically the live prices.
func (m *PriceMatrix) UpsertToday(t time.Time, prices PriceRow) { m.Upsert(date.FromTime(t), prices) }

// Sample returns the rows of m within r, keeping the last day of each period. The columns are
// restricted to coins when some are given.
func (m *PriceMatrix) Sample(r date.Range, period date.Period, coins ...string) *PriceMatrix {
	if len(coins) == 0 {
		coins = m.coins
	}
	s := NewPriceMatrix(m.Currency)
	for _, coin := range coins {
		if slices.Contains(m.coins, coin) {
			s.addCoin(coin)
		}
	}

	days := m.Days()
	for i, day := range days {
		if !r.Contains(day) {
			continue
		}
		if i+1 < len(days) && r.Contains(days[i+1]) && days[i+1].StartOf(period) == day.StartOf(period) {
			continue
		}
		row, _ := m.Row(day)
		maps.DeleteFunc(row, func(coin string, _ decimal.Decimal) bool { return !slices.Contains(s.coins, coin) })
		s.rows.Append(day, row)
	}
	return s
}

func (m *PriceMatrix) addCoin(coin string) {
	if i, found := slices.BinarySearch(m.coins, coin); !found {
		m.coins = slices.Insert(m.coins, i, coin)
	}
}

// Header returns the column names of Records.
func (m *PriceMatrix) Header() []string {
	return append([]string{"Price_Timestamp"}, m.coins...)
}

// Records returns the matrix as rows of strings, day first then coins in Header order.
// Missing prices are empty strings.
func (m *PriceMatrix) Records() [][]string {
	records := make([][]string, 0, m.rows.Len())
	for day, row := range m.rows.Values() {
		rec := make([]string, 0, len(m.coins)+1)
		rec = append(rec, day.String())
		for _, coin := range m.coins {
			if p, ok := row[coin]; ok {
				rec = append(rec, p.String())
			} else {
				rec = append(rec, "")
			}
		}
		records = append(records, rec)
	}
	return records
}

// HistoryBuilder fetches price histories into a PriceMatrix.
type HistoryBuilder struct {
	source PriceSource
	logger *slog.Logger
	now    func() time.Time
}

// NewHistoryBuilder returns a builder fetching prices from source.
func NewHistoryBuilder(logger *slog.Logger, source PriceSource) *HistoryBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryBuilder{source: source, logger: logger, now: time.Now}
}

// Build fetches the daily prices of every coin in universe over the last window days.
//
// Bitcoin, when part of the universe, is fetched first and its days make the timeline of the
// matrix; otherwise the first coin does. Other coins are joined on that timeline, keeping the
// last sample of each day. A coin without data in the window is left without prices, except
// for the coin anchoring the timeline.
func (b *HistoryBuilder) Build(ctx context.Context, universe []string, currency string, window int) (*PriceMatrix, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: invalid history window %d", ErrConfiguration, window)
	}
	coins := anchorFirst(universe)
	if len(coins) == 0 {
		return nil, fmt.Errorf("%w: no coin to fetch prices for", ErrValidation)
	}

	r := date.Trailing(date.FromTime(b.now()), window)
	from, to := r.Times()
	b.logger.Info("fetching price history", "coins", len(coins), "range", r.String(), "days", r.Days(), "currency", currency)

	m := NewPriceMatrix(currency)
	for i, coin := range coins {
		samples, err := b.source.PriceRange(ctx, coin, currency, from, to)
		if errors.Is(err, ErrNoData) && i > 0 {
			b.logger.Warn("no price history", "coin", coin)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("cannot fetch price history of %s: %w", coin, err)
		}
		daily := dailyPrices(samples)
		if i == 0 {
			for day, p := range daily {
				m.rows.Append(day, PriceRow{coin: p})
			}
			m.addCoin(coin)
			continue
		}
		for day, row := range m.rows.Values() {
			if p, ok := daily[day]; ok {
				row[coin] = p
			}
		}
		m.addCoin(coin)
		b.logger.Debug("fetched price history", "coin", coin, "samples", len(samples), "days", len(daily))
	}
	return m, nil
}

// anchorFirst returns the distinct coins with Bitcoin moved first.
func anchorFirst(universe []string) []string {
	var coins []string
	for _, c := range universe {
		if !slices.Contains(coins, c) {
			coins = append(coins, c)
		}
	}
	if i := slices.Index(coins, Bitcoin); i > 0 {
		coins = slices.Insert(slices.Delete(coins, i, i+1), 0, Bitcoin)
	}
	return coins
}

// dailyPrices truncates samples to their day, keeping the latest sample of each day.
func dailyPrices(samples []PriceSample) map[date.Date]decimal.Decimal {
	daily := make(map[date.Date]decimal.Decimal, len(samples))
	last := make(map[date.Date]time.Time, len(samples))
	for _, s := range samples {
		day := date.FromTime(s.Time)
		if t, ok := last[day]; ok && s.Time.Before(t) {
			continue
		}
		daily[day], last[day] = s.Price, s.Time
	}
	return daily
}
