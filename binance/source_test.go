package binance

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/etnz/coinfolio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSource(t *testing.T, handler http.HandlerFunc) *Source {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(nil, coinfolio.DefaultAssets(), Config{BaseURL: server.URL, Timeout: 5 * time.Second})
}

func TestPrice(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/price", r.URL.Path)
		assert.Equal(t, "BTCEUR", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"symbol":"BTCEUR","price":"91234.56000000"}`))
	})

	price, err := s.Price(context.Background(), "bitcoin", "EUR")
	require.NoError(t, err)
	assert.Equal(t, "91234.56", price.String())
}

func TestPrice_NotFound(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	})

	_, err := s.Price(context.Background(), "bitcoin", "XXX")
	assert.ErrorIs(t, err, coinfolio.ErrPriceNotFound)

	// not in the asset table: no request at all.
	_, err = s.Price(context.Background(), "unknown-coin", "EUR")
	assert.ErrorIs(t, err, coinfolio.ErrPriceNotFound)
}

func TestPrice_Unavailable(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"code":-1001,"msg":"Internal error."}`))
	})
	_, err := s.Price(context.Background(), "ethereum", "EUR")
	assert.ErrorIs(t, err, coinfolio.ErrNetwork)
}

// kline returns a daily candle as served by the API.
func kline(open time.Time, close string) string {
	end := open.Add(24*time.Hour).UnixMilli() - 1
	return fmt.Sprintf(`[%d,"1","1","1",%q,"10",%d,"10",1,"5","5","0"]`, open.UnixMilli(), close, end)
}

func TestPriceRange(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 2)
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/klines", r.URL.Path)
		assert.Equal(t, "ETHEUR", r.URL.Query().Get("symbol"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		rows := []string{kline(from, "3200.5"), kline(from.AddDate(0, 0, 1), "3300")}
		w.Write([]byte("[" + strings.Join(rows, ",") + "]"))
	})

	samples, err := s.PriceRange(context.Background(), "ethereum", "EUR", from, to)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.True(t, samples[0].Time.Equal(from))
	assert.Equal(t, "3200.5", samples[0].Price.String())
	assert.Equal(t, "3300", samples[1].Price.String())
}

func TestPriceRange_NoData(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.PriceRange(context.Background(), "solana", "EUR", from, from.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, coinfolio.ErrNoData)
}
