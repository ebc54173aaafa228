package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/etnz/coinfolio"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	opts = append([]Option{WithBaseURL(server.URL), WithThrottle(0), WithRetries(2)}, opts...)
	return New(opts...)
}

func TestPrice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "avalanche-2", r.URL.Query().Get("ids"))
		assert.Equal(t, "eur", r.URL.Query().Get("vs_currencies"))
		assert.Equal(t, "demo-key", r.URL.Query().Get(apiKeyParam))
		w.Write([]byte(`{"avalanche-2":{"eur":31.123456789012}}`))
	}, WithAPIKey("demo-key"))

	price, err := c.Price(context.Background(), "avalanche-2", "EUR")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("31.123456789012").Equal(price), "price = %v", price)
}

func TestPrice_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	_, err := c.Price(context.Background(), "nocoin", "eur")
	assert.ErrorIs(t, err, coinfolio.ErrPriceNotFound)
	assert.ErrorIs(t, err, coinfolio.ErrNotFound)
}

func TestPrice_Unavailable(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := c.Price(context.Background(), "bitcoin", "eur")
	assert.ErrorIs(t, err, coinfolio.ErrUnavailable)
	assert.ErrorIs(t, err, coinfolio.ErrNetwork)
	assert.Equal(t, 3, calls, "one request and two retries")
}

func TestPrice_Retry(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"bitcoin":{"eur":90000}}`))
	})
	price, err := c.Price(context.Background(), "bitcoin", "eur")
	require.NoError(t, err)
	assert.Equal(t, "90000", price.String())
	assert.Equal(t, 2, calls)
}

func TestPriceRange(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 2)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/market_chart/range", r.URL.Path)
		assert.Equal(t, "eur", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "1735689600", r.URL.Query().Get("from"))
		assert.Equal(t, "1735862400", r.URL.Query().Get("to"))
		w.Write([]byte(`{"prices":[[1735689600000,89000.5],[1735776000000,90000.25]],"market_caps":[],"total_volumes":[]}`))
	})

	samples, err := c.PriceRange(context.Background(), "Bitcoin", "EUR", from, to)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.True(t, samples[0].Time.Equal(from))
	assert.Equal(t, "89000.5", samples[0].Price.String())
	assert.Equal(t, "90000.25", samples[1].Price.String())
}

func TestPriceRange_Errors(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 2)

	empty := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"prices":[]}`))
	})
	_, err := empty.PriceRange(context.Background(), "bitcoin", "eur", from, to)
	assert.ErrorIs(t, err, coinfolio.ErrNoData)

	missing := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"coin not found"}`, http.StatusNotFound)
	})
	_, err = missing.PriceRange(context.Background(), "nocoin", "eur", from, to)
	assert.ErrorIs(t, err, coinfolio.ErrPriceNotFound)

	broken := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	})
	_, err = broken.PriceRange(context.Background(), "bitcoin", "eur", from, to)
	assert.ErrorIs(t, err, coinfolio.ErrUnavailable)
}

func TestDiskCache(t *testing.T) {
	calls := 0
	dir := t.TempDir()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"prices":[[1735689600000,1]]}`))
	}, WithCacheDir(dir))

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -1)
	for i := 0; i < 2; i++ {
		samples, err := c.PriceRange(context.Background(), "bitcoin", "eur", from, to.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
		require.Len(t, samples, 1)
	}
	assert.Equal(t, 1, calls, "the second range of the day is served by the cache")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
