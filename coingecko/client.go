// Package coingecko implements a coinfolio.PriceSource on the CoinGecko public API.
package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/coinfolio"
	"github.com/jpillora/backoff"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the CoinGecko public API.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// DefaultThrottle is the interval between two requests: 30 requests a minute.
const DefaultThrottle = 2 * time.Second

// apiKeyParam carries the optional demo api key.
const apiKeyParam = "x_cg_demo_api_key"

// Client fetches prices from CoinGecko. Coins are CoinGecko ids, like "bitcoin".
type Client struct {
	baseURL    string
	apiKey     string
	retries    int
	httpClient *http.Client
	logger     *slog.Logger

	throttle time.Duration
	timeout  time.Duration
	cacheDir string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API base URL.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") } }

// WithAPIKey sets the demo api key sent with every request.
func WithAPIKey(key string) Option { return func(c *Client) { c.apiKey = key } }

// WithThrottle sets the minimum interval between two requests. Zero disables throttling.
func WithThrottle(d time.Duration) Option { return func(c *Client) { c.throttle = d } }

// WithTimeout sets the timeout of a single request.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

// WithCacheDir caches market chart responses in dir for the day.
func WithCacheDir(dir string) Option { return func(c *Client) { c.cacheDir = dir } }

// WithRetries sets how many times a request is retried when rate limited or on server errors.
func WithRetries(n int) Option { return func(c *Client) { c.retries = n } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.logger = l } }

// New returns a client on the public API.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		retries:  3,
		logger:   slog.Default(),
		throttle: DefaultThrottle,
		timeout:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}

	var transport http.RoundTripper = http.DefaultTransport
	if c.throttle > 0 {
		transport = &throttle{base: transport, limiter: rate.NewLimiter(rate.Every(c.throttle), 1)}
	}
	if c.cacheDir != "" {
		transport = &diskCache{base: transport, dir: c.cacheDir, logger: c.logger}
	}
	c.httpClient = &http.Client{Transport: transport, Timeout: c.timeout}
	return c
}

// Price returns the current price of coin in currency.
func (c *Client) Price(ctx context.Context, coin, currency string) (decimal.Decimal, error) {
	coin, currency = strings.ToLower(coin), strings.ToLower(currency)
	q := url.Values{}
	q.Set("ids", coin)
	q.Set("vs_currencies", currency)
	q.Set("precision", "full")

	var jobj any
	if err := c.get(ctx, "/simple/price", q, &jobj); err != nil {
		return decimal.Decimal{}, fmt.Errorf("cannot get price of %s: %w", coin, err)
	}
	// an unknown coin is an empty object.
	if m, ok := jobj.(map[string]any); !ok || m[coin] == nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", coinfolio.ErrPriceNotFound, coin)
	}

	path := fmt.Sprintf("$[%q][%q]", coin, currency)
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q has no price in %q", coinfolio.ErrPriceNotFound, coin, currency)
	}
	// because jsonpath is never clear about wheter it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	price, err := toDecimal(jval)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: invalid price of %s at %s: %v", coinfolio.ErrValidation, coin, path, err)
	}
	c.logger.Debug("coingecko price", "coin", coin, "currency", currency, "price", price)
	return price, nil
}

// chart is the market_chart/range response: [timestamp ms, value] pairs.
type chart struct {
	Prices [][2]json.Number `json:"prices"`
}

// PriceRange returns the price series of coin in currency between from and to.
//
// CoinGecko picks the granularity from the range length: daily points beyond 90 days.
func (c *Client) PriceRange(ctx context.Context, coin, currency string, from, to time.Time) ([]coinfolio.PriceSample, error) {
	coin, currency = strings.ToLower(coin), strings.ToLower(currency)
	q := url.Values{}
	q.Set("vs_currency", currency)
	q.Set("from", strconv.FormatInt(from.Unix(), 10))
	q.Set("to", strconv.FormatInt(to.Unix(), 10))

	var resp chart
	if err := c.get(ctx, "/coins/"+url.PathEscape(coin)+"/market_chart/range", q, &resp); err != nil {
		return nil, fmt.Errorf("cannot get price range of %s: %w", coin, err)
	}
	if len(resp.Prices) == 0 {
		return nil, fmt.Errorf("%w: %s from %s to %s", coinfolio.ErrNoData, coin, from.Format(time.DateOnly), to.Format(time.DateOnly))
	}

	samples := make([]coinfolio.PriceSample, 0, len(resp.Prices))
	for _, p := range resp.Prices {
		ms, err := p[0].Int64()
		if err != nil {
			// timestamps may come as floats.
			f, ferr := p[0].Float64()
			if ferr != nil {
				return nil, fmt.Errorf("%w: invalid timestamp %q for %s", coinfolio.ErrValidation, p[0], coin)
			}
			ms = int64(f)
		}
		price, err := decimal.NewFromString(p[1].String())
		if err != nil {
			return nil, fmt.Errorf("%w: invalid price %q for %s", coinfolio.ErrValidation, p[1], coin)
		}
		samples = append(samples, coinfolio.PriceSample{Time: time.UnixMilli(ms).UTC(), Price: price})
	}
	c.logger.Debug("coingecko price range", "coin", coin, "currency", currency, "samples", len(samples))
	return samples, nil
}

// get performs a GET on path and decodes the JSON response into data.
//
// Rate limited and server errors are retried with an exponential backoff.
func (c *Client) get(ctx context.Context, path string, q url.Values, data any) error {
	if c.apiKey != "" {
		q.Set(apiKeyParam, c.apiKey)
	}
	addr := c.baseURL + path + "?" + q.Encode()

	b := &backoff.Backoff{Min: c.throttle, Max: time.Minute, Factor: 2, Jitter: true}
	if b.Min <= 0 {
		b.Min = 100 * time.Millisecond
	}
	for {
		retry, err := c.do(ctx, addr, data)
		if err == nil {
			return nil
		}
		if !retry || int(b.Attempt()) >= c.retries {
			return err
		}
		d := b.Duration()
		c.logger.Warn("coingecko request failed, retrying", "path", path, "error", err, "in", d)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", coinfolio.ErrUnavailable, ctx.Err())
		case <-time.After(d):
		}
	}
}

// do performs a single request, and reports whether it can be retried.
func (c *Client) do(ctx context.Context, addr string, data any) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return false, fmt.Errorf("%w: %v", coinfolio.ErrUnavailable, err)
		}
		return true, fmt.Errorf("%w: %v", coinfolio.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("coingecko", "method", req.Method, "path", req.URL.Path, "status", resp.Status)

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return false, fmt.Errorf("%w: %s", coinfolio.ErrPriceNotFound, req.URL.Path)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return true, fmt.Errorf("%w: %s %s", coinfolio.ErrUnavailable, req.URL.Path, resp.Status)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("%w: %s %s: %s", coinfolio.ErrUnavailable, req.URL.Path, resp.Status, strings.TrimSpace(string(body)))
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(data); err != nil {
		return false, fmt.Errorf("%w: cannot decode %s: %v", coinfolio.ErrValidation, req.URL.Path, err)
	}
	return false, nil
}

// toDecimal converts a decoded JSON number.
func toDecimal(v any) (decimal.Decimal, error) {
	switch v := v.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		return decimal.NewFromString(v)
	default:
		return decimal.Decimal{}, fmt.Errorf("not a number: %v", v)
	}
}

var _ coinfolio.PriceSource = (*Client)(nil)
