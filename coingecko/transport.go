package coingecko

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/coinfolio/date"
	"golang.org/x/time/rate"
)

// throttle delays every request going out to honour the rate limit of the API.
type throttle struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *throttle) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}

// diskCache implements a simple disk cache for market chart responses.
//
// Entries are keyed by day, so the cache expires every day.
type diskCache struct {
	base   http.RoundTripper
	dir    string
	logger *slog.Logger
}

func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	if req.Method != http.MethodGet || !strings.HasSuffix(req.URL.Path, "/market_chart/range") {
		return c.base.RoundTrip(req)
	}
	key := fmt.Sprintf("%s %s %s", date.Today(), req.Method, cacheURL(req.URL))
	key = fmt.Sprintf("coingecko-%x", sha1.Sum([]byte(key)))

	cachedResp, err := c.get(key, req)
	if err == nil { // Cache hit
		c.logger.Debug("cache hit", "path", req.URL.Path)
		return cachedResp, nil
	}

	resp, err = c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	// otherwise attempt to store it in cache

	if err := c.put(key, resp); err != nil {
		c.logger.Warn("cache write error (ignored)", "error", err)
	}
	return resp, nil
}

// cacheURL returns the URL with the from and to parameters truncated to their day, so that a
// range requested several times a day hits the cache. The api key is left out.
func cacheURL(u *url.URL) string {
	q := u.Query()
	for _, p := range []string{"from", "to"} {
		if sec, err := strconv.ParseInt(q.Get(p), 10, 64); err == nil {
			q.Set(p, date.FromTime(time.Unix(sec, 0)).String())
		}
	}
	q.Del(apiKeyParam)
	v := *u
	v.RawQuery = q.Encode()
	return v.String()
}

// get retrieves a cached response from disk
func (c *diskCache) get(key string, req *http.Request) (resp *http.Response, err error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores a response to disk cache
func (c *diskCache) put(key string, resp *http.Response) (err error) {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key), content, 0o644)
}
