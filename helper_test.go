package coinfolio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// D is a helper for test to create decimals from const.
func D(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// T is a helper for test to create UTC times in the export layout.
func T(s string) time.Time {
	t, err := time.ParseInLocation(TimeLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

// header of a minimal export.
const header = "User_ID,UTC_Time,Account,Operation,Coin,Change,Remark\n"

// writeFile writes content to dir/name, creating parent directories.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// fakeSource is a PriceSource serving fixed prices and counting calls.
type fakeSource struct {
	prices map[string]decimal.Decimal // current price by coin
	series map[string][]PriceSample   // history by coin
	errs   map[string]error           // error by coin
	calls  map[string]int             // Price calls by coin
	ranges []string                   // PriceRange calls in order
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		prices: make(map[string]decimal.Decimal),
		series: make(map[string][]PriceSample),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (f *fakeSource) Price(ctx context.Context, coin, currency string) (decimal.Decimal, error) {
	f.calls[coin]++
	if err := f.errs[coin]; err != nil {
		return decimal.Decimal{}, err
	}
	p, ok := f.prices[coin]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrPriceNotFound, coin)
	}
	return p, nil
}

func (f *fakeSource) PriceRange(ctx context.Context, coin, currency string, from, to time.Time) ([]PriceSample, error) {
	f.ranges = append(f.ranges, coin)
	if err := f.errs[coin]; err != nil {
		return nil, err
	}
	var out []PriceSample
	for _, s := range f.series[coin] {
		if !s.Time.Before(from) && !s.Time.After(to) {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, coin)
	}
	return out, nil
}

// fixedNow returns a clock stuck at t.
func fixedNow(t time.Time) func() time.Time { return func() time.Time { return t } }
