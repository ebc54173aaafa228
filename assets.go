package coinfolio

import (
	_ "embed"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Bitcoin is the coin anchoring the price history.
const Bitcoin = "bitcoin"

//go:embed assets.yaml
var defaultAssets []byte

// AssetTable maps exchange tickers to the coin names used by price sources.
type AssetTable struct {
	names   map[string]string // ticker -> name
	tickers map[string]string // name -> ticker
}

// DefaultAssets returns the built-in asset table.
func DefaultAssets() *AssetTable {
	t, err := ParseAssets(defaultAssets)
	if err != nil {
		panic(fmt.Sprintf("invalid embedded asset table: %v", err))
	}
	return t
}

// LoadAssets reads an asset table from a YAML or JSON file holding a ticker to name mapping.
func LoadAssets(path string) (*AssetTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read asset table %q: %v", ErrConfiguration, path, err)
	}
	t, err := ParseAssets(data)
	if err != nil {
		return nil, fmt.Errorf("asset table %q: %w", path, err)
	}
	return t, nil
}

// ParseAssets decodes a ticker to name mapping. JSON being valid YAML, both are accepted.
func ParseAssets(data []byte) (*AssetTable, error) {
	var m map[string]string
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	t := &AssetTable{names: make(map[string]string, len(m)), tickers: make(map[string]string, len(m))}
	for ticker, name := range m {
		ticker, name = strings.TrimSpace(ticker), strings.TrimSpace(name)
		if ticker == "" || name == "" {
			return nil, fmt.Errorf("%w: empty ticker or name in %q: %q", ErrConfiguration, ticker, name)
		}
		t.names[ticker] = name
		t.tickers[name] = ticker
	}
	return t, nil
}

// Name returns the coin name for ticker, and false if the ticker is not mapped.
func (t *AssetTable) Name(ticker string) (string, bool) {
	name, ok := t.names[ticker]
	return name, ok
}

// Ticker returns the ticker of a coin name, and false if the name is not mapped.
func (t *AssetTable) Ticker(name string) (string, bool) {
	ticker, ok := t.tickers[name]
	return ticker, ok
}

// Names returns every coin name in the table, sorted.
func (t *AssetTable) Names() []string {
	return slices.Sorted(maps.Keys(t.tickers))
}

// Len returns the number of tickers in the table.
func (t *AssetTable) Len() int { return len(t.names) }
