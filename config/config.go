// Package config loads the settings of the coins tool.
//
// Settings come, by decreasing priority, from environment variables, a `.env` file, an optional
// `coinfolio.yaml` file and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/etnz/coinfolio"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Providers are the supported price sources.
const (
	CoinGecko = "coingecko"
	Binance   = "binance"
)

// Config stores all configuration for the application.
type Config struct {
	TransactionsPath   string        `mapstructure:"transactions_path"`
	Currency           string        `mapstructure:"currency"`
	Provider           string        `mapstructure:"provider"`
	CoinGeckoAPIKey    string        `mapstructure:"coingecko_api_key"`
	BinanceAPIKey      string        `mapstructure:"binance_api_key"`
	BinanceSecretKey   string        `mapstructure:"binance_secret_key"`
	AssetsFile         string        `mapstructure:"assets_file"`
	Throttle           time.Duration `mapstructure:"throttle"`
	Timeout            time.Duration `mapstructure:"timeout"`
	LookbackDays       int           `mapstructure:"lookback_days"`
	WindowDays         int           `mapstructure:"window_days"`
	CacheDir           string        `mapstructure:"cache_dir"`
	HideCriticalValues bool          `mapstructure:"hide_critical_values"`
	LogFile            string        `mapstructure:"log_file"`
	Verbose            bool          `mapstructure:"verbose"`
	GeminiModel        string        `mapstructure:"gemini_model"`
}

// env maps setting keys to their environment variable. Keys not listed use COINFOLIO_<KEY>.
var env = map[string]string{
	"transactions_path":    "RAW_TRANSACTIONS_PATH",
	"coingecko_api_key":    "COINGECKO_API_KEY",
	"hide_critical_values": "HIDE_CRITICAL_VALUES",
}

var defaults = map[string]any{
	"currency":      "EUR",
	"provider":      CoinGecko,
	"throttle":      2 * time.Second,
	"timeout":       10 * time.Second,
	"lookback_days": coinfolio.DefaultLookback,
	"window_days":   365,
	"gemini_model":  "gemini-2.5-flash",
}

// keys lists every setting.
var keys = []string{
	"transactions_path", "currency", "provider", "coingecko_api_key", "binance_api_key",
	"binance_secret_key", "assets_file", "throttle", "timeout", "lookback_days", "window_days",
	"cache_dir", "hide_critical_values", "log_file", "verbose", "gemini_model",
}

// Load reads the configuration from dir/.env, dir/coinfolio.yaml and the environment.
// Both files are optional.
func Load(dir string) (*Config, error) {
	dotenv := filepath.Join(dir, ".env")
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: cannot read %q: %v", coinfolio.ErrConfiguration, dotenv, err)
	}

	v := viper.New()
	v.SetConfigName("coinfolio")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	for _, key := range keys {
		name, ok := env[key]
		if !ok {
			name = "COINFOLIO_" + strings.ToUpper(key)
		}
		if err := v.BindEnv(key, name); err != nil {
			return nil, fmt.Errorf("%w: %v", coinfolio.ErrConfiguration, err)
		}
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %v", coinfolio.ErrConfiguration, err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", coinfolio.ErrConfiguration, err)
	}
	cfg.Currency = strings.ToUpper(strings.TrimSpace(cfg.Currency))
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

// Validate checks the settings that have no usable fallback.
func (c *Config) Validate() error {
	switch {
	case !currencyCode.MatchString(c.Currency):
		return fmt.Errorf("%w: invalid currency %q", coinfolio.ErrConfiguration, c.Currency)
	case c.Provider != CoinGecko && c.Provider != Binance:
		return fmt.Errorf("%w: unknown provider %q, want %q or %q", coinfolio.ErrConfiguration, c.Provider, CoinGecko, Binance)
	case c.Throttle < 0 || c.Timeout < 0:
		return fmt.Errorf("%w: negative throttle or timeout", coinfolio.ErrConfiguration)
	case c.WindowDays <= 0:
		return fmt.Errorf("%w: invalid window_days %d", coinfolio.ErrConfiguration, c.WindowDays)
	case c.LookbackDays <= 0 || c.LookbackDays >= c.WindowDays:
		return fmt.Errorf("%w: lookback_days %d must be positive and shorter than window_days %d", coinfolio.ErrConfiguration, c.LookbackDays, c.WindowDays)
	}
	return nil
}

// Transactions returns the directory of the exchange exports.
func (c *Config) Transactions() (string, error) {
	if c.TransactionsPath == "" {
		return "", fmt.Errorf("%w: RAW_TRANSACTIONS_PATH is not set", coinfolio.ErrConfiguration)
	}
	return c.TransactionsPath, nil
}

// Assets returns the asset table, read from AssetsFile when set.
func (c *Config) Assets() (*coinfolio.AssetTable, error) {
	if c.AssetsFile == "" {
		return coinfolio.DefaultAssets(), nil
	}
	return coinfolio.LoadAssets(c.AssetsFile)
}
