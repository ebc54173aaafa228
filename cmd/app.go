// Package cmd implements the coins command line.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/binance"
	"github.com/etnz/coinfolio/coingecko"
	"github.com/etnz/coinfolio/config"
	"github.com/etnz/coinfolio/date"
	"github.com/etnz/coinfolio/logger"
	"github.com/google/subcommands"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configDir = flag.String("config", ".", "Directory holding the optional .env and coinfolio.yaml files")
var verbose = flag.Bool("v", false, "Log debug messages")

// Commands lists every subcommand of the tool.
var Commands = []subcommands.Command{
	&holdingsCmd{},
	&ledgerCmd{},
	&historyCmd{},
	&exportCmd{},
	&assistCmd{},
	&topicCmd{},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd, "portfolio")
	}
}

// app holds what every command needs for one run.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
}

// newApp loads the configuration and creates the logger. The currency, when not empty,
// overrides the configured one.
func newApp(currency string) (*app, error) {
	cfg, err := config.Load(*configDir)
	if err != nil {
		return nil, err
	}
	if currency != "" {
		cfg.Currency = strings.ToUpper(currency)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	l, closer := logger.New(os.Stderr, logger.Options{Verbose: cfg.Verbose || *verbose, File: cfg.LogFile})
	l.Debug("configuration loaded", "currency", cfg.Currency, "provider", cfg.Provider)
	return &app{cfg: cfg, logger: l, closer: closer}, nil
}

func (a *app) Close() error { return a.closer.Close() }

// ledger loads and reconciles every transaction file.
func (a *app) ledger() ([]coinfolio.Transaction, error) {
	dir, err := a.cfg.Transactions()
	if err != nil {
		return nil, err
	}
	return coinfolio.NewLedgerBuilder(a.logger, a.cfg.Currency).Build(dir)
}

// priceSource returns the configured price source.
func (a *app) priceSource(assets *coinfolio.AssetTable) coinfolio.PriceSource {
	switch a.cfg.Provider {
	case config.Binance:
		return binance.New(a.logger, assets, binance.Config{
			APIKey:    a.cfg.BinanceAPIKey,
			SecretKey: a.cfg.BinanceSecretKey,
			Throttle:  a.cfg.Throttle,
			Timeout:   a.cfg.Timeout,
		})
	default:
		return coingecko.New(
			coingecko.WithAPIKey(a.cfg.CoinGeckoAPIKey),
			coingecko.WithThrottle(a.cfg.Throttle),
			coingecko.WithTimeout(a.cfg.Timeout),
			coingecko.WithCacheDir(a.cfg.CacheDir),
			coingecko.WithLogger(a.logger),
		)
	}
}

// portfolio runs the whole pipeline for the configured currency.
func (a *app) portfolio(ctx context.Context) (*pipeline, error) {
	ledger, err := a.ledger()
	if err != nil {
		return nil, err
	}
	assets, err := a.cfg.Assets()
	if err != nil {
		return nil, err
	}
	a.logger.Debug("asset table loaded", "tickers", assets.Len())
	p := &pipeline{
		Currency: a.cfg.Currency,
		Lookback: a.cfg.LookbackDays,
		Window:   a.cfg.WindowDays,
		Ledger:   ledger,
	}
	if err := p.run(ctx, a.logger, a.priceSource(assets), assets); err != nil {
		return nil, err
	}
	return p, nil
}

// pipeline is the outcome of a run: the ledger, the valued positions and the price history
// they were compared with.
type pipeline struct {
	Currency string
	Lookback int
	Window   int

	Ledger    []coinfolio.Transaction
	Positions []coinfolio.Position
	Matrix    *coinfolio.PriceMatrix
	Horizons  []coinfolio.Horizon
}

// run values the ledger, builds the price history of the held coins and applies the horizon returns.
func (p *pipeline) run(ctx context.Context, l *slog.Logger, source coinfolio.PriceSource, assets *coinfolio.AssetTable) error {
	positions, err := coinfolio.NewAggregator(l, source, assets, p.Currency).Aggregate(ctx, p.Ledger)
	if err != nil {
		return err
	}
	p.Positions = positions
	p.Horizons = coinfolio.Horizons(p.Lookback)

	matrix, err := coinfolio.NewHistoryBuilder(l, source).Build(ctx, coinfolio.Universe(positions), p.Currency, p.Window)
	if err != nil {
		return fmt.Errorf("cannot build price history: %w", err)
	}
	now := time.Now()
	if len(positions) > 0 {
		now = positions[0].PriceTimestamp
	}
	matrix.UpsertToday(now, coinfolio.TodayPrices(positions))
	p.Matrix = matrix

	coinfolio.ApplyReturns(p.Positions, p.Matrix, p.Horizons, date.FromTime(now))
	return nil
}

// Reports returns one report per user, in user order.
func (p *pipeline) Reports() []*coinfolio.Report {
	var users []string
	byUser := make(map[string][]coinfolio.Position)
	for _, pos := range p.Positions {
		if _, ok := byUser[pos.UserID]; !ok {
			users = append(users, pos.UserID)
		}
		byUser[pos.UserID] = append(byUser[pos.UserID], pos)
	}
	slices.Sort(users)

	reports := make([]*coinfolio.Report, 0, len(users))
	for _, u := range users {
		r := coinfolio.NewReport(byUser[u], p.Currency)
		r.Horizons = p.Horizons
		reports = append(reports, r)
	}
	return reports
}

// fail prints the error and returns the matching exit status.
func fail(what string, err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", what, err)
	return subcommands.ExitFailure
}

// usage prints the error and returns a usage error status.
func usage(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitUsageError
}
