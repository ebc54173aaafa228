package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

type exportCmd struct {
	currency string
	dir      string
	hide     bool
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the ledger, holdings and price history files" }
func (*exportCmd) Usage() string {
	return `coins export [-c <currency>] [-d <dir>] [-hide]

  Runs the whole pipeline once and writes into the directory:
    ledger.csv     the reconciled ledger
    holdings.csv   the positions with their horizon returns
    history.csv    the daily price matrix
    holdings.html  the holdings report as a web page
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "Settlement currency, overrides the configured one")
	f.StringVar(&c.dir, "d", "output", "Output directory, created if missing")
	f.BoolVar(&c.hide, "hide", false, "Mask the user id, holdings, amounts invested, worth and dates")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(c.currency)
	if err != nil {
		return fail("loading configuration", err)
	}
	defer a.Close()

	p, err := a.portfolio(ctx)
	if err != nil {
		return fail("computing holdings", err)
	}
	opts := renderer.Options{HideCriticalValues: c.hide || a.cfg.HideCriticalValues}
	if err := export(c.dir, p, opts); err != nil {
		return fail("exporting", err)
	}
	a.logger.Info("exported", "dir", c.dir, "transactions", len(p.Ledger), "positions", len(p.Positions), "days", p.Matrix.Len())
	return subcommands.ExitSuccess
}

// export writes every file of p into dir.
func export(dir string, p *pipeline, opts renderer.Options) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create %q: %w", dir, err)
	}
	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"ledger.csv", func(w io.Writer) error { return renderer.WriteLedgerCSV(w, p.Ledger) }},
		{"holdings.csv", func(w io.Writer) error { return renderer.WriteHoldingsCSV(w, p.Positions, p.Horizons, opts) }},
		{"history.csv", func(w io.Writer) error { return renderer.WriteHistoryCSV(w, p.Matrix) }},
		{"holdings.html", func(w io.Writer) error {
			return renderer.HTML(w, "Crypto Portfolio", holdingsMarkdown(p, opts))
		}},
	}
	for _, f := range files {
		if err := writeOutput(filepath.Join(dir, f.name), f.write); err != nil {
			return err
		}
	}
	return nil
}
