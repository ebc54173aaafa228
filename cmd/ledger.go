package cmd

import (
	"context"
	"flag"
	"io"

	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

type ledgerCmd struct {
	currency string
	format   string
	output   string
	hide     bool
}

func (*ledgerCmd) Name() string     { return "ledger" }
func (*ledgerCmd) Synopsis() string { return "display the reconciled transactions" }
func (*ledgerCmd) Usage() string {
	return `coins ledger [-c <currency>] [-format md|csv|html] [-o <file>] [-hide]

  Reads every exchange export, pairs each trade with its settlement leg and prints
  the resulting ledger, most recent first. No price is fetched.
`
}

func (c *ledgerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "Settlement currency, overrides the configured one")
	f.StringVar(&c.format, "format", formatMarkdown, "Output format: md, csv or html")
	f.StringVar(&c.output, "o", "", "Output file, the terminal by default")
	f.BoolVar(&c.hide, "hide", false, "Mask the user id, times and changes")
}

func (c *ledgerCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := checkFormat(c.format, formatMarkdown, formatCSV, formatHTML); err != nil {
		return usage(err)
	}
	a, err := newApp(c.currency)
	if err != nil {
		return fail("loading configuration", err)
	}
	defer a.Close()

	txs, err := a.ledger()
	if err != nil {
		return fail("building ledger", err)
	}
	opts := renderer.Options{HideCriticalValues: c.hide || a.cfg.HideCriticalValues}

	switch c.format {
	case formatCSV:
		err = writeOutput(c.output, func(w io.Writer) error { return renderer.WriteLedgerCSV(w, txs) })
	case formatHTML:
		err = writeOutput(c.output, func(w io.Writer) error {
			return renderer.HTML(w, "Ledger", renderer.LedgerMarkdown(txs, opts))
		})
	default:
		err = writeMarkdown(c.output, renderer.LedgerMarkdown(txs, opts))
	}
	if err != nil {
		return fail("writing ledger", err)
	}
	return subcommands.ExitSuccess
}
