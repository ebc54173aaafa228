package cmd

import (
	"context"
	"flag"
	"io"
	"strings"

	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

// holdingsCmd holds the flags for the 'holdings' subcommand.
type holdingsCmd struct {
	currency string
	format   string
	output   string
	hide     bool
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "display the current positions and their returns" }
func (*holdingsCmd) Usage() string {
	return `coins holdings [-c <currency>] [-format md|csv|html] [-o <file>] [-hide]

  Reconciles the exchange exports, values every position at the current price and
  compares it with the price history over the usual horizons (1w, 1m, 3m, 6m, YTD, 1y).
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "Settlement currency, overrides the configured one")
	f.StringVar(&c.format, "format", formatMarkdown, "Output format: md, csv or html")
	f.StringVar(&c.output, "o", "", "Output file, the terminal by default")
	f.BoolVar(&c.hide, "hide", false, "Mask the user id, holdings, amounts invested, worth and dates")
}

func (c *holdingsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := checkFormat(c.format, formatMarkdown, formatCSV, formatHTML); err != nil {
		return usage(err)
	}
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
	if err := c.write(p, opts); err != nil {
		return fail("writing holdings", err)
	}
	return subcommands.ExitSuccess
}

// write outputs the holdings of p in the selected format.
func (c *holdingsCmd) write(p *pipeline, opts renderer.Options) error {
	switch c.format {
	case formatCSV:
		return writeOutput(c.output, func(w io.Writer) error {
			return renderer.WriteHoldingsCSV(w, p.Positions, p.Horizons, opts)
		})
	case formatHTML:
		return writeOutput(c.output, func(w io.Writer) error {
			return renderer.HTML(w, "Crypto Portfolio", holdingsMarkdown(p, opts))
		})
	default:
		return writeMarkdown(c.output, holdingsMarkdown(p, opts))
	}
}

// holdingsMarkdown renders the report of every user.
func holdingsMarkdown(p *pipeline, opts renderer.Options) string {
	var parts []string
	for _, r := range p.Reports() {
		parts = append(parts, renderer.RenderHoldings(renderer.NewHoldings(r, opts)))
	}
	return strings.Join(parts, "\n")
}
