package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"slices"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/date"
	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

type historyCmd struct {
	currency string
	format   string
	output   string
	from     string
	period   string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the daily prices of the held coins" }
func (*historyCmd) Usage() string {
	return `coins history [-c <currency>] [-format md|csv|html] [-o <file>] [-from <date>] [-period <period>] [coin...]

  Prints the price matrix used to compute the horizon returns: one row per day over the
  configured window, one column per held coin, Bitcoin first.

  -from skips the days before a date (YYYY-MM-DD). -period keeps the last day of each
  week, month, quarter or year. Coins, given by name (bitcoin, ethereum), restrict the columns.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "Settlement currency, overrides the configured one")
	f.StringVar(&c.format, "format", formatMarkdown, "Output format: md, csv or html")
	f.StringVar(&c.output, "o", "", "Output file, the terminal by default")
	f.StringVar(&c.from, "from", "", "First day shown, the start of the window by default")
	f.StringVar(&c.period, "period", date.Daily.String(), "One row per period: daily, weekly, monthly, quarterly or yearly")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := checkFormat(c.format, formatMarkdown, formatCSV, formatHTML); err != nil {
		return usage(err)
	}
	period, err := date.ParsePeriod(c.period)
	if err != nil {
		return usage(err)
	}
	var from date.Date
	if c.from != "" {
		if from, err = date.Parse(c.from); err != nil {
			return usage(err)
		}
	}

	a, err := newApp(c.currency)
	if err != nil {
		return fail("loading configuration", err)
	}
	defer a.Close()

	p, err := a.portfolio(ctx)
	if err != nil {
		return fail("building price history", err)
	}
	m, err := sampleHistory(p.Matrix, from, period, f.Args())
	if err != nil {
		return usage(err)
	}

	switch c.format {
	case formatCSV:
		err = writeOutput(c.output, func(w io.Writer) error { return renderer.WriteHistoryCSV(w, m) })
	case formatHTML:
		err = writeOutput(c.output, func(w io.Writer) error {
			return renderer.HTML(w, "Price History", renderer.HistoryMarkdown(m))
		})
	default:
		err = writeMarkdown(c.output, renderer.HistoryMarkdown(m))
	}
	if err != nil {
		return fail("writing price history", err)
	}
	return subcommands.ExitSuccess
}

// sampleHistory keeps the days of m from 'from' on, one per period, and the given coins.
// A zero from keeps every day.
func sampleHistory(m *coinfolio.PriceMatrix, from date.Date, period date.Period, coins []string) (*coinfolio.PriceMatrix, error) {
	for _, coin := range coins {
		if !slices.Contains(m.Coins(), coin) {
			return nil, fmt.Errorf("no price history for %q, known coins are %v", coin, m.Coins())
		}
	}
	days := m.Days()
	if len(days) == 0 {
		return m, nil
	}
	r := date.Range{From: days[0], To: days[len(days)-1]}
	if !from.IsZero() {
		r.From = from
	}
	return m.Sample(r, period, coins...), nil
}
