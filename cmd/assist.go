package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/coinfolio/agent"
	"github.com/etnz/coinfolio/docs"
	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// assistCmd is the subcommand for the AI assistant.
type assistCmd struct {
	currency string
}

func (*assistCmd) Name() string { return "assist" }
func (*assistCmd) Synopsis() string {
	return "start an interactive session with the AI assistant about the portfolio"
}
func (*assistCmd) Usage() string {
	return `coins assist [-c <currency>] [question...]

  Computes the holdings, then starts a chat with an assistant that knows them.
  Requires GEMINI_API_KEY (or GOOGLE_API_KEY) in the environment. Critical values
  stay masked when HIDE_CRITICAL_VALUES is set.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "Settlement currency, overrides the configured one")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	initialPrompt := ""
	if f.NArg() > 0 {
		initialPrompt = strings.Join(f.Args(), " ")
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
	opts := renderer.Options{HideCriticalValues: a.cfg.HideCriticalValues}
	briefing := agent.Briefing{
		Holdings: holdingsMarkdown(p, opts),
		Ledger:   renderer.LedgerMarkdown(p.Ledger, opts),
		History:  renderer.HistoryMarkdown(p.Matrix),
	}
	if briefing.Manual, err = docs.GetTopics("*"); err != nil {
		return fail("reading the manual", err)
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	model := a.cfg.GeminiModel
	analyst := agent.NewAnalyst(model, briefing)
	trader := agent.NewTrader(model)
	for _, e := range []*agent.Expert{analyst, trader} {
		e.Logger = a.logger
	}
	assistant := agent.New(os.Stdout, os.Stdin, model, analyst, trader)
	assistant.Format = renderMarkdown

	if err := assistant.Run(ctx, client, initialPrompt); err != nil {
		return fail("running the assistant", err)
	}
	return subcommands.ExitSuccess
}
