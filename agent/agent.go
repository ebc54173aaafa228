// Package agent runs a chat with Gemini about a computed portfolio.
//
// A facilitator model talks to the user and delegates questions to experts: the Analyst reads
// the portfolio reports, the Trader searches the news.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

// Agent is the AI assistant that handles the chat session.
type Agent struct {
	w           io.Writer
	in          *bufio.Scanner
	Facilitator *Expert
	Experts     []*Expert

	// Format turns the markdown answers into the text printed to w. Answers are printed
	// unchanged when nil.
	Format func(markdown string) string
}

// New creates a new Agent whose facilitator, running model, delegates to the experts.
// It reads the user's questions from r, one per line, and writes the answers to w.
func New(w io.Writer, r io.Reader, model string, experts ...*Expert) *Agent {
	return &Agent{
		w:           w,
		in:          bufio.NewScanner(r),
		Experts:     experts,
		Facilitator: newFacilitator(model, experts...),
	}
}

// Start opens a chat for every expert and the facilitator.
func (a *Agent) Start(ctx context.Context, client *genai.Client) error {
	for _, e := range append(a.Experts, a.Facilitator) {
		if err := e.Start(ctx, client); err != nil {
			return fmt.Errorf("cannot start %s: %w", e.Name, err)
		}
	}
	return nil
}

const prompt = "assist> "

// bye ends the session.
const bye = "bye"

// Run starts the interactive session. The prompts are asked first, as if typed by the user.
// It returns when the user says bye or the input ends.
func (a *Agent) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if !a.Facilitator.Started() {
		if err := a.Start(ctx, client); err != nil {
			return err
		}
	}

	fmt.Fprintf(a.w, "Welcome to coins assist. Type '%s' to exit.\n", bye)
	for {
		fmt.Fprint(a.w, prompt)
		question, ok := a.next(&prompts)
		if !ok {
			fmt.Fprintln(a.w)
			return a.in.Err()
		}
		switch question {
		case "":
			continue
		case bye:
			return nil
		}

		content, err := a.Facilitator.Ask(ctx, &genai.Part{Text: question})
		if err != nil {
			return err
		}
		answer := content.Parts[0].Text
		if a.Format != nil {
			answer = a.Format(answer)
		}
		fmt.Fprintln(a.w, answer)
	}
}

// next returns the next question, taken from prompts first, then from the input.
// Questions from prompts are echoed.
func (a *Agent) next(prompts *[]string) (string, bool) {
	if len(*prompts) > 0 {
		q := strings.TrimSpace((*prompts)[0])
		*prompts = (*prompts)[1:]
		if q != "" {
			fmt.Fprintln(a.w, q)
		}
		return q, true
	}
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}
