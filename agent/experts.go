package agent

import (
	"context"

	"google.golang.org/genai"
)

// Briefing is what the analyst knows about the user's portfolio, as markdown documents.
type Briefing struct {
	Holdings string // positions, summary and horizon returns
	Ledger   string // reconciled transactions
	History  string // daily prices of the held coins
	Manual   string // how the figures are computed
}

// creates the facilitator
func newFacilitator(model string, experts ...*Expert) *Expert {
	return &Expert{
		Name:        "Facilitator",
		Description: ``,
		ModelName:   model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and keep context of your previous questions.

			The user holds crypto currencies bought on an exchange. They are here to understand
			how their coins performed and what happened to them.

			Devise a plan of questions to ask to each expert and come up with the best response
			to the user's request. Never give investment advice.

			The user will assume that you know about their coins, ask the Analyst first.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewTrader returns an expert grounded on Google Search for market news.
func NewTrader(model string) *Expert {
	return &Expert{
		Name: "Trader",
		Description: `This is an expert of crypto markets,
		aware of the latest news about coins, exchanges and regulations.
		Ask the Trader whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert of crypto markets, you can search and find about anything related to
			coins, exchanges, stable coins and regulations. You leverage Google Search to
			ground your assertions.
			You can get the latest news too, and you know how to relate them to the user's request.
			`}}},
		},
	}
}

// NewAnalyst returns the expert of the user's portfolio, answering from b.
func NewAnalyst(model string, b Briefing) *Expert {
	lib := []Function{
		document("Holdings", "The current positions of the user: holdings, amounts invested, worth, return and returns over 1w, 1m, 3m, 6m, YTD and 1y, plus a summary.", b.Holdings),
		document("Ledger", "Every transaction of the user, most recent first, with the fiat amount paid or received and the price per coin.", b.Ledger),
		document("History", "The daily price of each held coin over the last year.", b.History),
		document("Manual", "How the transactions are read and how worth, returns and horizon returns are computed.", b.Manual),
	}

	return &Expert{
		Name: "Analyst",
		Description: `This is the Analyst. They are in charge of the user's crypto portfolio.
		They know the positions, the transactions and the price history of every held coin.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are the analyst of the user's crypto portfolio.
				Use the available tools to get information about the portfolio:
				  - holdings and returns
				  - transactions
				  - daily prices
				  - the manual, explaining how the figures are computed
				Values shown as ****** are hidden on purpose, never guess them.
				Prices missing for a coin are shown as -, it means the coin is unknown to the price source.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// Func implements a simple Function
type Func struct {
	// Declare this function
	Decl *genai.FunctionDeclaration
	// Call this function
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

// document returns a function without parameters that returns a markdown document.
func document(name, description, markdown string) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: description,
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown document.",
			},
		},
		Func: func(_ context.Context, id string, _ map[string]any) *genai.FunctionResponse {
			return &genai.FunctionResponse{
				ID:       id,
				Name:     name,
				Response: map[string]any{"output": markdown},
			}
		},
	}
}
