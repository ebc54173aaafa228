package cmd

import (
	"flag"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/date"
	"github.com/etnz/coinfolio/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors suggests values for the flags shared by commands.
var flagPredictors = map[string]complete.Predictor{
	"c":      predict.Set{"EUR", "USD", "GBP", "CHF", "JPY"},
	"format": predict.Set{formatMarkdown, formatCSV, formatHTML},
	"o":      predict.Files("*"),
	"d":      predict.Dirs("*"),
	"config": predict.Dirs("*"),
	"period": periods(),
}

func periods() predict.Set {
	var set predict.Set
	for p := date.Daily; p <= date.Yearly; p++ {
		set = append(set, p.String())
	}
	return set
}

// Completion returns the completion tree of the tool, built from the flags of every command.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: predictors(flag.CommandLine),
	}
	for _, c := range Commands {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		sub := &complete.Command{Flags: predictors(fs)}
		switch c.Name() {
		case "topic":
			sub.Args = predict.Set(append(docs.GetAllTopics(), "*"))
		case "history":
			sub.Args = predict.Set(coinfolio.DefaultAssets().Names())
		}
		root.Sub[c.Name()] = sub
	}
	return root
}

// predictors maps every flag in fs to its predictor.
func predictors(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if p, ok := flagPredictors[f.Name]; ok {
			flags[f.Name] = p
		} else {
			flags[f.Name] = predict.Nothing
		}
	})
	return flags
}
