// Command divs analyzes a portfolio of dividend paying stocks.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/dividends/cmd"
	"github.com/etnz/dividends/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	cmd.Register(commander)

	completion().Complete("divs")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion describes the command line for shell completion. Run
// COMP_INSTALL=1 divs to install it.
func completion() *complete.Command {
	topics, _ := docs.Topics()
	files := predict.Files("*")
	flags := map[string]complete.Predictor{
		"config":            predict.Files("*.toml"),
		"portfolio":         predict.Files("*"),
		"provider":          predict.Set{"yahoo", "eodhd"},
		"log-level":         predict.Set{"debug", "info", "warn", "error"},
		"style":             predict.Set{"auto", "dark", "light", "notty", "raw"},
		"as-of":             predict.Nothing,
		"eodhd-api-key":     predict.Nothing,
		"gemini-api-key":    predict.Nothing,
		"anthropic-api-key": predict.Nothing,
	}
	sub := map[string]*complete.Command{
		"export": {Flags: map[string]complete.Predictor{
			"format": predict.Set{"csv", "cashflow", "performance", "md", "pdf", "txt"},
			"o":      files,
			"model":  predict.Nothing,
		}},
		"narrate": {Flags: map[string]complete.Predictor{"model": predict.Nothing, "chat": predict.Nothing}},
		"serve":   {Flags: map[string]complete.Predictor{"addr": predict.Nothing, "model": predict.Nothing}},
		"search":  {Flags: map[string]complete.Predictor{"exchange": predict.Nothing}},
		"check":   {Args: files},
		"topic":   {Args: predict.Set(topics)},
		"help":    {},
		"flags":   {},
	}
	for _, name := range cmd.Commands {
		if _, ok := sub[name]; !ok {
			sub[name] = &complete.Command{}
		}
	}
	return &complete.Command{Sub: sub, Flags: flags}
}
