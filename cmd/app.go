// Package cmd implements the divs command line application.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/dividends"
	"github.com/etnz/dividends/agent"
	"github.com/etnz/dividends/config"
	"github.com/etnz/dividends/date"
	"github.com/etnz/dividends/logger"
	"github.com/etnz/dividends/renderer"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&reportCmd{}, "analysis")
	c.Register(&exportCmd{}, "analysis")
	c.Register(&narrateCmd{}, "analysis")
	c.Register(&checkCmd{}, "portfolio")
	c.Register(&searchCmd{}, "portfolio")
	c.Register(&serveCmd{}, "dashboard")
	c.Register(&topicCmd{}, "help")
}

// Commands lists the subcommands names, for shell completion.
var Commands = []string{"report", "export", "narrate", "check", "search", "serve", "topic"}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile      = flag.String("config", "", "Path to the portfolio declaration file (TOML). The built-in portfolio is used if empty.")
	portfolioFile   = flag.String("portfolio", "", "Path to a portfolio table (.csv or .xlsx) that replaces the positions of the configuration.")
	providerFlag    = flag.String("provider", "", "Market data provider, yahoo or eodhd. Overrides the configuration.")
	logLevel        = flag.String("log-level", "", "Log level: debug, info, warn or error. Overrides "+config.EnvLogLevel+".")
	eodhdAPIKey     = flag.String("eodhd-api-key", "", "EODHD API key. This flag takes precedence over the "+config.EnvEODHDKey+" environment variable. You can get one at https://eodhd.com/")
	geminiAPIKey    = flag.String("gemini-api-key", "", "Gemini API key. This flag takes precedence over the "+config.EnvGeminiKey+" environment variable.")
	anthropicAPIKey = flag.String("anthropic-api-key", "", "Anthropic API key. This flag takes precedence over the "+config.EnvAnthropicKey+" environment variable.")
	asOfFlag        = flag.String("as-of", "", "Date of the analysis (YYYY-MM-DD), today if empty.")
	style           = flag.String("style", "auto", "Terminal style of the markdown output: auto, dark, light, notty, or raw for plain markdown.")
)

// app is what every subcommand needs.
type app struct {
	log   zerolog.Logger
	file  *config.File
	keys  config.Keys
	asOf  string
	stdin io.Reader

	// uploaded is the -portfolio file, it replaces the configured positions.
	uploaded *dividends.Portfolio
}

// setup reads the environment, the flags and the configuration file.
func setup() (*app, error) {
	if err := config.LoadEnv(); err != nil {
		return nil, err
	}
	log, err := logger.New(logger.Config{
		Level:  config.Resolve(*logLevel, os.Getenv(config.EnvLogLevel), "warn"),
		Pretty: true,
	})
	if err != nil {
		return nil, err
	}
	logger.SetGlobalLogger(log)

	file, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *providerFlag != "" {
		file.Provider = *providerFlag
	}
	a := &app{
		log:   log,
		file:  file,
		keys:  config.EnvKeys(config.Keys{EODHD: *eodhdAPIKey, Gemini: *geminiAPIKey, Anthropic: *anthropicAPIKey}),
		asOf:  *asOfFlag,
		stdin: os.Stdin,
	}
	if *portfolioFile != "" {
		up, err := readUpload(*portfolioFile)
		if err != nil {
			return nil, err
		}
		for _, rej := range up.Rejected {
			log.Warn().Str("file", *portfolioFile).Msg(rej.Error())
		}
		a.uploaded = up.Portfolio
	}
	return a, nil
}

func readUpload(path string) (*dividends.Upload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dividends.ParseUpload(f, path)
}

// options returns the analysis options of the app.
func (a *app) options() (dividends.Options, error) {
	opt := a.file.Options(&a.log)
	if a.asOf != "" {
		d, err := date.Parse(a.asOf)
		if err != nil {
			return opt, err
		}
		opt.AsOf = d
	}
	return opt, nil
}

// portfolio returns the uploaded portfolio if any, or the configured one.
func (a *app) portfolio() (*dividends.Portfolio, error) {
	if a.uploaded != nil {
		return a.uploaded, nil
	}
	return a.file.Portfolio()
}

// analyze runs the analysis of the portfolio.
func (a *app) analyze(ctx context.Context) (*dividends.Report, error) {
	p, err := a.portfolio()
	if err != nil {
		return nil, err
	}
	opt, err := a.options()
	if err != nil {
		return nil, err
	}
	f, err := a.file.Fetcher(a.keys, a.log)
	if err != nil {
		return nil, err
	}
	r, err := dividends.Analyze(ctx, f, p, opt)
	if err != nil {
		return nil, err
	}
	if r.Rescaled {
		a.log.Warn().Msg("weights do not add up to 100%, they were rescaled")
	}
	return r, nil
}

// narrator returns the generator of the narrative of a report, according
// to the configured model.
func (a *app) narrator(ctx context.Context, model string) (func(*dividends.Report) agent.Generator, error) {
	model = config.Resolve(model, a.file.Model)
	if strings.HasPrefix(model, "claude") {
		return func(*dividends.Report) agent.Generator {
			return agent.NewClaude(a.keys.Anthropic, model)
		}, nil
	}
	client, err := agent.NewGeminiClient(ctx, a.keys.Gemini)
	if err != nil {
		return nil, fmt.Errorf("cannot initialize Gemini's client: %w", err)
	}
	return func(r *dividends.Report) agent.Generator {
		return agent.NewAnalyst(r, model).WithClient(client)
	}, nil
}

// printMarkdown prints markdown to stdout, formatted for the terminal.
func printMarkdown(md string) {
	if *style == "raw" {
		fmt.Println(md)
		return
	}
	out, err := renderer.Terminal(md, *style, 120)
	if err != nil {
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}

func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}
