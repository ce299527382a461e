package cmd

import (
	"context"
	"flag"

	"github.com/etnz/dividends/renderer"
	"github.com/google/subcommands"
)

type reportCmd struct{}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "analyze the portfolio and print the report" }
func (*reportCmd) Usage() string {
	return `divs report

  Fetches the market data of every position and of the benchmark, and prints
  the dividend yields, dividend growth, performance against the benchmark,
  dividend cash flow and allocation of the portfolio.

  The portfolio is declared with -config or -portfolio, see 'divs topic config'.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := setup()
	if err != nil {
		return fail("%v", err)
	}
	r, err := a.analyze(ctx)
	if err != nil {
		return fail("%v", err)
	}
	printMarkdown(renderer.ReportMarkdown(r))
	return subcommands.ExitSuccess
}
