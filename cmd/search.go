package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/dividends/eodhd"
	"github.com/google/subcommands"
	md "github.com/nao1215/markdown"
)

type searchCmd struct {
	exchange string
}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "search tickers on EODHD" }
func (*searchCmd) Usage() string {
	return `divs search [-exchange SA] <search term>

  Searches for securities by name, ticker or ISIN with the EOD Historical
  Data API, and prints the tickers to use in a portfolio file.

  Requires the EODHD_API_KEY environment variable to be set or -eodhd-api-key.
`
}

func (c *searchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.exchange, "exchange", "SA", "Only show results of this exchange, all if empty.")
}

func (c *searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return fail("missing search term")
	}
	a, err := setup()
	if err != nil {
		return fail("%v", err)
	}
	if a.keys.EODHD == "" {
		return fail("EODHD API key is not set. Use -eodhd-api-key flag or EODHD_API_KEY environment variable")
	}
	client := eodhd.New(a.keys.EODHD, eodhd.WithLogger(a.log))
	results, err := client.Search(ctx, strings.Join(f.Args(), " "))
	if err != nil {
		return fail("could not search eodhd.com: %v", err)
	}

	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"Ticker", "Name", "Type", "ISIN", "Previous Close"},
	}
	for _, r := range results {
		if c.exchange != "" && !strings.EqualFold(r.Exchange, c.exchange) {
			continue
		}
		table.Rows = append(table.Rows, []string{r.Ticker(), r.Name, r.Type, r.ISIN, fmt.Sprintf("%.2f %s", r.PreviousClose, r.Currency)})
	}
	if len(table.Rows) == 0 {
		fmt.Println("No results.")
		return subcommands.ExitSuccess
	}
	doc.Table(table)
	printMarkdown(doc.String())
	return subcommands.ExitSuccess
}
