package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/dividends"
	"github.com/etnz/dividends/agent"
	"github.com/etnz/dividends/renderer"
	"github.com/google/subcommands"
)

type exportCmd struct {
	format string
	output string
	model  string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the analysis to a file" }
func (*exportCmd) Usage() string {
	return `divs export [-format csv|cashflow|performance|md|pdf|txt] [-o <file>]

  Exports the analysis of the portfolio:

    csv          the metrics of every position, ';' separated with decimal commas
    cashflow     the weighted dividend cash flow, as csv
    performance  the base 100 series of the portfolio and the benchmark, as csv
    md           the report in markdown
    pdf          the report as a PDF document
    txt          a narrative report written by a language model (see -model)

  The output is written to stdout unless -o is given.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", "csv", "Export format: csv, cashflow, performance, md, pdf or txt.")
	f.StringVar(&c.output, "o", "", "Output file, stdout if empty.")
	f.StringVar(&c.model, "model", "", "Language model of the txt narrative. Overrides the configuration.")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := setup()
	if err != nil {
		return fail("%v", err)
	}
	r, err := a.analyze(ctx)
	if err != nil {
		return fail("%v", err)
	}

	var buf bytes.Buffer
	switch c.format {
	case "csv":
		err = dividends.ExportCSV(&buf, r)
	case "cashflow":
		err = dividends.ExportCashFlowCSV(&buf, r)
	case "performance":
		err = dividends.ExportPerformanceCSV(&buf, r)
	case "md":
		_, err = io.WriteString(&buf, renderer.ReportMarkdown(r))
	case "pdf":
		err = renderer.PDF(&buf, renderer.ReportMarkdown(r), "Dividend Portfolio Analysis")
	case "txt":
		var narrator func(*dividends.Report) agent.Generator
		if narrator, err = a.narrator(ctx, c.model); err != nil {
			break
		}
		var text string
		if text, err = agent.Narrate(ctx, narrator(r), r); err != nil {
			break
		}
		err = dividends.ExportNarrative(&buf, r, text)
	default:
		return fail("unknown format %q", c.format)
	}
	if err != nil {
		return fail("%v", err)
	}

	if c.output == "" {
		os.Stdout.Write(buf.Bytes())
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(c.output, buf.Bytes(), 0o644); err != nil {
		return fail("%v", err)
	}
	fmt.Fprintf(os.Stderr, "Successfully exported %s to %s\n", c.format, c.output)
	return subcommands.ExitSuccess
}
