package cmd

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/etnz/dividends"
	"github.com/etnz/dividends/renderer"
	"github.com/google/subcommands"
	md "github.com/nao1215/markdown"
)

type checkCmd struct{}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "validate a portfolio file" }
func (*checkCmd) Usage() string {
	return `divs check <file>

  Reads a portfolio table (.csv, .tsv, .txt or .xlsx) like the dashboard
  does, and prints the positions it declares and the rows it rejects.
  See 'divs topic upload' for the expected columns.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {}

func (c *checkCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return fail("expected exactly one file, got %d", f.NArg())
	}
	up, err := readUpload(f.Arg(0))
	if err != nil {
		var uerr *dividends.UploadError
		if errors.As(err, &uerr) && len(uerr.Rejected) > 0 {
			printMarkdown(rejectedMarkdown(uerr.Rejected))
		}
		return fail("%v", err)
	}
	printMarkdown(uploadMarkdown(f.Arg(0), up))
	return subcommands.ExitSuccess
}

func uploadMarkdown(name string, up *dividends.Upload) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(name)
	doc.LF()
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"Ticker", "Company", "Sector", "Weight"},
	}
	for _, p := range up.Portfolio.Positions() {
		table.Rows = append(table.Rows, []string{p.Ticker, p.Name, p.Sector, renderer.Weight(p.Weight)})
	}
	doc.Table(table)
	if up.Portfolio.Rescaled() {
		doc.LF()
		doc.PlainText(md.Italic("Weights did not add up to 100% and were rescaled."))
	}
	if len(up.Rejected) > 0 {
		doc.PlainText(rejectedMarkdown(up.Rejected))
	}
	return doc.String()
}

func rejectedMarkdown(rejected []dividends.RowError) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H2(fmt.Sprintf("%d rejected rows", len(rejected)))
	doc.LF()
	var lines []string
	for _, r := range rejected {
		lines = append(lines, r.Error())
	}
	doc.BulletList(lines...)
	return doc.String()
}
