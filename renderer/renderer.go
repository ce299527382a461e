// Package renderer formats analysis reports as markdown, and converts
// markdown to HTML, PDF and terminal output.
package renderer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/etnz/dividends"
	"github.com/etnz/dividends/date"
	md "github.com/nao1215/markdown"
)

// Disclaimer is appended to every report.
var Disclaimer = []string{
	"This report is for demonstration and educational purposes only. It is not an investment recommendation.",
	"Market data comes from third party providers and may be inaccurate or delayed.",
	"Past performance is no guarantee of future results.",
	"Always consult a qualified financial professional before making investment decisions.",
}

// NoDividends is shown when the portfolio received no dividend in the period.
const NoDividends = "No dividend data for this portfolio in the selected period."

// ReportMarkdown renders the whole analysis.
func ReportMarkdown(r *dividends.Report) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Dividend Portfolio Analysis on %s", r.AsOf))
	doc.PlainText(fmt.Sprintf("Period %s, benchmark %s.", r.Range, r.Benchmark))
	if r.Rescaled {
		doc.LF()
		doc.PlainText(md.Italic("Weights did not add up to 100% and were rescaled."))
	}

	doc.H2("Composition")
	doc.LF()
	doc.Table(compositionTable(r))
	doc.LF()
	doc.PlainText(fmt.Sprintf("Weighted average dividend yield: %s", md.Bold(r.AverageYield.PercentString())))

	doc.H2("Metrics")
	doc.LF()
	doc.Table(metricsTable(r))

	doc.H2("Sectors")
	doc.LF()
	sectors := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Sector", "Share"},
	}
	for _, s := range r.Sectors {
		sectors.Rows = append(sectors.Rows, []string{s.Sector, dividends.Ratio(s.Share).String()})
	}
	doc.Table(sectors)

	doc.H2("Equal Weight Rebalancing")
	doc.LF()
	rebalance := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Ticker", "Current", "Target", "Change"},
	}
	for _, rb := range r.Rebalance {
		rebalance.Rows = append(rebalance.Rows, []string{
			rb.Ticker,
			dividends.Ratio(rb.Current).String(),
			dividends.Ratio(rb.Target).String(),
			dividends.Ratio(rb.Diff).SignedString(),
		})
	}
	doc.Table(rebalance)

	doc.H2("Performance")
	performance(doc, r)

	doc.H2("Dividend Cash Flow")
	doc.LF()
	doc.PlainText(cashFlow(r))

	if len(r.Warnings) > 0 {
		doc.H2("Warnings")
		doc.LF()
		doc.BulletList(r.Warnings...)
	}

	doc.H2("Disclaimer")
	doc.LF()
	doc.PlainText(md.Italic(strings.Join(Disclaimer, " ")))

	return doc.String()
}

func compositionTable(r *dividends.Report) md.TableSet {
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignLeft, md.AlignRight},
		Header:    []string{"Company", "Ticker", "Weight", "Sector", "Dividend Yield"},
	}
	for _, row := range r.Rows {
		yield := row.Yield.PercentString()
		if row.Status == dividends.StatusError {
			yield = dividends.ErrorMarker
		}
		table.Rows = append(table.Rows, []string{
			row.Company(),
			row.Position.Ticker,
			Weight(row.Position.Weight),
			sector(row.Position.Sector),
			yield,
		})
	}
	return table
}

func metricsTable(r *dividends.Report) md.TableSet {
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Ticker", "Price", "Dividends 12m", "CAGR 3y", "CAGR 5y", "P/E", "P/B", "ROE", "Market Cap"},
	}
	for _, row := range r.Rows {
		if row.Status == dividends.StatusError {
			cells := []string{row.Position.Ticker}
			for range len(table.Header) - 1 {
				cells = append(cells, dividends.ErrorMarker)
			}
			table.Rows = append(table.Rows, cells)
			continue
		}
		q := row.Quote
		table.Rows = append(table.Rows, []string{
			row.Position.Ticker,
			dividends.Price(row.Price, q.Currency),
			dividends.Price(row.TrailingDividends, q.Currency),
			row.CAGR3.PercentString(),
			row.CAGR5.PercentString(),
			q.PE.String(),
			q.PB.String(),
			q.ROE.Percent().PercentString(),
			dividends.Capitalization(q.MarketCap, q.Currency),
		})
	}
	return table
}

func performance(doc *md.Markdown, r *dividends.Report) {
	doc.LF()
	p := r.Performance
	if p == nil {
		doc.PlainText(fmt.Sprintf("Performance could not be computed: %v.", r.PerformanceErr))
		return
	}
	doc.BulletList(
		fmt.Sprintf("Portfolio total return: %s", md.Bold(p.PortfolioReturn().SignedString())),
		fmt.Sprintf("Benchmark %s total return: %s", r.Benchmark, md.Bold(p.BenchmarkReturn().SignedString())),
	)
	if len(p.Missing) > 0 {
		doc.LF()
		doc.PlainText(fmt.Sprintf("Computed without %s: no prices over the period.", strings.Join(p.Missing, ", ")))
	}

	doc.H3("Base 100, month ends")
	doc.LF()
	port := dividends.Sample(p.Portfolio, date.Monthly)
	bench := dividends.Sample(p.Benchmark, date.Monthly)
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"Date", "Portfolio", r.Benchmark},
	}
	for day, v := range port.Values() {
		b, _ := bench.Get(day)
		table.Rows = append(table.Rows, []string{day.String(), fmt.Sprintf("%.2f", v), fmt.Sprintf("%.2f", b)})
	}
	doc.Table(table)
}

func cashFlow(r *dividends.Report) string {
	if r.CashFlow == nil || r.CashFlow.Len() == 0 {
		return NoDividends
	}
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Date", "Dividends Received"},
	}
	for day, v := range r.CashFlow.Backward() {
		table.Rows = append(table.Rows, []string{day.String(), fmt.Sprintf("%.4f", v)})
	}
	doc.Table(table)
	return doc.String()
}

// CashFlowMarkdown renders the dividend cash flow, most recent first.
func CashFlowMarkdown(r *dividends.Report) string { return cashFlow(r) }

// PositionMarkdown renders everything known about a position.
func PositionMarkdown(row dividends.Row) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H2(fmt.Sprintf("%s (%s)", row.Company(), row.Position.Ticker))
	if row.Status == dividends.StatusError {
		doc.PlainText(fmt.Sprintf("Market data could not be fetched: %v.", row.Err))
		return doc.String()
	}
	q := row.Quote
	doc.LF()
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Metric", "Value"},
		Rows: [][]string{
			{"Sector", sector(row.Position.Sector)},
			{"Weight", Weight(row.Position.Weight)},
			{"Price", dividends.Price(row.Price, q.Currency)},
			{"Dividends 12m", dividends.Price(row.TrailingDividends, q.Currency)},
			{"Dividend Yield 12m", row.Yield.PercentString()},
			{"Dividend CAGR 3y", row.CAGR3.PercentString()},
			{"Dividend CAGR 5y", row.CAGR5.PercentString()},
			{"P/E", q.PE.String()},
			{"P/B", q.PB.String()},
			{"ROE", q.ROE.Percent().PercentString()},
			{"Market Cap", dividends.Capitalization(q.MarketCap, q.Currency)},
		},
	})
	return doc.String()
}

// Weight formats a weight fraction as a percentage without decimals.
func Weight(w float64) string { return fmt.Sprintf("%.0f%%", w*100) }

func sector(s string) string {
	if s == "" {
		return dividends.UnknownSector
	}
	return s
}
