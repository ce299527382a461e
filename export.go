package dividends

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrorMarker replaces the figures of a position that could not be fetched.
const ErrorMarker = "error"

// ExportCSV writes the per position figures of r as a semicolon separated
// table with decimal commas, the convention of spreadsheets in Brazil.
//
// Unavailable figures are written as NotAvailable, and the figures of
// positions that could not be fetched as ErrorMarker.
func ExportCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	header := []string{
		"Company", "Ticker", "Sector", "Weight (%)", "Currency", "Price",
		"Dividends 12m", "Yield 12m (%)", "CAGR 3y (%)", "CAGR 5y (%)",
		"P/E", "P/B", "ROE (%)", "Market cap", "Status",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range r.Rows {
		f := func(x Figure) string {
			if row.Status == StatusError {
				return ErrorMarker
			}
			return csvFigure(x)
		}
		status := row.Status.String()
		if row.Err != nil {
			status = fmt.Sprintf("%s: %v", status, row.Err)
		}
		rec := []string{
			row.Company(),
			row.Position.Ticker,
			row.Position.Sector,
			csvNumber(row.Position.Weight * 100),
			row.Quote.Currency,
			f(row.Price),
			f(row.TrailingDividends),
			f(row.Yield),
			f(row.CAGR3),
			f(row.CAGR5),
			f(row.Quote.PE),
			f(row.Quote.PB),
			f(row.Quote.ROE.Percent()),
			f(row.Quote.MarketCap),
			status,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCashFlowCSV writes the weighted cash flow of r, most recent first.
func ExportCashFlowCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write([]string{"Date", "Dividends"}); err != nil {
		return err
	}
	if r.CashFlow != nil {
		for on, v := range r.CashFlow.Backward() {
			if err := cw.Write([]string{on.String(), csvDecimal(v, 4)}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportPerformanceCSV writes the base 100 series of the portfolio and its benchmark.
func ExportPerformanceCSV(w io.Writer, r *Report) error {
	if r.Performance == nil {
		return fmt.Errorf("no performance to export: %w", r.PerformanceErr)
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write([]string{"Date", "Portfolio", r.Benchmark}); err != nil {
		return err
	}
	for on, v := range r.Performance.Portfolio.Values() {
		b, _ := r.Performance.Benchmark.Get(on)
		if err := cw.Write([]string{on.String(), csvNumber(v), csvNumber(b)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportNarrative writes a narrative as a plain text document.
func ExportNarrative(w io.Writer, r *Report, narrative string) error {
	title := fmt.Sprintf("Dividend portfolio report, %s", r.AsOf)
	_, err := fmt.Fprintf(w, "%s\n%s\n\n%s\n", title, strings.Repeat("=", len(title)), strings.TrimSpace(narrative))
	return err
}

func csvFigure(x Figure) string {
	v, ok := x.Get()
	if !ok {
		return NotAvailable
	}
	return csvNumber(v)
}

func csvNumber(v float64) string { return csvDecimal(v, 2) }

func csvDecimal(v float64, places int32) string {
	return strings.Replace(decimal.NewFromFloat(v).StringFixed(places), ".", ",", 1)
}
