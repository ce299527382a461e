package agent

import (
	"github.com/etnz/dividends"
	"github.com/etnz/dividends/date"
)

func testReport() *dividends.Report {
	asOf := date.MustParse("2025-06-30")
	cf := new(date.History[float64])
	cf.Append(date.MustParse("2025-03-10"), 0.025)
	cf.Append(date.MustParse("2025-05-12"), 0.04)
	return &dividends.Report{
		AsOf:      asOf,
		Range:     date.LastDays(asOf, 730),
		Benchmark: "^BVSP",
		Rows: []dividends.Row{
			{
				Position: dividends.Position{Ticker: "BBAS3.SA", Name: "Banco do Brasil", Sector: "Financeiro", Weight: 0.5},
				Quote: dividends.Quote{
					Ticker: "BBAS3.SA", Currency: "BRL",
					PE: dividends.Known(4.5), PB: dividends.Known(0.8), ROE: dividends.Known(0.21), MarketCap: dividends.Known(150e9),
				},
				Price:             dividends.Known(25),
				TrailingDividends: dividends.Known(2.5),
				Yield:             dividends.Known(10),
				CAGR3:             dividends.Known(12.5),
				CAGR5:             dividends.Unavailable,
			},
			{
				Position: dividends.Position{Ticker: "XXXX3.SA", Weight: 0.5},
				Status:   dividends.StatusError,
				Price:    dividends.Unavailable, TrailingDividends: dividends.Unavailable, Yield: dividends.Unavailable,
				CAGR3: dividends.Unavailable, CAGR5: dividends.Unavailable,
			},
		},
		AverageYield: dividends.Known(10),
		CashFlow:     cf,
		Sectors: []dividends.SectorShare{
			{Sector: "Financeiro", Share: 0.5},
			{Sector: dividends.UnknownSector, Share: 0.5},
		},
		PerformanceErr: dividends.ErrNoOverlap,
		Warnings:       []string{"XXXX3.SA: cannot fetch market data: unknown ticker"},
	}
}
