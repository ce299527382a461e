package dividends

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/dividends/date"
	"github.com/rs/zerolog"
)

const (
	// DefaultLookback is the default number of days of prices analyzed.
	DefaultLookback = 730
	// DefaultBenchmark is the Ibovespa index, as known by Yahoo Finance.
	DefaultBenchmark = "^BVSP"
)

// Options control an analysis.
type Options struct {
	Benchmark string    // ticker of the benchmark index
	Lookback  int       // days of prices and cash flow, DefaultLookback if zero
	AsOf      date.Date // end of the analysis, today if zero
	Log       *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.Benchmark == "" {
		o.Benchmark = DefaultBenchmark
	}
	if o.Lookback <= 0 {
		o.Lookback = DefaultLookback
	}
	if o.AsOf.IsZero() {
		o.AsOf = date.Today()
	}
	if o.Log == nil {
		nop := zerolog.Nop()
		o.Log = &nop
	}
	return o
}

// Status is the outcome of fetching a position's market data.
type Status int

const (
	StatusOK Status = iota
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Row holds the figures of one position.
type Row struct {
	// Position with Name and Sector resolved from the quote when not declared.
	Position Position
	Quote    Quote
	Status   Status
	Err      error // set when Status is StatusError

	Price             Figure
	TrailingDividends Figure // per share
	Yield             Figure // percent
	CAGR3, CAGR5      Figure // percent
}

// Company returns the best known name of the position.
func (r Row) Company() string {
	if r.Position.Name != "" {
		return r.Position.Name
	}
	return r.Position.Ticker
}

// Report is the result of an analysis.
type Report struct {
	AsOf      date.Date
	Range     date.Range
	Benchmark string
	Rescaled  bool // the portfolio weights were rescaled

	// Rows are sorted by company name.
	Rows         []Row
	AverageYield Figure

	// Performance is nil when it could not be computed, see PerformanceErr.
	Performance    *Performance
	PerformanceErr error

	// CashFlow is the weighted dividend cash flow within Range.
	CashFlow  *date.History[float64]
	Sectors   []SectorShare
	Rebalance []Rebalance

	// Warnings are the problems that did not stop the analysis.
	Warnings []string
}

// Yields returns the available yields by ticker.
func (r *Report) Yields() map[string]Figure {
	res := make(map[string]Figure, len(r.Rows))
	for _, row := range r.Rows {
		if row.Status == StatusOK {
			res[row.Position.Ticker] = row.Yield
		}
	}
	return res
}

// Weights returns the weights by ticker.
func (r *Report) Weights() map[string]float64 {
	res := make(map[string]float64, len(r.Rows))
	for _, row := range r.Rows {
		res[row.Position.Ticker] = row.Position.Weight
	}
	return res
}

// Failed returns the number of positions that could not be fetched.
func (r *Report) Failed() int {
	n := 0
	for _, row := range r.Rows {
		if row.Status == StatusError {
			n++
		}
	}
	return n
}

func (r *Report) warnf(log *zerolog.Logger, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	log.Warn().Msg(msg)
}

// Analyze fetches the market data of every position of p, one after the
// other, and computes the report.
//
// A position that cannot be fetched is reported with StatusError and a
// warning, the others are still analyzed. A benchmark that cannot be
// fetched only leaves the performance uncomputed. Analyze fails only for an
// empty portfolio or when ctx is done.
func Analyze(ctx context.Context, f Fetcher, p *Portfolio, opt Options) (*Report, error) {
	if p == nil || p.Len() == 0 {
		return nil, ErrEmptyPortfolio
	}
	opt = opt.withDefaults()
	log := opt.Log

	r := &Report{
		AsOf:      opt.AsOf,
		Range:     date.LastDays(opt.AsOf, opt.Lookback),
		Benchmark: opt.Benchmark,
		Rescaled:  p.Rescaled(),
	}
	prices := make(map[string]*date.History[float64], p.Len())
	dividends := make(map[string]*date.History[float64], p.Len())

	for _, pos := range p.positions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := Row{Position: pos}
		md, err := f.Fetch(ctx, pos.Ticker, r.Range)
		if err != nil {
			row.Status, row.Err = StatusError, err
			row.Price, row.TrailingDividends, row.Yield = Unavailable, Unavailable, Unavailable
			row.CAGR3, row.CAGR5 = Unavailable, Unavailable
			r.warnf(log, "%s: cannot fetch market data: %v", pos.Ticker, err)
			r.Rows = append(r.Rows, row)
			continue
		}
		log.Debug().Str("ticker", pos.Ticker).Int("prices", lenOf(md.Prices)).Int("dividends", lenOf(md.Dividends)).Msg("fetched")

		row.Quote = md.Quote
		if row.Position.Name == "" {
			row.Position.Name = md.Quote.Name
		}
		if row.Position.Sector == "" {
			row.Position.Sector = md.Quote.Sector
		}
		row.Price = md.LastPrice()
		row.TrailingDividends = Known(TrailingDividends(md.Dividends, r.AsOf))
		row.Yield = TrailingYield(md.Dividends, row.Price, r.AsOf)
		if !row.Yield.Available() {
			r.warnf(log, "%s: no price, dividend yield not available", pos.Ticker)
		}
		row.CAGR3 = DividendCAGR(md.Dividends, 3, r.AsOf)
		row.CAGR5 = DividendCAGR(md.Dividends, 5, r.AsOf)

		prices[pos.Ticker] = md.Prices
		if md.Dividends != nil {
			dividends[pos.Ticker] = md.Dividends.Window(r.Range)
		}
		r.Rows = append(r.Rows, row)
	}

	weights := p.Weights()
	r.AverageYield = WeightedAverageYield(r.Yields(), weights)
	r.CashFlow = WeightedCashFlow(dividends, weights)
	r.Rebalance = EqualWeightRebalance(p)

	resolved := make([]Position, 0, len(r.Rows))
	for _, row := range r.Rows {
		resolved = append(resolved, row.Position)
	}
	r.Sectors = SectorBreakdown(resolved)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bench, err := f.Fetch(ctx, opt.Benchmark, r.Range)
	if err != nil {
		r.PerformanceErr = fmt.Errorf("cannot fetch benchmark %s: %w", opt.Benchmark, err)
		r.warnf(log, "%v", r.PerformanceErr)
	} else {
		r.Performance, r.PerformanceErr = ComparePerformance(prices, weights, bench.Prices)
		switch {
		case errors.Is(r.PerformanceErr, ErrNoOverlap):
			r.warnf(log, "performance not computable: %v", r.PerformanceErr)
		case r.Performance != nil && len(r.Performance.Missing) > 0:
			r.warnf(log, "performance computed without %s: no prices", strings.Join(r.Performance.Missing, ", "))
		}
	}

	slices.SortStableFunc(r.Rows, func(a, b Row) int {
		if c := cmp.Compare(strings.ToLower(a.Company()), strings.ToLower(b.Company())); c != 0 {
			return c
		}
		return cmp.Compare(a.Position.Ticker, b.Position.Ticker)
	})
	return r, nil
}

func lenOf(h *date.History[float64]) int {
	if h == nil {
		return 0
	}
	return h.Len()
}
