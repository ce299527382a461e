package dividends

import (
	"errors"
	"slices"

	"github.com/etnz/dividends/date"
)

// ErrNoOverlap is returned when the price series have no date in common, and
// the performance cannot be compared.
var ErrNoOverlap = errors.New("price series have no date in common")

// Performance is the base 100 evolution of a portfolio and of its benchmark
// over the dates where every price is known.
type Performance struct {
	Portfolio *date.History[float64]
	Benchmark *date.History[float64]
	// Tickers are the positions included in the comparison, sorted.
	Tickers []string
	// Missing are the positions without any price, they count as zero in
	// the portfolio series.
	Missing []string
}

// PortfolioReturn returns the total return of the portfolio over the period.
func (p *Performance) PortfolioReturn() Percent { return TotalReturn(p.Portfolio) }

// BenchmarkReturn returns the total return of the benchmark over the period.
func (p *Performance) BenchmarkReturn() Percent { return TotalReturn(p.Benchmark) }

// Len returns the number of dates compared.
func (p *Performance) Len() int { return p.Portfolio.Len() }

// TotalReturn returns (last/first - 1) in percent. It is 0 when the first
// value is 0 or the series is empty.
func TotalReturn(h *date.History[float64]) Percent {
	if h == nil || h.Len() == 0 {
		return 0
	}
	_, first := h.First()
	_, last := h.Latest()
	if first == 0 {
		return 0
	}
	return Ratio(last/first - 1)
}

// ComparePerformance computes the base 100 performance of the portfolio
// described by weights against benchmark.
//
// Only dates present in every price series and in the benchmark are kept,
// there is no filling of missing days. Each series is then rescaled to 100
// on the first kept date, and the portfolio series is the weighted sum of
// the rescaled prices.
//
// Positions without prices (absent from prices or empty) are left out of
// the join and contribute zero. ErrNoOverlap is returned if the benchmark is
// empty or if no date is common to all series.
func ComparePerformance(prices map[string]*date.History[float64], weights map[string]float64, benchmark *date.History[float64]) (*Performance, error) {
	if benchmark == nil || benchmark.Len() == 0 {
		return nil, ErrNoOverlap
	}
	perf := &Performance{
		Portfolio: new(date.History[float64]),
		Benchmark: new(date.History[float64]),
	}
	series := []*date.History[float64]{benchmark}
	for _, ticker := range sortedKeys(weights) {
		h := prices[ticker]
		if h == nil || h.Len() == 0 {
			perf.Missing = append(perf.Missing, ticker)
			continue
		}
		perf.Tickers = append(perf.Tickers, ticker)
		series = append(series, h)
	}

	days := date.Intersect(series...)
	if len(days) == 0 {
		return nil, ErrNoOverlap
	}

	base := func(h *date.History[float64]) float64 {
		v, _ := h.Get(days[0])
		return v
	}
	rebase := func(v, b float64) float64 {
		if b == 0 {
			return 0
		}
		return v / b * 100
	}

	bb := base(benchmark)
	bases := make([]float64, len(perf.Tickers))
	for i, t := range perf.Tickers {
		bases[i] = base(prices[t])
	}
	for _, on := range days {
		v, _ := benchmark.Get(on)
		perf.Benchmark.Append(on, rebase(v, bb))

		var sum float64
		for i, t := range perf.Tickers {
			v, _ := prices[t].Get(on)
			sum += weights[t] * rebase(v, bases[i])
		}
		perf.Portfolio.Append(on, sum)
	}
	return perf, nil
}

// Sample returns the values of h at the end of each period, plus the last one.
func Sample(h *date.History[float64], p date.Period) *date.History[float64] {
	res := new(date.History[float64])
	var (
		prev    date.Date
		prevVal float64
		started bool
	)
	for on, v := range h.Values() {
		if started && on.EndOf(p) != prev.EndOf(p) {
			res.Append(prev, prevVal)
		}
		prev, prevVal, started = on, v, true
	}
	if started {
		res.Append(prev, prevVal)
	}
	return res
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
