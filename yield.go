package dividends

import (
	"slices"

	"github.com/etnz/dividends/date"
	"gonum.org/v1/gonum/stat"
)

// TrailingDays is the number of days of dividends summed in a trailing yield.
const TrailingDays = 365

// trailing returns the range of dividends counted in a trailing yield as of
// 'on': the TrailingDays days ending on 'on'.
func trailing(on date.Date) date.Range { return date.LastDays(on, TrailingDays) }

// TrailingDividends returns the sum of dividends per share paid in the
// TrailingDays before asOf.
func TrailingDividends(dividends *date.History[float64], asOf date.Date) float64 {
	if dividends == nil {
		return 0
	}
	var sum float64
	for _, v := range dividends.Window(trailing(asOf)).Values() {
		sum += v
	}
	return sum
}

// TrailingYield returns the dividends paid over the last TrailingDays divided
// by price, in percent.
//
// The yield is Unavailable when the price is, or when it is not positive. A
// stock that paid no dividend has a yield of 0.
func TrailingYield(dividends *date.History[float64], price Figure, asOf date.Date) Figure {
	p, ok := price.Get()
	if !ok || p <= 0 {
		return Unavailable
	}
	return Known(TrailingDividends(dividends, asOf) / p * 100)
}

// WeightedAverageYield returns the average of yields weighted by weights.
//
// Only tickers with both an available yield and a weight take part, and the
// average is divided by the sum of their weights so that missing yields
// don't pull the average down. It is Unavailable if no ticker takes part.
func WeightedAverageYield(yields map[string]Figure, weights map[string]float64) Figure {
	tickers := make([]string, 0, len(yields))
	for t, y := range yields {
		if _, ok := weights[t]; ok && y.Available() {
			tickers = append(tickers, t)
		}
	}
	slices.Sort(tickers) // stable float summation

	x := make([]float64, 0, len(tickers))
	w := make([]float64, 0, len(tickers))
	var total float64
	for _, t := range tickers {
		x = append(x, yields[t].Or(0))
		w = append(w, weights[t])
		total += weights[t]
	}
	if total <= 0 {
		return Unavailable
	}
	return Known(stat.Mean(x, w))
}
