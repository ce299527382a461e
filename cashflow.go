package dividends

import "github.com/etnz/dividends/date"

// WeightedCashFlow returns the dividends received by the portfolio for a
// unit investment: the sum over positions of weight × dividend per share,
// by ex-date.
//
// Dividends of different positions on the same day are added. Positions
// without dividends contribute nothing.
func WeightedCashFlow(dividends map[string]*date.History[float64], weights map[string]float64) *date.History[float64] {
	flow := new(date.History[float64])
	for _, ticker := range sortedKeys(weights) {
		h := dividends[ticker]
		if h == nil {
			continue
		}
		w := weights[ticker]
		for on, v := range h.Values() {
			flow.AppendAdd(on, w*v)
		}
	}
	return flow
}
