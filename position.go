package dividends

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// WeightTolerance is the maximum distance to 1 that a sum of weights can have
// before being rescaled.
const WeightTolerance = 0.01

// ErrEmptyPortfolio is returned when no valid position remains in a portfolio.
var ErrEmptyPortfolio = errors.New("empty portfolio")

// Position is a line of a portfolio.
//
// Name and Sector are optional, they take precedence over the values
// reported by the market data provider.
type Position struct {
	Ticker string
	Name   string
	Sector string
	Weight float64
}

// Portfolio is an immutable, ordered set of positions whose weights sum to 1.
type Portfolio struct {
	positions []Position
	rescaled  bool
}

// NewPortfolio validates and normalizes a list of positions.
//
// Positions with a non-positive or non finite weight are dropped. If the sum
// of the remaining weights is more than WeightTolerance away from 1, all
// weights are divided by the sum. Tickers are trimmed and upper cased, and
// must be unique.
//
// It returns ErrEmptyPortfolio if no position remains.
func NewPortfolio(positions []Position) (*Portfolio, error) {
	kept := make([]Position, 0, len(positions))
	seen := make(map[string]bool, len(positions))
	for _, p := range positions {
		p.Ticker = NormalizeTicker(p.Ticker)
		if p.Ticker == "" {
			return nil, errors.New("position with an empty ticker")
		}
		if seen[p.Ticker] {
			return nil, fmt.Errorf("duplicate position %q", p.Ticker)
		}
		if !validWeight(p.Weight) {
			continue
		}
		seen[p.Ticker] = true
		kept = append(kept, p)
	}

	weights := make([]float64, len(kept))
	for i, p := range kept {
		weights[i] = p.Weight
	}
	rescaled, err := normalize(weights)
	if err != nil {
		return nil, err
	}
	for i := range kept {
		kept[i].Weight = weights[i]
	}
	return &Portfolio{positions: kept, rescaled: rescaled}, nil
}

// NormalizeWeights returns a copy of w where non-positive weights are dropped
// and the others rescaled to sum to 1 if needed. It reports whether a rescale
// happened.
func NormalizeWeights(w map[string]float64) (map[string]float64, bool, error) {
	tickers := make([]string, 0, len(w))
	for t, v := range w {
		if validWeight(v) {
			tickers = append(tickers, t)
		}
	}
	slices.Sort(tickers)
	weights := make([]float64, len(tickers))
	for i, t := range tickers {
		weights[i] = w[t]
	}
	rescaled, err := normalize(weights)
	if err != nil {
		return nil, false, err
	}
	res := make(map[string]float64, len(tickers))
	for i, t := range tickers {
		res[t] = weights[i]
	}
	return res, rescaled, nil
}

// normalize rescales weights in place so that they sum to 1.
func normalize(weights []float64) (rescaled bool, err error) {
	sum := floats.Sum(weights)
	if len(weights) == 0 || sum == 0 {
		return false, ErrEmptyPortfolio
	}
	if math.Abs(sum-1) <= WeightTolerance {
		return false, nil
	}
	floats.Scale(1/sum, weights)
	return true, nil
}

func validWeight(w float64) bool { return w > 0 && !math.IsInf(w, 0) && !math.IsNaN(w) }

// NormalizeTicker returns the canonical form of a ticker symbol.
func NormalizeTicker(t string) string { return strings.ToUpper(strings.TrimSpace(t)) }

// Len returns the number of positions.
func (p *Portfolio) Len() int { return len(p.positions) }

// Positions returns a copy of the positions, in declaration order.
func (p *Portfolio) Positions() []Position { return slices.Clone(p.positions) }

// Position returns the position for ticker.
func (p *Portfolio) Position(ticker string) (Position, bool) {
	i := slices.IndexFunc(p.positions, func(x Position) bool { return x.Ticker == ticker })
	if i < 0 {
		return Position{}, false
	}
	return p.positions[i], true
}

// Tickers returns the tickers of the portfolio, in declaration order.
func (p *Portfolio) Tickers() []string {
	res := make([]string, len(p.positions))
	for i, x := range p.positions {
		res[i] = x.Ticker
	}
	return res
}

// Weights returns a new map ticker to weight.
func (p *Portfolio) Weights() map[string]float64 {
	res := make(map[string]float64, len(p.positions))
	for _, x := range p.positions {
		res[x.Ticker] = x.Weight
	}
	return res
}

// Rescaled reports whether the weights had to be rescaled to sum to 1.
func (p *Portfolio) Rescaled() bool { return p.rescaled }
