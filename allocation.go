package dividends

import (
	"cmp"
	"slices"
)

// UnknownSector labels positions whose sector is not known.
const UnknownSector = "Unknown"

// SectorShare is the share of a sector in a portfolio.
type SectorShare struct {
	Sector string
	Share  float64 // fraction of the whole
}

// SectorBreakdown groups positions by sector. Shares are fractions of the
// total weight, sorted by decreasing share then sector name. Sectors with a
// zero weight are omitted.
func SectorBreakdown(positions []Position) []SectorShare {
	weights := make(map[string]float64)
	var total float64
	for _, p := range positions {
		sector := p.Sector
		if sector == "" {
			sector = UnknownSector
		}
		weights[sector] += p.Weight
		total += p.Weight
	}
	if total <= 0 {
		return nil
	}
	res := make([]SectorShare, 0, len(weights))
	for s, w := range weights {
		if w == 0 {
			continue
		}
		res = append(res, SectorShare{Sector: s, Share: w / total})
	}
	slices.SortFunc(res, func(a, b SectorShare) int {
		if c := cmp.Compare(b.Share, a.Share); c != 0 {
			return c
		}
		return cmp.Compare(a.Sector, b.Sector)
	})
	return res
}

// Rebalance is the suggested change of a position.
type Rebalance struct {
	Ticker  string
	Current float64
	Target  float64
	// Diff is Target - Current: positive to increase the position.
	Diff float64
}

// EqualWeightRebalance suggests how to rebalance p so that every position
// has the same weight 1/N. Rows follow the portfolio order.
func EqualWeightRebalance(p *Portfolio) []Rebalance {
	if p.Len() == 0 {
		return nil
	}
	target := 1 / float64(p.Len())
	res := make([]Rebalance, 0, p.Len())
	for _, x := range p.positions {
		res = append(res, Rebalance{Ticker: x.Ticker, Current: x.Weight, Target: target, Diff: target - x.Weight})
	}
	return res
}
