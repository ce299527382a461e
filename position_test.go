package dividends

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPortfolio(t *testing.T) {
	tests := []struct {
		name         string
		weights      []float64
		want         []float64
		wantRescaled bool
		wantErr      error
	}{
		{name: "percent points", weights: []float64{50, 30, 20}, want: []float64{0.5, 0.3, 0.2}, wantRescaled: true},
		{name: "already normalized", weights: []float64{0.5, 0.3, 0.2}, want: []float64{0.5, 0.3, 0.2}},
		{name: "within tolerance", weights: []float64{0.5, 0.3, 0.195}, want: []float64{0.5, 0.3, 0.195}},
		{name: "just outside tolerance", weights: []float64{0.5, 0.3, 0.18}, want: []float64{0.5 / 0.98, 0.3 / 0.98, 0.18 / 0.98}, wantRescaled: true},
		{name: "non positive dropped", weights: []float64{0.6, 0, -1, 0.4}, want: []float64{0.6, 0.4}},
		{name: "all zero", weights: []float64{0, 0, 0}, wantErr: ErrEmptyPortfolio},
		{name: "none", weights: nil, wantErr: ErrEmptyPortfolio},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var positions []Position
			for i, w := range tc.weights {
				positions = append(positions, Position{Ticker: string(rune('A' + i)), Weight: w})
			}
			p, err := NewPortfolio(positions)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantRescaled, p.Rescaled())

			var got, sum []float64
			for _, x := range p.Positions() {
				got = append(got, x.Weight)
				sum = append(sum, x.Weight)
			}
			assert.InDeltaSlice(t, tc.want, got, 1e-9)
			if tc.wantRescaled {
				var total float64
				for _, w := range sum {
					total += w
				}
				assert.InDelta(t, 1.0, total, 1e-9)
			}
		})
	}
}

func TestNewPortfolioTickers(t *testing.T) {
	p, err := NewPortfolio([]Position{{Ticker: " itub4.sa ", Weight: 1}})
	require.NoError(t, err)
	assert.Equal(t, []string{"ITUB4.SA"}, p.Tickers())

	_, err = NewPortfolio([]Position{{Ticker: "A", Weight: 0.5}, {Ticker: "a", Weight: 0.5}})
	assert.ErrorContains(t, err, "duplicate")

	_, err = NewPortfolio([]Position{{Ticker: "", Weight: 1}})
	assert.Error(t, err)
}

func TestPortfolioIsImmutable(t *testing.T) {
	p, err := NewPortfolio([]Position{{Ticker: "A", Weight: 0.5}, {Ticker: "B", Weight: 0.5}})
	require.NoError(t, err)

	p.Positions()[0].Weight = 1
	p.Weights()["A"] = 1
	pos, ok := p.Position("A")
	require.True(t, ok)
	assert.Equal(t, 0.5, pos.Weight)
}

func TestNormalizeWeights(t *testing.T) {
	got, rescaled, err := NormalizeWeights(map[string]float64{"A": 50, "B": 30, "C": 20, "D": 0})
	require.NoError(t, err)
	assert.True(t, rescaled)
	assert.InDelta(t, 0.5, got["A"], 1e-9)
	assert.InDelta(t, 0.3, got["B"], 1e-9)
	assert.InDelta(t, 0.2, got["C"], 1e-9)
	assert.NotContains(t, got, "D")

	_, _, err = NormalizeWeights(map[string]float64{"A": 0})
	assert.ErrorIs(t, err, ErrEmptyPortfolio)
}
