package dividends

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testMarket returns a fetcher with three stocks and the benchmark.
func testMarket() *fakeFetcher {
	f := newFakeFetcher()
	f.data["BBAS3.SA"] = &MarketData{
		Quote:     Quote{Ticker: "BBAS3.SA", Name: "Banco do Brasil", Sector: "Financial Services", Currency: "BRL", Price: Known(25), PE: Known(4.1)},
		Prices:    series("2025-06-02", 24, "2025-06-03", 25, "2025-06-04", 25),
		Dividends: series("2023-05-10", 1.5, "2024-11-10", 1.0, "2025-05-10", 1.5),
	}
	f.data["VALE3.SA"] = &MarketData{
		Quote:     Quote{Ticker: "VALE3.SA", Name: "Vale", Currency: "BRL"},
		Prices:    series("2025-06-02", 50, "2025-06-03", 55, "2025-06-04", 60),
		Dividends: series("2025-03-10", 2.0),
	}
	f.data["WEGE3.SA"] = &MarketData{
		Quote:     Quote{Ticker: "WEGE3.SA", Name: "WEG", Currency: "BRL", Price: Known(40)},
		Prices:    series("2025-06-03", 40, "2025-06-04", 40),
		Dividends: series(),
	}
	f.data["^BVSP"] = &MarketData{
		Quote:  Quote{Ticker: "^BVSP", Name: "IBOVESPA"},
		Prices: series("2025-06-02", 100, "2025-06-03", 101, "2025-06-04", 102),
	}
	return f
}

func testPortfolio(t *testing.T, tickers ...string) *Portfolio {
	t.Helper()
	var positions []Position
	for _, ticker := range tickers {
		positions = append(positions, Position{Ticker: ticker, Weight: 1})
	}
	p, err := NewPortfolio(positions)
	require.NoError(t, err)
	return p
}

func TestAnalyze(t *testing.T) {
	f := testMarket()
	f.errs["PETR4.SA"] = errors.New("timeout")
	p := testPortfolio(t, "WEGE3.SA", "PETR4.SA", "VALE3.SA", "BBAS3.SA")

	r, err := Analyze(context.Background(), f, p, Options{AsOf: D("2025-06-04"), Lookback: 30})
	require.NoError(t, err)

	assert.True(t, r.Rescaled)
	var names []string
	for _, row := range r.Rows {
		names = append(names, row.Company())
	}
	assert.Equal(t, []string{"Banco do Brasil", "PETR4.SA", "Vale", "WEG"}, names, "sorted by company")

	bbas := r.Rows[0]
	assert.Equal(t, StatusOK, bbas.Status)
	assert.Equal(t, "Financial Services", bbas.Position.Sector, "sector from the quote")
	assert.InDelta(t, 10.0, bbas.Yield.Or(0), 1e-9) // (1.0 + 1.5) / 25
	assert.InDelta(t, 0.0, bbas.CAGR3.Or(-1), 1e-9)

	petr := r.Rows[1]
	assert.Equal(t, StatusError, petr.Status)
	assert.EqualError(t, petr.Err, "timeout")
	assert.False(t, petr.Yield.Available())

	vale := r.Rows[2]
	assert.InDelta(t, 2.0/60*100, vale.Yield.Or(0), 1e-9, "last close used when the quote has no price")

	weg := r.Rows[3]
	assert.True(t, weg.Yield.Available())
	assert.Equal(t, 0.0, weg.Yield.Or(-1))

	// (10 + 3.33 + 0) / 3 over the 3 positions with a yield
	assert.InDelta(t, (10+2.0/60*100)/3, r.AverageYield.Or(0), 1e-9)

	require.NotNil(t, r.Performance)
	assert.Equal(t, 2, r.Performance.Len(), "WEG starts on June 3rd")
	assert.Equal(t, []string{"PETR4.SA"}, r.Performance.Missing)

	assert.Equal(t, 1, r.Failed())
	assert.Len(t, r.Warnings, 2, "fetch failure and partial performance: %v", r.Warnings)

	// cash flow is limited to the 30 days before AsOf.
	assert.Equal(t, 1, r.CashFlow.Len())
	v, _ := r.CashFlow.Get(D("2025-05-10"))
	assert.InDelta(t, 0.25*1.5, v, 1e-9)

	assert.Len(t, r.Rebalance, 4)
	assert.Equal(t, 1, f.calls["^BVSP"])
}

func TestAnalyzeBenchmarkFailure(t *testing.T) {
	f := testMarket()
	f.errs["^BVSP"] = errors.New("down")
	r, err := Analyze(context.Background(), f, testPortfolio(t, "VALE3.SA"), Options{AsOf: D("2025-06-04")})
	require.NoError(t, err)
	assert.Nil(t, r.Performance)
	assert.ErrorContains(t, r.PerformanceErr, "down")
	assert.Equal(t, StatusOK, r.Rows[0].Status)
}

func TestAnalyzeNoOverlap(t *testing.T) {
	f := testMarket()
	f.data["^BVSP"].Prices = series("2024-01-02", 100)
	r, err := Analyze(context.Background(), f, testPortfolio(t, "VALE3.SA"), Options{AsOf: D("2025-06-04")})
	require.NoError(t, err)
	assert.ErrorIs(t, r.PerformanceErr, ErrNoOverlap)
	assert.Nil(t, r.Performance)
}

func TestAnalyzeEmptyPortfolio(t *testing.T) {
	_, err := Analyze(context.Background(), testMarket(), nil, Options{})
	assert.ErrorIs(t, err, ErrEmptyPortfolio)
}

func TestAnalyzeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Analyze(ctx, testMarket(), testPortfolio(t, "VALE3.SA"), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCachedFetcher(t *testing.T) {
	f := testMarket()
	c := NewCachedFetcher(f, 0)
	rng := testRange()

	for range 3 {
		_, err := c.Fetch(context.Background(), "VALE3.SA", rng)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, f.calls["VALE3.SA"])

	f.errs["PETR4.SA"] = errors.New("timeout")
	for range 2 {
		_, err := c.Fetch(context.Background(), "PETR4.SA", rng)
		assert.Error(t, err)
	}
	assert.Equal(t, 2, f.calls["PETR4.SA"], "errors are not cached")

	c.Flush()
	_, _ = c.Fetch(context.Background(), "VALE3.SA", rng)
	assert.Equal(t, 2, f.calls["VALE3.SA"])
}
