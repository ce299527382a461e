package yahoo

import (
	"context"
	"fmt"

	"github.com/etnz/dividends"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/ticker"
)

// infoProfiler reads the quote summary with go-yfinance.
type infoProfiler struct{}

// Profile implements Profiler.
func (infoProfiler) Profile(ctx context.Context, symbol string) (dividends.Quote, error) {
	if err := ctx.Err(); err != nil {
		return dividends.Quote{}, err
	}
	t, err := ticker.New(symbol)
	if err != nil {
		return dividends.Quote{}, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	info, err := t.Info()
	if err != nil {
		return dividends.Quote{}, fmt.Errorf("failed to get info: %w", err)
	}
	if info == nil {
		return dividends.Quote{}, fmt.Errorf("no info for %q", symbol)
	}
	return quoteOf(symbol, info), nil
}

// quoteOf maps a quote summary to a Quote.
//
// Yahoo reports missing ratios as zero, they are made Unavailable here.
func quoteOf(symbol string, info *models.Info) dividends.Quote {
	name := info.LongName
	if name == "" {
		name = info.ShortName
	}
	q := dividends.Quote{
		Ticker:    symbol,
		Name:      name,
		Sector:    info.Sector,
		Price:     positive(info.CurrentPrice),
		PE:        positive(info.TrailingPE),
		PB:        positive(info.PriceToBook),
		ROE:       nonZero(info.ReturnOnEquity),
		MarketCap: positive(float64(info.MarketCap)),
	}
	if q.Sector == "" {
		q.Sector = info.Industry
	}
	if !q.Price.Available() {
		q.Price = positive(info.RegularMarketPreviousClose)
	}
	return q
}

func positive(v float64) dividends.Figure {
	if v <= 0 {
		return dividends.Unavailable
	}
	return dividends.Known(v)
}

func nonZero(v float64) dividends.Figure {
	if v == 0 {
		return dividends.Unavailable
	}
	return dividends.Known(v)
}
