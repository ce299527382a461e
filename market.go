package dividends

import (
	"context"
	"errors"

	"github.com/etnz/dividends/date"
)

// ErrUnknownTicker is returned by a Fetcher when the provider does not know the ticker.
var ErrUnknownTicker = errors.New("unknown ticker")

// Quote is a snapshot of a company's market data.
//
// Ratios not reported by the provider are Unavailable.
type Quote struct {
	Ticker    string
	Name      string
	Sector    string
	Currency  string
	Price     Figure
	PE        Figure // price to earnings
	PB        Figure // price to book
	ROE       Figure // return on equity, as a fraction
	MarketCap Figure
}

// MarketData is everything known about a ticker at a point in time.
//
// MarketData values can be shared by a cache: they must be treated as
// read-only.
type MarketData struct {
	Quote Quote
	// Prices are the daily closing prices over the requested range.
	Prices *date.History[float64]
	// Dividends are the dividends per share by ex-date, over the whole
	// history known to the provider.
	Dividends *date.History[float64]
}

// Fetcher retrieves market data for a ticker.
//
// prices is the range of daily closing prices wanted. Implementations
// return the complete dividend history regardless of that range, and leave
// Quote figures Unavailable when the provider does not report them.
type Fetcher interface {
	Fetch(ctx context.Context, ticker string, prices date.Range) (*MarketData, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, ticker string, prices date.Range) (*MarketData, error)

func (f FetcherFunc) Fetch(ctx context.Context, ticker string, prices date.Range) (*MarketData, error) {
	return f(ctx, ticker, prices)
}

// LastPrice returns the quote price, or the latest close when the provider
// did not report a current price.
func (m *MarketData) LastPrice() Figure {
	if m.Quote.Price.Available() {
		return m.Quote.Price
	}
	if m.Prices == nil || m.Prices.Len() == 0 {
		return Unavailable
	}
	_, v := m.Prices.Latest()
	return Known(v)
}
