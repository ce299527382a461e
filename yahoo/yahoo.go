// Package yahoo fetches market data from Yahoo Finance.
//
// Prices, dividends and currency come from the chart API, the company
// profile and ratios from github.com/wnjoon/go-yfinance.
package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/etnz/dividends"
	"github.com/etnz/dividends/date"
	"github.com/etnz/dividends/httpcache"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the address of the chart API.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Benchmark is the Ibovespa index ticker.
const Benchmark = "^BVSP"

// Profiler returns the descriptive part of a quote: name, sector and ratios.
type Profiler interface {
	Profile(ctx context.Context, ticker string) (dividends.Quote, error)
}

// Client is a dividends.Fetcher backed by Yahoo Finance.
type Client struct {
	baseURL  string
	http     *http.Client
	profiler Profiler
	log      zerolog.Logger
	ttl      time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL changes the chart API address, mostly for tests.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithHTTPClient changes the http.Client used to query the chart API.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithProfiler replaces the go-yfinance profiler.
func WithProfiler(p Profiler) Option { return func(c *Client) { c.profiler = p } }

// WithCacheTTL changes how long responses are kept on disk, zero disables
// the disk cache. It is ignored with WithHTTPClient.
func WithCacheTTL(ttl time.Duration) Option { return func(c *Client) { c.ttl = ttl } }

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option { return func(c *Client) { c.log = l } }

// New returns a Client. Chart responses are cached on disk for
// dividends.DefaultTTL (see WithCacheTTL), and requests are limited to 2 per second.
func New(opts ...Option) *Client {
	c := &Client{baseURL: DefaultBaseURL, log: zerolog.Nop(), ttl: dividends.DefaultTTL}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpcache.NewClient(c.ttl, rate.NewLimiter(rate.Every(500*time.Millisecond), 1), c.log)
	}
	if c.profiler == nil {
		c.profiler = infoProfiler{}
	}
	return c
}

// Fetch implements dividends.Fetcher.
//
// The profile is optional: when Yahoo does not return it, the quote only
// holds the currency and the market price reported with the chart.
func (c *Client) Fetch(ctx context.Context, ticker string, prices date.Range) (*dividends.MarketData, error) {
	ch, err := c.chart(ctx, ticker, prices.From.Time(), prices.To.Add(1).Time(), "1d", false)
	if err != nil {
		return nil, fmt.Errorf("prices of %s: %w", ticker, err)
	}
	if ch.prices.Len() == 0 {
		return nil, fmt.Errorf("prices of %s: no data between %s", ticker, prices)
	}
	// dividends over the whole history: monthly bars keep the answer small.
	divs, err := c.chart(ctx, ticker, time.Unix(0, 0), prices.To.Add(1).Time(), "1mo", true)
	if err != nil {
		return nil, fmt.Errorf("dividends of %s: %w", ticker, err)
	}

	md := &dividends.MarketData{Prices: ch.prices, Dividends: divs.dividends}
	if q, err := c.profiler.Profile(ctx, ticker); err != nil {
		c.log.Warn().Err(err).Str("ticker", ticker).Msg("profile not available")
		md.Quote = dividends.Quote{Ticker: ticker, Name: ch.name}
	} else {
		md.Quote = q
	}
	md.Quote.Currency = ch.currency
	if !md.Quote.Price.Available() {
		md.Quote.Price = ch.price
	}
	return md, nil
}
