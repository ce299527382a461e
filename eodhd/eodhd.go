// Package eodhd fetches market data from the EOD Historical Data API.
//
// Tickers follow EODHD's SYMBOL.EXCHANGE convention: B3 stocks are listed
// on the "SA" exchange (BBAS3.SA), indexes on "INDX" (BVSP.INDX).
package eodhd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/etnz/dividends"
	"github.com/etnz/dividends/date"
	"github.com/etnz/dividends/httpcache"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the address of the EODHD API.
const DefaultBaseURL = "https://eodhd.com"

// Benchmark is the Ibovespa index ticker.
const Benchmark = "BVSP.INDX"

// Client is a dividends.Fetcher backed by EODHD.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	log     zerolog.Logger
	ttl     time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL changes the API address, mostly for tests.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithHTTPClient changes the http.Client used to query the API.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithCacheTTL changes how long responses are kept on disk, zero disables
// the disk cache. It is ignored with WithHTTPClient.
func WithCacheTTL(ttl time.Duration) Option { return func(c *Client) { c.ttl = ttl } }

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option { return func(c *Client) { c.log = l } }

// New returns a Client for apiKey.
//
// By default responses are cached on disk for dividends.DefaultTTL (see
// WithCacheTTL) and requests are limited to 10 per second.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{apiKey: apiKey, baseURL: DefaultBaseURL, log: zerolog.Nop(), ttl: dividends.DefaultTTL}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpcache.NewClient(c.ttl, rate.NewLimiter(rate.Every(100*time.Millisecond), 5), c.log)
	}
	return c
}

// Fetch implements dividends.Fetcher.
//
// Prices and dividends are required, a failure to get them fails the
// fetch. Fundamentals and real time quotes are not part of every EODHD
// plan: when they cannot be fetched the corresponding figures are left
// unavailable and a warning is logged.
func (c *Client) Fetch(ctx context.Context, ticker string, prices date.Range) (*dividends.MarketData, error) {
	if c.apiKey == "" {
		return nil, errors.New("missing EODHD API key")
	}
	md := &dividends.MarketData{Quote: dividends.Quote{Ticker: ticker}}
	var err error

	if md.Prices, err = c.fetchPrices(ctx, ticker, prices); err != nil {
		return nil, fmt.Errorf("prices of %s: %w", ticker, err)
	}
	if md.Dividends, err = c.fetchDividends(ctx, ticker); err != nil {
		return nil, fmt.Errorf("dividends of %s: %w", ticker, err)
	}

	if q, err := c.fetchFundamentals(ctx, ticker); err != nil {
		c.log.Warn().Err(err).Str("ticker", ticker).Msg("fundamentals not available")
	} else {
		md.Quote = q
	}
	if p, err := c.fetchRealTime(ctx, ticker); err != nil {
		c.log.Warn().Err(err).Str("ticker", ticker).Msg("real time price not available")
	} else {
		md.Quote.Price = p
	}
	return md, nil
}

// addr returns the API address for path and query parameters.
func (c *Client) addr(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("fmt", "json")
	params.Set("api_token", c.apiKey)
	return fmt.Sprintf("%s/api/%s?%s", c.baseURL, path, params.Encode())
}
