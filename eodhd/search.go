package eodhd

import (
	"context"
	"net/url"

	"github.com/etnz/dividends/httpcache"
)

// SearchResult matches the structure of a single item in the EODHD search API response.
type SearchResult struct {
	Code              string  `json:"Code"`
	Exchange          string  `json:"Exchange"`
	Name              string  `json:"Name"`
	Type              string  `json:"Type"`
	Country           string  `json:"Country"`
	Currency          string  `json:"Currency"`
	ISIN              string  `json:"ISIN"`
	PreviousClose     float64 `json:"previousClose"`
	PreviousCloseDate string  `json:"previousCloseDate"`
}

// Ticker returns the ticker to use in a portfolio.
func (r SearchResult) Ticker() string { return r.Code + "." + r.Exchange }

// Search searches for securities by name, ticker or ISIN.
func (c *Client) Search(ctx context.Context, term string) ([]SearchResult, error) {
	addr := c.addr("search/"+url.PathEscape(term), nil)
	var results []SearchResult
	if err := httpcache.GetJSON(ctx, c.http, addr, &results); err != nil {
		return nil, err
	}
	return results, nil
}
