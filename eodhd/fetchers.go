package eodhd

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/dividends"
	"github.com/etnz/dividends/date"
	"github.com/etnz/dividends/httpcache"
	"github.com/shopspring/decimal"
)

// This file contains functions to access the EODHD API.

// fetchPrices returns the daily adjusted close prices of a ticker.
func (c *Client) fetchPrices(ctx context.Context, ticker string, r date.Range) (*date.History[float64], error) {
	// https://eodhd.com/api/eod/BBAS3.SA?api_token=demo&fmt=json&from=2024-01-01&to=2024-12-31
	// [
	//	{
	//		"date": "2024-02-13",
	//		"open": 27.066,
	//		"high": 27.219,
	//		"low": 26.659,
	//		"close": 27.445,
	//		"adjusted_close": 25.705,
	//		"volume": 12000000
	//	  },
	// bounds are included in the response.
	addr := c.addr("eod/"+url.PathEscape(ticker), url.Values{"from": {r.From.String()}, "to": {r.To.String()}})
	type Info struct {
		Date          date.Date `json:"date"`
		Close         float64   `json:"close"`
		AdjustedClose float64   `json:"adjusted_close"`
	}

	content := make([]Info, 0)
	if err := httpcache.GetJSON(ctx, c.http, addr, &content); err != nil {
		return nil, err
	}
	prices := new(date.History[float64])
	for _, info := range content {
		v := info.AdjustedClose
		if v == 0 {
			v = info.Close
		}
		prices.Append(info.Date, v)
	}
	return prices, nil
}

// fetchDividends returns the whole dividend history of a ticker, by ex-date.
func (c *Client) fetchDividends(ctx context.Context, ticker string) (*date.History[float64], error) {
	// https://eodhd.com/api/div/BBAS3.SA?api_token=demo&fmt=json
	// [
	//   {
	//     "date": "2024-03-01",   // ex-dividend date
	//     "declarationDate": "2024-02-20",
	//     "recordDate": "2024-02-29",
	//     "paymentDate": "2024-03-12",
	//     "period": "Quarterly",
	//     "value": 0.4218,
	//     "unadjustedValue": 0.8436,
	//     "currency": "BRL"
	//   },
	addr := c.addr("div/"+url.PathEscape(ticker), nil)

	type apiDividend struct {
		Date     date.Date       `json:"date"`
		Value    decimal.Decimal `json:"value"`
		Currency string          `json:"currency"`
	}

	content := make([]apiDividend, 0)
	if err := httpcache.GetJSON(ctx, c.http, addr, &content); err != nil {
		return nil, err
	}
	divs := new(date.History[float64])
	for _, d := range content {
		// several distributions on the same day (dividend and interest on capital) are added.
		divs.AppendAdd(d.Date, d.Value.InexactFloat64())
	}
	return divs, nil
}

// fetchFundamentals returns the company profile and ratios of a ticker.
func (c *Client) fetchFundamentals(ctx context.Context, ticker string) (dividends.Quote, error) {
	// https://eodhd.com/api/fundamentals/BBAS3.SA?api_token=demo&fmt=json
	// {
	//   "General": {"Code": "BBAS3", "Name": "Banco do Brasil SA", "CurrencyCode": "BRL", "Sector": "Financial Services", ...},
	//   "Highlights": {"MarketCapitalization": 160523000000, "PERatio": 4.12, "ReturnOnEquityTTM": 0.2112, ...},
	//   "Valuation": {"PriceBookMRQ": 0.86, ...},
	//   ...
	// }
	addr := c.addr("fundamentals/"+url.PathEscape(ticker), url.Values{"filter": {"General,Highlights,Valuation"}})

	var doc any
	if err := httpcache.GetJSON(ctx, c.http, addr, &doc); err != nil {
		return dividends.Quote{}, err
	}
	if _, ok := doc.(map[string]any); !ok {
		// filtered answers are flattened by some plans, keep the error explicit.
		return dividends.Quote{}, fmt.Errorf("unexpected fundamentals for %s: %T", ticker, doc)
	}
	return dividends.Quote{
		Ticker:    ticker,
		Name:      text(doc, "$.General.Name"),
		Sector:    text(doc, "$.General.Sector"),
		Currency:  text(doc, "$.General.CurrencyCode"),
		PE:        ratio(doc, "$.Highlights.PERatio"),
		PB:        ratio(doc, "$.Valuation.PriceBookMRQ"),
		ROE:       ratio(doc, "$.Highlights.ReturnOnEquityTTM"),
		MarketCap: ratio(doc, "$.Highlights.MarketCapitalization"),
	}, nil
}

// fetchRealTime returns the latest (delayed) price of a ticker.
func (c *Client) fetchRealTime(ctx context.Context, ticker string) (dividends.Figure, error) {
	// https://eodhd.com/api/real-time/BBAS3.SA?api_token=demo&fmt=json
	// {"code":"BBAS3.SA","timestamp":1718395200,"gmtoffset":0,"open":27.1,"high":27.5,"low":26.9,"close":27.32,"volume":100,"previousClose":27.0,"change":0.32,"change_p":1.18}
	addr := c.addr("real-time/"+url.PathEscape(ticker), nil)
	var doc any
	if err := httpcache.GetJSON(ctx, c.http, addr, &doc); err != nil {
		return dividends.Unavailable, err
	}
	p := figure(doc, "$.close")
	if !p.Available() {
		return dividends.Unavailable, fmt.Errorf("no real time price for %s", ticker)
	}
	return p, nil
}

// lookup returns the value at path in a decoded json document.
func lookup(doc any, path string) (any, bool) {
	v, err := jsonpath.Get(path, doc)
	if err != nil || v == nil {
		return nil, false
	}
	// because jsonpath is never clear about wheter it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil, false
		}
		v = list[0]
	}
	return v, true
}

// figure returns the number at path. EODHD reports some numbers as strings,
// and missing ones as null or "NA".
func figure(doc any, path string) dividends.Figure {
	v, ok := lookup(doc, path)
	if !ok {
		return dividends.Unavailable
	}
	switch x := v.(type) {
	case float64:
		return dividends.Known(x)
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return dividends.Unavailable
		}
		return dividends.Known(f)
	default:
		return dividends.Unavailable
	}
}

// ratio is like figure for ratios and market caps, that EODHD reports as 0
// when they are missing.
func ratio(doc any, path string) dividends.Figure {
	f := figure(doc, path)
	if v, ok := f.Get(); ok && v == 0 {
		return dividends.Unavailable
	}
	return f
}

// text returns the string at path, or "".
func text(doc any, path string) string {
	v, ok := lookup(doc, path)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
