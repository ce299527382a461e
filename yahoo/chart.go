package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/etnz/dividends"
	"github.com/etnz/dividends/date"
	"github.com/etnz/dividends/httpcache"
)

// chartResponse is the payload of the v8 chart API.
//
//	{"chart": {"result": [{
//	  "meta": {"currency": "BRL", "symbol": "BBAS3.SA", "gmtoffset": -10800, "regularMarketPrice": 27.32, "longName": "Banco do Brasil S.A."},
//	  "timestamp": [1717419600, ...],
//	  "events": {"dividends": {"1709294400": {"amount": 0.42, "date": 1709294400}}},
//	  "indicators": {"quote": [{"close": [27.1, ...]}], "adjclose": [{"adjclose": [26.8, ...]}]}
//	}], "error": null}}
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string   `json:"currency"`
				Symbol             string   `json:"symbol"`
				GMTOffset          int      `json:"gmtoffset"`
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
				LongName           string   `json:"longName"`
				ShortName          string   `json:"shortName"`
			} `json:"meta"`
			Timestamp []int64 `json:"timestamp"`
			Events    struct {
				Dividends map[string]struct {
					Amount float64 `json:"amount"`
					Date   int64   `json:"date"`
				} `json:"dividends"`
			} `json:"events"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// chartData is the useful part of a chart response.
type chartData struct {
	name      string
	currency  string
	price     dividends.Figure
	prices    *date.History[float64]
	dividends *date.History[float64]
}

// chart queries the chart API between from (included) and to (excluded).
func (c *Client) chart(ctx context.Context, ticker string, from, to time.Time, interval string, events bool) (*chartData, error) {
	params := url.Values{
		"period1":  {strconv.FormatInt(from.Unix(), 10)},
		"period2":  {strconv.FormatInt(to.Unix(), 10)},
		"interval": {interval},
	}
	if events {
		params.Set("events", "div")
	}
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), params.Encode())

	var resp chartResponse
	if err := httpcache.GetJSON(ctx, c.http, addr, &resp); err != nil {
		return nil, err
	}
	if e := resp.Chart.Error; e != nil {
		return nil, fmt.Errorf("%s: %s", e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", dividends.ErrUnknownTicker, ticker)
	}
	res := resp.Chart.Result[0]

	// Days are read in the exchange's own time zone.
	loc := time.FixedZone(res.Meta.Currency, res.Meta.GMTOffset)
	day := func(ts int64) date.Date { return date.Of(time.Unix(ts, 0).In(loc)) }

	data := &chartData{
		name:      res.Meta.LongName,
		currency:  res.Meta.Currency,
		price:     dividends.FromPtr(res.Meta.RegularMarketPrice),
		prices:    new(date.History[float64]),
		dividends: new(date.History[float64]),
	}
	if data.name == "" {
		data.name = res.Meta.ShortName
	}

	var closes, adjusted []*float64
	if len(res.Indicators.Quote) > 0 {
		closes = res.Indicators.Quote[0].Close
	}
	if len(res.Indicators.AdjClose) > 0 {
		adjusted = res.Indicators.AdjClose[0].AdjClose
	}
	for i, ts := range res.Timestamp {
		v := at(adjusted, i)
		if v == nil {
			v = at(closes, i)
		}
		if v == nil {
			continue // no trade that day
		}
		data.prices.Append(day(ts), *v)
	}
	for _, d := range res.Events.Dividends {
		data.dividends.AppendAdd(day(d.Date), d.Amount)
	}
	return data, nil
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}
