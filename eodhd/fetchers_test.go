package eodhd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/etnz/dividends/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer serves canned EODHD answers for BBAS3.SA.
func newTestServer(t *testing.T, fundamentals bool) *httptest.Server {
	mux := http.NewServeMux()
	check := func(w http.ResponseWriter, r *http.Request) bool {
		if r.URL.Query().Get("api_token") != "secret" {
			http.Error(w, "Unauthenticated", http.StatusUnauthorized)
			return false
		}
		w.Header().Set("Content-Type", "application/json")
		return true
	}
	mux.HandleFunc("/api/eod/BBAS3.SA", func(w http.ResponseWriter, r *http.Request) {
		if !check(w, r) {
			return
		}
		assert.Equal(t, "2025-06-02", r.URL.Query().Get("from"))
		w.Write([]byte(`[
			{"date":"2025-06-02","open":27,"close":27.5,"adjusted_close":27.1},
			{"date":"2025-06-03","open":27.5,"close":28,"adjusted_close":0}
		]`))
	})
	mux.HandleFunc("/api/div/BBAS3.SA", func(w http.ResponseWriter, r *http.Request) {
		if !check(w, r) {
			return
		}
		w.Write([]byte(`[
			{"date":"2024-12-01","value":0.5,"currency":"BRL"},
			{"date":"2024-12-01","value":"0.25","currency":"BRL"},
			{"date":"2025-03-01","value":0.75,"currency":"BRL"}
		]`))
	})
	mux.HandleFunc("/api/fundamentals/BBAS3.SA", func(w http.ResponseWriter, r *http.Request) {
		if !check(w, r) {
			return
		}
		if !fundamentals {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		w.Write([]byte(`{
			"General": {"Name": "Banco do Brasil SA", "Sector": "Financial Services", "CurrencyCode": "BRL"},
			"Highlights": {"PERatio": 4.12, "ReturnOnEquityTTM": "0.2112", "MarketCapitalization": 160523000000},
			"Valuation": {"PriceBookMRQ": null}
		}`))
	})
	mux.HandleFunc("/api/real-time/BBAS3.SA", func(w http.ResponseWriter, r *http.Request) {
		if !check(w, r) {
			return
		}
		w.Write([]byte(`{"code":"BBAS3.SA","close":28.3}`))
	})
	mux.HandleFunc("/api/search/banco", func(w http.ResponseWriter, r *http.Request) {
		if !check(w, r) {
			return
		}
		w.Write([]byte(`[{"Code":"BBAS3","Exchange":"SA","Name":"Banco do Brasil SA","Type":"Common Stock","Currency":"BRL","previousClose":28.1,"previousCloseDate":"2025-06-03"}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testRange() date.Range {
	return date.Range{From: date.New(2025, 6, 2), To: date.New(2025, 6, 3)}
}

func TestFetch(t *testing.T) {
	srv := newTestServer(t, true)
	c := New("secret", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))

	md, err := c.Fetch(context.Background(), "BBAS3.SA", testRange())
	require.NoError(t, err)

	assert.Equal(t, "Banco do Brasil SA", md.Quote.Name)
	assert.Equal(t, "Financial Services", md.Quote.Sector)
	assert.Equal(t, "BRL", md.Quote.Currency)
	assert.InDelta(t, 28.3, md.Quote.Price.Or(0), 1e-9)
	assert.InDelta(t, 4.12, md.Quote.PE.Or(0), 1e-9)
	assert.InDelta(t, 0.2112, md.Quote.ROE.Or(0), 1e-9)
	assert.False(t, md.Quote.PB.Available(), "null ratio is unavailable")
	assert.InDelta(t, 160523000000, md.Quote.MarketCap.Or(0), 1)

	require.Equal(t, 2, md.Prices.Len())
	v, _ := md.Prices.Get(date.New(2025, 6, 2))
	assert.Equal(t, 27.1, v, "adjusted close")
	v, _ = md.Prices.Get(date.New(2025, 6, 3))
	assert.Equal(t, 28.0, v, "close when not adjusted")

	require.Equal(t, 2, md.Dividends.Len())
	v, _ = md.Dividends.Get(date.New(2024, 12, 1))
	assert.InDelta(t, 0.75, v, 1e-9, "same day distributions are added")
}

func TestFetchWithoutFundamentals(t *testing.T) {
	srv := newTestServer(t, false)
	c := New("secret", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))

	md, err := c.Fetch(context.Background(), "BBAS3.SA", testRange())
	require.NoError(t, err)
	assert.Equal(t, "BBAS3.SA", md.Quote.Ticker)
	assert.Empty(t, md.Quote.Name)
	assert.False(t, md.Quote.PE.Available())
	assert.True(t, md.Quote.Price.Available())
}

func TestFetchErrors(t *testing.T) {
	srv := newTestServer(t, true)

	_, err := New("", WithBaseURL(srv.URL), WithHTTPClient(srv.Client())).Fetch(context.Background(), "BBAS3.SA", testRange())
	assert.ErrorContains(t, err, "API key")

	_, err = New("wrong", WithBaseURL(srv.URL), WithHTTPClient(srv.Client())).Fetch(context.Background(), "BBAS3.SA", testRange())
	assert.ErrorContains(t, err, "401")

	_, err = New("secret", WithBaseURL(srv.URL), WithHTTPClient(srv.Client())).Fetch(context.Background(), "PETR4.SA", testRange())
	assert.ErrorContains(t, err, "prices of PETR4.SA")
}

func TestSearch(t *testing.T) {
	srv := newTestServer(t, true)
	c := New("secret", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))

	res, err := c.Search(context.Background(), "banco")
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "BBAS3.SA", res[0].Ticker())
}

func TestFigure(t *testing.T) {
	doc := map[string]any{"a": map[string]any{"n": 1.5, "s": "2.5", "na": "NA", "nil": nil}}
	assert.Equal(t, 1.5, figure(doc, "$.a.n").Or(0))
	assert.Equal(t, 2.5, figure(doc, "$.a.s").Or(0))
	assert.False(t, figure(doc, "$.a.na").Available())
	assert.False(t, figure(doc, "$.a.nil").Available())
	assert.False(t, figure(doc, "$.a.missing").Available())
	assert.Equal(t, "", text(doc, "$.a.n"))
}

func TestRatio(t *testing.T) {
	doc := map[string]any{"a": map[string]any{"pe": 6.2, "zero": 0.0, "szero": "0", "neg": -3.0}}
	assert.Equal(t, 6.2, ratio(doc, "$.a.pe").Or(0))
	assert.False(t, ratio(doc, "$.a.zero").Available(), "0 is how a missing ratio is reported")
	assert.False(t, ratio(doc, "$.a.szero").Available())
	assert.Equal(t, -3.0, ratio(doc, "$.a.neg").Or(0))
	assert.False(t, ratio(doc, "$.a.missing").Available())
}
