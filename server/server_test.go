package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/etnz/dividends"
	"github.com/etnz/dividends/agent"
	"github.com/etnz/dividends/date"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = date.MustParse("2025-06-30")

// market returns steadily growing prices and a yearly dividend for any
// ticker but FAIL3.SA.
func market(ctx context.Context, ticker string, rng date.Range) (*dividends.MarketData, error) {
	if ticker == "FAIL3.SA" {
		return nil, dividends.ErrUnknownTicker
	}
	md := &dividends.MarketData{
		Quote:     dividends.Quote{Ticker: ticker, Currency: "BRL"},
		Prices:    new(date.History[float64]),
		Dividends: new(date.History[float64]),
	}
	for i, d := 0, rng.From; !d.After(rng.To); i, d = i+1, d.Add(1) {
		md.Prices.Append(d, 10+float64(i)/100)
	}
	for y := 2019; y <= 2025; y++ {
		md.Dividends.Append(date.New(y, 3, 15), float64(y-2018)/10)
	}
	return md, nil
}

type testServer struct {
	*httptest.Server
	client *http.Client
}

func newTestServer(t *testing.T, narrator func(*dividends.Report) agent.Generator) *testServer {
	t.Helper()
	return newTestServerWith(t, narrator, dividends.FetcherFunc(market))
}

func newTestServerWith(t *testing.T, narrator func(*dividends.Report) agent.Generator, fetcher dividends.Fetcher) *testServer {
	t.Helper()
	p, err := dividends.NewPortfolio([]dividends.Position{
		{Ticker: "BBAS3.SA", Name: "Banco do Brasil", Sector: "Bancos", Weight: 0.5},
		{Ticker: "VALE3.SA", Name: "Vale", Sector: "Mineração", Weight: 0.5},
	})
	require.NoError(t, err)

	s := New(Config{
		Log:       zerolog.Nop(),
		Fetcher:   fetcher,
		Portfolio: p,
		Options:   dividends.Options{AsOf: asOf},
		Narrator:  narrator,
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testServer{Server: srv, client: &http.Client{Jar: jar}}
}

func (ts *testServer) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := ts.client.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (ts *testServer) post(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := ts.client.Post(ts.URL+path, "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (ts *testServer) upload(t *testing.T, filename, content string) (int, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("portfolio", filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := ts.client.Post(ts.URL+"/upload", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)
	code, body := ts.get(t, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok","sessions":0}`, body)
}

func TestIndex(t *testing.T) {
	ts := newTestServer(t, nil)
	code, body := ts.get(t, "/")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Dividend Portfolio Analysis on 2025-06-30")
	assert.Contains(t, body, "Banco do Brasil")
	assert.Contains(t, body, "<table>")
	assert.NotContains(t, body, "Write a narrative report")

	code, body = ts.get(t, "/?refresh")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Vale")
}

func TestRefreshAnalyzesOnce(t *testing.T) {
	var fetches atomic.Int32
	ts := newTestServerWith(t, nil, dividends.FetcherFunc(func(ctx context.Context, ticker string, rng date.Range) (*dividends.MarketData, error) {
		fetches.Add(1)
		return market(ctx, ticker, rng)
	}))

	code, _ := ts.get(t, "/?refresh")
	require.Equal(t, http.StatusOK, code)
	perAnalysis := fetches.Load()
	require.Positive(t, perAnalysis)

	ts.get(t, "/")
	assert.Equal(t, perAnalysis, fetches.Load(), "the last report is reused")

	ts.get(t, "/?refresh")
	assert.Equal(t, 2*perAnalysis, fetches.Load())
}

func TestUpload(t *testing.T) {
	ts := newTestServer(t, nil)
	code, body := ts.upload(t, "mine.csv", "Ticker;Peso;Companhia\nITSA4.SA;60%;Itaúsa\nFAIL3.SA;40%;Failing\n;10%;No ticker\n")
	require.Equal(t, http.StatusOK, code, body)
	assert.Contains(t, body, "mine.csv")
	assert.Contains(t, body, "Itaúsa")
	assert.NotContains(t, body, "Banco do Brasil")
	assert.Contains(t, body, "row 4")
	assert.Contains(t, body, "FAIL3.SA: cannot fetch market data")

	code, body = ts.get(t, "/export.csv")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Itaúsa;ITSA4.SA;")
	assert.Contains(t, body, "Failing;FAIL3.SA;")

	code, body = ts.get(t, "/report.pdf")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, strings.HasPrefix(body, "%PDF-"))

	// back to the default portfolio
	code, body = ts.post(t, "/reset")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Banco do Brasil")
}

func TestUpload_Invalid(t *testing.T) {
	ts := newTestServer(t, nil)
	code, body := ts.upload(t, "bad.csv", "Company;Sector\nVale;Mineração\n")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body, "bad.csv")
	assert.Contains(t, body, "column")

	resp, err := ts.client.Post(ts.URL+"/upload", "text/plain", strings.NewReader("nothing"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNarrative(t *testing.T) {
	var prompts []string
	ts := newTestServer(t, func(r *dividends.Report) agent.Generator {
		return agent.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
			prompts = append(prompts, prompt)
			return "## Outlook\n\nA **steady** income portfolio.", nil
		})
	})

	code, _ := ts.get(t, "/narrative.txt")
	assert.Equal(t, http.StatusNotFound, code)

	code, body := ts.get(t, "/")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Write a narrative report")

	code, body = ts.post(t, "/narrative")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Weighted average dividend yield")
	assert.Contains(t, body, "<strong>steady</strong>")

	code, body = ts.get(t, "/narrative.txt")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "A **steady** income portfolio.")

	// a new analysis forgets the narrative
	ts.get(t, "/?refresh")
	code, _ = ts.get(t, "/narrative.txt")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestNarrative_Errors(t *testing.T) {
	ts := newTestServer(t, nil)
	code, _ := ts.post(t, "/narrative")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	ts = newTestServer(t, func(r *dividends.Report) agent.Generator {
		return agent.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("quota exceeded")
		})
	})
	code, body := ts.post(t, "/narrative")
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Contains(t, body, "quota exceeded")
	// the report is still shown
	assert.Contains(t, body, "Banco do Brasil")
}

func TestSessions_Isolated(t *testing.T) {
	ts := newTestServer(t, nil)
	code, _ := ts.upload(t, "mine.csv", "Ticker,Weight\nITSA4.SA,1\n")
	require.Equal(t, http.StatusOK, code)

	// another user still sees the default portfolio
	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Banco do Brasil")
	assert.NotContains(t, string(body), "ITSA4.SA")
}
