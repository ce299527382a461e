package dividends

import (
	"context"
	"fmt"

	"github.com/etnz/dividends/date"
)

// D is a helper for tests to create dates from const.
func D(s string) date.Date { return date.MustParse(s) }

// series is a helper for tests to create a history from date/value pairs.
func series(pairs ...any) *date.History[float64] {
	h := new(date.History[float64])
	for i := 0; i+1 < len(pairs); i += 2 {
		var v float64
		switch x := pairs[i+1].(type) {
		case int:
			v = float64(x)
		case float64:
			v = x
		default:
			panic(fmt.Sprintf("unsupported value %T", x))
		}
		h.Append(D(pairs[i].(string)), v)
	}
	return h
}

// BRL is a helper for test to create real money from const
func BRL(v float64) Money { return M(v, "BRL") }

// fakeFetcher serves fixed market data and counts calls.
type fakeFetcher struct {
	data  map[string]*MarketData
	errs  map[string]error
	calls map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{data: map[string]*MarketData{}, errs: map[string]error{}, calls: map[string]int{}}
}

func (f *fakeFetcher) Fetch(ctx context.Context, ticker string, prices date.Range) (*MarketData, error) {
	f.calls[ticker]++
	if err := f.errs[ticker]; err != nil {
		return nil, err
	}
	md, ok := f.data[ticker]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}
	return &MarketData{Quote: md.Quote, Prices: md.Prices.Window(prices), Dividends: md.Dividends}, nil
}
