package dividends

import (
	"context"
	"fmt"
	"time"

	"github.com/etnz/dividends/date"
	"github.com/patrickmn/go-cache"
)

// DefaultTTL is the default lifetime of fetched market data.
const DefaultTTL = 4 * time.Hour

// CachedFetcher memoizes the market data returned by another Fetcher for a
// limited time. Errors are never cached.
type CachedFetcher struct {
	next  Fetcher
	cache *cache.Cache
}

// NewCachedFetcher returns a Fetcher that remembers next's results for ttl.
func NewCachedFetcher(next Fetcher, ttl time.Duration) *CachedFetcher {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedFetcher{next: next, cache: cache.New(ttl, 2*ttl)}
}

// Fetch implements Fetcher.
func (c *CachedFetcher) Fetch(ctx context.Context, ticker string, prices date.Range) (*MarketData, error) {
	key := fmt.Sprintf("%s %s", ticker, prices)
	if v, found := c.cache.Get(key); found {
		return v.(*MarketData), nil
	}
	md, err := c.next.Fetch(ctx, ticker, prices)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, md)
	return md, nil
}

// Flush forgets everything.
func (c *CachedFetcher) Flush() { c.cache.Flush() }
