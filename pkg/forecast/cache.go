package forecast

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Purger is implemented by fetchers that remember results.
type Purger interface {
	Purge()
}

type cachingFetcher struct {
	next  Fetcher
	cache *lru.Cache[Query, Result]
}

// NewCachingFetcher keeps up to size successful results of next in memory so
// that repeated queries within a run do not hit Cost Explorer again. Failures
// are never cached. The returned fetcher is a Purger; callers purge it between
// runs so every run sees fresh forecasts. A size of zero or less returns next unchanged.
func NewCachingFetcher(next Fetcher, size int) (Fetcher, error) {
	if size <= 0 {
		return next, nil
	}
	cache, err := lru.New[Query, Result](size)
	if err != nil {
		return nil, fmt.Errorf("could not create forecast cache: %w", err)
	}
	return &cachingFetcher{next: next, cache: cache}, nil
}

func (c *cachingFetcher) Fetch(ctx context.Context, q Query) (Result, error) {
	if result, ok := c.cache.Get(q); ok {
		forecastCacheHitsCounter.Inc()
		return result, nil
	}
	result, err := c.next.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	c.cache.Add(q, result)
	return result, nil
}

// Purge forgets every cached result.
func (c *cachingFetcher) Purge() {
	c.cache.Purge()
}
