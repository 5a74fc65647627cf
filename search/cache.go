package search

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jonwraymond/sitesearch/index"
)

// DefaultCacheSize is the number of distinct queries kept by the result cache.
const DefaultCacheSize = 100

// cacheKey scopes cached hits to the index build that produced them, so a
// stale entry can never be served after a swap even before the purge lands.
type cacheKey struct {
	version uint64
	query   string
	limit   int
	typ     index.Type
}

// resultCache is a bounded LRU of query results. A nil *resultCache is a
// disabled cache: lookups miss and stores are dropped.
type resultCache struct {
	lru *lru.Cache[cacheKey, index.Hits]
}

func newResultCache(size int) *resultCache {
	if size <= 0 {
		return nil
	}
	c, err := lru.New[cacheKey, index.Hits](size)
	if err != nil {
		return nil
	}
	return &resultCache{lru: c}
}

func (c *resultCache) get(k cacheKey) (index.Hits, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(k)
}

func (c *resultCache) add(k cacheKey, hits index.Hits) {
	if c == nil {
		return
	}
	c.lru.Add(k, hits)
}

func (c *resultCache) purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

func (c *resultCache) len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

// cloneHits deep-copies hits so callers cannot mutate cached tag slices.
func cloneHits(hits index.Hits) index.Hits {
	out := make(index.Hits, len(hits))
	for i, h := range hits {
		out[i] = h
		out[i].Tags = append(make([]string, 0, len(h.Tags)), h.Tags...)
	}
	return out
}
