package embedding

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/rcliao/recoengine/internal/metrics"
)

// CachedEmbedder wraps an Embedder with a TTL-expiring cache keyed on the
// exact input string (spec §4.1(a), §5). go-cache neither caps entry count
// nor tracks access order, so the size bound is approximate: once the cache
// holds capacity entries, the next insert first deletes capacity/10+1
// arbitrary entries. Eviction is not least-recently-used.
type CachedEmbedder struct {
	inner    Embedder
	cache    *cache.Cache
	capacity int
}

// NewCachedEmbedder wraps inner with a cache of the given TTL and approximate
// capacity. ttl<=0 and capacity<=0 fall back to the spec defaults (1h, 1000).
func NewCachedEmbedder(inner Embedder, ttl time.Duration, capacity int) *CachedEmbedder {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if capacity <= 0 {
		capacity = 1000
	}
	return &CachedEmbedder{
		inner:    inner,
		cache:    cache.New(ttl, ttl/2),
		capacity: capacity,
	}
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		metrics.EmbeddingCacheHits.Inc()
		return v.([]float32), nil
	}
	metrics.EmbeddingCacheMisses.Inc()

	v, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.evictIfFull()
	c.cache.SetDefault(text, v)
	return v, nil
}

func (c *CachedEmbedder) evictIfFull() {
	if c.cache.ItemCount() < c.capacity {
		return
	}
	// Drop a handful of arbitrary entries to make room; go-cache exposes no
	// LRU ordering, so this is a coarse approximation of the size bound.
	items := c.cache.Items()
	dropped := 0
	for k := range items {
		c.cache.Delete(k)
		dropped++
		if dropped >= c.capacity/10+1 {
			break
		}
	}
}

// Stats reports current occupancy, useful for the stats CLI command.
func (c *CachedEmbedder) Stats() (itemCount int, capacity int) {
	return c.cache.ItemCount(), c.capacity
}
