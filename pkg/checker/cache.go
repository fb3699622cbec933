package checker

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/platinummonkey/apicheck/pkg/apimodel"
	"github.com/platinummonkey/apicheck/pkg/observability"
)

const cacheType = "model"

// ModelCache holds parsed Models keyed by the sha256 of their snapshot text.
// Models are immutable, so one entry may back any number of concurrent
// comparisons. A nil *ModelCache caches nothing.
type ModelCache struct {
	cache   *lru.LRU[string, *apimodel.Model]
	metrics *observability.Metrics
}

// NewModelCache creates a cache of at most size models, each expiring after
// ttl (0 means never). It returns nil when size is not positive.
func NewModelCache(size int, ttl time.Duration, metrics *observability.Metrics) *ModelCache {
	if size <= 0 {
		return nil
	}
	return &ModelCache{
		cache:   lru.NewLRU[string, *apimodel.Model](size, nil, ttl),
		metrics: metrics,
	}
}

// Key returns the cache key for snapshot text.
func Key(text []byte) string {
	sum := sha256.Sum256(text)
	return hex.EncodeToString(sum[:])
}

// Get returns the model cached for key.
func (c *ModelCache) Get(key string) (*apimodel.Model, bool) {
	if c == nil {
		return nil, false
	}
	m, ok := c.cache.Get(key)
	if c.metrics != nil {
		if ok {
			c.metrics.RecordCacheHit(cacheType)
		} else {
			c.metrics.RecordCacheMiss(cacheType)
		}
	}
	return m, ok
}

// Add stores a parsed model.
func (c *ModelCache) Add(key string, m *apimodel.Model) {
	if c == nil {
		return
	}
	c.cache.Add(key, m)
}

// Len returns the number of cached models.
func (c *ModelCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}

// Purge drops every cached model.
func (c *ModelCache) Purge() {
	if c == nil {
		return
	}
	c.cache.Purge()
}
