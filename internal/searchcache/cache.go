// Package searchcache caches ranked search results in Redis, keyed by a
// hash of the normalized query and limit. Lookups are single-flighted so a
// burst of identical cold queries computes once, and Redis calls run behind
// a circuit breaker so a sick cache degrades to plain engine searches
// instead of failing them.
package searchcache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/kwhittaker/estatesearch/internal/index/document"
	"github.com/kwhittaker/estatesearch/internal/index/tokenizer"
	"github.com/kwhittaker/estatesearch/pkg/config"
	"github.com/kwhittaker/estatesearch/pkg/metrics"
	pkgredis "github.com/kwhittaker/estatesearch/pkg/redis"
	"github.com/kwhittaker/estatesearch/pkg/resilience"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "search:"

// Store is the subset of the Redis client the cache depends on.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

var _ Store = (*pkgredis.Client)(nil)

// QueryCache is a read-through cache over the index engine's search.
type QueryCache struct {
	client  Store
	cfg     config.RedisConfig
	metrics *metrics.Metrics
	group   singleflight.Group
	breaker *resilience.CircuitBreaker
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a QueryCache over the given store. m may be nil to disable
// Prometheus counters; the Stats counts are always tracked.
func New(client Store, cfg config.RedisConfig, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		client:  client,
		cfg:     cfg,
		metrics: m,
		breaker: resilience.NewCircuitBreaker("search-cache", resilience.CircuitBreakerConfig{}),
		logger:  slog.Default().With("component", "query-cache"),
	}
}

// GetOrCompute returns the cached results for (query, limit) or runs
// compute, storing its result. The boolean reports a cache hit. Cache
// failures are absorbed; compute is the fallback on every path.
func (c *QueryCache) GetOrCompute(ctx context.Context, query string, limit int, compute func() []document.Doc) ([]document.Doc, bool) {
	if docs, ok := c.get(ctx, query, limit); ok {
		c.recordHit()
		return docs, true
	}
	c.recordMiss()

	key := c.buildKey(query, limit)
	val, _, _ := c.group.Do(key, func() (interface{}, error) {
		if docs, ok := c.get(ctx, query, limit); ok {
			return docs, nil
		}
		docs := compute()
		c.set(ctx, key, docs)
		return docs, nil
	})
	return val.([]document.Doc), false
}

// Invalidate drops every cached search result. Called by the change stream
// after the index mutates.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	var deleted int64
	err := c.breaker.Execute(func() error {
		var err error
		deleted, err = c.client.FlushByPattern(ctx, keyPrefix+"*")
		return err
	})
	if err != nil {
		return fmt.Errorf("invalidating query cache: %w", err)
	}
	c.logger.Debug("query cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns hit and miss counts since process start.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) recordHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

func (c *QueryCache) get(ctx context.Context, query string, limit int) ([]document.Doc, bool) {
	key := c.buildKey(query, limit)
	var data string
	var found bool
	err := c.breaker.Execute(func() error {
		var err error
		data, err = c.client.Get(ctx, key)
		if pkgredis.IsNilError(err) {
			found = false
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil || !found {
		return nil, false
	}
	var docs []document.Doc
	if err := json.Unmarshal([]byte(data), &docs); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return nil, false
	}
	return docs, true
}

func (c *QueryCache) set(ctx context.Context, key string, docs []document.Doc) {
	data, err := json.Marshal(docs)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Execute(func() error {
		return c.client.Set(ctx, key, data, c.cfg.CacheTTL)
	})
	if err != nil {
		c.logger.Debug("cache set failed", "key", key, "error", err)
	}
}

// buildKey hashes the normalized query so arbitrary user input never lands
// in a Redis key verbatim.
func (c *QueryCache) buildKey(query string, limit int) string {
	raw := fmt.Sprintf("%s:limit=%d", tokenizer.Normalize(query), limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
