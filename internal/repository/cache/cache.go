// Package cache implements the keyed result cache: content-addressed
// get/set/invalidate over canonicalized parameter objects, with per-entry
// hit counting and logical TTL expiry. Store unavailability never fails
// the caller; every operation degrades to a miss or a no-op.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/svbuh/product-search-with-cache/internal/db"
)

// store is the consumer interface for the cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	DelMulti(ctx context.Context, keys []string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Entry is the stored envelope around a cached payload. The TTL is
// configuration, not entry state: expiry is computed from Timestamp, so an
// entry the store still reports as present is treated as absent once its
// age exceeds the configured TTL.
type Entry[T any] struct {
	Data      T     `json:"data"`
	Timestamp int64 `json:"timestamp"` // unix milliseconds at write
	Hits      int64 `json:"hits"`
}

// Cache is a namespaced result cache over a key-value store.
type Cache struct {
	store      store
	prefix     string
	ttl        time.Duration
	opTimeout  time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a cache. cacheTotal is a counter vec with labels
// "namespace" and "result" ("hit"/"miss"), passed explicitly.
func New(
	s store,
	prefix string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Cache {
	return &Cache{
		store:      s,
		prefix:     prefix,
		ttl:        ttl,
		opTimeout:  2 * time.Second,
		cacheTotal: cacheTotal,
		logger:     logger,
		now:        time.Now,
	}
}

// WithOpTimeout overrides the per-operation store timeout.
func (c *Cache) WithOpTimeout(d time.Duration) *Cache {
	if d > 0 {
		c.opTimeout = d
	}
	return c
}

// Get returns the cached payload for the canonicalized params, or absent.
// A hit increments the entry's hit counter and refreshes the store-level
// expiry window. A structurally corrupt or logically expired entry is
// deleted and reported as a miss. Store failures degrade to a miss.
func (c *Cache) Get(ctx context.Context, namespace string, params any) ([]byte, bool) {
	key, err := deriveKey(c.prefix, namespace, params)
	if err != nil {
		c.logger.Warn("Failed to derive cache key", zap.String("namespace", namespace), zap.Error(err))
		return nil, false
	}

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Cache store get failed", zap.String("key", key), zap.Error(err))
		}
		c.count(namespace, "miss")
		return nil, false
	}

	var entry Entry[json.RawMessage]
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.logger.Warn("Corrupt cache entry, deleting", zap.String("key", key), zap.Error(err))
		c.delete(ctx, key)
		c.count(namespace, "miss")
		return nil, false
	}

	if c.expired(entry.Timestamp) {
		c.delete(ctx, key)
		c.count(namespace, "miss")
		return nil, false
	}

	c.touch(ctx, key, entry)
	c.count(namespace, "hit")
	return entry.Data, true
}

// Set stores the payload unconditionally, resetting the hit counter and
// the write timestamp. Store failures degrade to a no-op.
func (c *Cache) Set(ctx context.Context, namespace string, params any, payload []byte) {
	key, err := deriveKey(c.prefix, namespace, params)
	if err != nil {
		c.logger.Warn("Failed to derive cache key", zap.String("namespace", namespace), zap.Error(err))
		return
	}

	entry := Entry[json.RawMessage]{
		Data:      payload,
		Timestamp: c.now().UnixMilli(),
		Hits:      0,
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn("Failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.store.SetWithTTL(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("Cache store set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate removes the one entry derived from params, or, when params is
// nil, every key under the namespace. Store failures degrade to a no-op.
func (c *Cache) Invalidate(ctx context.Context, namespace string, params any) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if params != nil {
		key, err := deriveKey(c.prefix, namespace, params)
		if err != nil {
			c.logger.Warn("Failed to derive cache key", zap.String("namespace", namespace), zap.Error(err))
			return
		}
		c.delete(ctx, key)
		return
	}

	keys, err := c.store.Scan(ctx, c.prefix+namespace+":*")
	if err != nil {
		c.logger.Warn("Cache namespace scan failed", zap.String("namespace", namespace), zap.Error(err))
		return
	}
	if err := c.store.DelMulti(ctx, keys); err != nil {
		c.logger.Warn("Cache namespace invalidation failed", zap.String("namespace", namespace), zap.Error(err))
	}
}

// KeyHits pairs a store key with its advisory hit count.
type KeyHits struct {
	Key  string `json:"key"`
	Hits int64  `json:"hits"`
}

// Stats summarizes the cache key space.
type Stats struct {
	TotalKeys int       `json:"totalKeys"`
	TopKeys   []KeyHits `json:"topKeys"`
}

// statsSampleLimit bounds how many entries Stats inspects for hit counts.
const statsSampleLimit = 100

// Stats reports the total key count and the most-read entries, sampled
// from the first keys the scan returns. Unreadable entries are skipped.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	keys, err := c.store.Scan(ctx, c.prefix+"*")
	if err != nil {
		return Stats{}, err
	}

	sample := keys
	if len(sample) > statsSampleLimit {
		sample = sample[:statsSampleLimit]
	}

	top := make([]KeyHits, 0, len(sample))
	for _, key := range sample {
		raw, err := c.store.Get(ctx, key)
		if err != nil {
			continue
		}
		var entry Entry[json.RawMessage]
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		top = append(top, KeyHits{Key: key, Hits: entry.Hits})
	}

	sort.Slice(top, func(i, j int) bool { return top[i].Hits > top[j].Hits })
	if len(top) > 10 {
		top = top[:10]
	}

	return Stats{TotalKeys: len(keys), TopKeys: top}, nil
}

func (c *Cache) expired(timestamp int64) bool {
	age := c.now().UnixMilli() - timestamp
	return age > c.ttl.Milliseconds()
}

// touch increments the hit counter and refreshes the store expiry window.
// The write timestamp is preserved: logical expiry counts from creation.
// Lost increments under concurrent reads are acceptable.
func (c *Cache) touch(ctx context.Context, key string, entry Entry[json.RawMessage]) {
	entry.Hits++
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := c.store.SetWithTTL(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("Cache hit-count update failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) delete(ctx context.Context, key string) {
	if err := c.store.Del(ctx, key); err != nil {
		c.logger.Warn("Cache delete failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) count(namespace, result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(namespace, result).Inc()
	}
}
