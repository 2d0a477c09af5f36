package strategy

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"ad-rewriter/backend/pkg/logger"
)

// ComputeFunc resolves a strategy on cache miss.
type ComputeFunc func(ctx context.Context) (*StrategyResult, error)

// Cache is a capacity-bounded LRU of resolved strategies keyed by
// (platform, audience, intent, category). Concurrent misses on the same
// key are collapsed with single-flight: exactly one caller runs the
// compute function and the rest share its result, so identical requests
// arriving together cost one graph round trip. Entries never expire;
// staleness is resolved by restart or re-population.
type Cache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List // front = most recently used
	flight   singleflight.Group
	logger   *zap.Logger

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

type cacheEntry struct {
	key   string
	value *StrategyResult
}

// NewCache creates a cache holding at most capacity entries.
func NewCache(capacity int) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
		logger:   logger.Get(),
	}
}

// Get returns the cached result for key, marking it recently used.
func (c *Cache) Get(key Key) (*StrategyResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key.String()]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.order.MoveToFront(elem)
	c.hits.Add(1)
	return elem.Value.(*cacheEntry).value, true
}

// GetOrCompute returns the cached result for key, or computes it under
// single-flight. A cache hit never invokes compute; on a concurrent
// miss, at most one caller per key runs compute and all callers share
// its result or error. Errors are not cached.
func (c *Cache) GetOrCompute(ctx context.Context, key Key, compute ComputeFunc) (*StrategyResult, error) {
	if result, ok := c.Get(key); ok {
		return result, nil
	}

	value, err, shared := c.flight.Do(key.String(), func() (interface{}, error) {
		// Double-check inside the flight: a previous winner may have
		// populated the slot while this caller waited.
		if result, ok := c.Get(key); ok {
			return result, nil
		}
		result, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.add(key, result)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("Strategy computation shared across concurrent callers",
			zap.String("key", key.String()))
	}
	return value.(*StrategyResult), nil
}

// add inserts or replaces the slot for key, evicting the least recently
// used entry when over capacity. Replacement is an atomic slot swap; a
// result already handed to a caller is never mutated.
func (c *Cache) add(key Key, value *StrategyResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ks := key.String()
	if elem, ok := c.items[ks]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}

	elem := c.order.PushFront(&cacheEntry{key: ks, value: value})
	c.items[ks] = elem

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		entry := oldest.Value.(*cacheEntry)
		c.order.Remove(oldest)
		delete(c.items, entry.key)
		c.evictions.Add(1)
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns cumulative hit/miss/eviction counters.
func (c *Cache) Stats() (hits, misses, evictions int64) {
	return c.hits.Load(), c.misses.Load(), c.evictions.Load()
}
