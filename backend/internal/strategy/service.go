package strategy

import (
	"context"
)

// Service is the cached front door to strategy resolution: cache hits
// return the shared immutable snapshot, misses resolve under
// single-flight and populate the cache.
type Service struct {
	cache    *Cache
	resolver *Resolver
}

// NewService wires a cache in front of a resolver. Both are built once
// at process start and injected wherever strategies are needed.
func NewService(cache *Cache, resolver *Resolver) *Service {
	return &Service{cache: cache, resolver: resolver}
}

// Resolve returns the strategy for key, computing it on miss.
func (s *Service) Resolve(ctx context.Context, key Key) (*StrategyResult, error) {
	return s.cache.GetOrCompute(ctx, key, func(ctx context.Context) (*StrategyResult, error) {
		return s.resolver.Resolve(ctx, key)
	})
}

// CacheStats exposes the cache counters for diagnostics endpoints.
func (s *Service) CacheStats() (hits, misses, evictions int64) {
	return s.cache.Stats()
}
