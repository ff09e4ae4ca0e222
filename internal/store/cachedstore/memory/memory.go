// Package memory implements an in-memory cache backend.
package memory

import (
	"sync/atomic"

	"github.com/discochess/codecstream/internal/stats"
	"github.com/discochess/codecstream/internal/store/cachedstore"
	"github.com/discochess/codecstream/internal/store/cachedstore/cachestrategy"
)

// Compile-time check that Backend implements cachedstore.Backend.
var _ cachedstore.Backend = (*Backend)(nil)

// Backend keeps objects in process memory. Hits, misses and evictions
// are counted locally and reported to the collector; the entry count and
// byte total are reported as gauges after every change.
type Backend struct {
	strategy  cachestrategy.Strategy
	collector stats.Collector

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// New creates a new memory backend with the given eviction strategy.
// The collector is optional.
func New(strategy cachestrategy.Strategy, collector stats.Collector) *Backend {
	if collector == nil {
		collector = stats.Discard
	}
	return &Backend{
		strategy:  strategy,
		collector: collector,
	}
}

// Get retrieves object data from the cache.
func (b *Backend) Get(name string) ([]byte, bool) {
	if val, ok := b.strategy.Get(name); ok {
		b.hits.Add(1)
		b.collector.IncCounter(stats.MetricCacheHits, 1)
		return val, true
	}
	b.misses.Add(1)
	b.collector.IncCounter(stats.MetricCacheMisses, 1)
	return nil, false
}

// Set stores object data in the cache.
func (b *Backend) Set(name string, data []byte) {
	if b.strategy.Add(name, data) {
		b.evictions.Add(1)
		b.collector.IncCounter(stats.MetricCacheEvictions, 1)
	}
	b.report()
}

// Remove drops object data from the cache.
func (b *Backend) Remove(name string) {
	if b.strategy.Remove(name) {
		b.report()
	}
}

func (b *Backend) report() {
	b.collector.SetGauge(stats.MetricCacheSize, int64(b.strategy.Len()))
	b.collector.SetGauge(stats.MetricCacheBytes, b.strategy.Bytes())
}

// Stats returns current cache statistics.
func (b *Backend) Stats() cachedstore.Stats {
	return cachedstore.Stats{
		Hits:      b.hits.Load(),
		Misses:    b.misses.Load(),
		Evictions: b.evictions.Load(),
		Entries:   b.strategy.Len(),
		Bytes:     b.strategy.Bytes(),
	}
}
