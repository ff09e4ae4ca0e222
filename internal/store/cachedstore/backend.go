// Package cachedstore provides a caching wrapper for Store implementations.
package cachedstore

import (
	"fmt"

	"github.com/discochess/codecstream/internal/benchstat"
)

// Backend holds whole decoded-from-store objects keyed by name.
// Implementations choose where bytes live and which entries to evict.
type Backend interface {
	// Get returns the cached bytes of name, or false when absent.
	Get(name string) ([]byte, bool)

	// Set caches data under name. Backends may decline to keep it.
	Set(name string, data []byte)

	// Remove drops name from the cache.
	Remove(name string)

	// Stats reports the backend's counters.
	Stats() Stats
}

// Stats is a snapshot of cache activity.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
	Bytes     int64
}

// HitRate returns the cache hit rate as a percentage.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

func (s Stats) String() string {
	return fmt.Sprintf("%d entries (%s), %d hits, %d misses (%.1f%% hit rate), %d evictions",
		s.Entries, benchstat.FormatBytes(s.Bytes), s.Hits, s.Misses, s.HitRate(), s.Evictions)
}
