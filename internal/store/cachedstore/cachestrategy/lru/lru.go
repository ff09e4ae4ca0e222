// Package lru implements an LRU cache eviction strategy for whole objects.
package lru

import (
	"sync"

	"github.com/discochess/codecstream/internal/store/cachedstore/cachestrategy"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Compile-time check that Strategy implements cachestrategy.Strategy.
var _ cachestrategy.Strategy = (*Strategy)(nil)

// Strategy evicts the least recently used object when either the object
// count or the optional byte budget is exceeded.
type Strategy struct {
	cache    *lru.Cache[string, []byte]
	maxBytes int64

	mu    sync.Mutex
	bytes int64
}

// New creates an LRU strategy holding at most capacity objects.
func New(capacity int) (*Strategy, error) {
	return NewWithMaxBytes(capacity, 0)
}

// NewWithMaxBytes creates an LRU strategy holding at most capacity objects
// totalling at most maxBytes. A maxBytes of zero disables the byte budget.
// Objects larger than maxBytes are never cached.
func NewWithMaxBytes(capacity int, maxBytes int64) (*Strategy, error) {
	s := &Strategy{maxBytes: maxBytes}
	c, err := lru.NewWithEvict[string, []byte](capacity, s.onEvict)
	if err != nil {
		return nil, err
	}
	s.cache = c
	return s, nil
}

func (s *Strategy) onEvict(_ string, value []byte) {
	s.mu.Lock()
	s.bytes -= int64(len(value))
	s.mu.Unlock()
}

// Get retrieves an object by name.
func (s *Strategy) Get(key string) ([]byte, bool) {
	return s.cache.Get(key)
}

// Add caches an object, evicting older ones as needed. It reports whether
// an eviction occurred.
func (s *Strategy) Add(key string, value []byte) bool {
	size := int64(len(value))
	if s.maxBytes > 0 && size > s.maxBytes {
		s.cache.Remove(key)
		return false
	}

	// Replacing an entry fires no eviction callback.
	if old, ok := s.cache.Peek(key); ok {
		s.mu.Lock()
		s.bytes -= int64(len(old))
		s.mu.Unlock()
	}

	evicted := s.cache.Add(key, value)
	s.mu.Lock()
	s.bytes += size
	s.mu.Unlock()

	for s.maxBytes > 0 && s.Bytes() > s.maxBytes {
		if _, _, ok := s.cache.RemoveOldest(); !ok {
			break
		}
		evicted = true
	}
	return evicted
}

// Remove drops an object from the cache.
func (s *Strategy) Remove(key string) bool {
	return s.cache.Remove(key)
}

// Len returns the number of cached objects.
func (s *Strategy) Len() int {
	return s.cache.Len()
}

// Bytes returns the total size of the cached objects.
func (s *Strategy) Bytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bytes
}
