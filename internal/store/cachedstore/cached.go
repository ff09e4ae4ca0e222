package cachedstore

import (
	"bytes"
	"context"
	"errors"

	"github.com/discochess/codecstream/internal/handle"
	"github.com/discochess/codecstream/internal/store"
)

// ErrListUnsupported is returned by List when the wrapped store cannot list.
var ErrListUnsupported = errors.New("cachedstore: underlying store cannot list")

// readChunk is the read size used when filling the cache.
const readChunk = 256 * 1024

// Compile-time checks that Store implements store.Store and store.Lister.
var (
	_ store.Store  = (*Store)(nil)
	_ store.Lister = (*Store)(nil)
)

// Store wraps another Store with caching of whole objects.
// Reads of a cached object are served from memory; writes go to the
// underlying store and evict the object from the cache when committed.
type Store struct {
	underlying store.Store
	backend    Backend
}

// New creates a new cached store wrapping the given store.
func New(underlying store.Store, backend Backend) *Store {
	return &Store{
		underlying: underlying,
		backend:    backend,
	}
}

// Open opens an object, checking the cache first for reads.
func (s *Store) Open(ctx context.Context, name string, write bool) (store.Object, error) {
	if write {
		obj, err := s.underlying.Open(ctx, name, true)
		if err != nil {
			return nil, err
		}
		return &evictOnClose{Object: obj, store: s, name: name}, nil
	}

	// Check cache first.
	if data, ok := s.backend.Get(name); ok {
		return handle.FromIO(bytes.NewReader(data)), nil
	}

	// Cache miss - read the whole object from the underlying store.
	obj, err := s.underlying.Open(ctx, name, false)
	if err != nil {
		return nil, err
	}
	data, err := handle.ReadAll(ctx, obj, readChunk)
	if cerr := obj.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}

	// Cache the result.
	s.backend.Set(name, data)

	return handle.FromIO(bytes.NewReader(data)), nil
}

// List forwards to the underlying store if it supports listing.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	l, ok := s.underlying.(store.Lister)
	if !ok {
		return nil, ErrListUnsupported
	}
	return l.List(ctx, prefix)
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.underlying.Close()
}

// Stats returns cache statistics.
func (s *Store) Stats() Stats {
	return s.backend.Stats()
}

// evictOnClose drops a cached copy once a write is committed.
type evictOnClose struct {
	store.Object
	store *Store
	name  string
}

func (e *evictOnClose) Close() error {
	err := e.Object.Close()
	e.store.backend.Remove(e.name)
	return err
}
