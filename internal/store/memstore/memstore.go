// Package memstore provides an in-memory store implementation for testing.
package memstore

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/discochess/codecstream/internal/handle"
	"github.com/discochess/codecstream/internal/store"
)

// Compile-time checks that Store implements store.Store and store.Lister.
var (
	_ store.Store  = (*Store)(nil)
	_ store.Lister = (*Store)(nil)
)

// Store is an in-memory store for testing.
type Store struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		objects: make(map[string][]byte),
	}
}

// SetObject sets the content of an object (for test setup).
// The data is copied to prevent caller mutations from affecting the store.
func (s *Store) SetObject(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = bytes.Clone(data)
}

// Object returns a copy of the named object's content.
func (s *Store) Object(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[name]
	return bytes.Clone(data), ok
}

// Open opens an object. Written objects become visible when closed.
func (s *Store) Open(ctx context.Context, name string, write bool) (store.Object, error) {
	if write {
		buf := &bytes.Buffer{}
		return &writer{IO: handle.FromIO(buf), buf: buf, store: s, name: name}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[name]
	if !ok {
		return nil, store.ErrNotFound
	}
	return handle.FromIO(bytes.NewReader(data)), nil
}

// List returns object names starting with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for name := range s.objects {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}

// writer buffers an object until Close commits it.
type writer struct {
	*handle.IO
	buf   *bytes.Buffer
	store *Store
	name  string
}

func (w *writer) Close() error {
	w.store.SetObject(w.name, w.buf.Bytes())
	return nil
}
