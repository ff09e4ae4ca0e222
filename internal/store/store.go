// Package store defines storage backends that open named objects as
// byte handles.
package store

import (
	"context"
	"errors"
	"io"

	"github.com/discochess/codecstream/internal/handle"
)

// ErrNotFound is returned when an object does not exist in the store.
var ErrNotFound = errors.New("store: object not found")

// Store defines the interface for storage backends.
// Implementations handle path formats and storage details internally.
// Objects are always opened as raw bytes.
type Store interface {
	// Open opens the named object. With write set the object is created or
	// replaced and the returned handle accepts writes; otherwise it is
	// opened for reading.
	Open(ctx context.Context, name string, write bool) (Object, error)

	// Close releases any resources held by the store.
	Close() error
}

// Object is an open stored object. Closing a written object commits it.
type Object interface {
	handle.Handle
	io.Closer
}

// Lister is implemented by stores that can enumerate their objects.
type Lister interface {
	// List returns the names of objects starting with prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
