// Package gcsstore implements a Google Cloud Storage backend.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/discochess/codecstream/internal/handle"
	"github.com/discochess/codecstream/internal/store"
)

// Compile-time checks that Store implements store.Store and store.Lister.
var (
	_ store.Store  = (*Store)(nil)
	_ store.Lister = (*Store)(nil)
)

// Store reads and uploads objects in one bucket.
type Store struct {
	client *storage.Client
	bucket *storage.BucketHandle
	cfg    config
}

type config struct {
	prefix        string
	chunkSize     int
	contentType   string
	clientOptions []option.ClientOption
}

// Option configures a Store.
type Option func(*config)

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(c *config) {
		c.prefix = strings.TrimSuffix(prefix, "/")
		if c.prefix != "" {
			c.prefix += "/"
		}
	}
}

// WithEndpoint points the client at a custom endpoint, such as a local
// emulator. Requests to it are unauthenticated.
func WithEndpoint(endpoint string) Option {
	return func(c *config) {
		c.clientOptions = append(c.clientOptions,
			option.WithEndpoint(endpoint),
			option.WithoutAuthentication(),
		)
	}
}

// WithUploadChunkSize sets the buffer size of resumable uploads.
// Zero uploads each object in a single request.
func WithUploadChunkSize(n int) Option {
	return func(c *config) {
		c.chunkSize = n
	}
}

// WithContentType sets the content type recorded on uploaded objects.
// Compressed objects are stored as-is, without a Content-Encoding.
func WithContentType(contentType string) Option {
	return func(c *config) {
		c.contentType = contentType
	}
}

// New creates a new GCS store.
// The bucket must already exist.
func New(ctx context.Context, bucketName string, opts ...Option) (*Store, error) {
	cfg := config{chunkSize: -1}
	for _, opt := range opts {
		opt(&cfg)
	}

	client, err := storage.NewClient(ctx, cfg.clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}
	return &Store{
		client: client,
		bucket: client.Bucket(bucketName),
		cfg:    cfg,
	}, nil
}

// Open opens an object for streaming reads, or starts a streaming upload.
// An upload is committed when the returned object is closed; cancelling
// ctx before then abandons it.
func (s *Store) Open(ctx context.Context, name string, write bool) (store.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	obj := s.bucket.Object(s.key(name))

	if write {
		w := obj.NewWriter(ctx)
		if s.cfg.chunkSize >= 0 {
			w.ChunkSize = s.cfg.chunkSize
		}
		w.ContentType = s.cfg.contentType
		return handle.FromIO(w), nil
	}

	reader, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("opening gs://%s/%s: %w", obj.BucketName(), obj.ObjectName(), err)
	}
	return handle.FromIO(reader), nil
}

// List returns object names under the store prefix starting with prefix.
// Returned names are relative to the store prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	query := &storage.Query{Prefix: s.cfg.prefix + prefix}
	if err := query.SetAttrSelection([]string{"Name"}); err != nil {
		return nil, err
	}

	var names []string
	it := s.bucket.Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing objects: %w", err)
		}
		names = append(names, strings.TrimPrefix(attrs.Name, s.cfg.prefix))
	}
	slices.Sort(names)
	return names, nil
}

// Close releases the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(name string) string {
	return s.cfg.prefix + strings.TrimPrefix(name, "/")
}
