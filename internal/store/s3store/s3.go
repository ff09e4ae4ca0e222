// Package s3store implements an AWS S3 storage backend.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/discochess/codecstream/internal/handle"
	"github.com/discochess/codecstream/internal/store"
)

// Compile-time checks that Store implements store.Store and store.Lister.
var (
	_ store.Store  = (*Store)(nil)
	_ store.Lister = (*Store)(nil)
)

// API is the subset of the S3 client used by Store.
type API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// Store is an AWS S3 storage backend.
type Store struct {
	client API
	bucket string
	prefix string
}

// New creates a new S3 store.
// The bucket must already exist. Unless WithClient is given, one client is
// built from the default AWS configuration with the configured region and
// endpoint applied.
func New(ctx context.Context, bucketName string, opts ...Option) (*Store, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	client := o.client
	if client == nil {
		var err error
		if client, err = newClient(ctx, o); err != nil {
			return nil, err
		}
	}

	return &Store{
		client: client,
		bucket: bucketName,
		prefix: o.prefix,
	}, nil
}

func newClient(ctx context.Context, o options) (*s3.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
			so.UsePathStyle = true
		}
	}), nil
}

type options struct {
	prefix   string
	region   string
	endpoint string
	client   API
}

// Option configures a Store.
type Option func(*options)

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = strings.TrimSuffix(prefix, "/")
		if o.prefix != "" {
			o.prefix += "/"
		}
	}
}

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(o *options) {
		o.region = region
	}
}

// WithEndpoint sets a custom endpoint (for S3-compatible services like
// MinIO). Requests use path-style addressing.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
	}
}

// WithClient replaces the S3 client (for tests and custom configuration).
// Region and endpoint options are ignored.
func WithClient(client API) Option {
	return func(o *options) {
		o.client = client
	}
}

// Open opens an object. Reads stream the object body. Writes are buffered
// and uploaded with a single PutObject when the object is closed. The
// upload keeps the values of ctx but not its cancellation, so a request
// context that ends between the last write and Close does not abort it.
func (s *Store) Open(ctx context.Context, name string, write bool) (store.Object, error) {
	// Check for cancellation before starting.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if write {
		buf := &bytes.Buffer{}
		return &upload{IO: handle.FromIO(buf), buf: buf, store: s, ctx: context.WithoutCancel(ctx), key: s.key(name)}, nil
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	}

	result, err := s.client.GetObject(ctx, input)
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("reading object: %w", err)
	}
	return handle.FromIO(result.Body), nil
}

// List returns object names under the store prefix starting with prefix.
// Returned names are relative to the store prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix + prefix),
	})

	var names []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing objects: %w", err)
		}
		for _, obj := range page.Contents {
			names = append(names, strings.TrimPrefix(aws.ToString(obj.Key), s.prefix))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Close releases resources.
func (s *Store) Close() error {
	// S3 client doesn't need explicit closing.
	return nil
}

// key returns the full object key for a name.
func (s *Store) key(name string) string {
	return s.prefix + strings.TrimPrefix(name, "/")
}

// upload collects written bytes and puts them on Close.
type upload struct {
	*handle.IO
	buf   *bytes.Buffer
	store *Store
	ctx   context.Context
	key   string
}

func (u *upload) Close() error {
	_, err := u.store.client.PutObject(u.ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.store.bucket),
		Key:    aws.String(u.key),
		Body:   bytes.NewReader(u.buf.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("uploading object: %w", err)
	}
	return nil
}
