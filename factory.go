package codecstream

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/discochess/codecstream/internal/codec/codecs"
	"github.com/discochess/codecstream/internal/store"
)

// Factory opens path-based streams from one store, selecting the codec by
// name. A Factory is safe for concurrent use; the streams it returns are not.
type Factory struct {
	store  store.Store
	opts   []Option
	logger *zap.Logger
}

// NewFactory creates a factory opening objects from st. The options are
// applied to every stream before the per-call options.
func NewFactory(st store.Store, opts ...Option) (*Factory, error) {
	if st == nil {
		return nil, ErrNoStore
	}

	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	return &Factory{
		store:  st,
		opts:   opts,
		logger: cfg.logger,
	}, nil
}

// Open opens the named object with the codec registered as codecName
// ("none", "gzip", "zstd", "s2", "snappy", "xz").
func (f *Factory) Open(ctx context.Context, name, mode, codecName string, opts ...Option) (*Stream, error) {
	c, err := codecs.Lookup(codecName)
	if err != nil {
		return nil, err
	}

	all := slices.Clone(f.opts)
	all = append(all, WithStore(f.store), WithCodec(c))
	all = append(all, opts...)

	s, err := OpenPath(ctx, name, mode, all...)
	if err != nil {
		return nil, fmt.Errorf("opening %s stream: %w", c.Name(), err)
	}

	f.logger.Debug("factory opened stream",
		zap.String("name", name),
		zap.String("codec", c.Name()),
		zap.String("mode", mode),
	)
	return s, nil
}

// Store returns the storage backend used by this factory.
func (f *Factory) Store() store.Store {
	return f.store
}

// Close closes the underlying store.
func (f *Factory) Close() error {
	if err := f.store.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}
	return nil
}
