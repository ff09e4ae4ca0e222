package codecstream

import (
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"

	"github.com/discochess/codecstream/internal/codec"
	"github.com/discochess/codecstream/internal/codec/noopcodec"
	"github.com/discochess/codecstream/internal/stats"
	"github.com/discochess/codecstream/internal/store"
)

// DefaultBufferSize is the read size used when none is requested.
const DefaultBufferSize = 1024 * 1024

// Option configures a Stream.
type Option interface {
	apply(*options)
}

// options holds the stream configuration.
type options struct {
	bufferSize   int
	codec        codec.Codec
	compressor   codec.Compressor
	decompressor codec.Decompressor
	store        store.Store
	encoding     encoding.Encoding
	ignoreHeader bool
	stats        stats.Collector
	logger       *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		bufferSize: DefaultBufferSize,
		codec:      noopcodec.New(),
		encoding:   unicode.UTF8,
		stats:      stats.Discard,
		logger:     zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithBufferSize sets the default read size and the chunk size used for
// line reconstruction. Non-positive values keep DefaultBufferSize.
func WithBufferSize(n int) Option {
	return optionFunc(func(o *options) {
		if n > 0 {
			o.bufferSize = n
		}
	})
}

// WithCodec sets the codec used to build the stream's compressor and
// decompressor. If not set, data passes through uncompressed.
func WithCodec(c codec.Codec) Option {
	return optionFunc(func(o *options) {
		o.codec = c
	})
}

// WithCompressor sets an already-constructed compressor. It takes
// precedence over WithCodec for the write path.
func WithCompressor(c codec.Compressor) Option {
	return optionFunc(func(o *options) {
		o.compressor = c
	})
}

// WithDecompressor sets an already-constructed decompressor. It takes
// precedence over WithCodec for the read path.
func WithDecompressor(d codec.Decompressor) Option {
	return optionFunc(func(o *options) {
		o.decompressor = d
	})
}

// WithStore sets the store used to open path-based streams.
func WithStore(s store.Store) Option {
	return optionFunc(func(o *options) {
		o.store = s
	})
}

// WithEncoding sets the text encoding used in text mode.
// Default is UTF-8.
func WithEncoding(e encoding.Encoding) Option {
	return optionFunc(func(o *options) {
		o.encoding = e
	})
}

// WithIgnoreHeader makes line reads skip the first line of the stream.
// The skipped line is available from Header.
func WithIgnoreHeader() Option {
	return optionFunc(func(o *options) {
		o.ignoreHeader = true
	})
}

// WithStats sets the stats collector.
// If not set, or set to nil, metrics are discarded.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		if c != nil {
			o.stats = c
		}
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}
