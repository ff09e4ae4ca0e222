// Package s2codec provides an S2 compression codec. The stream format is
// readable by Snappy framed-stream decoders when written with WithSnappy.
package s2codec

import (
	"io"

	"github.com/klauspost/compress/s2"

	"github.com/discochess/codecstream/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements S2 stream compression.
type Codec struct {
	snappy bool
}

// Option configures a Codec.
type Option func(*Codec)

// WithSnappy makes the compressor emit Snappy-compatible frames.
func WithSnappy() Option {
	return func(c *Codec) {
		c.snappy = true
	}
}

// New returns a new S2 codec.
func New(opts ...Option) *Codec {
	c := &Codec{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns "s2", or "snappy" for the Snappy-compatible variant.
func (c *Codec) Name() string {
	if c.snappy {
		return "snappy"
	}
	return "s2"
}

// Extension returns "s2" or "sz".
func (c *Codec) Extension() string {
	if c.snappy {
		return "sz"
	}
	return "s2"
}

// NewCompressor returns an S2 compressor.
func (c *Codec) NewCompressor() (codec.Compressor, error) {
	return codec.NewWriterCompressor(func(w io.Writer) (io.WriteCloser, error) {
		opts := []s2.WriterOption{s2.WriterConcurrency(1)}
		if c.snappy {
			opts = append(opts, s2.WriterSnappyCompat())
		}
		return s2.NewWriter(w, opts...), nil
	})
}

// NewDecompressor returns an S2 decompressor. It also reads Snappy frames.
func (c *Codec) NewDecompressor() (codec.Decompressor, error) {
	return codec.NewReaderDecompressor(func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(s2.NewReader(r)), nil
	}), nil
}
