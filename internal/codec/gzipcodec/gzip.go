// Package gzipcodec provides a gzip compression codec.
package gzipcodec

import (
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/discochess/codecstream/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements gzip compression.
type Codec struct {
	level int
}

// New returns a new gzip codec using the default compression level.
func New() *Codec {
	return &Codec{level: gzip.DefaultCompression}
}

// NewLevel returns a gzip codec using the given compression level.
func NewLevel(level int) *Codec {
	return &Codec{level: level}
}

// Name returns "gzip".
func (c *Codec) Name() string {
	return "gzip"
}

// Extension returns "gz".
func (c *Codec) Extension() string {
	return "gz"
}

// NewCompressor returns a gzip compressor. Flush emits a sync block so
// everything written so far can be decoded; Close writes the gzip footer.
func (c *Codec) NewCompressor() (codec.Compressor, error) {
	return codec.NewWriterCompressor(func(w io.Writer) (io.WriteCloser, error) {
		return gzip.NewWriterLevel(w, c.level)
	})
}

// NewDecompressor returns a gzip decompressor. Concatenated members are
// decoded as one stream.
func (c *Codec) NewDecompressor() (codec.Decompressor, error) {
	return codec.NewReaderDecompressor(func(r io.Reader) (io.ReadCloser, error) {
		return gzip.NewReader(r)
	}), nil
}
