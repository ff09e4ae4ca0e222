// Package xzcodec provides an xz compression codec.
package xzcodec

import (
	"io"

	"github.com/ulikunitz/xz"

	"github.com/discochess/codecstream/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements xz compression.
type Codec struct{}

// New returns a new xz codec.
func New() *Codec {
	return &Codec{}
}

// Name returns "xz".
func (c *Codec) Name() string {
	return "xz"
}

// Extension returns "xz".
func (c *Codec) Extension() string {
	return "xz"
}

// NewCompressor returns an xz compressor. The xz writer cannot flush a
// partial block, so output only appears once enough input has been
// buffered or the compressor is closed.
func (c *Codec) NewCompressor() (codec.Compressor, error) {
	return codec.NewWriterCompressor(func(w io.Writer) (io.WriteCloser, error) {
		return xz.NewWriter(w)
	})
}

// NewDecompressor returns an xz decompressor.
func (c *Codec) NewDecompressor() (codec.Decompressor, error) {
	return codec.NewReaderDecompressor(func(r io.Reader) (io.ReadCloser, error) {
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xr), nil
	}), nil
}
