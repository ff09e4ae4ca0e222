// Package zstdcodec provides a zstd compression codec.
package zstdcodec

import (
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/discochess/codecstream/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements zstd compression.
type Codec struct {
	level zstd.EncoderLevel
}

// New returns a new zstd codec.
func New() *Codec {
	return &Codec{level: zstd.SpeedDefault}
}

// NewLevel returns a zstd codec using the given encoder level.
func NewLevel(level zstd.EncoderLevel) *Codec {
	return &Codec{level: level}
}

// Name returns "zstd".
func (c *Codec) Name() string {
	return "zstd"
}

// Extension returns "zst".
func (c *Codec) Extension() string {
	return "zst"
}

// NewCompressor returns a zstd compressor.
func (c *Codec) NewCompressor() (codec.Compressor, error) {
	return codec.NewWriterCompressor(func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w,
			zstd.WithEncoderLevel(c.level),
			zstd.WithEncoderConcurrency(1),
		)
	})
}

// NewDecompressor returns a zstd decompressor.
func (c *Codec) NewDecompressor() (codec.Decompressor, error) {
	return codec.NewReaderDecompressor(func(r io.Reader) (io.ReadCloser, error) {
		decoder, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		return decoder.IOReadCloser(), nil
	}), nil
}
