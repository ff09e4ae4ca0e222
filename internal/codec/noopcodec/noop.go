// Package noopcodec provides a no-op codec (no compression).
package noopcodec

import (
	"github.com/discochess/codecstream/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements no compression.
type Codec struct{}

// New returns a new no-op codec.
func New() *Codec {
	return &Codec{}
}

// Name returns "none".
func (c *Codec) Name() string {
	return "none"
}

// Extension returns empty string.
func (c *Codec) Extension() string {
	return ""
}

// NewCompressor returns a compressor that passes bytes through.
func (c *Codec) NewCompressor() (codec.Compressor, error) {
	return passthrough{}, nil
}

// NewDecompressor returns a decompressor that passes bytes through.
func (c *Codec) NewDecompressor() (codec.Decompressor, error) {
	return passthrough{}, nil
}

// passthrough holds nothing back, so it has neither Flush nor Close.
type passthrough struct{}

func (passthrough) Compress(p []byte) ([]byte, error)   { return p, nil }
func (passthrough) Decompress(p []byte) ([]byte, error) { return p, nil }
