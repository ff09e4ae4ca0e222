// Package codec provides incremental compression and decompression.
//
// A Compressor or Decompressor is fed arbitrary slices and returns whatever
// output is ready. Implementations may hold data back; the optional Flusher
// and closer capabilities release it.
package codec

import (
	"errors"
	"io"
)

// ErrUnknownCodec is returned when a codec name is not registered.
var ErrUnknownCodec = errors.New("codec: unknown codec")

// ErrFinished is returned when data is fed to a codec that was already
// flushed to completion or closed.
var ErrFinished = errors.New("codec: already finished")

// Compressor compresses plain bytes.
type Compressor interface {
	// Compress consumes p and returns the compressed bytes produced so far.
	// It may return an empty slice while input is buffered internally.
	Compress(p []byte) ([]byte, error)
}

// Decompressor decompresses bytes.
type Decompressor interface {
	// Decompress consumes p and returns the plain bytes produced so far.
	Decompress(p []byte) ([]byte, error)
}

// Flusher is implemented by compressors and decompressors that can emit
// output they are still holding.
type Flusher interface {
	Flush() ([]byte, error)
}

// CompressCloser is implemented by compressors that write a trailer when
// finalized.
type CompressCloser interface {
	Close() ([]byte, error)
}

// DecompressCloser is implemented by decompressors holding resources.
type DecompressCloser = io.Closer

// Codec builds compressor and decompressor pairs for one algorithm.
type Codec interface {
	// Name returns the registered name (e.g., "zstd", "gzip").
	Name() string
	// Extension returns the file extension without dot (e.g., "zst", "gz").
	// Returns empty string for no compression.
	Extension() string
	// NewCompressor returns a fresh compressor.
	NewCompressor() (Compressor, error)
	// NewDecompressor returns a fresh decompressor.
	NewDecompressor() (Decompressor, error)
}
