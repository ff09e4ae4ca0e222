// Package handle defines the byte source and sink a stream reads from and
// writes to.
package handle

import (
	"context"
	"errors"
	"io"
)

// ErrUnsupported is returned by adapters when the wrapped value lacks the
// requested direction (e.g., Write on a read-only source).
var ErrUnsupported = errors.New("handle: operation not supported")

// Handle is an open byte source and/or sink.
type Handle interface {
	// Read returns up to n bytes. An empty result with a nil error signals
	// that the source is exhausted.
	Read(ctx context.Context, n int) ([]byte, error)

	// Write writes p and returns the number of bytes accepted.
	Write(ctx context.Context, p []byte) (int, error)
}

// Flusher is implemented by handles that buffer writes.
type Flusher interface {
	Flush(ctx context.Context) error
}

// FromIO adapts an io.Reader, io.Writer or both (files, sockets, buffers)
// to a Handle. Flush is forwarded when v has a Flush() error method and
// Close when v is an io.Closer.
func FromIO(v any) *IO {
	h := &IO{v: v}
	h.r, _ = v.(io.Reader)
	h.w, _ = v.(io.Writer)
	return h
}

// IO is a Handle backed by standard io interfaces.
type IO struct {
	v any
	r io.Reader
	w io.Writer
}

// Compile-time checks that IO implements the handle capabilities.
var (
	_ Handle    = (*IO)(nil)
	_ Flusher   = (*IO)(nil)
	_ io.Closer = (*IO)(nil)
)

// Read reads up to n bytes, retrying reads that return nothing. io.EOF is
// reported as an empty result.
func (h *IO) Read(ctx context.Context, n int) ([]byte, error) {
	if h.r == nil {
		return nil, ErrUnsupported
	}
	buf := make([]byte, n)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, err := h.r.Read(buf)
		if m > 0 {
			return buf[:m:m], nil
		}
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// Write writes p to the wrapped writer.
func (h *IO) Write(ctx context.Context, p []byte) (int, error) {
	if h.w == nil {
		return 0, ErrUnsupported
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return h.w.Write(p)
}

// Flush flushes the wrapped writer if it supports flushing.
func (h *IO) Flush(ctx context.Context) error {
	if f, ok := h.v.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close closes the wrapped value if it is an io.Closer.
func (h *IO) Close() error {
	if c, ok := h.v.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ReadAll reads from h in chunks of n bytes until it is exhausted.
func ReadAll(ctx context.Context, h Handle, n int) ([]byte, error) {
	var out []byte
	for {
		b, err := h.Read(ctx, n)
		if err != nil {
			return out, err
		}
		if len(b) == 0 {
			return out, nil
		}
		out = append(out, b...)
	}
}
