package codecstream

import (
	"bytes"
	"context"
	"errors"

	"github.com/discochess/codecstream/internal/codec"
	"github.com/discochess/codecstream/internal/store"
)

// spyHandle serves preset chunks and records what happens to it.
type spyHandle struct {
	chunks  [][]byte
	readErr error

	written  bytes.Buffer
	writeErr error
	flushes  int
	closes   int
	events   *[]string
}

func newSpyHandle(chunks ...string) *spyHandle {
	h := &spyHandle{events: new([]string)}
	for _, c := range chunks {
		h.chunks = append(h.chunks, []byte(c))
	}
	return h
}

func (h *spyHandle) record(event string) {
	*h.events = append(*h.events, event)
}

func (h *spyHandle) Read(ctx context.Context, n int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if h.readErr != nil {
		return nil, h.readErr
	}
	if len(h.chunks) == 0 {
		return nil, nil
	}
	c := h.chunks[0]
	if len(c) > n {
		h.chunks[0] = c[n:]
		return c[:n], nil
	}
	h.chunks = h.chunks[1:]
	return c, nil
}

func (h *spyHandle) Write(ctx context.Context, p []byte) (int, error) {
	h.record("write:" + string(p))
	if h.writeErr != nil {
		return 0, h.writeErr
	}
	return h.written.Write(p)
}

func (h *spyHandle) Flush(ctx context.Context) error {
	h.record("handle-flush")
	h.flushes++
	return nil
}

func (h *spyHandle) Close() error {
	h.record("handle-close")
	h.closes++
	return nil
}

// spyStore hands out spy handles and counts opens.
type spyStore struct {
	handles map[string]*spyHandle
	opens   int
}

func (s *spyStore) Open(ctx context.Context, name string, write bool) (store.Object, error) {
	h, ok := s.handles[name]
	if !ok {
		return nil, store.ErrNotFound
	}
	s.opens++
	return h, nil
}

func (s *spyStore) Close() error {
	return nil
}

// holdingCompressor buffers everything until Flush and writes a trailer
// on Close. It upper-cases data so tests can tell it ran.
type holdingCompressor struct {
	held   []byte
	events *[]string
}

func (c *holdingCompressor) Compress(p []byte) ([]byte, error) {
	c.held = append(c.held, bytes.ToUpper(p)...)
	return nil, nil
}

func (c *holdingCompressor) Flush() ([]byte, error) {
	*c.events = append(*c.events, "compressor-flush")
	out := c.held
	c.held = nil
	return out, nil
}

func (c *holdingCompressor) Close() ([]byte, error) {
	*c.events = append(*c.events, "compressor-close")
	return []byte("<EOF>"), nil
}

// closingDecompressor records Close calls.
type closingDecompressor struct {
	events *[]string
}

func (d *closingDecompressor) Decompress(p []byte) ([]byte, error) {
	return p, nil
}

func (d *closingDecompressor) Close() error {
	*d.events = append(*d.events, "decompressor-close")
	return nil
}

// failingDecompressor rejects all input.
type failingDecompressor struct{}

var errCorrupt = errors.New("corrupt input")

func (failingDecompressor) Decompress(p []byte) ([]byte, error) {
	return nil, errCorrupt
}

// Compile-time checks for the fakes.
var (
	_ store.Object           = (*spyHandle)(nil)
	_ store.Store            = (*spyStore)(nil)
	_ codec.Flusher          = (*holdingCompressor)(nil)
	_ codec.CompressCloser   = (*holdingCompressor)(nil)
	_ codec.DecompressCloser = (*closingDecompressor)(nil)
)
