// Package codecstream exposes sequential, possibly-compressed byte streams
// as size-bounded and line-oriented sources and sinks.
//
// A Stream decompresses data read from its handle into an internal buffer
// and serves reads from that buffer, so callers never see compression
// chunk boundaries or raw read sizes. Writes are compressed before they
// reach the handle.
//
// Example usage:
//
//	st, err := diskstore.New("/var/log/app")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s, err := codecstream.OpenPath(ctx, "events.csv.gz", "r",
//	    codecstream.WithStore(st),
//	    codecstream.WithCodec(gzipcodec.New()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close(ctx)
//
//	for line, err := range s.Lines(ctx) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Print(string(line))
//	}
package codecstream

import (
	"context"
	"fmt"
	"slices"
	"unicode/utf8"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/discochess/codecstream/internal/codec"
	"github.com/discochess/codecstream/internal/handle"
	"github.com/discochess/codecstream/internal/stats"
	"github.com/discochess/codecstream/internal/store"
)

type state int

const (
	stateUnopened state = iota
	stateActive
	stateClosed
)

// Stream is a buffered codec stream bound to one handle and one
// compressor/decompressor pair.
//
// A Stream is not safe for concurrent use. Callers must not start an
// operation before the previous one has returned, and should not mix
// Read and ReadLine on the same stream.
type Stream struct {
	name  string
	mode  Mode
	cfg   options
	state state

	h     handle.Handle
	owned store.Object // set when the stream opened its own handle

	comp   codec.Compressor
	decomp codec.Decompressor
	text   *textCodec // nil in binary mode

	buf     []byte
	eof     bool
	flushed bool
	decoded int64

	// pending holds compressed bytes the handle has not accepted yet.
	// They are written ahead of any later output.
	pending []byte

	// Line reconstruction. The last entry of lines is the unterminated
	// tail and is only delivered once the source is exhausted.
	lines      [][]byte
	cursor     int
	linesDone  bool
	header     []byte
	headerRead bool
}

// New creates a stream over an already-open handle. The caller keeps
// ownership of h; Close never closes it.
func New(h handle.Handle, mode string, opts ...Option) (*Stream, error) {
	if h == nil {
		return nil, ErrNoHandle
	}
	s, err := newStream("", mode, opts)
	if err != nil {
		return nil, err
	}
	s.h = h
	s.state = stateActive
	return s, nil
}

// NewPath creates an unopened stream for the named object. Open must be
// called before the stream is used; the stream then owns the handle and
// closes it on Close.
func NewPath(name string, mode string, opts ...Option) (*Stream, error) {
	return newStream(name, mode, opts)
}

// OpenPath creates and opens a stream for the named object.
func OpenPath(ctx context.Context, name string, mode string, opts ...Option) (*Stream, error) {
	s, err := NewPath(name, mode, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Open(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Use opens s, calls fn and closes s, returning the combined error.
func Use(ctx context.Context, s *Stream, fn func(*Stream) error) (err error) {
	if err := s.Open(ctx); err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, s.Close(ctx))
	}()
	return fn(s)
}

func newStream(name, mode string, opts []Option) (*Stream, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}

	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	s := &Stream{
		name:    name,
		mode:    m,
		cfg:     cfg,
		flushed: true,
	}

	s.decomp = cfg.decompressor
	if s.decomp == nil {
		if s.decomp, err = cfg.codec.NewDecompressor(); err != nil {
			return nil, fmt.Errorf("creating decompressor: %w", err)
		}
	}
	if m.write {
		s.comp = cfg.compressor
		if s.comp == nil {
			if s.comp, err = cfg.codec.NewCompressor(); err != nil {
				return nil, fmt.Errorf("creating compressor: %w", err)
			}
		}
	}
	if !m.binary {
		s.text = newTextCodec(cfg.encoding)
	}

	return s, nil
}

// Open opens the stream's named object through the configured store. It is
// a no-op for streams that are already open.
func (s *Stream) Open(ctx context.Context) error {
	switch s.state {
	case stateActive:
		return nil
	case stateClosed:
		return ErrClosed
	}

	if s.cfg.store == nil {
		return fmt.Errorf("%w: a store is required to open %q", ErrMissingDependency, s.name)
	}

	obj, err := s.cfg.store.Open(ctx, s.name, s.mode.write)
	if err != nil {
		return fmt.Errorf("opening %q: %w", s.name, err)
	}

	s.h = obj
	s.owned = obj
	s.state = stateActive

	s.cfg.stats.IncCounter(stats.MetricStreamsOpen, 1)
	s.cfg.logger.Debug("stream opened",
		zap.String("name", s.name),
		zap.Stringer("mode", s.mode),
	)
	return nil
}

// Read returns up to n bytes of decoded content, or up to the configured
// buffer size when n <= 0. It pulls from the handle until n bytes are
// buffered or the source is exhausted. Once the source is exhausted and
// the buffer drained, Read returns an empty result and a nil error.
func (s *Stream) Read(ctx context.Context, n int) ([]byte, error) {
	if err := s.checkActive(); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = s.cfg.bufferSize
	}

	for len(s.buf) < n && !s.eof {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunk, err := s.h.Read(ctx, n)
		if err != nil {
			return nil, err
		}
		if err := s.ingest(chunk); err != nil {
			return nil, err
		}
	}

	return s.take(n), nil
}

// ReadText is Read returning a string.
func (s *Stream) ReadText(ctx context.Context, n int) (string, error) {
	b, err := s.Read(ctx, n)
	return string(b), err
}

// ingest decompresses one chunk into the buffer. An empty chunk marks the
// end of the source.
func (s *Stream) ingest(chunk []byte) error {
	atEOF := len(chunk) == 0

	var plain []byte
	if !atEOF {
		s.cfg.stats.IncCounter(stats.MetricSourceBytes, int64(len(chunk)))
		s.cfg.stats.ObserveHistogram(stats.MetricChunkSize, float64(len(chunk)))

		out, err := s.decomp.Decompress(chunk)
		if err != nil {
			return &CodecError{Op: "decompress", Err: err}
		}
		plain = out
	} else if f, ok := s.decomp.(codec.Flusher); ok {
		out, err := f.Flush()
		if err != nil {
			return &CodecError{Op: "flush decompressor", Err: err}
		}
		plain = out
	}

	if s.text != nil {
		out, err := s.text.decode(plain, atEOF)
		if err != nil {
			return &CodecError{Op: "decode text", Err: err}
		}
		plain = out
	}

	s.buf = append(s.buf, plain...)
	s.decoded += int64(len(plain))
	s.cfg.stats.IncCounter(stats.MetricDecodedBytes, int64(len(plain)))

	if atEOF {
		s.eof = true
		s.cfg.logger.Debug("source exhausted",
			zap.String("name", s.name),
			zap.Int64("decodedBytes", s.decoded),
		)
	}
	return nil
}

// take removes up to n bytes from the head of the buffer. In text mode the
// cut is moved back to a rune boundary unless that would return nothing.
func (s *Stream) take(n int) []byte {
	cut := min(n, len(s.buf))
	if s.text != nil && cut < len(s.buf) {
		back := cut
		for back > 0 && !utf8.RuneStart(s.buf[back]) {
			back--
		}
		if back > 0 {
			cut = back
		}
	}

	out := s.buf[:cut:cut]
	s.buf = s.buf[cut:]
	if len(s.buf) == 0 {
		s.buf = nil
	}
	return out
}

// Write compresses p and writes the result to the handle. It returns the
// number of compressed bytes the handle accepted, which is zero when the
// compressor buffered everything. In text mode p is UTF-8 text and is
// encoded first. Compressed bytes the handle rejects are kept and written
// first by the next Write, Flush or Close.
func (s *Stream) Write(ctx context.Context, p []byte) (int, error) {
	if err := s.checkActive(); err != nil {
		return 0, err
	}
	if !s.mode.write {
		return 0, ErrWriteNotSupported
	}

	s.flushed = false

	if s.text != nil {
		encoded, err := s.text.encode(p)
		if err != nil {
			return 0, &CodecError{Op: "encode text", Err: err}
		}
		p = encoded
	}

	out, err := s.comp.Compress(p)
	if err != nil {
		return 0, &CodecError{Op: "compress", Err: err}
	}
	return s.deliver(ctx, out)
}

// WriteText is Write taking a string.
func (s *Stream) WriteText(ctx context.Context, text string) (int, error) {
	return s.Write(ctx, []byte(text))
}

// Flush writes any data the compressor is holding back, after bytes an
// earlier handle write rejected. It is a no-op if nothing was written
// since the last successful flush.
func (s *Stream) Flush(ctx context.Context) error {
	if err := s.checkActive(); err != nil {
		return err
	}
	if s.flushed && len(s.pending) == 0 {
		return nil
	}

	var out []byte
	if f, ok := s.comp.(codec.Flusher); ok && !s.flushed {
		var err error
		if out, err = f.Flush(); err != nil {
			return &CodecError{Op: "flush compressor", Err: err}
		}
	}
	s.flushed = true

	_, err := s.deliver(ctx, out)
	return err
}

// Close flushes pending writes, finalizes the codecs, flushes the handle
// and closes it if the stream opened it. Every step is attempted even if
// an earlier one fails. Closing a closed stream is a no-op.
func (s *Stream) Close(ctx context.Context) error {
	switch s.state {
	case stateClosed:
		return nil
	case stateUnopened:
		s.state = stateClosed
		return nil
	}

	var err error
	if s.mode.write {
		err = multierr.Append(err, s.Flush(ctx))
	}

	if c, ok := s.decomp.(codec.DecompressCloser); ok {
		if cerr := c.Close(); cerr != nil {
			err = multierr.Append(err, &CodecError{Op: "close decompressor", Err: cerr})
		}
	}

	if s.mode.write {
		if c, ok := s.comp.(codec.CompressCloser); ok {
			trailer, cerr := c.Close()
			if cerr != nil {
				err = multierr.Append(err, &CodecError{Op: "close compressor", Err: cerr})
			}
			if len(trailer) > 0 {
				_, werr := s.deliver(ctx, trailer)
				err = multierr.Append(err, werr)
			}
		}
	}

	if f, ok := s.h.(handle.Flusher); ok {
		err = multierr.Append(err, f.Flush(ctx))
	}

	if s.owned != nil {
		err = multierr.Append(err, s.owned.Close())
	}

	s.state = stateClosed
	s.buf = nil
	s.lines = nil

	s.cfg.logger.Debug("stream closed",
		zap.String("name", s.name),
		zap.Bool("owned", s.owned != nil),
		zap.Error(err),
	)
	return err
}

// deliver writes pending bytes followed by out to the handle. Whatever the
// handle does not accept is copied into pending.
func (s *Stream) deliver(ctx context.Context, out []byte) (int, error) {
	if len(s.pending) > 0 {
		out = append(s.pending, out...)
		s.pending = nil
	}
	if len(out) == 0 {
		return 0, nil
	}
	n, err := s.writeHandle(ctx, out)
	if err != nil {
		s.pending = slices.Clone(out[min(max(n, 0), len(out)):])
	}
	return n, err
}

func (s *Stream) writeHandle(ctx context.Context, p []byte) (int, error) {
	n, err := s.h.Write(ctx, p)
	s.cfg.stats.IncCounter(stats.MetricSinkBytes, int64(n))
	return n, err
}

func (s *Stream) checkActive() error {
	switch s.state {
	case stateUnopened:
		return ErrNotOpen
	case stateClosed:
		return ErrClosed
	}
	return nil
}

// Name returns the object name of a path-based stream.
func (s *Stream) Name() string {
	return s.name
}

// Mode returns the stream's mode.
func (s *Stream) Mode() Mode {
	return s.mode
}

// Writable reports whether the stream accepts writes.
func (s *Stream) Writable() bool {
	return s.mode.write
}

// Binary reports whether the stream is in binary mode.
func (s *Stream) Binary() bool {
	return s.mode.binary
}
