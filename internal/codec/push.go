package codec

import (
	"bytes"
	"errors"
	"io"
	"sync"
)

// errDecompressorClosed unblocks a decoder that is abandoned mid-stream.
var errDecompressorClosed = errors.New("codec: decompressor closed")

// WriterCompressor adapts a streaming compression writer to Compressor.
// The writer's output is collected and handed back from each call.
type WriterCompressor struct {
	buf    bytes.Buffer
	w      io.WriteCloser
	closed bool
}

// Compile-time checks that WriterCompressor implements the capabilities.
var (
	_ Compressor     = (*WriterCompressor)(nil)
	_ Flusher        = (*WriterCompressor)(nil)
	_ CompressCloser = (*WriterCompressor)(nil)
)

// NewWriterCompressor returns a compressor built on the writer returned by
// newWriter.
func NewWriterCompressor(newWriter func(io.Writer) (io.WriteCloser, error)) (*WriterCompressor, error) {
	c := &WriterCompressor{}
	w, err := newWriter(&c.buf)
	if err != nil {
		return nil, err
	}
	c.w = w
	return c, nil
}

// Compress writes p to the underlying writer.
func (c *WriterCompressor) Compress(p []byte) ([]byte, error) {
	if c.closed {
		return nil, ErrFinished
	}
	if _, err := c.w.Write(p); err != nil {
		return nil, err
	}
	return c.drain(), nil
}

// Flush emits pending compressed data if the writer supports flushing.
// Writers without a Flush method only emit data on Close.
func (c *WriterCompressor) Flush() ([]byte, error) {
	if c.closed {
		return nil, nil
	}
	if f, ok := c.w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return nil, err
		}
	}
	return c.drain(), nil
}

// Close finalizes the stream and returns the trailer.
func (c *WriterCompressor) Close() ([]byte, error) {
	if c.closed {
		return nil, nil
	}
	c.closed = true
	if err := c.w.Close(); err != nil {
		return nil, err
	}
	return c.drain(), nil
}

func (c *WriterCompressor) drain() []byte {
	if c.buf.Len() == 0 {
		return nil
	}
	out := bytes.Clone(c.buf.Bytes())
	c.buf.Reset()
	return out
}

// ReaderDecompressor adapts a pull-based decompression reader to
// Decompressor. Input is fed to the decoder through a pipe; a goroutine
// drains decoded output into a buffer handed back on each call.
type ReaderDecompressor struct {
	newReader func(io.Reader) (io.ReadCloser, error)

	pw       *io.PipeWriter
	done     chan struct{}
	started  bool
	finished bool

	mu  sync.Mutex
	out bytes.Buffer
	err error
}

// Compile-time checks that ReaderDecompressor implements the capabilities.
var (
	_ Decompressor     = (*ReaderDecompressor)(nil)
	_ Flusher          = (*ReaderDecompressor)(nil)
	_ DecompressCloser = (*ReaderDecompressor)(nil)
)

// NewReaderDecompressor returns a decompressor built on the reader returned
// by newReader. The reader is created lazily on the first Decompress call.
func NewReaderDecompressor(newReader func(io.Reader) (io.ReadCloser, error)) *ReaderDecompressor {
	return &ReaderDecompressor{newReader: newReader}
}

// Decompress feeds p to the decoder and returns the output decoded so far.
// Output may lag behind input; Flush returns the remainder.
func (d *ReaderDecompressor) Decompress(p []byte) ([]byte, error) {
	if d.finished {
		return nil, ErrFinished
	}
	if !d.started {
		d.start()
	}
	if _, err := d.pw.Write(p); err != nil {
		out, derr := d.drain()
		if derr != nil {
			return out, derr
		}
		return out, err
	}
	return d.drain()
}

// Flush signals end of input, waits for the decoder to finish and returns
// the remaining output. Truncated input surfaces as the decoder's error.
func (d *ReaderDecompressor) Flush() ([]byte, error) {
	if d.finished || !d.started {
		d.finished = true
		return nil, nil
	}
	d.finished = true
	d.pw.Close()
	<-d.done
	return d.drain()
}

// Close abandons decoding and releases the decoder goroutine.
func (d *ReaderDecompressor) Close() error {
	if d.started && !d.finished {
		d.pw.CloseWithError(errDecompressorClosed)
		<-d.done
	}
	d.finished = true
	return nil
}

func (d *ReaderDecompressor) start() {
	pr, pw := io.Pipe()
	d.pw = pw
	d.done = make(chan struct{})
	d.started = true
	go d.run(pr)
}

func (d *ReaderDecompressor) run(pr *io.PipeReader) {
	defer close(d.done)

	r, err := d.newReader(pr)
	if err == nil {
		_, err = io.Copy(lockedWriter{d}, r)
		if cerr := r.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil && !errors.Is(err, errDecompressorClosed) {
		d.mu.Lock()
		d.err = err
		d.mu.Unlock()
	}
	if err == nil {
		// Data written after the end of the compressed stream is rejected.
		err = io.ErrClosedPipe
	}
	pr.CloseWithError(err)
}

func (d *ReaderDecompressor) drain() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []byte
	if d.out.Len() > 0 {
		out = bytes.Clone(d.out.Bytes())
		d.out.Reset()
	}
	return out, d.err
}

type lockedWriter struct {
	d *ReaderDecompressor
}

func (w lockedWriter) Write(p []byte) (int, error) {
	w.d.mu.Lock()
	defer w.d.mu.Unlock()
	return w.d.out.Write(p)
}
