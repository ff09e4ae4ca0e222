package codecstream

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Mode is a parsed mode string.
type Mode struct {
	raw    string
	write  bool
	binary bool
}

// ParseMode parses a mode string. A 'w' selects write capability and a 'b'
// selects binary mode; without 'b' the stream is in text mode. Every other
// rune is ignored, so "r", "a+" and "x" all open read-only text streams.
// Only a string that is not valid UTF-8 is rejected.
func ParseMode(s string) (Mode, error) {
	if !utf8.ValidString(s) {
		return Mode{}, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return Mode{
		raw:    s,
		write:  strings.ContainsRune(s, 'w'),
		binary: strings.ContainsRune(s, 'b'),
	}, nil
}

// Writable reports whether the mode permits writes.
func (m Mode) Writable() bool {
	return m.write
}

// Binary reports whether the mode is binary.
func (m Mode) Binary() bool {
	return m.binary
}

func (m Mode) String() string {
	return m.raw
}

// textCodec converts between a text encoding and UTF-8.
type textCodec struct {
	dec     transform.Transformer
	enc     *encoding.Encoder
	pending []byte // undecoded tail of the previous chunk
	dst     []byte
}

func newTextCodec(e encoding.Encoding) *textCodec {
	return &textCodec{
		dec: e.NewDecoder(),
		enc: encoding.ReplaceUnsupported(e.NewEncoder()),
		dst: make([]byte, 4096),
	}
}

// decode converts src to UTF-8. An incomplete sequence at the end of src is
// kept for the next call unless atEOF is set.
func (c *textCodec) decode(src []byte, atEOF bool) ([]byte, error) {
	if len(c.pending) > 0 {
		src = append(c.pending, src...)
		c.pending = nil
	}

	var out []byte
	for {
		nDst, nSrc, err := c.dec.Transform(c.dst, src, atEOF)
		out = append(out, c.dst[:nDst]...)
		src = src[nSrc:]

		switch {
		case err == nil:
			return out, nil
		case errors.Is(err, transform.ErrShortDst):
			if nDst == 0 && nSrc == 0 {
				c.dst = make([]byte, 2*len(c.dst))
			}
		case errors.Is(err, transform.ErrShortSrc):
			c.pending = bytes.Clone(src)
			return out, nil
		default:
			return out, err
		}
	}
}

// encode converts UTF-8 text to the configured encoding. Runes the encoding
// cannot represent are replaced.
func (c *textCodec) encode(p []byte) ([]byte, error) {
	return c.enc.Bytes(p)
}
