package codecstream

import (
	"context"
	"errors"
	"io"
	"iter"

	"github.com/discochess/codecstream/internal/stats"
)

// ReadLine returns the next line including its terminator. The final line
// of a stream lacking a trailing terminator is returned as-is. ReadLine
// returns io.EOF when no lines remain.
//
// A line may span any number of underlying reads. "\n", "\r\n" and "\r"
// all terminate a line.
func (s *Stream) ReadLine(ctx context.Context) ([]byte, error) {
	if s.cfg.ignoreHeader && !s.headerRead {
		header, err := s.nextLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.headerRead = true
			}
			return nil, err
		}
		s.header = header
		s.headerRead = true
	}

	line, err := s.nextLine(ctx)
	if err != nil {
		return nil, err
	}
	s.cfg.stats.IncCounter(stats.MetricLines, 1)
	return line, nil
}

// Lines returns an iterator over the remaining lines. Iteration stops after
// the first error, which is yielded.
func (s *Stream) Lines(ctx context.Context) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			line, err := s.ReadLine(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(line, err) || err != nil {
				return
			}
		}
	}
}

// Header returns the line skipped by WithIgnoreHeader, or nil if it has not
// been read yet.
func (s *Stream) Header() []byte {
	return s.header
}

func (s *Stream) nextLine(ctx context.Context) ([]byte, error) {
	if err := s.checkActive(); err != nil {
		return nil, err
	}

	for {
		if s.cursor < len(s.lines)-1 {
			line := s.lines[s.cursor]
			s.cursor++
			return line, nil
		}
		if s.linesDone {
			return nil, io.EOF
		}

		var tail []byte
		if s.cursor < len(s.lines) {
			tail = s.lines[s.cursor]
		}

		chunk, err := s.Read(ctx, s.cfg.bufferSize)
		if err != nil {
			return nil, err
		}

		if len(chunk) == 0 {
			s.linesDone = true
			s.lines = nil
			s.cursor = 0
			if len(tail) > 0 {
				return tail, nil
			}
			return nil, io.EOF
		}

		data := chunk
		if len(tail) > 0 {
			data = make([]byte, 0, len(tail)+len(chunk))
			data = append(data, tail...)
			data = append(data, chunk...)
		}
		s.lines = splitLines(data)
		s.cursor = 0
	}
}

// splitLines splits data after each terminator. The last element holds the
// bytes after the final terminator and may be empty. A '\r' ending data is
// kept in the last element since a '\n' may follow in the next chunk.
func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\n':
			lines = append(lines, data[start:i+1:i+1])
			start = i + 1
		case '\r':
			if i+1 == len(data) {
				continue
			}
			if data[i+1] == '\n' {
				i++
			}
			lines = append(lines, data[start:i+1:i+1])
			start = i + 1
		}
	}
	return append(lines, data[start:len(data):len(data)])
}
