// Package delimited splits the lines of a stream into fields.
//
// A Reader consumes complete lines from a LineSource, such as a
// *codecstream.Stream, removes the line terminator and splits the rest on a
// separator. Fields are not unquoted and no type conversion takes place;
// column names and types are carried as configuration for the caller.
//
// Example usage:
//
//	s, err := codecstream.OpenPath(ctx, "users.tsv.gz", "r",
//	    codecstream.WithStore(st),
//	    codecstream.WithCodec(gzipcodec.New()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close(ctx)
//
//	r, err := delimited.New(s, delimited.WithSeparator('\t'), delimited.WithHeader())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for row, err := range r.Rows(ctx) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(r.Record(row)["email"])
//	}
package delimited

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"
)

// LineSource yields complete lines, terminator included, and io.EOF once
// exhausted.
type LineSource interface {
	ReadLine(ctx context.Context) ([]byte, error)
}

// ErrNoSource indicates no line source was provided.
var ErrNoSource = errors.New("delimited: no line source provided")

// Reader splits lines into fields. A Reader is not safe for concurrent use.
type Reader struct {
	src    LineSource
	sep    string
	cutset string

	columns     []string
	columnTypes []string
	hasHeader   bool
	headerDone  bool
}

// New creates a reader over src.
func New(src LineSource, opts ...Option) (*Reader, error) {
	if src == nil {
		return nil, ErrNoSource
	}

	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	cutset := cfg.terminator
	if cutset == "\n" {
		cutset = "\r\n"
	}

	return &Reader{
		src:         src,
		sep:         string(cfg.separator),
		cutset:      cutset,
		columns:     cfg.columns,
		columnTypes: cfg.columnTypes,
		hasHeader:   cfg.hasHeader && len(cfg.columns) == 0,
	}, nil
}

// Next returns the fields of the next row, or io.EOF when the source is
// exhausted. With WithHeader and no explicit columns, the first line is
// consumed into Columns before the first row is returned.
func (r *Reader) Next(ctx context.Context) ([]string, error) {
	if r.hasHeader && !r.headerDone {
		fields, err := r.next(ctx)
		if err != nil {
			return nil, err
		}
		r.columns = fields
		r.headerDone = true
	}
	return r.next(ctx)
}

func (r *Reader) next(ctx context.Context) ([]string, error) {
	line, err := r.src.ReadLine(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("reading line: %w", err)
	}
	return r.Split(string(line)), nil
}

// Split strips trailing terminator characters from line and splits it on
// the separator.
func (r *Reader) Split(line string) []string {
	return strings.Split(strings.TrimRight(line, r.cutset), r.sep)
}

// Rows returns an iterator over the remaining rows. Iteration stops after
// the first error, which is yielded.
func (r *Reader) Rows(ctx context.Context) iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		for {
			row, err := r.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(row, err) || err != nil {
				return
			}
		}
	}
}

// Columns returns the column names, either configured or read from the
// header line. It is nil when neither is available.
func (r *Reader) Columns() []string {
	return slices.Clone(r.columns)
}

// ColumnTypes returns the configured column types.
func (r *Reader) ColumnTypes() []string {
	return slices.Clone(r.columnTypes)
}

// Record maps column names to the fields of row. Fields beyond the known
// columns are dropped; missing fields map to "".
func (r *Reader) Record(row []string) map[string]string {
	rec := make(map[string]string, len(r.columns))
	for i, col := range r.columns {
		if i < len(row) {
			rec[col] = row[i]
		} else {
			rec[col] = ""
		}
	}
	return rec
}
