package delimited_test

import (
	"context"
	"errors"
	"io"
	"slices"
	"testing"

	"github.com/discochess/codecstream"
	"github.com/discochess/codecstream/delimited"
	"github.com/discochess/codecstream/internal/codec/gzipcodec"
	"github.com/discochess/codecstream/internal/store/memstore"
)

// lineSlice serves preset lines.
type lineSlice struct {
	lines []string
	err   error
}

func (s *lineSlice) ReadLine(ctx context.Context) ([]byte, error) {
	if len(s.lines) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return []byte(line), nil
}

func readRows(t *testing.T, r *delimited.Reader) [][]string {
	t.Helper()
	var rows [][]string
	for row, err := range r.Rows(context.Background()) {
		if err != nil {
			t.Fatalf("Rows() error = %v", err)
		}
		rows = append(rows, row)
	}
	return rows
}

func TestNew_NilSource(t *testing.T) {
	if _, err := delimited.New(nil); !errors.Is(err, delimited.ErrNoSource) {
		t.Errorf("New(nil) error = %v, want ErrNoSource", err)
	}
}

func TestReader_Split(t *testing.T) {
	tests := []struct {
		name  string
		opts  []delimited.Option
		lines []string
		want  [][]string
	}{
		{
			name:  "defaults",
			lines: []string{"a,b,c\n", "d,e,f"},
			want:  [][]string{{"a", "b", "c"}, {"d", "e", "f"}},
		},
		{
			name:  "crlf",
			lines: []string{"a,b\r\n"},
			want:  [][]string{{"a", "b"}},
		},
		{
			name:  "tab separator",
			opts:  []delimited.Option{delimited.WithSeparator('\t')},
			lines: []string{"x\ty,z\n"},
			want:  [][]string{{"x", "y,z"}},
		},
		{
			name:  "pipe terminator",
			opts:  []delimited.Option{delimited.WithSeparator(';'), delimited.WithLineTerminator("|")},
			lines: []string{"1;2|"},
			want:  [][]string{{"1", "2"}},
		},
		{
			name:  "empty fields",
			lines: []string{",,\n", "\n"},
			want:  [][]string{{"", "", ""}, {""}},
		},
		{
			name:  "multibyte separator",
			opts:  []delimited.Option{delimited.WithSeparator('¦')},
			lines: []string{"ä¦ö\n"},
			want:  [][]string{{"ä", "ö"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := delimited.New(&lineSlice{lines: tt.lines}, tt.opts...)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			got := readRows(t, r)
			if !slices.EqualFunc(got, tt.want, slices.Equal[[]string]) {
				t.Errorf("rows = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReader_Header(t *testing.T) {
	src := &lineSlice{lines: []string{"id,name,email\n", "1,ann,a@x\n", "2,bo\n"}}
	r, err := delimited.New(src, delimited.WithHeader())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if r.Columns() != nil {
		t.Errorf("Columns() before reading = %q, want nil", r.Columns())
	}

	rows := readRows(t, r)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if !slices.Equal(r.Columns(), []string{"id", "name", "email"}) {
		t.Errorf("Columns() = %q", r.Columns())
	}

	rec := r.Record(rows[1])
	if rec["name"] != "bo" || rec["email"] != "" {
		t.Errorf("Record() = %v", rec)
	}
}

func TestReader_ExplicitColumnsKeepFirstLine(t *testing.T) {
	src := &lineSlice{lines: []string{"1,2\n", "3,4\n"}}
	r, err := delimited.New(src,
		delimited.WithHeader(),
		delimited.WithColumns("a", "b"),
		delimited.WithColumnTypes("int", "int"),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	rows := readRows(t, r)
	if len(rows) != 2 {
		t.Errorf("got %d rows, want 2", len(rows))
	}
	if !slices.Equal(r.ColumnTypes(), []string{"int", "int"}) {
		t.Errorf("ColumnTypes() = %q", r.ColumnTypes())
	}
	if got := r.Record(rows[0]); got["a"] != "1" || got["b"] != "2" {
		t.Errorf("Record() = %v", got)
	}
}

func TestReader_PropagatesError(t *testing.T) {
	boom := errors.New("read failed")
	r, err := delimited.New(&lineSlice{lines: []string{"a\n"}, err: boom})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	if _, err := r.Next(ctx); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if _, err := r.Next(ctx); !errors.Is(err, boom) {
		t.Errorf("Next() error = %v, want %v", err, boom)
	}
}

func TestReader_OverCompressedStream(t *testing.T) {
	mem := memstore.New()
	ctx := context.Background()

	w, err := codecstream.OpenPath(ctx, "people.csv.gz", "w",
		codecstream.WithStore(mem),
		codecstream.WithCodec(gzipcodec.New()),
	)
	if err != nil {
		t.Fatalf("OpenPath(w) error = %v", err)
	}
	if _, err := w.WriteText(ctx, "name|age\nada|36\ngrace|85"); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	if err := w.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s, err := codecstream.OpenPath(ctx, "people.csv.gz", "r",
		codecstream.WithStore(mem),
		codecstream.WithCodec(gzipcodec.New()),
		codecstream.WithBufferSize(4),
	)
	if err != nil {
		t.Fatalf("OpenPath(r) error = %v", err)
	}
	defer s.Close(ctx)

	r, err := delimited.New(s, delimited.WithSeparator('|'), delimited.WithHeader())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	rows := readRows(t, r)
	want := [][]string{{"ada", "36"}, {"grace", "85"}}
	if !slices.EqualFunc(rows, want, slices.Equal[[]string]) {
		t.Errorf("rows = %q, want %q", rows, want)
	}
	if !slices.Equal(r.Columns(), []string{"name", "age"}) {
		t.Errorf("Columns() = %q", r.Columns())
	}
}
