//go:build e2e

package codecstream_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/discochess/codecstream"
	"github.com/discochess/codecstream/internal/codec/codecs"
	"github.com/discochess/codecstream/internal/store/cachedstore"
	"github.com/discochess/codecstream/internal/store/cachedstore/cachestrategy/lru"
	"github.com/discochess/codecstream/internal/store/cachedstore/memory"
	"github.com/discochess/codecstream/internal/store/diskstore"
)

const e2eLines = 500_000

func e2eLine(i int) string {
	return fmt.Sprintf("%d,session-%d,%s\n", i, i%4099, time.Unix(int64(i), 0).UTC().Format(time.RFC3339))
}

func TestE2E_LargeObjects(t *testing.T) {
	dir := t.TempDir()
	disk, err := diskstore.New(dir)
	if err != nil {
		t.Fatalf("diskstore.New() error = %v", err)
	}
	strategy, err := lru.New(4)
	if err != nil {
		t.Fatalf("lru.New() error = %v", err)
	}
	st := cachedstore.New(disk, memory.New(strategy, nil))
	ctx := context.Background()

	for _, name := range codecs.Names() {
		t.Run(name, func(t *testing.T) {
			c, _ := codecs.Lookup(name)
			object := "events." + name

			start := time.Now()
			w, err := codecstream.OpenPath(ctx, object, "w", codecstream.WithStore(st), codecstream.WithCodec(c))
			if err != nil {
				t.Fatalf("OpenPath(w) error = %v", err)
			}
			for i := range e2eLines {
				if _, err := w.WriteText(ctx, e2eLine(i)); err != nil {
					t.Fatalf("WriteText() error = %v", err)
				}
			}
			if err := w.Close(ctx); err != nil {
				t.Fatalf("Close() error = %v", err)
			}
			t.Logf("wrote %d lines in %v", e2eLines, time.Since(start))

			// Read twice; the second pass is served from the cache.
			for pass := range 2 {
				c, _ := codecs.Lookup(name)
				start = time.Now()
				r, err := codecstream.OpenPath(ctx, object, "r",
					codecstream.WithStore(st),
					codecstream.WithCodec(c),
					codecstream.WithBufferSize(64<<10),
				)
				if err != nil {
					t.Fatalf("OpenPath(r) error = %v", err)
				}
				i := 0
				for line, err := range r.Lines(ctx) {
					if err != nil {
						t.Fatalf("Lines() error = %v", err)
					}
					if want := e2eLine(i); string(line) != want {
						t.Fatalf("line %d = %q, want %q", i, line, want)
					}
					i++
				}
				r.Close(ctx)
				if i != e2eLines {
					t.Fatalf("read %d lines, want %d", i, e2eLines)
				}
				t.Logf("pass %d read in %v", pass, time.Since(start))
			}
		})
	}

	// Output must be readable by the reference zstd decoder.
	f, err := os.Open(filepath.Join(dir, "events.zstd"))
	if err != nil {
		t.Fatalf("opening zstd object: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd.NewReader() error = %v", err)
	}
	defer dec.Close()
	data, err := io.ReadAll(dec)
	if err != nil {
		t.Fatalf("decoding zstd object: %v", err)
	}
	if n := bytes.Count(data, []byte("\n")); n != e2eLines {
		t.Errorf("zstd object has %d lines, want %d", n, e2eLines)
	}
}
