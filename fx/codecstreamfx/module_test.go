package codecstreamfx

import (
	"context"
	"testing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/discochess/codecstream"
)

func TestModule_WriteThenRead(t *testing.T) {
	for _, cacheSize := range []int{0, 4} {
		var factory *codecstream.Factory
		app := fxtest.New(t,
			fx.Supply(zap.NewNop(), Config{Root: t.TempDir(), CacheSize: cacheSize}),
			Module,
			fx.Populate(&factory),
		)
		app.RequireStart()

		ctx := context.Background()
		w, err := factory.Open(ctx, "nested/data.gz", "wb", "gzip")
		if err != nil {
			t.Fatalf("Open(w) error = %v", err)
		}
		if _, err := w.Write(ctx, []byte("payload")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if err := w.Close(ctx); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		r, err := factory.Open(ctx, "nested/data.gz", "rb", "gzip")
		if err != nil {
			t.Fatalf("Open(r) error = %v", err)
		}
		got, err := r.Read(ctx, 100)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if string(got) != "payload" {
			t.Errorf("Read() = %q, want %q (cache size %d)", got, "payload", cacheSize)
		}
		r.Close(ctx)

		app.RequireStop()
	}
}
