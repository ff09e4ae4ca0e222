package delimited_test

import (
	"context"
	"fmt"
	"log"

	"github.com/discochess/codecstream"
	"github.com/discochess/codecstream/delimited"
	"github.com/discochess/codecstream/internal/codec/gzipcodec"
	"github.com/discochess/codecstream/internal/store/memstore"
)

func Example() {
	ctx := context.Background()
	st := memstore.New()

	w, err := codecstream.OpenPath(ctx, "users.tsv.gz", "w",
		codecstream.WithStore(st),
		codecstream.WithCodec(gzipcodec.New()),
	)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := w.WriteText(ctx, "name\temail\nada\tada@example.com\n"); err != nil {
		log.Fatal(err)
	}
	if err := w.Close(ctx); err != nil {
		log.Fatal(err)
	}

	s, err := codecstream.OpenPath(ctx, "users.tsv.gz", "r",
		codecstream.WithStore(st),
		codecstream.WithCodec(gzipcodec.New()),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close(ctx)

	r, err := delimited.New(s, delimited.WithSeparator('\t'), delimited.WithHeader())
	if err != nil {
		log.Fatal(err)
	}
	for row, err := range r.Rows(ctx) {
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(r.Record(row)["email"])
	}
	// Output: ada@example.com
}
