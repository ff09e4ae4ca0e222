// Package codecs resolves codec names to implementations.
package codecs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/discochess/codecstream/internal/codec"
	"github.com/discochess/codecstream/internal/codec/gzipcodec"
	"github.com/discochess/codecstream/internal/codec/noopcodec"
	"github.com/discochess/codecstream/internal/codec/s2codec"
	"github.com/discochess/codecstream/internal/codec/xzcodec"
	"github.com/discochess/codecstream/internal/codec/zstdcodec"
)

var registry = map[string]func() codec.Codec{
	"none":   func() codec.Codec { return noopcodec.New() },
	"gzip":   func() codec.Codec { return gzipcodec.New() },
	"zstd":   func() codec.Codec { return zstdcodec.New() },
	"s2":     func() codec.Codec { return s2codec.New() },
	"snappy": func() codec.Codec { return s2codec.New(s2codec.WithSnappy()) },
	"xz":     func() codec.Codec { return xzcodec.New() },
}

// aliases maps alternative spellings to registered names.
var aliases = map[string]string{
	"":    "none",
	"raw": "none",
	"gz":  "gzip",
	"zst": "zstd",
}

// Lookup returns a new codec registered under name. Names are case-insensitive.
func Lookup(name string) (codec.Codec, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	newCodec, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", codec.ErrUnknownCodec, name)
	}
	return newCodec(), nil
}

// Names returns the registered codec names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
