package gcsstore

import "testing"

func TestOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want config
	}{
		{
			name: "prefix gains slash",
			opts: []Option{WithPrefix("logs")},
			want: config{prefix: "logs/"},
		},
		{
			name: "prefix keeps single slash",
			opts: []Option{WithPrefix("a/b/")},
			want: config{prefix: "a/b/"},
		},
		{
			name: "empty prefix",
			opts: []Option{WithPrefix("")},
			want: config{},
		},
		{
			name: "upload settings",
			opts: []Option{WithUploadChunkSize(0), WithContentType("text/csv")},
			want: config{contentType: "text/csv"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got config
			for _, opt := range tt.opts {
				opt(&got)
			}
			if got.prefix != tt.want.prefix || got.chunkSize != tt.want.chunkSize || got.contentType != tt.want.contentType {
				t.Errorf("config = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWithEndpoint(t *testing.T) {
	var c config
	WithEndpoint("http://localhost:4443/storage/v1/")(&c)
	if len(c.clientOptions) != 2 {
		t.Errorf("got %d client options, want endpoint and no-auth", len(c.clientOptions))
	}
}

func TestStore_key(t *testing.T) {
	tests := []struct {
		prefix string
		name   string
		want   string
	}{
		{"", "logs/a.csv.gz", "logs/a.csv.gz"},
		{"", "/logs/a.csv.gz", "logs/a.csv.gz"},
		{"data/v1/", "a.zst", "data/v1/a.zst"},
	}

	for _, tt := range tests {
		s := &Store{cfg: config{prefix: tt.prefix}}
		if got := s.key(tt.name); got != tt.want {
			t.Errorf("key(%q) with prefix %q = %q, want %q", tt.name, tt.prefix, got, tt.want)
		}
	}
}
