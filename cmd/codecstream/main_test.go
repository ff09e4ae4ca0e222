package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCompressThenCat(t *testing.T) {
	dir := t.TempDir()
	content := "id,city\n1,Zürich\n2,Köln"
	if err := os.WriteFile(filepath.Join(dir, "plain.csv"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "compress", "--root", dir, "--from-codec", "none", "--codec", "zstd", "plain.csv", "out/data.csv.zst"); err != nil {
		t.Fatalf("compress error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "data.csv.zst")); err != nil {
		t.Fatalf("compressed object missing: %v", err)
	}

	out, err := execute(t, "cat", "--root", dir, "--codec", "zstd", "--skip-header=false", "out/data.csv.zst")
	if err != nil {
		t.Fatalf("cat error = %v", err)
	}
	if out != content {
		t.Errorf("cat = %q, want %q", out, content)
	}

	out, err = execute(t, "rows", "--root", dir, "--codec", "zstd", "--header", "--sep", ",", "out/data.csv.zst")
	if err != nil {
		t.Fatalf("rows error = %v", err)
	}
	want := "id=\"1\" city=\"Zürich\"\nid=\"2\" city=\"Köln\"\n"
	if out != want {
		t.Errorf("rows = %q, want %q", out, want)
	}

	out, err = execute(t, "verify", "--root", dir, "--codec", "zstd", "--all=false", "out/")
	if err != nil {
		t.Fatalf("verify error = %v", err)
	}
	if !strings.Contains(out, "All 1 objects verified") {
		t.Errorf("verify output = %q", out)
	}
}

func TestVerifyReportsCorruptObject(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.gz"), []byte("not gzip at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "verify", "--root", dir, "--codec", "gzip", "--all=false")
	if err == nil {
		t.Fatal("verify of corrupt object succeeded")
	}
	if !strings.Contains(out, "ERROR: bad.gz") {
		t.Errorf("verify output = %q", out)
	}
}

func TestParseSeparator(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{",", ',', false},
		{`\t`, '\t', false},
		{"|", '|', false},
		{"¦", '¦', false},
		{"ab", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseSeparator(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseSeparator(%q) = %q, %v; want %q, wantErr %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestFormatRow(t *testing.T) {
	if got := formatRow(nil, []string{"a", "b"}); got != "a\tb" {
		t.Errorf("formatRow() = %q", got)
	}
	if got := formatRow([]string{"x"}, []string{"1", "2"}); got != `x="1" 1="2"` {
		t.Errorf("formatRow() = %q", got)
	}
}

func TestBenchCodec(t *testing.T) {
	data := syntheticLines(10_000)
	r, err := benchCodec(context.Background(), "gzip", data, 2, nil)
	if err != nil {
		t.Fatalf("benchCodec() error = %v", err)
	}
	if len(r.read) != 2 || len(r.write) != 2 {
		t.Errorf("got %d read and %d write samples, want 2 each", len(r.read), len(r.write))
	}
	if r.compressed == 0 || r.compressed >= len(data) {
		t.Errorf("compressed size = %d for %d input bytes", r.compressed, len(data))
	}

	if err := benchCodecsValid([]string{"none", "bogus"}); err == nil {
		t.Error("benchCodecsValid() accepted an unknown codec")
	}

	var out bytes.Buffer
	writeReport(&out, int64(len(data)), []benchResult{r, r})
	if !strings.Contains(out.String(), "gzip") {
		t.Errorf("report = %q", out.String())
	}
}
