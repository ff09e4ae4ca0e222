package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/discochess/codecstream"
	"github.com/discochess/codecstream/internal/benchstat"
	"github.com/discochess/codecstream/internal/codec/codecs"
	"github.com/discochess/codecstream/internal/store/memstore"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure codec throughput through the stream layer",
	Long: `Write and read back synthetic line data through in-memory streams with
each codec, then report throughput statistics.

The first codec listed is the baseline that the others are compared to.

Examples:
  codecstream bench --codecs none,gzip,zstd --size 8388608 --runs 10`,
	RunE: runBench,
}

var (
	benchCodecs []string
	benchSize   int
	benchRuns   int
)

func init() {
	benchCmd.Flags().StringSliceVar(&benchCodecs, "codecs", []string{"none", "gzip", "zstd", "s2", "xz"}, "codecs to measure")
	benchCmd.Flags().IntVar(&benchSize, "size", 4<<20, "bytes of synthetic data per run")
	benchCmd.Flags().IntVar(&benchRuns, "runs", 5, "runs per codec")
	rootCmd.AddCommand(benchCmd)
}

// benchResult holds the measurements for one codec.
type benchResult struct {
	codec      string
	compressed int
	write      []float64 // MiB/s
	read       []float64 // MiB/s
}

func runBench(cmd *cobra.Command, args []string) error {
	if err := benchCodecsValid(benchCodecs); err != nil {
		return err
	}

	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	data := syntheticLines(benchSize)
	opts, err := streamOptions(e)
	if err != nil {
		return err
	}

	var results []benchResult
	for _, name := range benchCodecs {
		r, err := benchCodec(ctx, name, data, benchRuns, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		results = append(results, r)
	}

	writeReport(cmd.OutOrStdout(), int64(len(data)), results)
	return nil
}

func benchCodec(ctx context.Context, name string, data []byte, runs int, opts []codecstream.Option) (benchResult, error) {
	res := benchResult{codec: name}
	mem := memstore.New()
	f, err := codecstream.NewFactory(mem, opts...)
	if err != nil {
		return res, err
	}

	var writes, reads []time.Duration
	for range runs {
		start := time.Now()
		w, err := f.Open(ctx, "bench", "wb", name)
		if err != nil {
			return res, err
		}
		for chunk := range slices.Chunk(data, 64<<10) {
			if _, err := w.Write(ctx, chunk); err != nil {
				return res, err
			}
		}
		if err := w.Close(ctx); err != nil {
			return res, err
		}
		writes = append(writes, time.Since(start))

		start = time.Now()
		r, err := f.Open(ctx, "bench", "rb", name)
		if err != nil {
			return res, err
		}
		var n int
		for line, err := range r.Lines(ctx) {
			if err != nil {
				r.Close(ctx)
				return res, err
			}
			n += len(line)
		}
		if err := r.Close(ctx); err != nil {
			return res, err
		}
		reads = append(reads, time.Since(start))

		if n != len(data) {
			return res, fmt.Errorf("read back %d bytes, want %d", n, len(data))
		}
	}

	stored, _ := mem.Object("bench")
	res.compressed = len(stored)
	res.write = benchstat.Throughput(int64(len(data)), writes)
	res.read = benchstat.Throughput(int64(len(data)), reads)
	return res, nil
}

func writeReport(w io.Writer, size int64, results []benchResult) {
	fmt.Fprintf(w, "Input: %s per run\n\n", benchstat.FormatBytes(size))
	fmt.Fprintf(w, "%-8s %10s %7s %14s %14s %14s %12s\n",
		"codec", "stored", "ratio", "write MiB/s", "read MiB/s", "read p90", "vs baseline")

	for i, r := range results {
		ws := benchstat.Describe(r.write)
		rs := benchstat.Describe(r.read)

		vs := "-"
		if i > 0 {
			c := benchstat.Compare(r.read, results[0].read)
			vs = fmt.Sprintf("%+.0f%% (%s)", c.MeanDiffPct, c.Effect)
		}

		ratio := 0.0
		if r.compressed > 0 {
			ratio = float64(size) / float64(r.compressed)
		}
		fmt.Fprintf(w, "%-8s %10s %7.2f %8.1f±%-5.1f %8.1f±%-5.1f %14.1f %12s\n",
			r.codec, benchstat.FormatBytes(int64(r.compressed)), ratio,
			ws.Mean, ws.StdDev, rs.Mean, rs.StdDev, rs.P90, vs)
	}
}

// syntheticLines returns about size bytes of CSV-like lines with enough
// repetition to be compressible.
func syntheticLines(size int) []byte {
	var b bytes.Buffer
	b.Grow(size + 64)
	for i := 0; b.Len() < size; i++ {
		b.WriteString(strconv.Itoa(i))
		b.WriteString(",user-")
		b.WriteString(strconv.Itoa(i % 997))
		b.WriteString(",event-")
		b.WriteString(strconv.Itoa(i % 13))
		b.WriteString(",")
		b.WriteString(strconv.FormatInt(int64(i)*7919%100000, 10))
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// benchCodecsValid reports an error for unknown codec names before any
// measurement starts.
func benchCodecsValid(names []string) error {
	for _, n := range names {
		if _, err := codecs.Lookup(n); err != nil {
			return err
		}
	}
	return nil
}
