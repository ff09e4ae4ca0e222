package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/discochess/codecstream"
	"github.com/discochess/codecstream/internal/stats"
	logstats "github.com/discochess/codecstream/internal/stats/logger"
	promstats "github.com/discochess/codecstream/internal/stats/prometheus"
	"github.com/discochess/codecstream/internal/store"
	"github.com/discochess/codecstream/internal/store/cachedstore"
	"github.com/discochess/codecstream/internal/store/cachedstore/cachestrategy/lru"
	"github.com/discochess/codecstream/internal/store/cachedstore/memory"
	"github.com/discochess/codecstream/internal/store/diskstore"
	"github.com/discochess/codecstream/internal/store/gcsstore"
	"github.com/discochess/codecstream/internal/store/s3store"
)

var (
	// Global flags.
	rootDir      string
	codecName    string
	storeKind    string
	bucket       string
	prefix       string
	region       string
	endpoint     string
	bufferSize   int
	cacheSize    int
	cacheBytes   int64
	encodingName string
	showMetrics  bool
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "codecstream",
	Short: "Read and write compressed line-oriented objects",
	Long: `Codecstream reads and writes objects compressed with gzip, zstd, s2,
snappy or xz, stored on disk, in Google Cloud Storage or in S3.

The codec is always given explicitly with --codec; it is never guessed
from the object name.

Examples:
  # Print a gzip-compressed log
  codecstream cat --codec gzip logs/app.log.gz

  # Recompress an object from gzip to zstd
  codecstream compress --from-codec gzip --codec zstd logs/app.log.gz logs/app.log.zst

  # Print the rows of a tab-separated file in S3
  codecstream rows --store s3 --bucket data --sep '\t' --header users.tsv

  # Check every zstd object under a prefix
  codecstream verify --codec zstd logs/`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&rootDir, "root", "d", ".", "root directory for the disk store")
	flags.StringVarP(&codecName, "codec", "c", "none", "codec: none, gzip, zstd, s2, snappy, xz")
	flags.StringVar(&storeKind, "store", "disk", "storage backend: disk, gcs, s3")
	flags.StringVar(&bucket, "bucket", "", "bucket name for gcs and s3 stores")
	flags.StringVar(&prefix, "prefix", "", "key prefix for gcs and s3 stores")
	flags.StringVar(&region, "region", "", "AWS region for the s3 store")
	flags.StringVar(&endpoint, "endpoint", "", "custom endpoint, e.g. an S3-compatible service or a GCS emulator")
	flags.IntVar(&bufferSize, "buffer-size", codecstream.DefaultBufferSize, "read size in bytes")
	flags.IntVar(&cacheSize, "cache-size", 0, "number of objects to cache in memory (0 disables)")
	flags.Int64Var(&cacheBytes, "cache-bytes", 0, "total bytes the object cache may hold (0 for no limit)")
	flags.StringVar(&encodingName, "encoding", "", "text encoding of the objects, e.g. ISO-8859-1 (default UTF-8)")
	flags.BoolVar(&showMetrics, "metrics", false, "print stream metrics to stderr on exit")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// env holds what every subcommand needs to open streams.
type env struct {
	logger   *zap.Logger
	registry *prometheus.Registry
	stats    stats.Collector
	counts   *logstats.Collector
	cache    *cachedstore.Store
	store    store.Store
	factory  *codecstream.Factory
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// setup builds the logger, the metrics collector, the store and the
// factory from the global flags.
func setup(ctx context.Context) (*env, error) {
	log, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	e := &env{
		logger:   log,
		registry: prometheus.NewRegistry(),
	}
	prom := promstats.New(e.registry, promstats.WithConstLabels(prometheus.Labels{"store": storeKind}))
	e.stats = prom
	if verbose {
		e.counts = logstats.New(log.Named("stats"))
		e.stats = stats.Multi(prom, e.counts)
	}

	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	if cacheSize > 0 {
		strategy, err := lru.NewWithMaxBytes(cacheSize, cacheBytes)
		if err != nil {
			return nil, err
		}
		e.cache = cachedstore.New(st, memory.New(strategy, e.stats))
		st = e.cache
	}
	e.store = st

	opts, err := streamOptions(e)
	if err != nil {
		return nil, err
	}
	if e.factory, err = codecstream.NewFactory(st, opts...); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *env) close() error {
	if showMetrics {
		printMetrics(e.registry)
	}
	if e.counts != nil {
		e.counts.Flush()
	}
	if e.cache != nil {
		e.logger.Info("object cache", zap.Stringer("stats", e.cache.Stats()))
	}
	err := e.factory.Close()
	_ = e.logger.Sync()
	return err
}

func openStore(ctx context.Context) (store.Store, error) {
	switch storeKind {
	case "disk":
		return diskstore.New(rootDir)
	case "gcs":
		if bucket == "" {
			return nil, fmt.Errorf("--bucket is required for the gcs store")
		}
		opts := []gcsstore.Option{gcsstore.WithPrefix(prefix)}
		if endpoint != "" {
			opts = append(opts, gcsstore.WithEndpoint(endpoint))
		}
		return gcsstore.New(ctx, bucket, opts...)
	case "s3":
		if bucket == "" {
			return nil, fmt.Errorf("--bucket is required for the s3 store")
		}
		opts := []s3store.Option{s3store.WithPrefix(prefix)}
		if region != "" {
			opts = append(opts, s3store.WithRegion(region))
		}
		if endpoint != "" {
			opts = append(opts, s3store.WithEndpoint(endpoint))
		}
		return s3store.New(ctx, bucket, opts...)
	default:
		return nil, fmt.Errorf("unknown store: %s", storeKind)
	}
}

func streamOptions(e *env) ([]codecstream.Option, error) {
	opts := []codecstream.Option{
		codecstream.WithBufferSize(bufferSize),
		codecstream.WithStats(e.stats),
		codecstream.WithLogger(e.logger.Named("codecstream")),
	}
	if encodingName != "" {
		enc, err := lookupEncoding(encodingName)
		if err != nil {
			return nil, err
		}
		opts = append(opts, codecstream.WithEncoding(enc))
	}
	return opts, nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("encoding %q is not supported", name)
	}
	return enc, nil
}

// readMode returns the mode for reading: text when an encoding is set so
// output is transcoded to UTF-8, binary otherwise.
func readMode() string {
	if encodingName != "" {
		return "r"
	}
	return "rb"
}

func printMetrics(reg *prometheus.Registry) {
	families, err := reg.Gather()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gathering metrics: %v\n", err)
		return
	}
	sort.Slice(families, func(i, j int) bool {
		return families[i].GetName() < families[j].GetName()
	})
	for _, f := range families {
		for _, m := range f.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(os.Stderr, "%-40s %.0f\n", f.GetName(), m.GetCounter().GetValue())
			case m.GetGauge() != nil:
				fmt.Fprintf(os.Stderr, "%-40s %.0f\n", f.GetName(), m.GetGauge().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(os.Stderr, "%-40s count=%d sum=%.0f\n", f.GetName(), h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
}
