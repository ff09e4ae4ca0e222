package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/discochess/codecstream"
	"github.com/discochess/codecstream/internal/benchstat"
	"github.com/discochess/codecstream/internal/codec/codecs"
	"github.com/discochess/codecstream/internal/store"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [PREFIX]",
	Short: "Check that objects decompress cleanly",
	Long: `Decompress every object under PREFIX with --codec and report the ones
that fail.

Only objects whose name ends with the codec's extension are checked,
unless --all is given. Objects are checked concurrently.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

var (
	verifyAll     bool
	verifyWorkers int
)

func init() {
	verifyCmd.Flags().BoolVar(&verifyAll, "all", false, "check every listed object regardless of extension")
	verifyCmd.Flags().IntVar(&verifyWorkers, "workers", 4, "number of objects checked in parallel")
	rootCmd.AddCommand(verifyCmd)
}

// objectReport is the outcome of checking one object.
type objectReport struct {
	name    string
	decoded int64
	lines   int64
	err     error
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	lister, ok := e.store.(store.Lister)
	if !ok {
		return fmt.Errorf("store %q cannot list objects", storeKind)
	}

	var listPrefix string
	if len(args) == 1 {
		listPrefix = args[0]
	}
	names, err := lister.List(ctx, listPrefix)
	if err != nil {
		return fmt.Errorf("listing objects: %w", err)
	}

	c, err := codecs.Lookup(codecName)
	if err != nil {
		return err
	}
	if ext := c.Extension(); ext != "" && !verifyAll {
		names = filterSuffix(names, "."+ext)
	}

	out := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintln(out, "No objects found.")
		return nil
	}
	fmt.Fprintf(out, "Verifying %d objects...\n", len(names))

	reports := make([]objectReport, len(names))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(verifyWorkers, 1))
	for i, name := range names {
		g.Go(func() error {
			reports[i] = verifyObject(gctx, e.factory, name)
			e.logger.Debug("checked object",
				zap.String("name", name),
				zap.Int64("done", done.Add(1)),
				zap.Int("total", len(names)),
				zap.Int64("lines", reports[i].lines),
				zap.Error(reports[i].err),
			)
			// Per-object failures are reported, not returned; only
			// cancellation stops the remaining checks.
			if errors.Is(reports[i].err, context.Canceled) {
				return reports[i].err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var failed int
	var decoded int64
	for _, r := range reports {
		if r.err != nil {
			failed++
			fmt.Fprintf(out, "  ERROR: %s: %v\n", r.name, r.err)
			e.logger.Warn("verification failed", zap.String("name", r.name), zap.Error(r.err))
			continue
		}
		decoded += r.decoded
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d objects failed verification", failed, len(names))
	}
	fmt.Fprintf(out, "All %d objects verified (%s decoded).\n", len(names), benchstat.FormatBytes(decoded))
	return nil
}

func verifyObject(ctx context.Context, f *codecstream.Factory, name string) objectReport {
	r := objectReport{name: name}

	s, err := f.Open(ctx, name, "rb", codecName)
	if err != nil {
		r.err = err
		return r
	}
	r.err = codecstream.Use(ctx, s, func(s *codecstream.Stream) error {
		for line, err := range s.Lines(ctx) {
			if err != nil {
				return err
			}
			r.lines++
			r.decoded += int64(len(line))
		}
		return nil
	})
	return r
}

func filterSuffix(names []string, suffix string) []string {
	var out []string
	for _, n := range names {
		if strings.HasSuffix(n, suffix) {
			out = append(out, n)
		}
	}
	return out
}
