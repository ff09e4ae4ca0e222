package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/discochess/codecstream/internal/benchstat"
)

var compressCmd = &cobra.Command{
	Use:   "compress SRC DST",
	Short: "Recompress an object with another codec",
	Long: `Read SRC decoded with --from-codec and write it to DST encoded with --codec.

Examples:
  # Compress a plain file with zstd
  codecstream compress --codec zstd events.csv events.csv.zst

  # Convert gzip to xz
  codecstream compress --from-codec gzip --codec xz dump.gz dump.xz`,
	Args: cobra.ExactArgs(2),
	RunE: runCompress,
}

var fromCodec string

func init() {
	compressCmd.Flags().StringVar(&fromCodec, "from-codec", "none", "codec of the source object")
	rootCmd.AddCommand(compressCmd)
}

func runCompress(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	src, err := e.factory.Open(ctx, args[0], "rb", fromCodec)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, src.Close(ctx))
	}()

	dst, err := e.factory.Open(ctx, args[1], "wb", codecName)
	if err != nil {
		return err
	}

	var in int64
	copyErr := func() error {
		for {
			b, err := src.Read(ctx, 0)
			if err != nil {
				return err
			}
			if len(b) == 0 {
				return nil
			}
			in += int64(len(b))
			if _, err := dst.Write(ctx, b); err != nil {
				return err
			}
		}
	}()
	// Close writes the trailer, so it runs even after a failed copy.
	if err := multierr.Append(copyErr, dst.Close(ctx)); err != nil {
		return fmt.Errorf("writing %s: %w", args[1], err)
	}

	e.logger.Info("recompressed",
		zap.String("src", args[0]),
		zap.String("dst", args[1]),
		zap.String("from", fromCodec),
		zap.String("to", codecName),
		zap.Int64("decodedBytes", in),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s: %s decoded\n", args[0], args[1], benchstat.FormatBytes(in))
	return nil
}
