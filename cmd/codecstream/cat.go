package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/discochess/codecstream"
)

var catCmd = &cobra.Command{
	Use:   "cat NAME...",
	Short: "Decompress objects to standard output",
	Long: `Decompress each named object and write its content to standard output.

With --encoding the content is transcoded to UTF-8. With --skip-header
the first line of each object is dropped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCat,
}

var catSkipHeader bool

func init() {
	catCmd.Flags().BoolVar(&catSkipHeader, "skip-header", false, "drop the first line of each object")
	rootCmd.AddCommand(catCmd)
}

func runCat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	out := cmd.OutOrStdout()
	for _, name := range args {
		var opts []codecstream.Option
		if catSkipHeader {
			opts = append(opts, codecstream.WithIgnoreHeader())
		}
		s, err := e.factory.Open(ctx, name, readMode(), codecName, opts...)
		if err != nil {
			return err
		}

		err = codecstream.Use(ctx, s, func(s *codecstream.Stream) error {
			if catSkipHeader {
				for line, err := range s.Lines(ctx) {
					if err != nil {
						return err
					}
					if _, err := out.Write(line); err != nil {
						return err
					}
				}
				return nil
			}
			for {
				b, err := s.Read(ctx, 0)
				if err != nil {
					return err
				}
				if len(b) == 0 {
					return nil
				}
				if _, err := out.Write(b); err != nil {
					return err
				}
			}
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			return err
		}
	}
	return nil
}
