package main

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/discochess/codecstream"
	"github.com/discochess/codecstream/delimited"
)

var rowsCmd = &cobra.Command{
	Use:   "rows NAME",
	Short: "Print the delimited rows of an object",
	Long: `Split each line of an object on a separator and print the fields.

When column names are known, from --columns or from the first line with
--header, each field is printed as name=value.`,
	Args: cobra.ExactArgs(1),
	RunE: runRows,
}

var (
	rowsSep     string
	rowsHeader  bool
	rowsColumns []string
	rowsLimit   int
)

func init() {
	rowsCmd.Flags().StringVar(&rowsSep, "sep", ",", `field separator; Go escapes such as '\t' are accepted`)
	rowsCmd.Flags().BoolVar(&rowsHeader, "header", false, "read column names from the first line")
	rowsCmd.Flags().StringSliceVar(&rowsColumns, "columns", nil, "column names")
	rowsCmd.Flags().IntVarP(&rowsLimit, "limit", "n", 0, "stop after this many rows (0 for all)")
	rootCmd.AddCommand(rowsCmd)
}

func parseSeparator(s string) (rune, error) {
	if unq, err := strconv.Unquote(`"` + s + `"`); err == nil {
		s = unq
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("separator must be a single character, got %q", s)
	}
	return r, nil
}

func runRows(cmd *cobra.Command, args []string) error {
	sep, err := parseSeparator(rowsSep)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	s, err := e.factory.Open(ctx, args[0], readMode(), codecName)
	if err != nil {
		return err
	}

	return codecstream.Use(ctx, s, func(s *codecstream.Stream) error {
		opts := []delimited.Option{delimited.WithSeparator(sep)}
		if rowsHeader {
			opts = append(opts, delimited.WithHeader())
		}
		if len(rowsColumns) > 0 {
			opts = append(opts, delimited.WithColumns(rowsColumns...))
		}
		r, err := delimited.New(s, opts...)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		n := 0
		for row, err := range r.Rows(ctx) {
			if err != nil {
				return err
			}
			fmt.Fprintln(out, formatRow(r.Columns(), row))
			n++
			if rowsLimit > 0 && n >= rowsLimit {
				break
			}
		}
		return nil
	})
}

func formatRow(columns, row []string) string {
	if len(columns) == 0 {
		return strings.Join(row, "\t")
	}
	parts := make([]string, len(row))
	for i, field := range row {
		name := strconv.Itoa(i)
		if i < len(columns) {
			name = columns[i]
		}
		parts[i] = name + "=" + strconv.Quote(field)
	}
	return strings.Join(parts, " ")
}
