package delimited

import "slices"

// Option configures a Reader.
type Option interface {
	apply(*options)
}

type options struct {
	separator   rune
	terminator  string
	columns     []string
	columnTypes []string
	hasHeader   bool
}

func defaultOptions() options {
	return options{
		separator:  ',',
		terminator: "\n",
	}
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) { f(o) }

// WithSeparator sets the field separator. Default is ','.
func WithSeparator(sep rune) Option {
	return optionFunc(func(o *options) {
		o.separator = sep
	})
}

// WithLineTerminator sets the characters stripped from the end of each
// line. Default is "\n", which also strips a preceding '\r'.
func WithLineTerminator(eol string) Option {
	return optionFunc(func(o *options) {
		if eol != "" {
			o.terminator = eol
		}
	})
}

// WithColumns sets the column names.
func WithColumns(columns ...string) Option {
	return optionFunc(func(o *options) {
		o.columns = slices.Clone(columns)
	})
}

// WithColumnTypes sets the column type names. They are not interpreted.
func WithColumnTypes(types ...string) Option {
	return optionFunc(func(o *options) {
		o.columnTypes = slices.Clone(types)
	})
}

// WithHeader reads the column names from the first line when WithColumns
// is not given. With explicit columns the first line is returned as a row.
func WithHeader() Option {
	return optionFunc(func(o *options) {
		o.hasHeader = true
	})
}
