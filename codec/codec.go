// Package codec decodes API payloads into core results against a declared
// schema. Three physical formats are supported: line-delimited JSON from the
// sync endpoints, delimited text (plain or gzip-compressed, tab-delimited in
// the API's async exports) and parquet, the columnar binary export format.
package codec

import (
	"fmt"
	"io"
	"strings"

	"github.com/khaledserafy/gobarb/core"
)

// Format selects the physical decoder.
type Format int

const (
	FormatNDJSON Format = iota
	FormatCSV
	FormatParquet
)

func (f Format) String() string {
	switch f {
	case FormatNDJSON:
		return "ndjson"
	case FormatCSV:
		return "csv"
	case FormatParquet:
		return "parquet"
	default:
		return "unknown"
	}
}

// DecodeError means the payload is structurally unparseable - a corrupt
// header, bad compression or malformed framing. Individual bad values never
// produce a DecodeError; they become warnings on the result.
type DecodeError struct {
	Format Format
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s payload: %s", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type config struct {
	delimiter rune
	gzipped   bool
}

// Option tunes the delimited-text decoder.
type Option func(*config)

// WithDelimiter sets the field delimiter for FormatCSV. Defaults to comma.
func WithDelimiter(delimiter rune) Option {
	return func(cfg *config) {
		cfg.delimiter = delimiter
	}
}

// WithGzip makes the decoder transparently gunzip the payload first.
func WithGzip() Option {
	return func(cfg *config) {
		cfg.gzipped = true
	}
}

// Decode parses the payload in the given format into a result shaped by
// schema. Column order follows the schema regardless of source field order.
func Decode(r io.Reader, format Format, schema core.Schema, opts ...Option) (*core.Result, error) {
	cfg := &config{delimiter: ','}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatNDJSON:
		return decodeNDJSON(r, schema)
	case FormatCSV:
		return decodeCSV(r, schema, cfg)
	case FormatParquet:
		return decodeParquet(r, schema)
	default:
		return nil, &DecodeError{Format: format, Err: fmt.Errorf("unsupported format")}
	}
}

// DecodeExport decodes a downloaded async export file, picking the decoder
// from the file name: parquet for ".parquet", otherwise the tab-delimited
// text the API serves, gunzipped when the name carries a ".gz" suffix.
func DecodeExport(name string, r io.Reader, schema core.Schema) (*core.Result, error) {
	trimmed := strings.ToLower(name)
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}

	if strings.HasSuffix(trimmed, ".parquet") {
		return Decode(r, FormatParquet, schema)
	}

	opts := []Option{WithDelimiter('\t')}
	if strings.HasSuffix(trimmed, ".gz") {
		opts = append(opts, WithGzip())
	}
	return Decode(r, FormatCSV, schema, opts...)
}
