package codec

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/khaledserafy/gobarb/core"
	"github.com/khaledserafy/gobarb/core/builders"
)

// decodeCSV reads delimited text with a header row. Fields are matched to the
// schema by header name, so the source column order does not matter. Empty
// fields are nulls.
func decodeCSV(r io.Reader, schema core.Schema, cfg *config) (*core.Result, error) {
	if cfg.gzipped {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, &DecodeError{Format: FormatCSV, Err: fmt.Errorf("gzip header: %w", err)}
		}
		defer gz.Close()
		r = gz
	}

	reader := csv.NewReader(r)
	reader.Comma = cfg.delimiter
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return builders.NewResultBuilder(schema).Build(), nil
		}
		return nil, &DecodeError{Format: FormatCSV, Err: fmt.Errorf("header row: %w", err)}
	}

	// source column position per schema column, -1 when absent
	positions := make([]int, len(schema))
	for i, col := range schema {
		positions[i] = -1
		for j, name := range header {
			if name == col.Name {
				positions[i] = j
				break
			}
		}
	}

	builder := builders.NewResultBuilder(schema)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &DecodeError{Format: FormatCSV, Err: err}
		}

		row := make(map[string]any, len(schema))
		for i, col := range schema {
			pos := positions[i]
			if pos < 0 || pos >= len(record) || record[pos] == "" {
				continue
			}
			row[col.Name] = record[pos]
		}
		builder.AppendRecord(row)
	}

	return builder.Build(), nil
}
