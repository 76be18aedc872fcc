// Package format renders core results into export encodings.
package format

import (
	"encoding/csv"
	"io"

	"github.com/khaledserafy/gobarb/core"
)

var _ core.Formatter = (*CSV)(nil)

type CSV struct {
	delimiter rune
}

type CSVOption func(*CSV)

// CSVWithDelimiter overrides the comma delimiter, e.g. '\t' for TSV.
func CSVWithDelimiter(delimiter rune) CSVOption {
	return func(cf *CSV) {
		cf.delimiter = delimiter
	}
}

func NewCSV(opts ...CSVOption) *CSV {
	cf := &CSV{delimiter: ','}
	for _, opt := range opts {
		opt(cf)
	}
	return cf
}

func (cf *CSV) Name() string {
	return "csv"
}

func (cf *CSV) Format(result *core.Result, opts *core.FormatOpts, writer io.Writer) error {
	if opts == nil {
		opts = &core.FormatOpts{}
	}

	var data [][]string
	if !opts.NoHeader {
		data = append(data, result.Header)
	}
	for _, row := range result.Rows {
		csvRow := make([]string, len(row))
		for i, value := range row {
			typ := core.TypeString
			if i < len(result.Schema) {
				typ = result.Schema[i].Type
			}
			csvRow[i] = core.FormatValue(value, typ)
		}
		data = append(data, csvRow)
	}

	w := csv.NewWriter(writer)
	w.Comma = cf.delimiter
	if err := w.WriteAll(data); err != nil {
		return err
	}
	return w.Error()
}
