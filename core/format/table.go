package format

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/khaledserafy/gobarb/core"
)

var _ core.Formatter = (*Table)(nil)

// Table renders a human-readable table for interactive use.
type Table struct{}

func NewTable() *Table {
	return &Table{}
}

func (tf *Table) Name() string {
	return "table"
}

func (tf *Table) Format(result *core.Result, opts *core.FormatOpts, writer io.Writer) error {
	if opts == nil {
		opts = &core.FormatOpts{}
	}

	t := table.NewWriter()

	if !opts.NoHeader {
		tableHeader := make(table.Row, len(result.Header))
		for i, name := range result.Header {
			tableHeader[i] = name
		}
		t.AppendHeader(tableHeader)
	}

	for _, row := range result.Rows {
		tableRow := make(table.Row, len(row))
		for i, value := range row {
			typ := core.TypeString
			if i < len(result.Schema) {
				typ = result.Schema[i].Type
			}
			tableRow[i] = core.FormatValue(value, typ)
		}
		t.AppendRow(tableRow)
	}
	t.AppendSeparator()
	t.SetStyle(table.StyleLight)
	t.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	t.Style().Options.DrawBorder = false

	_, err := writer.Write([]byte(t.Render()))
	return err
}
