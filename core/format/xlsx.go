package format

import (
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/khaledserafy/gobarb/core"
)

var _ core.Formatter = (*XLSX)(nil)

// XLSX renders a spreadsheet workbook with one sheet holding the table.
type XLSX struct {
	sheet string
}

type XLSXOption func(*XLSX)

// XLSXWithSheet names the sheet the table is written to.
func XLSXWithSheet(name string) XLSXOption {
	return func(xf *XLSX) {
		xf.sheet = name
	}
}

func NewXLSX(opts ...XLSXOption) *XLSX {
	xf := &XLSX{sheet: "Sheet1"}
	for _, opt := range opts {
		opt(xf)
	}
	return xf
}

func (xf *XLSX) Name() string {
	return "xlsx"
}

func (xf *XLSX) Format(result *core.Result, opts *core.FormatOpts, writer io.Writer) error {
	if opts == nil {
		opts = &core.FormatOpts{}
	}

	workbook := excelize.NewFile()
	defer workbook.Close()

	index, err := workbook.NewSheet(xf.sheet)
	if err != nil {
		return err
	}
	workbook.SetActiveSheet(index)
	if xf.sheet != "Sheet1" {
		_ = workbook.DeleteSheet("Sheet1")
	}

	rowNumber := 1
	if !opts.NoHeader {
		header := make([]any, len(result.Header))
		for i, name := range result.Header {
			header[i] = name
		}
		if err := xf.writeRow(workbook, rowNumber, header); err != nil {
			return err
		}
		rowNumber++
	}

	for _, row := range result.Rows {
		cells := make([]any, len(row))
		for i, value := range row {
			// spreadsheet cells take native values except timestamps,
			// which are written pre-formatted
			if _, ok := value.(time.Time); ok && i < len(result.Schema) {
				cells[i] = core.FormatValue(value, result.Schema[i].Type)
				continue
			}
			cells[i] = value
		}
		if err := xf.writeRow(workbook, rowNumber, cells); err != nil {
			return err
		}
		rowNumber++
	}

	_, err = workbook.WriteTo(writer)
	return err
}

func (xf *XLSX) writeRow(workbook *excelize.File, rowNumber int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNumber)
	if err != nil {
		return err
	}
	return workbook.SetSheetRow(xf.sheet, cell, &cells)
}
