package format_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/khaledserafy/gobarb/core"
	"github.com/khaledserafy/gobarb/core/format"
)

func testResult() *core.Result {
	schema := core.Schema{
		{Name: "station_code", Type: core.TypeInt},
		{Name: "prog_name", Type: core.TypeString},
		{Name: "programme_start_datetime", Type: core.TypeDatetime},
		{Name: "rating", Type: core.TypeFloat},
	}
	return &core.Result{
		Schema: schema,
		Header: schema.Header(),
		Rows: []core.Row{
			{int64(1), "News", time.Date(2024, 1, 7, 21, 0, 0, 0, time.UTC), 3.4},
			{int64(2), "Weather", nil, nil},
		},
	}
}

func TestCSV_Format(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	r.NoError(format.NewCSV().Format(testResult(), nil, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	r.Len(lines, 3)
	r.Equal("station_code,prog_name,programme_start_datetime,rating", lines[0])
	r.Equal("1,News,2024-01-07 21:00:00,3.4", lines[1])
	r.Equal("2,Weather,,", lines[2])
}

func TestCSV_Format_NoHeader(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	r.NoError(format.NewCSV().Format(testResult(), &core.FormatOpts{NoHeader: true}, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	r.Len(lines, 2)
	r.True(strings.HasPrefix(lines[0], "1,News"))
}

func TestCSV_Format_TabDelimiter(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	r.NoError(format.NewCSV(format.CSVWithDelimiter('\t')).Format(testResult(), nil, &buf))
	r.Contains(buf.String(), "1\tNews")
}

func TestJSON_Format(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	r.NoError(format.NewJSON().Format(testResult(), nil, &buf))

	var rows []map[string]any
	r.NoError(json.Unmarshal(buf.Bytes(), &rows))

	r.Len(rows, 2)
	r.Equal("News", rows[0]["prog_name"])
	r.Equal(float64(1), rows[0]["station_code"])
	r.Equal("2024-01-07 21:00:00", rows[0]["programme_start_datetime"])
	r.Nil(rows[1]["rating"])
}

func TestTable_Format(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	r.NoError(format.NewTable().Format(testResult(), nil, &buf))

	rendered := buf.String()
	r.Contains(rendered, "prog_name")
	r.Contains(rendered, "News")
	r.Contains(rendered, "Weather")
}

func TestXLSX_Format(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	r.NoError(format.NewXLSX(format.XLSXWithSheet("ratings")).Format(testResult(), nil, &buf))

	workbook, err := excelize.OpenReader(&buf)
	r.NoError(err)
	defer workbook.Close()

	rows, err := workbook.GetRows("ratings")
	r.NoError(err)
	r.Len(rows, 3)
	r.Equal("station_code", rows[0][0])
	r.Equal("News", rows[1][1])
}
