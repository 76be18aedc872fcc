package codec_test

import (
	"bytes"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"

	"github.com/khaledserafy/gobarb/codec"
	"github.com/khaledserafy/gobarb/core"
)

type parquetRow struct {
	StationCode int64   `parquet:"station_code"`
	ProgName    string  `parquet:"prog_name"`
	Rating      float64 `parquet:"rating"`
}

func writeParquet(t *testing.T, rows []parquetRow) []byte {
	t.Helper()
	r := require.New(t)

	var buf bytes.Buffer
	writer := parquet.NewGenericWriter[parquetRow](&buf)
	_, err := writer.Write(rows)
	r.NoError(err)
	r.NoError(writer.Close())

	return buf.Bytes()
}

func TestDecode_Parquet(t *testing.T) {
	r := require.New(t)

	payload := writeParquet(t, []parquetRow{
		{StationCode: 1, ProgName: "News", Rating: 3.4},
		{StationCode: 2, ProgName: "Weather", Rating: 2.1},
	})

	result, err := codec.Decode(bytes.NewReader(payload), codec.FormatParquet, schema())
	r.NoError(err)

	r.Equal(2, result.Len())
	r.Equal(core.Header{"station_code", "prog_name", "rating"}, result.Header)
	r.Equal(core.Row{int64(1), "News", 3.4}, result.Rows[0])
	r.Equal(core.Row{int64(2), "Weather", 2.1}, result.Rows[1])
	r.Empty(result.Warnings)
}

func TestDecode_Parquet_Truncated(t *testing.T) {
	r := require.New(t)

	payload := writeParquet(t, []parquetRow{
		{StationCode: 1, ProgName: "News", Rating: 3.4},
	})

	_, err := codec.Decode(bytes.NewReader(payload[:len(payload)/2]), codec.FormatParquet, schema())

	var derr *codec.DecodeError
	r.ErrorAs(err, &derr)
	r.Equal(codec.FormatParquet, derr.Format)
}

func TestDecodeExport_Parquet(t *testing.T) {
	r := require.New(t)

	payload := writeParquet(t, []parquetRow{
		{StationCode: 7, ProgName: "Sport", Rating: 4.2},
	})

	result, err := codec.DecodeExport("part-0.parquet", bytes.NewReader(payload), schema())
	r.NoError(err)
	r.Equal(1, result.Len())
	r.Equal(core.Row{int64(7), "Sport", 4.2}, result.Rows[0])
}
