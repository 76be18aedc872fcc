package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/khaledserafy/gobarb/core"
	"github.com/khaledserafy/gobarb/core/builders"
)

// decodeParquet reads a parquet export. The API's export schemas are flat, so
// leaf columns map one to one onto named fields. The parquet grammar itself
// is the library's concern - this stays a thin strategy around it.
func decodeParquet(r io.Reader, schema core.Schema) (*core.Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &DecodeError{Format: FormatParquet, Err: err}
	}

	file, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &DecodeError{Format: FormatParquet, Err: err}
	}

	fields := file.Schema().Fields()
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = field.Name()
	}

	builder := builders.NewResultBuilder(schema)

	for _, group := range file.RowGroups() {
		rows := group.Rows()

		buffer := make([]parquet.Row, 256)
		for {
			n, err := rows.ReadRows(buffer)
			for _, parquetRow := range buffer[:n] {
				record := make(map[string]any, len(names))
				for _, value := range parquetRow {
					column := value.Column()
					if column < 0 || column >= len(names) {
						continue
					}
					record[names[column]] = parquetValue(value)
				}
				builder.AppendRecord(record)
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				rows.Close()
				return nil, &DecodeError{Format: FormatParquet, Err: err}
			}
			if n == 0 {
				break
			}
		}
		if err := rows.Close(); err != nil {
			return nil, &DecodeError{Format: FormatParquet, Err: fmt.Errorf("close row group: %w", err)}
		}
	}

	return builder.Build(), nil
}

// parquetValue converts a physical parquet value into the raw form the
// schema caster understands.
func parquetValue(value parquet.Value) any {
	if value.IsNull() {
		return nil
	}

	switch value.Kind() {
	case parquet.Boolean:
		return value.Boolean()
	case parquet.Int32:
		return int64(value.Int32())
	case parquet.Int64:
		return value.Int64()
	case parquet.Float:
		return float64(value.Float())
	case parquet.Double:
		return value.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(value.ByteArray())
	default:
		return value.String()
	}
}
