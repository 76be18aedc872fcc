package format

import (
	"encoding/json"
	"io"
	"time"

	"github.com/khaledserafy/gobarb/core"
)

var _ core.Formatter = (*JSON)(nil)

// JSON renders the result as an array of field-keyed row objects.
type JSON struct{}

func NewJSON() *JSON {
	return &JSON{}
}

func (jf *JSON) Name() string {
	return "json"
}

func (jf *JSON) Format(result *core.Result, _ *core.FormatOpts, writer io.Writer) error {
	data := make([]map[string]any, 0, len(result.Rows))

	for _, row := range result.Rows {
		record := make(map[string]any, len(row))
		for i, value := range row {
			if i >= len(result.Header) {
				break
			}
			// dates serialize in their canonical layout, not RFC 3339
			if _, ok := value.(time.Time); ok && i < len(result.Schema) {
				record[result.Header[i]] = core.FormatValue(value, result.Schema[i].Type)
				continue
			}
			record[result.Header[i]] = value
		}
		data = append(data, record)
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	_, err = writer.Write(out)
	return err
}
