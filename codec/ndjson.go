package codec

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/khaledserafy/gobarb/core"
	"github.com/khaledserafy/gobarb/core/builders"
)

// decodeNDJSON reads one JSON object per line. Blank lines are skipped; a
// line that is not a JSON object makes the whole payload unparseable.
func decodeNDJSON(r io.Reader, schema core.Schema) (*core.Result, error) {
	builder := builders.NewResultBuilder(schema)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var record map[string]any
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, &DecodeError{
				Format: FormatNDJSON,
				Err:    fmt.Errorf("line %d: %w", line, err),
			}
		}
		builder.AppendRecord(record)
	}
	if err := scanner.Err(); err != nil {
		return nil, &DecodeError{Format: FormatNDJSON, Err: err}
	}

	return builder.Build(), nil
}

// DecodeRecords shapes already-unmarshaled JSON objects - the "events" arrays
// of the sync endpoints - into a result.
func DecodeRecords(records []map[string]any, schema core.Schema) *core.Result {
	builder := builders.NewResultBuilder(schema)
	for _, record := range records {
		builder.AppendRecord(record)
	}
	return builder.Build()
}
