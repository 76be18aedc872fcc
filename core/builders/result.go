// Package builders assembles core results from raw decoded values.
package builders

import (
	"github.com/khaledserafy/gobarb/core"
)

// ResultBuilder builds a core.Result row by row, casting every value against
// the declared schema. Values that fail to cast are nulled out and recorded
// as warnings; rows are never dropped.
type ResultBuilder struct {
	schema   core.Schema
	rows     []core.Row
	warnings []core.Warning
}

func NewResultBuilder(schema core.Schema) *ResultBuilder {
	return &ResultBuilder{
		schema: schema,
	}
}

// AppendRow casts a positional row. Shorter rows are padded with nulls,
// longer rows have their extra values ignored.
func (b *ResultBuilder) AppendRow(raw core.Row) *ResultBuilder {
	row := make(core.Row, len(b.schema))
	for i, col := range b.schema {
		var value any
		if i < len(raw) {
			value = raw[i]
		}
		row[i] = b.cast(value, col)
	}
	b.rows = append(b.rows, row)
	return b
}

// AppendRecord casts a field-keyed record. Column order in the result follows
// the schema regardless of the record's own ordering; missing fields are null.
func (b *ResultBuilder) AppendRecord(record map[string]any) *ResultBuilder {
	row := make(core.Row, len(b.schema))
	for i, col := range b.schema {
		row[i] = b.cast(record[col.Name], col)
	}
	b.rows = append(b.rows, row)
	return b
}

func (b *ResultBuilder) cast(value any, col core.Column) any {
	cast, err := col.Type.Cast(value)
	if err != nil {
		b.warnings = append(b.warnings, core.Warning{
			Row:    len(b.rows),
			Column: col.Name,
			Reason: err.Error(),
		})
		return nil
	}
	return cast
}

func (b *ResultBuilder) Build() *core.Result {
	return &core.Result{
		Schema:   b.schema,
		Header:   b.schema.Header(),
		Rows:     b.rows,
		Warnings: b.warnings,
	}
}
