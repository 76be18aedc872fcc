package core

import (
	"fmt"
)

// Warning records a single value that failed to cast against the declared
// schema. The value is nulled out and the row kept - decoding never drops
// rows silently.
type Warning struct {
	Row    int
	Column string
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("row %d, column %q: %s", w.Row, w.Column, w.Reason)
}

// Result is a row-oriented table decoded from an API payload.
// Column order always follows the schema, independent of source field order,
// and every row carries the full column set with missing values as nil.
type Result struct {
	Schema   Schema
	Header   Header
	Rows     []Row
	Warnings []Warning
}

// Len returns the number of rows.
func (r *Result) Len() int {
	return len(r.Rows)
}

// Range returns rows in the interval [from, to), clamped to the result size.
func (r *Result) Range(from, to int) ([]Row, error) {
	if from < 0 || to < from {
		return nil, fmt.Errorf("invalid selection range: %d ... %d", from, to)
	}
	if from > len(r.Rows) {
		from = len(r.Rows)
	}
	if to > len(r.Rows) {
		to = len(r.Rows)
	}
	return r.Rows[from:to], nil
}

// Append adds the rows and warnings of other to r. Both results must share
// the same schema - async jobs deliver one export file per chunk and the
// chunks are concatenated into a single table.
func (r *Result) Append(other *Result) error {
	if len(other.Header) != len(r.Header) {
		return fmt.Errorf("cannot append result with %d columns to result with %d columns", len(other.Header), len(r.Header))
	}
	offset := len(r.Rows)
	r.Rows = append(r.Rows, other.Rows...)
	for _, w := range other.Warnings {
		w.Row += offset
		r.Warnings = append(r.Warnings, w)
	}
	return nil
}
