// Package output writes core results to their export targets: formatted
// files and database tables. Targets are owned by the caller; an output never
// retains anything after Write returns.
package output

import (
	"fmt"

	"github.com/khaledserafy/gobarb/core"
)

// ExportSummary reports what one export call persisted.
type ExportSummary struct {
	RowsWritten int
}

// Output writes a result to a single export target.
type Output interface {
	Write(result *core.Result) (*ExportSummary, error)
}

// ExportError is an I/O failure or a schema mismatch during export. The
// target's prior persisted state is left unchanged.
type ExportError struct {
	Target string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export to %s failed: %s", e.Target, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
