package core

import (
	"fmt"
	"strings"
)

// ValidationError reports query parameters that failed validation before any
// request was made. It is never retried.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid query parameters: %s", strings.Join(e.Fields, ", "))
}
