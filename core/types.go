package core

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

type (
	// Row and Header are attributes of a Result
	Row    []any
	Header []string
)

// ColumnType is the declared type of a single result column.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeDate
	TypeDatetime
)

func (t ColumnType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeDate:
		return "date"
	case TypeDatetime:
		return "datetime"
	default:
		return "string"
	}
}

// Column is a single named column of an endpoint result set.
type Column struct {
	Name string
	Type ColumnType
}

// Schema is the fixed, ordered column set an endpoint's result table
// conforms to. It is declared statically per endpoint - the decoder casts
// against it instead of guessing types from the payload.
type Schema []Column

// Header returns the column names in schema order.
func (s Schema) Header() Header {
	header := make(Header, len(s))
	for i, col := range s {
		header[i] = col.Name
	}
	return header
}

// Index returns the position of the named column, or -1.
func (s Schema) Index(name string) int {
	for i, col := range s {
		if col.Name == name {
			return i
		}
	}
	return -1
}

const (
	dateLayout     = "2006-01-02"
	datetimeLayout = "2006-01-02 15:04:05"
)

// datetimeLayouts are tried in order when casting to TypeDatetime.
var datetimeLayouts = []string{
	time.RFC3339,
	datetimeLayout,
	"2006-01-02T15:04:05",
	dateLayout,
}

// Cast converts a raw decoded value to the column type. A nil input stays
// nil. The returned error means the value could not be represented as the
// declared type - callers turn that into a warning, not a failure.
func (t ColumnType) Cast(value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch t {
	case TypeString:
		switch v := value.(type) {
		case string:
			return v, nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		case bool:
			return strconv.FormatBool(v), nil
		}
		return fmt.Sprint(value), nil

	case TypeInt:
		switch v := value.(type) {
		case int64:
			return v, nil
		case int:
			return int64(v), nil
		case int32:
			return int64(v), nil
		case float64:
			if v != float64(int64(v)) {
				return nil, fmt.Errorf("%v is not an integer", v)
			}
			return int64(v), nil
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%q is not an integer", v)
			}
			return n, nil
		}
		return nil, fmt.Errorf("cannot cast %T to int", value)

	case TypeFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case int:
			return float64(v), nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("%q is not a float", v)
			}
			return f, nil
		}
		return nil, fmt.Errorf("cannot cast %T to float", value)

	case TypeBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("%q is not a bool", v)
			}
			return b, nil
		}
		return nil, fmt.Errorf("cannot cast %T to bool", value)

	case TypeDate:
		switch v := value.(type) {
		case time.Time:
			// truncate by calendar day in the value's own location - absolute
			// truncation can shift non-UTC times onto the previous day
			return time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, v.Location()), nil
		case string:
			ts, err := time.Parse(dateLayout, strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("%q is not a date", v)
			}
			return ts, nil
		}
		return nil, fmt.Errorf("cannot cast %T to date", value)

	case TypeDatetime:
		switch v := value.(type) {
		case time.Time:
			return v, nil
		case string:
			trimmed := strings.TrimSpace(v)
			for _, layout := range datetimeLayouts {
				if ts, err := time.Parse(layout, trimmed); err == nil {
					return ts, nil
				}
			}
			return nil, fmt.Errorf("%q is not a datetime", v)
		}
		return nil, fmt.Errorf("cannot cast %T to datetime", value)
	}

	return value, nil
}

// FormatValue renders a typed value the way exports expect it: dates and
// datetimes in their canonical layouts, nulls as the empty string.
func FormatValue(value any, typ ColumnType) string {
	if value == nil {
		return ""
	}

	if ts, ok := value.(time.Time); ok {
		if typ == TypeDate {
			return ts.Format(dateLayout)
		}
		return ts.Format(datetimeLayout)
	}

	if f, ok := value.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	return fmt.Sprint(value)
}

type (
	// FormatOpts provide various options for formatters
	FormatOpts struct {
		// NoHeader skips the header row for formats that carry one.
		// Used when appending to an existing file.
		NoHeader bool
	}

	// Formatter renders a result into a writer
	Formatter interface {
		Format(result *Result, opts *FormatOpts, writer io.Writer) error
		Name() string
	}
)
