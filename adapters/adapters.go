// Package adapters holds the database export adapters. Each adapter
// registers itself in its init function under the DSN scheme aliases it
// serves, so unsupported engines never enter the build.
package adapters

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/khaledserafy/gobarb/core"
)

var (
	errNoValidTypeAliases   = errors.New("no valid type aliases provided")
	ErrUnsupportedTypeAlias = errors.New("no adapter registered for provided type alias")
)

// Adapter opens database handles for one engine and exposes its dialect.
type Adapter interface {
	Connect(dsn string) (*sql.DB, error)
	Dialect() Dialect
}

// Dialect captures the SQL spelling differences the exporter cares about.
type Dialect interface {
	// QuoteIdent quotes a table or column identifier.
	QuoteIdent(name string) string
	// Placeholder renders the 1-based positional parameter marker.
	Placeholder(position int) string
	// ColumnType maps a declared result column type to an SQL column type.
	ColumnType(t core.ColumnType) string
	// TableExists is a query returning one row iff the named table exists.
	// The table name is bound as its single parameter.
	TableExists() string
}

// registeredAdapters holds implemented adapters - specific adapters register
// themselves in their init functions.
var registeredAdapters = make(map[string]Adapter)

func register(adapter Adapter, aliases ...string) error {
	if len(aliases) < 1 {
		return errNoValidTypeAliases
	}

	invalidCount := 0
	for _, alias := range aliases {
		if alias == "" {
			invalidCount++
			continue
		}
		registeredAdapters[alias] = adapter
	}

	if invalidCount == len(aliases) {
		return errNoValidTypeAliases
	}
	return nil
}

// Get returns the adapter registered under the given type alias.
func Get(typ string) (Adapter, error) {
	adapter, ok := registeredAdapters[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTypeAlias, typ)
	}
	return adapter, nil
}

// FromDSN picks the adapter by the DSN's scheme prefix.
func FromDSN(dsn string) (Adapter, error) {
	scheme, _, found := strings.Cut(dsn, "://")
	if !found {
		return nil, fmt.Errorf("%w: dsn %q has no scheme", ErrUnsupportedTypeAlias, dsn)
	}
	return Get(scheme)
}
