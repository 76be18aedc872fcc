package adapters

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/khaledserafy/gobarb/core"
)

// Register adapter
func init() {
	_ = register(&SQLite{}, "sqlite", "sqlite3", "file")
}

var _ Adapter = (*SQLite)(nil)

type SQLite struct{}

func (s *SQLite) Connect(dsn string) (*sql.DB, error) {
	path := dsn
	if _, rest, found := strings.Cut(dsn, "://"); found {
		path = rest
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite database: %w", err)
	}
	return db, nil
}

func (s *SQLite) Dialect() Dialect {
	return &sqliteDialect{}
}

type sqliteDialect struct{}

func (*sqliteDialect) QuoteIdent(name string) string {
	return `"` + name + `"`
}

func (*sqliteDialect) Placeholder(int) string {
	return "?"
}

func (*sqliteDialect) ColumnType(t core.ColumnType) string {
	switch t {
	case core.TypeInt:
		return "INTEGER"
	case core.TypeFloat:
		return "REAL"
	case core.TypeBool:
		return "BOOLEAN"
	case core.TypeDate:
		return "DATE"
	case core.TypeDatetime:
		return "DATETIME"
	default:
		return "TEXT"
	}
}

func (*sqliteDialect) TableExists() string {
	return "SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?"
}
