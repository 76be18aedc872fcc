package adapters

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/khaledserafy/gobarb/core"
)

// Register adapter
func init() {
	_ = register(&MySQL{}, "mysql", "mariadb")
}

var _ Adapter = (*MySQL)(nil)

type MySQL struct{}

func (m *MySQL) Connect(dsn string) (*sql.DB, error) {
	// the mysql driver expects its own DSN form without the scheme prefix
	trimmed := dsn
	if _, rest, found := strings.Cut(dsn, "://"); found {
		trimmed = rest
	}

	db, err := sql.Open("mysql", trimmed)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to mysql database: %w", err)
	}
	return db, nil
}

func (m *MySQL) Dialect() Dialect {
	return &mysqlDialect{}
}

type mysqlDialect struct{}

func (*mysqlDialect) QuoteIdent(name string) string {
	return "`" + name + "`"
}

func (*mysqlDialect) Placeholder(int) string {
	return "?"
}

func (*mysqlDialect) ColumnType(t core.ColumnType) string {
	switch t {
	case core.TypeInt:
		return "BIGINT"
	case core.TypeFloat:
		return "DOUBLE"
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

func (*mysqlDialect) TableExists() string {
	return "SELECT 1 FROM information_schema.tables WHERE table_name = ? AND table_schema = DATABASE()"
}
