package adapters

import (
	"database/sql"
	"fmt"
	nurl "net/url"

	_ "github.com/lib/pq"

	"github.com/khaledserafy/gobarb/core"
)

// Register adapter
func init() {
	_ = register(&Postgres{}, "postgres", "postgresql", "pg")
}

var _ Adapter = (*Postgres)(nil)

type Postgres struct{}

func (p *Postgres) Connect(dsn string) (*sql.DB, error) {
	u, err := nurl.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("could not parse db connection string: %w", err)
	}

	db, err := sql.Open("postgres", u.String())
	if err != nil {
		return nil, fmt.Errorf("unable to connect to postgres database: %w", err)
	}
	return db, nil
}

func (p *Postgres) Dialect() Dialect {
	return &postgresDialect{}
}

type postgresDialect struct{}

func (*postgresDialect) QuoteIdent(name string) string {
	return `"` + name + `"`
}

func (*postgresDialect) Placeholder(position int) string {
	return fmt.Sprintf("$%d", position)
}

func (*postgresDialect) ColumnType(t core.ColumnType) string {
	switch t {
	case core.TypeInt:
		return "BIGINT"
	case core.TypeFloat:
		return "DOUBLE PRECISION"
	case core.TypeBool:
		return "BOOLEAN"
	case core.TypeDate:
		return "DATE"
	case core.TypeDatetime:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

func (*postgresDialect) TableExists() string {
	return "SELECT 1 FROM information_schema.tables WHERE table_name = $1 AND table_schema = current_schema()"
}
