package output

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khaledserafy/gobarb/adapters"
	"github.com/khaledserafy/gobarb/core"
)

var _ Output = (*Database)(nil)

// Database writes a result into a database table. The table is created when
// absent, with column types derived from the result schema; otherwise the
// existing column set must match and rows are appended. Every Write runs in
// a single transaction - all rows commit or none do.
//
// The exporter assumes exclusive use of the handle it is given for the
// duration of one Write call.
type Database struct {
	db      *sql.DB
	dialect adapters.Dialect
	table   string
	log     *zap.Logger
	replace bool
	ownsDB  bool
}

type DatabaseOption func(*Database)

// WithReplace replaces the table contents instead of appending. Rows are
// staged into a temporary table first, so a failed export leaves the
// original contents in place.
func WithReplace() DatabaseOption {
	return func(do *Database) {
		do.replace = true
	}
}

// WithDatabaseLogger attaches a logger.
func WithDatabaseLogger(log *zap.Logger) DatabaseOption {
	return func(do *Database) {
		do.log = log
	}
}

// NewDatabase opens the target database by DSN, picking the adapter from the
// DSN scheme. Close releases the handle.
func NewDatabase(dsn, table string, opts ...DatabaseOption) (*Database, error) {
	adapter, err := adapters.FromDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := adapter.Connect(dsn)
	if err != nil {
		return nil, err
	}

	do := newDatabase(db, adapter.Dialect(), table, opts...)
	do.ownsDB = true
	return do, nil
}

// NewDatabaseWithConn wraps a caller-owned handle. The caller keeps
// responsibility for closing it.
func NewDatabaseWithConn(db *sql.DB, dialect adapters.Dialect, table string, opts ...DatabaseOption) *Database {
	return newDatabase(db, dialect, table, opts...)
}

func newDatabase(db *sql.DB, dialect adapters.Dialect, table string, opts ...DatabaseOption) *Database {
	do := &Database{
		db:      db,
		dialect: dialect,
		table:   table,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(do)
	}
	return do
}

func (do *Database) Close() error {
	if !do.ownsDB {
		return nil
	}
	return do.db.Close()
}

func (do *Database) Write(result *core.Result) (*ExportSummary, error) {
	tx, err := do.db.Begin()
	if err != nil {
		return nil, &ExportError{Target: do.table, Err: err}
	}

	summary, err := do.write(tx, result)
	if err != nil {
		_ = tx.Rollback()
		return nil, &ExportError{Target: do.table, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return nil, &ExportError{Target: do.table, Err: err}
	}

	do.log.Debug("saved result to database table",
		zap.String("table", do.table),
		zap.Int("rows", summary.RowsWritten),
	)
	return summary, nil
}

func (do *Database) write(tx *sql.Tx, result *core.Result) (*ExportSummary, error) {
	exists, err := do.tableExists(tx)
	if err != nil {
		return nil, err
	}

	if !exists {
		if err := do.createTable(tx, do.table, result.Schema); err != nil {
			return nil, err
		}
	} else if err := do.verifyColumns(tx, result); err != nil {
		return nil, err
	}

	if do.replace && exists {
		return do.replaceRows(tx, result)
	}

	written, err := do.insertRows(tx, do.table, result)
	if err != nil {
		return nil, err
	}
	return &ExportSummary{RowsWritten: written}, nil
}

func (do *Database) tableExists(tx *sql.Tx) (bool, error) {
	var one int
	err := tx.QueryRow(do.dialect.TableExists(), do.table).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check table existence: %w", err)
	}
	return true, nil
}

func (do *Database) createTable(tx *sql.Tx, table string, schema core.Schema) error {
	columns := make([]string, len(schema))
	for i, col := range schema {
		columns[i] = do.dialect.QuoteIdent(col.Name) + " " + do.dialect.ColumnType(col.Type)
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (%s)",
		do.dialect.QuoteIdent(table),
		strings.Join(columns, ", "),
	)
	if _, err := tx.Exec(ddl); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// verifyColumns checks that the existing table's column set matches the
// result's. A mismatch aborts the export before any row is written.
func (do *Database) verifyColumns(tx *sql.Tx, result *core.Result) error {
	rows, err := tx.Query(fmt.Sprintf("SELECT * FROM %s WHERE 1 = 0", do.dialect.QuoteIdent(do.table)))
	if err != nil {
		return fmt.Errorf("inspect existing table: %w", err)
	}
	defer rows.Close()

	existing, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("inspect existing table: %w", err)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect existing table: %w", err)
	}

	if len(existing) != len(result.Header) {
		return fmt.Errorf("schema mismatch: table has %d columns, result has %d", len(existing), len(result.Header))
	}
	existingSet := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		existingSet[name] = struct{}{}
	}
	for _, name := range result.Header {
		if _, ok := existingSet[name]; !ok {
			return fmt.Errorf("schema mismatch: table has no column %q", name)
		}
	}
	return nil
}

func (do *Database) insertRows(tx *sql.Tx, table string, result *core.Result) (int, error) {
	if result.Len() == 0 {
		return 0, nil
	}

	quoted := make([]string, len(result.Header))
	placeholders := make([]string, len(result.Header))
	for i, name := range result.Header {
		quoted[i] = do.dialect.QuoteIdent(name)
		placeholders[i] = do.dialect.Placeholder(i + 1)
	}

	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		do.dialect.QuoteIdent(table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range result.Rows {
		if _, err := stmt.Exec(row...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	return result.Len(), nil
}

// replaceRows stages the result into a temporary table, swaps the contents
// of the target and drops the stage, all inside the caller's transaction.
func (do *Database) replaceRows(tx *sql.Tx, result *core.Result) (*ExportSummary, error) {
	stage := fmt.Sprintf("%s_stage_%s", do.table, strings.ReplaceAll(uuid.New().String(), "-", "")[:8])

	if err := do.createTable(tx, stage, result.Schema); err != nil {
		return nil, err
	}
	written, err := do.insertRows(tx, stage, result)
	if err != nil {
		return nil, err
	}

	quotedTable := do.dialect.QuoteIdent(do.table)
	quotedStage := do.dialect.QuoteIdent(stage)

	if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s", quotedTable)); err != nil {
		return nil, fmt.Errorf("clear table: %w", err)
	}
	if _, err := tx.Exec(fmt.Sprintf("INSERT INTO %s SELECT * FROM %s", quotedTable, quotedStage)); err != nil {
		return nil, fmt.Errorf("swap staged rows: %w", err)
	}
	if _, err := tx.Exec(fmt.Sprintf("DROP TABLE %s", quotedStage)); err != nil {
		return nil, fmt.Errorf("drop stage table: %w", err)
	}

	return &ExportSummary{RowsWritten: written}, nil
}
