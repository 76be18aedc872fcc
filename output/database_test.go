package output_test

import (
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/khaledserafy/gobarb/adapters"
	"github.com/khaledserafy/gobarb/core"
	"github.com/khaledserafy/gobarb/output"
)

func sqliteDialect(t *testing.T) adapters.Dialect {
	t.Helper()

	adapter, err := adapters.Get("sqlite")
	require.NoError(t, err)
	return adapter.Dialect()
}

func TestDatabase_CreateAndInsert(t *testing.T) {
	r := require.New(t)

	db, dbmock, err := sqlmock.New()
	r.NoError(err)
	defer db.Close()

	dbmock.ExpectBegin()
	dbmock.ExpectQuery(`SELECT 1 FROM sqlite_master`).
		WithArgs("ratings").
		WillReturnError(sql.ErrNoRows)
	dbmock.ExpectExec(`CREATE TABLE "ratings" \("station_code" INTEGER, "prog_name" TEXT\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	prepared := dbmock.ExpectPrepare(`INSERT INTO "ratings" \("station_code", "prog_name"\) VALUES \(\?, \?\)`)
	prepared.ExpectExec().WithArgs(int64(1), "News").WillReturnResult(sqlmock.NewResult(1, 1))
	prepared.ExpectExec().WithArgs(int64(2), "Weather").WillReturnResult(sqlmock.NewResult(2, 1))
	dbmock.ExpectCommit()

	out := output.NewDatabaseWithConn(db, sqliteDialect(t), "ratings")
	summary, err := out.Write(testResult(
		core.Row{int64(1), "News"},
		core.Row{int64(2), "Weather"},
	))
	r.NoError(err)
	r.Equal(2, summary.RowsWritten)
	r.NoError(dbmock.ExpectationsWereMet())
}

func postgresDialect(t *testing.T) adapters.Dialect {
	t.Helper()

	adapter, err := adapters.Get("postgres")
	require.NoError(t, err)
	return adapter.Dialect()
}

func TestDatabase_PostgresScopesExistenceCheckToSchema(t *testing.T) {
	r := require.New(t)

	db, dbmock, err := sqlmock.New()
	r.NoError(err)
	defer db.Close()

	dbmock.ExpectBegin()
	// a same-named table in another schema must not suppress CREATE TABLE
	dbmock.ExpectQuery(`SELECT 1 FROM information_schema\.tables WHERE table_name = \$1 AND table_schema = current_schema\(\)`).
		WithArgs("ratings").
		WillReturnError(sql.ErrNoRows)
	dbmock.ExpectExec(`CREATE TABLE "ratings" \("station_code" BIGINT, "prog_name" TEXT\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	prepared := dbmock.ExpectPrepare(`INSERT INTO "ratings" \("station_code", "prog_name"\) VALUES \(\$1, \$2\)`)
	prepared.ExpectExec().WithArgs(int64(1), "News").WillReturnResult(sqlmock.NewResult(1, 1))
	dbmock.ExpectCommit()

	out := output.NewDatabaseWithConn(db, postgresDialect(t), "ratings")
	summary, err := out.Write(testResult(core.Row{int64(1), "News"}))
	r.NoError(err)
	r.Equal(1, summary.RowsWritten)
	r.NoError(dbmock.ExpectationsWereMet())
}

func TestDatabase_AppendToExisting(t *testing.T) {
	r := require.New(t)

	db, dbmock, err := sqlmock.New()
	r.NoError(err)
	defer db.Close()

	dbmock.ExpectBegin()
	dbmock.ExpectQuery(`SELECT 1 FROM sqlite_master`).
		WithArgs("ratings").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	dbmock.ExpectQuery(`SELECT \* FROM "ratings" WHERE 1 = 0`).
		WillReturnRows(sqlmock.NewRows([]string{"station_code", "prog_name"}))
	prepared := dbmock.ExpectPrepare(`INSERT INTO "ratings"`)
	prepared.ExpectExec().WithArgs(int64(3), "Sport").WillReturnResult(sqlmock.NewResult(3, 1))
	dbmock.ExpectCommit()

	out := output.NewDatabaseWithConn(db, sqliteDialect(t), "ratings")
	summary, err := out.Write(testResult(core.Row{int64(3), "Sport"}))
	r.NoError(err)
	r.Equal(1, summary.RowsWritten)
	r.NoError(dbmock.ExpectationsWereMet())
}

func TestDatabase_SchemaMismatchRollsBack(t *testing.T) {
	r := require.New(t)

	db, dbmock, err := sqlmock.New()
	r.NoError(err)
	defer db.Close()

	dbmock.ExpectBegin()
	dbmock.ExpectQuery(`SELECT 1 FROM sqlite_master`).
		WithArgs("ratings").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	dbmock.ExpectQuery(`SELECT \* FROM "ratings" WHERE 1 = 0`).
		WillReturnRows(sqlmock.NewRows([]string{"completely", "different"}))
	dbmock.ExpectRollback()

	out := output.NewDatabaseWithConn(db, sqliteDialect(t), "ratings")
	_, err = out.Write(testResult(core.Row{int64(1), "News"}))

	var xerr *output.ExportError
	r.ErrorAs(err, &xerr)
	r.NoError(dbmock.ExpectationsWereMet())
}

func TestDatabase_InsertFailureRollsBack(t *testing.T) {
	r := require.New(t)

	db, dbmock, err := sqlmock.New()
	r.NoError(err)
	defer db.Close()

	dbmock.ExpectBegin()
	dbmock.ExpectQuery(`SELECT 1 FROM sqlite_master`).
		WithArgs("ratings").
		WillReturnError(sql.ErrNoRows)
	dbmock.ExpectExec(`CREATE TABLE "ratings"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	prepared := dbmock.ExpectPrepare(`INSERT INTO "ratings"`)
	prepared.ExpectExec().WithArgs(int64(1), "News").WillReturnError(sql.ErrConnDone)
	dbmock.ExpectRollback()

	out := output.NewDatabaseWithConn(db, sqliteDialect(t), "ratings")
	_, err = out.Write(testResult(core.Row{int64(1), "News"}))

	var xerr *output.ExportError
	r.ErrorAs(err, &xerr)
	r.NoError(dbmock.ExpectationsWereMet())
}

func TestDatabase_Replace(t *testing.T) {
	r := require.New(t)

	db, dbmock, err := sqlmock.New()
	r.NoError(err)
	defer db.Close()

	dbmock.ExpectBegin()
	dbmock.ExpectQuery(`SELECT 1 FROM sqlite_master`).
		WithArgs("ratings").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	dbmock.ExpectQuery(`SELECT \* FROM "ratings" WHERE 1 = 0`).
		WillReturnRows(sqlmock.NewRows([]string{"station_code", "prog_name"}))
	dbmock.ExpectExec(`CREATE TABLE "ratings_stage_`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	prepared := dbmock.ExpectPrepare(`INSERT INTO "ratings_stage_`)
	prepared.ExpectExec().WithArgs(int64(1), "News").WillReturnResult(sqlmock.NewResult(1, 1))
	dbmock.ExpectExec(`DELETE FROM "ratings"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	dbmock.ExpectExec(`INSERT INTO "ratings" SELECT \* FROM "ratings_stage_`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbmock.ExpectExec(`DROP TABLE "ratings_stage_`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	dbmock.ExpectCommit()

	out := output.NewDatabaseWithConn(db, sqliteDialect(t), "ratings", output.WithReplace())
	summary, err := out.Write(testResult(core.Row{int64(1), "News"}))
	r.NoError(err)
	r.Equal(1, summary.RowsWritten)
	r.NoError(dbmock.ExpectationsWereMet())
}
