package handler

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luizstacio/fuel-indexer/dialect"
	sqlbuilder "github.com/luizstacio/fuel-indexer/dialect/sql"
)

func newTestDB(t *testing.T) (*DB, sqlmock.Sqlmock, dialect.Tx) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	drv := sqlbuilder.OpenDB(dialect.Postgres, sqldb)

	mock.ExpectBegin()
	tx, err := drv.Tx(context.Background())
	require.NoError(t, err)

	return NewDB(tx, dialect.NewPostgres(), "ns", "idx"), mock, tx
}

func TestDB_Get_Found(t *testing.T) {
	db, mock, _ := newTestDB(t)
	mock.ExpectQuery(`SELECT \* FROM "ns_idx"."block"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "height"}).AddRow("1", int64(10)))

	row, err := db.Get(context.Background(), "block", "1")
	require.NoError(t, err)
	assert.Equal(t, "1", row["id"])
	assert.Equal(t, int64(10), row["height"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_Get_Missing(t *testing.T) {
	db, mock, _ := newTestDB(t)
	mock.ExpectQuery(`SELECT \* FROM "ns_idx"."block"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "height"}))

	row, err := db.Get(context.Background(), "block", "404")
	require.NoError(t, err)
	assert.Nil(t, row)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_Put_UpdatesWhenRowExists(t *testing.T) {
	db, mock, _ := newTestDB(t)
	mock.ExpectExec(`UPDATE "ns_idx"."block" SET "height" = \$1 WHERE "id" = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := db.Put(context.Background(), "block", map[string]any{"id": "1", "height": int64(11)})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_Put_InsertsWhenRowAbsent(t *testing.T) {
	db, mock, _ := newTestDB(t)
	mock.ExpectExec(`UPDATE "ns_idx"."block" SET "height" = \$1 WHERE "id" = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO "ns_idx"."block"`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := db.Put(context.Background(), "block", map[string]any{"id": "1", "height": int64(11)})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_Delete(t *testing.T) {
	db, mock, _ := newTestDB(t)
	mock.ExpectExec(`DELETE FROM "ns_idx"."block" WHERE "id" = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := db.Delete(context.Background(), "block", "1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
