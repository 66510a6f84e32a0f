package kvstore

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLStoreGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT value FROM kv_blobs WHERE key = \\?").
		WithArgs("demo_token").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("abc123"))

	store := NewSQLStore(db, "sqlite")
	value, err := store.Get(context.Background(), "demo_token")
	require.NoError(t, err)
	assert.Equal(t, "abc123", value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreGetMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT value FROM kv_blobs WHERE key = \\?").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	store := NewSQLStore(db, "sqlite")
	_, err = store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreGetPostgresPlaceholder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT value FROM kv_blobs WHERE key = \\$1").
		WithArgs("demo_token").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("abc123"))

	store := NewSQLStore(db, "postgres")
	value, err := store.Get(context.Background(), "demo_token")
	require.NoError(t, err)
	assert.Equal(t, "abc123", value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreSetUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO kv_blobs").
		WithArgs("demo_token", "abc123", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	store := NewSQLStore(db, "sqlite")
	require.NoError(t, store.Set(context.Background(), "demo_token", "abc123"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM kv_blobs WHERE key = \\?").
		WithArgs("demo_token").
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewSQLStore(db, "sqlite")
	require.NoError(t, store.Delete(context.Background(), "demo_token"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
