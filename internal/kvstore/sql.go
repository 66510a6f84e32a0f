package kvstore

import (
	"context"
	"database/sql"
	"time"
)

// SQLStore keeps blobs in the kv_blobs table of the main database
type SQLStore struct {
	db     *sql.DB
	driver string
}

// NewSQLStore creates a Store backed by the given connection.
// driver is "sqlite" or "postgres".
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	query := "SELECT value FROM kv_blobs WHERE key = ?"
	if s.driver == "postgres" {
		query = "SELECT value FROM kv_blobs WHERE key = $1"
	}
	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value string) error {
	query := `
		INSERT INTO kv_blobs (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if s.driver == "postgres" {
		query = `
			INSERT INTO kv_blobs (key, value, updated_at) VALUES ($1, $2, $3)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`
	}
	_, err := s.db.ExecContext(ctx, query, key, value, time.Now())
	return err
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	query := "DELETE FROM kv_blobs WHERE key = ?"
	if s.driver == "postgres" {
		query = "DELETE FROM kv_blobs WHERE key = $1"
	}
	_, err := s.db.ExecContext(ctx, query, key)
	return err
}
