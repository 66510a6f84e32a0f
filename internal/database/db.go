package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bedside-care/bedside/internal/config"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Database wraps the SQL connection and owns all table access
type Database struct {
	db     *sql.DB
	driver string
	logger *zap.Logger
}

// New wraps an existing connection. Used by tests and by Open.
func New(db *sql.DB, driver string, logger *zap.Logger) *Database {
	return &Database{db: db, driver: driver, logger: logger}
}

// Open connects to the configured database with retries and runs migrations
func Open(cfg *config.Config, logger *zap.Logger) (*Database, error) {
	var (
		db      *sql.DB
		lastErr error
	)

	driverName := "sqlite3"
	dsn := cfg.Database.Path
	if cfg.Database.Driver == "postgres" {
		driverName = "postgres"
		dsn = cfg.Database.DSN
	} else {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %v", err)
		}
		if cfg.Database.WALMode {
			dsn += "?_journal=WAL"
		}
	}

	for i := 0; i < cfg.Database.MaxRetries; i++ {
		var err error
		db, err = sql.Open(driverName, dsn)
		if err == nil {
			err = db.Ping()
		}
		if err != nil {
			lastErr = fmt.Errorf("failed to connect to database: %v", err)
			logger.Warn("database connection attempt failed",
				zap.Int("attempt", i+1),
				zap.Int("max_retries", cfg.Database.MaxRetries),
				zap.Error(err),
			)
			time.Sleep(time.Duration(cfg.Database.RetryDelay) * time.Second)
			continue
		}
		lastErr = nil
		break
	}
	if lastErr != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %v", cfg.Database.MaxRetries, lastErr)
	}

	if cfg.Database.Driver != "postgres" {
		// SQLite only supports one writer
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(time.Hour)
	}

	d := New(db, cfg.Database.Driver, logger)
	if err := d.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to initialize tables: %v", err)
	}

	logger.Info("database initialized",
		zap.String("driver", cfg.Database.Driver),
		zap.Bool("wal_mode", cfg.Database.WALMode),
	)
	return d, nil
}

// DB exposes the raw connection for health checks
func (d *Database) DB() *sql.DB {
	return d.db
}

// Close closes the database connection
func (d *Database) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres. Queries in this package
// are written in sqlite style.
func (d *Database) rebind(query string) string {
	if d.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d *Database) exec(query string, args ...interface{}) (sql.Result, error) {
	return d.db.Exec(d.rebind(query), args...)
}

func (d *Database) queryRow(query string, args ...interface{}) *sql.Row {
	return d.db.QueryRow(d.rebind(query), args...)
}

func (d *Database) query(query string, args ...interface{}) (*sql.Rows, error) {
	return d.db.Query(d.rebind(query), args...)
}
