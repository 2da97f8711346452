// Package storage is the record store gateway: filtered queries and writes
// against the contributors and contributions tables. Every call is a fresh
// round trip; nothing is cached or retried here.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dizimo/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const (
	dateLayout = "2006-01-02"
	tsLayout   = time.RFC3339
)

func encodeDate(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func decodeDate(s string) core.Date {
	if s == "" {
		return core.Date{}
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}
	}
	return core.DateOf(t)
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

func decodeTime(s string) time.Time {
	t, err := time.Parse(tsLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
