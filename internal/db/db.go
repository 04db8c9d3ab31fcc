// Package db manages the SQLite readings journal.
//
// The journal is append-only: readings are written as they are recorded and
// read back only for reporting. It is never used to rebuild in-memory history.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
)

// DB wraps the SQL database connection with journal methods.
type DB struct {
	*sql.DB
	path string
}

// New opens the journal at path and initializes the schema.
func New(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:   sqlDB,
		path: path,
	}

	if err := db.configure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := db.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if err := db.normalizeTimestamps(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

func (db *DB) createSchema() error {
	if err := db.createReadingsTable(); err != nil {
		return err
	}
	return db.createFetchErrorsTable()
}

func (db *DB) createReadingsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		reading_type TEXT NOT NULL,
		bucket_ts INTEGER NOT NULL,
		value REAL NOT NULL,
		native_value REAL NOT NULL,
		recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(reading_type, bucket_ts)
	);
	CREATE INDEX IF NOT EXISTS idx_readings_type_ts ON readings(reading_type, bucket_ts);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createFetchErrorsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS fetch_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		reading_type TEXT NOT NULL,
		kind TEXT NOT NULL,
		status_code INTEGER DEFAULT 0,
		message TEXT,
		occurred_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_fetch_errors_time ON fetch_errors(occurred_at);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

// Close checkpoints the WAL and closes the connection.
func (db *DB) Close() error {
	_, _ = db.ExecContext(context.Background(), "PRAGMA wal_checkpoint(TRUNCATE)")
	return db.DB.Close()
}

// Vacuum reclaims space after pruning.
func (db *DB) Vacuum() error {
	_, err := db.ExecContext(context.Background(), "VACUUM")
	return err
}
