// Package db implements the storage collaborator on SQLite.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

var (
	// ErrConcurrentModification is returned when a template save carries a
	// stale updated_at and would clobber a newer concurrent edit.
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrNotFound is returned by lookups whose callers branch on absence.
	ErrNotFound = errors.New("not found")
)

// DB wraps the SQLite connection.
type DB struct {
	*sql.DB
	logger zerolog.Logger
}

// New opens (creating if needed) the database at path and runs migrations.
func New(path string, logger zerolog.Logger) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(time.Hour)

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(conn); err != nil {
		return nil, err
	}

	return &DB{DB: conn, logger: logger.With().Str("component", "db").Logger()}, nil
}

func createTables(conn *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS staff (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'coach',
			shift_type TEXT NOT NULL DEFAULT 'day',
			contract_start DATETIME,
			contract_end DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// One row per template day; a save replaces all rows of the
		// (staff, week) key in one transaction.
		`CREATE TABLE IF NOT EXISTS weekly_template_days (
			staff_id TEXT NOT NULL,
			week_start DATETIME NOT NULL,
			weekday TEXT NOT NULL,
			is_holiday BOOLEAN NOT NULL DEFAULT 0,
			work_start INTEGER NOT NULL DEFAULT 0,
			work_end INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (staff_id, week_start, weekday)
		)`,

		`CREATE TABLE IF NOT EXISTS weekly_template_breaks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			staff_id TEXT NOT NULL,
			week_start DATETIME NOT NULL,
			weekday TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			break_start INTEGER NOT NULL,
			break_end INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_template_breaks_key
			ON weekly_template_breaks(staff_id, week_start, weekday)`,

		`CREATE TABLE IF NOT EXISTS daily_overrides (
			staff_id TEXT NOT NULL,
			date DATETIME NOT NULL,
			is_holiday BOOLEAN NOT NULL DEFAULT 0,
			work_start INTEGER NOT NULL DEFAULT 0,
			work_end INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (staff_id, date)
		)`,

		// Events are never deleted; cancellation flips status.
		`CREATE TABLE IF NOT EXISTS schedule_events (
			id TEXT PRIMARY KEY,
			staff_id TEXT NOT NULL,
			start_time DATETIME NOT NULL,
			end_time DATETIME NOT NULL,
			type TEXT NOT NULL,
			source_type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_staff_time
			ON schedule_events(staff_id, start_time)`,

		`CREATE TABLE IF NOT EXISTS schedule_audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			actor_id TEXT NOT NULL DEFAULT '',
			action TEXT NOT NULL,
			entity TEXT NOT NULL,
			entity_id TEXT NOT NULL DEFAULT '',
			details TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, q := range queries {
		if _, err := conn.Exec(q); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// PingContext checks the connection, for readiness probes.
func (db *DB) PingContext(ctx context.Context) error {
	return db.DB.PingContext(ctx)
}
