// Package sqlite implements store.Driver on SQLite via modernc.org/sqlite.
// It is the default driver for development and the one the test suite runs
// against.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	// Imported for the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection.
type DB struct {
	db *sql.DB
}

// NewDB opens (or creates) the SQLite database at dsn.
func NewDB(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// The driver is not safe for concurrent writers on one file.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, errors.Wrap(err, "enable foreign keys")
	}
	return &DB{db: db}, nil
}

// GetDB returns the underlying sql.DB.
func (d *DB) GetDB() *sql.DB {
	return d.db
}

// Close closes the connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Migrate creates the schema if it does not exist.
func (d *DB) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS task (
			id          TEXT    PRIMARY KEY,
			creator_id  TEXT    NOT NULL,
			title       TEXT    NOT NULL,
			description TEXT    NOT NULL DEFAULT '',
			completed   BOOLEAN NOT NULL DEFAULT 0,
			row_status  TEXT    NOT NULL DEFAULT 'NORMAL',
			created_ts  BIGINT  NOT NULL DEFAULT (unixepoch()),
			updated_ts  BIGINT  NOT NULL DEFAULT (unixepoch())
		)`,
		`CREATE INDEX IF NOT EXISTS idx_task_creator_status ON task(creator_id, row_status)`,
		`CREATE TABLE IF NOT EXISTS chat_thread (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			uid        TEXT    NOT NULL UNIQUE,
			creator_id TEXT    NOT NULL,
			title      TEXT    NOT NULL DEFAULT 'New conversation',
			created_ts BIGINT  NOT NULL DEFAULT (unixepoch()),
			updated_ts BIGINT  NOT NULL DEFAULT (unixepoch())
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_thread_creator ON chat_thread(creator_id, updated_ts)`,
		`CREATE TABLE IF NOT EXISTS chat_message (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			uid            TEXT    NOT NULL UNIQUE,
			thread_id      INTEGER NOT NULL REFERENCES chat_thread(id) ON DELETE CASCADE,
			role           TEXT    NOT NULL,
			content        TEXT    NOT NULL,
			action_summary TEXT    NOT NULL DEFAULT '',
			created_ts     BIGINT  NOT NULL DEFAULT (unixepoch())
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_message_thread ON chat_message(thread_id)`,
	}
	for _, s := range stmts {
		if _, err := d.db.ExecContext(ctx, s); err != nil {
			return errors.Wrapf(err, "migrate: %.40s", s)
		}
	}
	return nil
}
