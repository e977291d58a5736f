// Package postgres implements store.Driver on PostgreSQL via lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	// Imported for the "postgres" database/sql driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// DB wraps a PostgreSQL connection.
type DB struct {
	db *sql.DB
}

// NewDB opens a PostgreSQL connection with the given DSN.
func NewDB(dsn string) (*DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
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
			completed   BOOLEAN NOT NULL DEFAULT FALSE,
			row_status  TEXT    NOT NULL DEFAULT 'NORMAL',
			created_ts  BIGINT  NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW()),
			updated_ts  BIGINT  NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())
		)`,
		`CREATE INDEX IF NOT EXISTS idx_task_creator_status ON task(creator_id, row_status)`,
		`CREATE TABLE IF NOT EXISTS chat_thread (
			id         SERIAL  PRIMARY KEY,
			uid        TEXT    NOT NULL UNIQUE,
			creator_id TEXT    NOT NULL,
			title      TEXT    NOT NULL DEFAULT 'New conversation',
			created_ts BIGINT  NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW()),
			updated_ts BIGINT  NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_thread_creator ON chat_thread(creator_id, updated_ts)`,
		`CREATE TABLE IF NOT EXISTS chat_message (
			id             SERIAL  PRIMARY KEY,
			uid            TEXT    NOT NULL UNIQUE,
			thread_id      INTEGER NOT NULL REFERENCES chat_thread(id) ON DELETE CASCADE,
			role           TEXT    NOT NULL,
			content        TEXT    NOT NULL,
			action_summary TEXT    NOT NULL DEFAULT '',
			created_ts     BIGINT  NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())
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

func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
