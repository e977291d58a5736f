// Package mysql implements store.Driver on MySQL via go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

// DB wraps a MySQL connection.
type DB struct {
	db *sql.DB
}

// parseDSN prepares the connection config. ClientFoundRows makes UPDATE
// report matched rows instead of changed rows; UpdateTask relies on the
// matched count, otherwise a no-op mutation on an existing task reads as
// not found.
func parseDSN(dsn string) (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "parse mysql dsn")
	}
	cfg.ClientFoundRows = true
	return cfg, nil
}

// NewDB opens a MySQL connection with the given DSN.
func NewDB(dsn string) (*DB, error) {
	cfg, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, errors.Wrap(err, "open mysql")
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
		"CREATE TABLE IF NOT EXISTS `task` (" +
			"`id` VARCHAR(36) NOT NULL PRIMARY KEY, " +
			"`creator_id` VARCHAR(256) NOT NULL, " +
			"`title` TEXT NOT NULL, " +
			"`description` TEXT NOT NULL, " +
			"`completed` BOOLEAN NOT NULL DEFAULT FALSE, " +
			"`row_status` VARCHAR(16) NOT NULL DEFAULT 'NORMAL', " +
			"`created_ts` BIGINT NOT NULL, " +
			"`updated_ts` BIGINT NOT NULL, " +
			"INDEX `idx_task_creator_status` (`creator_id`, `row_status`))",
		"CREATE TABLE IF NOT EXISTS `chat_thread` (" +
			"`id` INT NOT NULL AUTO_INCREMENT PRIMARY KEY, " +
			"`uid` VARCHAR(256) NOT NULL UNIQUE, " +
			"`creator_id` VARCHAR(256) NOT NULL, " +
			"`title` TEXT NOT NULL, " +
			"`created_ts` BIGINT NOT NULL, " +
			"`updated_ts` BIGINT NOT NULL)",
		"CREATE TABLE IF NOT EXISTS `chat_message` (" +
			"`id` INT NOT NULL AUTO_INCREMENT PRIMARY KEY, " +
			"`uid` VARCHAR(36) NOT NULL UNIQUE, " +
			"`thread_id` INT NOT NULL, " +
			"`role` VARCHAR(32) NOT NULL, " +
			"`content` TEXT NOT NULL, " +
			"`action_summary` TEXT NOT NULL, " +
			"`created_ts` BIGINT NOT NULL, " +
			"INDEX `idx_chat_message_thread` (`thread_id`), " +
			"CONSTRAINT `fk_chat_message_thread` FOREIGN KEY (`thread_id`) REFERENCES `chat_thread`(`id`) ON DELETE CASCADE)",
	}
	for _, s := range stmts {
		if _, err := d.db.ExecContext(ctx, s); err != nil {
			return errors.Wrapf(err, "migrate: %.40s", s)
		}
	}
	return nil
}
