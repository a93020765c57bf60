// Package archive implements the Director's SQLite archive sink (spec §4.5a):
// a queryable record of every highlight and commentary item the Director has
// ever emitted, written alongside (never instead of) the Output Writer.
package archive

import (
	"database/sql"
	"embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB wraps a SQLite database connection.
type DB struct {
	*sql.DB
}

// Open opens (creating if necessary) the SQLite database at dataSourceName
// and enables foreign key enforcement.
func Open(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open archive database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations applies the embedded schema. It is safe to call on every
// startup: every statement uses CREATE TABLE/INDEX IF NOT EXISTS.
func (db *DB) RunMigrations() error {
	migration, err := migrations.ReadFile("migrations/001_initial_schema.up.sql")
	if err != nil {
		return fmt.Errorf("read embedded migration: %w", err)
	}

	if _, err := db.Exec(string(migration)); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}
