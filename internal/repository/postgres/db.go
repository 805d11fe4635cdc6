package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Connect opens a connection pool to the PostgreSQL database.
func Connect(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return db, nil
}

// Migrate applies a schema script, e.g. migrations/001_initial.up.sql.
// The scripts are idempotent.
func Migrate(ctx context.Context, db *sql.DB, script string) error {
	if _, err := db.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}
