// internal/database/sqlite.go
// SQLite storage for digest snapshots
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var ErrNotFound = errors.New("record not found")

const Schema = `
-- Snapshots table, one row per blob name
CREATE TABLE IF NOT EXISTS snapshots (
    name TEXT PRIMARY KEY,
    content BLOB NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// DB represents our database connection and operations
type DB struct {
	*sql.DB
}

// Configuration for the database
type Config struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConfig returns the default database configuration. A batch run
// writes once, so the pool stays small.
func DefaultConfig() Config {
	return Config{
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 5 * time.Minute,
	}
}

// NewDB opens the SQLite file at dbPath and makes sure the schema exists.
func NewDB(dbPath string, cfg Config) (*DB, error) {
	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL", dbPath)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if err := createSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating schema: %w", err)
	}

	return &DB{db}, nil
}

func createSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("error executing schema: %w", err)
	}
	return tx.Commit()
}

// WriteBlob replaces the content stored under name in a single transaction.
func (db *DB) WriteBlob(ctx context.Context, name string, content []byte) error {
	if name == "" {
		return fmt.Errorf("blob name is required")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
        INSERT INTO snapshots (name, content, updated_at)
        VALUES (?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(name) DO UPDATE SET
            content = excluded.content,
            updated_at = excluded.updated_at`,
		name, content)
	if err != nil {
		return fmt.Errorf("error writing snapshot %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing snapshot %s: %w", name, err)
	}
	return nil
}

// ReadBlob returns the content stored under name, or ErrNotFound.
func (db *DB) ReadBlob(ctx context.Context, name string) ([]byte, error) {
	var content []byte
	err := db.QueryRowContext(ctx, "SELECT content FROM snapshots WHERE name = ?", name).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading snapshot %s: %w", name, err)
	}
	return content, nil
}
