// Package store is the Storage Engine (spec §4.1): an embedded SQLite
// database providing ACID single-writer transactions, schema migrations,
// and the base CRUD primitives every other package builds on.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/logging"

	_ "github.com/mattn/go-sqlite3"
)

var log = logging.GetLogger("store")

// Querier is satisfied by both *sql.DB and *sql.Tx, letting every operation
// function in this package run either against the live connection (reads)
// or inside a transaction (writes), per spec §4.1's "reads outside a
// transaction observe the latest committed state".
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store owns the single writer connection to the embedded database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the SQLite database at path and
// initializes its schema.
func Open(path string) (*Store, error) {
	log.Info("opening database", "path", path)

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows exactly one writer; a single pooled connection keeps
	// every write serialized through it (spec §5 scheduling model).
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.bootstrapStatuses(); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("database ready", "path", path)
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for read-only queries outside a
// transaction.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema() error {
	var name string
	err := s.db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='items' LIMIT 1`).Scan(&name)
	if err == nil && name != "" {
		log.Debug("schema already initialized")
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(CoreSchema); err != nil {
		return fmt.Errorf("failed to create core schema: %w", err)
	}

	if _, err := tx.Exec(`INSERT OR REPLACE INTO schema_version (version, applied_at) VALUES (?, CURRENT_TIMESTAMP)`, SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return tx.Commit()
}

func (s *Store) bootstrapStatuses() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM statuses`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count statuses: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, st := range BootstrapStatuses {
		if _, err := tx.Exec(
			`INSERT INTO statuses (name, is_closable, sort_order) VALUES (?, ?, ?)`,
			st.Name, st.IsClosable, i,
		); err != nil {
			return fmt.Errorf("failed to bootstrap status %q: %w", st.Name, err)
		}
	}

	return tx.Commit()
}

// Transaction runs fn inside a single ACID transaction, rolling back on any
// error fn returns (spec §4.1: "all multi-table mutations that together
// preserve invariants I1-I6 must run inside one transaction").
func (s *Store) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSchemaVersion returns the currently applied schema version.
func (s *Store) GetSchemaVersion() (int, error) {
	var version int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
