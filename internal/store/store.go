// Package store owns the on-disk SQLite representation of one ingested
// catalog and the single connection through which it is queried.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/elwood/romcat/internal/util"
)

// Store wraps one SQLite connection. All access to db is serialized through
// mu: prepare, execute, and row decoding for one call run to completion
// before the next caller's call begins.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// Open opens an existing catalog file read-write (SQLite still needs write
// access for its rollback journal even on read-only workloads). It returns
// util.ErrNotFound if path does not exist, rather than letting the driver
// silently create an empty, table-less database.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", util.ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", util.ErrStoreUnavailable, path, err)
	}

	dsn := fmt.Sprintf("file:%s?_timeout=5000&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", util.ErrStoreUnavailable, path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: open %s: %v", util.ErrStoreUnavailable, path, err)
	}

	return &Store{db: db, path: path}, nil
}

// openMemory opens a fresh in-memory database and creates the schema in it.
// Used only by the writer during ingestion.
func openMemory() (*Store, error) {
	db, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("%w: open in-memory store: %v", util.ErrIngestWriteFailed, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create schema: %v", util.ErrIngestWriteFailed, err)
	}
	return s, nil
}

// Close closes the underlying connection and evicts it from the
// process-wide path cache, if it was opened through OpenCached.
func (s *Store) Close() error {
	if s.path != "" {
		forget(s.path)
	}
	return s.db.Close()
}

// DB returns the underlying connection for callers that need direct access
// (the writer's transactional batch inserts, and VACUUM INTO).
func (s *Store) DB() *sql.DB {
	return s.db
}

// SQLiteVersion reports the SQLite library version compiled into the
// modernc.org/sqlite driver in use.
func SQLiteVersion() string {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return ""
	}
	defer db.Close()

	var version string
	if err := db.QueryRow("SELECT sqlite_version()").Scan(&version); err != nil {
		return ""
	}
	return version
}

// CheckIntegrity runs PRAGMA integrity_check against the store.
func (s *Store) CheckIntegrity() error {
	var result string
	if err := s.db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("%w: integrity check: %v", util.ErrQueryFailed, err)
	}
	if result != "ok" {
		return fmt.Errorf("%w: integrity check failed: %s", util.ErrQueryFailed, result)
	}
	return nil
}

// Transaction runs fn inside a transaction, committing on success and
// rolling back on any error fn returns.
func (s *Store) Transaction(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", util.ErrIngestWriteFailed, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit transaction: %v", util.ErrIngestWriteFailed, err)
	}
	return nil
}

// Query runs a parameterized statement and passes the resulting rows to
// scan, holding the store's lock for the statement's entire lifetime -
// prepare, execute, and row decoding all complete before the lock is
// released, so concurrent callers queue rather than interleave.
func (s *Store) Query(ctx context.Context, query string, args []any, scan func(*sql.Rows) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %v", util.ErrQueryFailed, err)
	}
	defer rows.Close()

	if err := scan(rows); err != nil {
		return fmt.Errorf("%w: %v", util.ErrQueryFailed, err)
	}
	return rows.Err()
}
