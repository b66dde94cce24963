package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdxmph/tasks-tui/internal/storage"
)

// ErrNotFound is returned by Open when no database exists at the path
var ErrNotFound = errors.New("database not found")

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection
func Open(dbPath string) (*DB, error) {
	// Check if DB exists
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w at %s\nRun 'tasks-tui init' to create it", ErrNotFound, dbPath)
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}

	// Run any pending migrations
	if err := db.RunMigrations(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

// OpenOrCreate opens the database, initializing it first if it does not exist
func OpenOrCreate(dbPath string) (*DB, error) {
	db, err := Open(dbPath)
	if errors.Is(err, ErrNotFound) {
		if err := Initialize(dbPath); err != nil {
			return nil, err
		}
		return Open(dbPath)
	}
	return db, err
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Name returns the backend identifier
func (db *DB) Name() string {
	return "sqlite"
}

// Get returns the value stored under key
func (db *DB) Get(key string) (string, bool, error) {
	var value string
	err := db.conn.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, true, nil
}

// Set overwrites the value stored under key
func (db *DB) Set(key, value string) error {
	query := `
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
		    value = excluded.value,
		    updated_at = CURRENT_TIMESTAMP
	`
	if _, err := db.conn.Exec(query, key, value); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (db *DB) Delete(key string) error {
	if _, err := db.conn.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// ListEntries returns every stored entry ordered by key
func (db *DB) ListEntries() ([]Entry, error) {
	rows, err := db.conn.Query(`SELECT key, length(value), updated_at FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Size, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Register the sqlite backend
func init() {
	storage.Register("sqlite", func(path string) (storage.Backend, error) {
		if path == "" {
			return nil, errors.New("sqlite backend requires a path")
		}
		return OpenOrCreate(path)
	})
}
