package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log"
	"net/url"
	"sync"

	_ "modernc.org/sqlite"
)

// schemaSQL is shared by the SQLite and PostgreSQL exporters.
//
//go:embed schema.sql
var schemaSQL string

// sqlitePragmas are applied by the driver to every new connection
var sqlitePragmas = []string{
	"journal_mode(WAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
}

// DB is a SQLite snapshot store. Writes are serialized through writeMu.
type DB struct {
	conn    *sql.DB
	path    string
	writeMu sync.Mutex
}

// Connect opens (creating if needed) the SQLite database at dbPath
func Connect(ctx context.Context, dbPath string) (*DB, error) {
	q := url.Values{"_pragma": sqlitePragmas}
	conn, err := sql.Open("sqlite", dbPath+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite has a single writer and an export is one transaction.
	conn.SetMaxOpenConns(1)

	var journal string
	if err := conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journal); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Connected to SQLite database: %s (journal=%s)", dbPath, journal)
	return &DB{conn: conn, path: dbPath}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// LockWrite acquires the write mutex. Must be paired with UnlockWrite.
func (db *DB) LockWrite() {
	db.writeMu.Lock()
}

// UnlockWrite releases the write mutex.
func (db *DB) UnlockWrite() {
	db.writeMu.Unlock()
}

// EnsureSchema creates the snapshot tables if they don't exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	db.LockWrite()
	defer db.UnlockWrite()

	if _, err := db.conn.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema in %s: %w", db.path, err)
	}
	return nil
}

// Schema returns the embedded DDL, e.g. for provisioning PostgreSQL by hand.
func Schema() string {
	return schemaSQL
}
