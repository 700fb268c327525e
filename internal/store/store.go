package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/muurk/orderdesk/internal/logging"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

var (
	// ErrNotFound is returned when a record, product or order does not exist
	ErrNotFound = errors.New("not found")
	// ErrAccessDenied is returned for restricted records
	ErrAccessDenied = errors.New("access denied")
	// ErrValidation is returned when an order is rejected
	ErrValidation = errors.New("validation failed")
)

// Store is the SQLite-backed catalog, record and order storage of the demo
// backend
type Store struct {
	db     *sql.DB
	mu     sync.Mutex // serializes order creation
	dbPath string
}

// Open initializes the SQLite database at path. MemoryPath gives an empty
// private database.
func Open(path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == MemoryPath {
		// every connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, err
	}

	logging.Debug("Store opened", zap.String("path", path))
	return s, nil
}

// initialize creates the required tables
func (s *Store) initialize() error {
	productsTable := `
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		code TEXT NOT NULL DEFAULT '',
		family TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1
	);
	CREATE INDEX IF NOT EXISTS idx_products_family ON products(family);
	CREATE INDEX IF NOT EXISTS idx_products_name ON products(name);
	`

	recordsTable := `
	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		object TEXT NOT NULL,
		restricted INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS record_fields (
		record_id TEXT NOT NULL REFERENCES records(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		value_json TEXT NOT NULL,
		PRIMARY KEY (record_id, name)
	);
	`

	ordersTable := `
	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL UNIQUE,
		number TEXT NOT NULL UNIQUE,
		parent_id TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS order_lines (
		order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		product_id TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		PRIMARY KEY (order_id, position)
	);
	CREATE INDEX IF NOT EXISTS idx_orders_parent ON orders(parent_id);
	`

	for _, table := range []string{productsTable, recordsTable, ordersTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database path the store was opened with
func (s *Store) Path() string {
	return s.dbPath
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
