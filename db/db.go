// Package db owns the durable relational store: the users and reminders
// tables, their additive migration path, and the change notifier that
// backs live queries.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Table names published through the Notifier.
const (
	TableUsers     = "users"
	TableReminders = "reminders"
)

// Default accounts seeded by the migration. Ids are fixed so that
// re-running the migration is a no-op (INSERT OR IGNORE keyed by id)
// and so that pre-multi-user reminders can default to account 1.
var defaultUsers = []struct {
	ID          int64
	Username    string
	Password    string
	DisplayName string
	Email       string
}{
	{1, "admin", "123456", "Administrator", "admin@example.com"},
	{2, "user", "password", "Regular User", "user@example.com"},
	{3, "test", "test123", "Test User", "test@example.com"},
}

// Store wraps the SQLite handle. It is constructed once at the
// composition root and injected; Rebuild is the only operation that
// replaces the underlying handle.
type Store struct {
	mu       sync.Mutex
	sql      *sql.DB
	path     string
	notifier *Notifier
}

func Open(path string) (*Store, error) {
	handle, err := open(path)
	if err != nil {
		return nil, err
	}
	return &Store{sql: handle, path: path, notifier: NewNotifier()}, nil
}

func open(path string) (*sql.DB, error) {
	handle, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := migrate(handle); err != nil {
		handle.Close()
		return nil, err
	}
	return handle, nil
}

// migrate brings any prior schema up to the multi-user layout. Every
// step is idempotent: running it twice leaves the same schema and data
// as running it once.
func migrate(handle *sql.DB) error {
	now := time.Now().UnixMilli()

	createUsers := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		displayName TEXT NOT NULL,
		email TEXT,
		createdAt INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reminders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		userId INTEGER NOT NULL DEFAULT 1,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		createdAt INTEGER NOT NULL,
		updatedAt INTEGER NOT NULL,
		category TEXT NOT NULL DEFAULT 'Default',
		priority INTEGER NOT NULL DEFAULT 0
	);
	`
	if _, err := handle.Exec(createUsers); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	for _, u := range defaultUsers {
		_, err := handle.Exec(
			"INSERT OR IGNORE INTO users (id, username, password, displayName, email, createdAt) VALUES (?, ?, ?, ?, ?, ?)",
			u.ID, u.Username, u.Password, u.DisplayName, u.Email, now)
		if err != nil {
			return fmt.Errorf("seed default users: %w", err)
		}
	}

	// A single-user database has a reminders table without the userId
	// column. Adding it fails with "duplicate column name" on the
	// current schema, which is the expected no-op.
	if _, err := handle.Exec("ALTER TABLE reminders ADD COLUMN userId INTEGER NOT NULL DEFAULT 1"); err != nil {
		if !strings.Contains(err.Error(), "duplicate column name") {
			return fmt.Errorf("add userId column: %w", err)
		}
	}

	createIndices := `
	CREATE INDEX IF NOT EXISTS index_reminders_userId ON reminders(userId);
	CREATE INDEX IF NOT EXISTS index_reminders_createdAt ON reminders(createdAt);
	CREATE INDEX IF NOT EXISTS index_reminders_category ON reminders(category);
	`
	if _, err := handle.Exec(createIndices); err != nil {
		return fmt.Errorf("create indices: %w", err)
	}

	return nil
}

// DB returns the current SQL handle.
func (s *Store) DB() *sql.DB {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sql
}

// Notifier returns the store's change notifier.
func (s *Store) Notifier() *Notifier {
	return s.notifier
}

// Notify publishes a change on the given table. Repositories call this
// after every committed write.
func (s *Store) Notify(table string) {
	s.notifier.Publish(table)
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sql.Close()
}

// Rebuild is the explicit destructive maintenance operation: it closes
// and discards the handle before deleting the database file, then
// reopens a fresh one. It is never triggered by the migration itself.
func (s *Store) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sql.Close(); err != nil {
		return fmt.Errorf("close before rebuild: %w", err)
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove database file: %w", err)
	}

	handle, err := open(s.path)
	if err != nil {
		return err
	}
	s.sql = handle

	s.notifier.Publish(TableUsers)
	s.notifier.Publish(TableReminders)
	return nil
}
