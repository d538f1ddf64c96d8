package storage

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jask/sangam/internal/ledger"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// RunMigrations applies all up migrations to the sqlite file at path.
func RunMigrations(path string) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite3://"+path)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// SQLite stores the document as a single row in a documents table.
type SQLite struct {
	db  *sql.DB
	def ledger.Document
}

// OpenSQLite opens the sqlite file with the defaults that suit a
// single-operator tool. The schema must already be migrated.
func OpenSQLite(path string, def ledger.Document) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)
	return &SQLite{db: db, def: def}, nil
}

// Load reads the whole document, or returns the seeded default when no row
// exists yet.
func (s *SQLite) Load() (ledger.Document, error) {
	var body string
	err := s.db.QueryRow(`SELECT body FROM documents WHERE key = ?`, DocumentKey).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return s.def, nil
	}
	if err != nil {
		return ledger.Document{}, fmt.Errorf("read document: %w", err)
	}
	var doc ledger.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return ledger.Document{}, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// Save writes the whole document back under the namespace key.
func (s *SQLite) Save(doc ledger.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	_, err = s.db.Exec(`
	INSERT INTO documents(key, body, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = CURRENT_TIMESTAMP;
	`, DocumentKey, string(raw))
	if err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error { return s.db.Close() }
