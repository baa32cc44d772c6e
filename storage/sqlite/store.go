package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/poiesic/resolvit/storage"
)

const defaultSearchLimit = 20

// Store is a SQLite-backed concept repository. Designation labels are
// indexed with FTS5 so concept search runs inside the database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	mu      sync.RWMutex
	systems []string
}

var _ storage.ConceptRepository = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used by the store. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore opens (or creates) the concept database at dbPath and ensures
// the schema exists.
func NewStore(dbPath string, opts ...Option) (storage.ConceptRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening concept database: %w", err)
	}

	return newStore(db, opts...)
}

func newStore(db *sql.DB, opts ...Option) (*Store, error) {
	s := &Store{
		db:     db,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS code_systems (
			system        TEXT PRIMARY KEY,
			version       TEXT NOT NULL DEFAULT '',
			name          TEXT NOT NULL DEFAULT '',
			title         TEXT NOT NULL DEFAULT '',
			concept_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS concepts (
			id      INTEGER PRIMARY KEY,
			system  TEXT NOT NULL,
			code    TEXT NOT NULL,
			display TEXT NOT NULL,
			UNIQUE (system, code)
		)`,
		`CREATE TABLE IF NOT EXISTS designations (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			concept_id INTEGER NOT NULL REFERENCES concepts(id) ON DELETE CASCADE,
			label      TEXT NOT NULL,
			use_code   TEXT
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_designations_unique
			ON designations(concept_id, label, IFNULL(use_code, ''))`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	return s.createFTS()
}

// createFTS builds the external-content FTS5 index over designation labels
// plus the triggers that keep it in sync. The virtual table does not support
// IF NOT EXISTS, so existence is checked against sqlite_master first.
func (s *Store) createFTS() error {
	var count int
	err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='designations_fts'`,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if count > 0 {
		return nil
	}

	statements := []string{
		`CREATE VIRTUAL TABLE designations_fts USING fts5(
			label,
			content=designations,
			content_rowid=id
		)`,
		`CREATE TRIGGER designations_ai AFTER INSERT ON designations BEGIN
			INSERT INTO designations_fts(rowid, label) VALUES (new.id, new.label);
		END`,
		`CREATE TRIGGER designations_ad AFTER DELETE ON designations BEGIN
			INSERT INTO designations_fts(designations_fts, rowid, label) VALUES ('delete', old.id, old.label);
		END`,
		`CREATE TRIGGER designations_au AFTER UPDATE ON designations BEGIN
			INSERT INTO designations_fts(designations_fts, rowid, label) VALUES ('delete', old.id, old.label);
			INSERT INTO designations_fts(rowid, label) VALUES (new.id, new.label);
		END`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS index: %w", err)
		}
	}

	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
