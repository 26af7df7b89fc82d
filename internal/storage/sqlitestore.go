package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists a collection in an embedded SQLite database,
// one JSON document per record, ordered by insertion position. It
// implements the same whole-collection contract as FileStore.
type SQLiteStore[T any] struct {
	db    *sql.DB
	path  string
	table string
	mu    sync.Mutex
	log   zerolog.Logger
}

// NewSQLiteStore opens (creating if needed) the database at path and
// ensures the collection table exists. A freshly created table is
// seeded with the records from seed.
func NewSQLiteStore[T any](path, table string, seed func() []T, log zerolog.Logger) (*SQLiteStore[T], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}

	s := &SQLiteStore[T]{
		db:    db,
		path:  path,
		table: table,
		log:   log.With().Str("component", "sqlitestore").Str("table", table).Logger(),
	}

	var existing int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&existing)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to inspect schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (pos INTEGER PRIMARY KEY AUTOINCREMENT, doc TEXT NOT NULL)`, table)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create collection table: %w", err)
	}

	if existing == 0 && seed != nil {
		records := seed()
		s.log.Info().Int("records", len(records)).Msg("Seeding collection table")
		if err := s.replaceAll(records); err != nil {
			db.Close()
			return nil, err
		}
	}

	return s, nil
}

// List returns the full collection in insertion order.
func (s *SQLiteStore[T]) List(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll(ctx)
}

// Mutate runs fn in a read-modify-write cycle under the store lock.
func (s *SQLiteStore[T]) Mutate(ctx context.Context, fn MutateFunc[T]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll(ctx)
	if err != nil {
		return err
	}

	next, persist, err := fn(records)
	if err != nil {
		return err
	}
	if !persist {
		return nil
	}

	return s.replaceAll(next)
}

// Path returns the database file path.
func (s *SQLiteStore[T]) Path() string { return s.path }

// Close closes the database connection.
func (s *SQLiteStore[T]) Close() error { return s.db.Close() }

func (s *SQLiteStore[T]) readAll(ctx context.Context) ([]T, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT doc FROM %s ORDER BY pos`, s.table))
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}
	defer rows.Close()

	records := []T{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		var record T
		if err := json.Unmarshal([]byte(doc), &record); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection: %w", err)
	}
	return records, nil
}

func (s *SQLiteStore[T]) replaceAll(records []T) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s`, s.table)); err != nil {
		return fmt.Errorf("failed to clear collection: %w", err)
	}

	stmt, err := tx.Prepare(fmt.Sprintf(`INSERT INTO %s (doc) VALUES (?)`, s.table))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		doc, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
		if _, err := stmt.Exec(string(doc)); err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit collection rewrite: %w", err)
	}
	return nil
}
