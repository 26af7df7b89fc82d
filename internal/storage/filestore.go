package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// FileStore persists a collection as a pretty-printed JSON array in a
// single file. Every mutation rewrites the whole file.
type FileStore[T any] struct {
	path string
	seed func() []T
	mu   sync.Mutex
	log  zerolog.Logger
}

// NewFileStore creates a file-backed store. The seed function provides
// the initial records written on first access when the backing file
// does not exist yet; nil seeds an empty collection.
func NewFileStore[T any](path string, seed func() []T, log zerolog.Logger) *FileStore[T] {
	return &FileStore[T]{
		path: path,
		seed: seed,
		log:  log.With().Str("component", "filestore").Str("file", filepath.Base(path)).Logger(),
	}
}

// List returns the full collection in insertion order.
func (s *FileStore[T]) List(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

// Mutate runs fn in a read-modify-write cycle under the store lock.
func (s *FileStore[T]) Mutate(ctx context.Context, fn MutateFunc[T]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
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

	return s.writeAll(next)
}

// Path returns the backing file path.
func (s *FileStore[T]) Path() string { return s.path }

// Close is a no-op for the file backend.
func (s *FileStore[T]) Close() error { return nil }

func (s *FileStore[T]) ensure() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat backing file: %w", err)
	}

	var records []T
	if s.seed != nil {
		records = s.seed()
	}
	if records == nil {
		records = []T{}
	}
	s.log.Info().Int("records", len(records)).Msg("Seeding backing file")
	return s.writeAll(records)
}

func (s *FileStore[T]) readAll() ([]T, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backing file: %w", err)
	}

	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to decode backing file %s: %w", s.path, err)
	}
	return records, nil
}

func (s *FileStore[T]) writeAll(records []T) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backing file: %w", err)
	}
	return nil
}
