// Package storage provides the record store backing the items and
// investment account collections. Each collection is a single ordered
// list of records persisted wholesale on every mutation.
//
// Two backends implement the same contract: a JSON file holding one
// top-level array (the default, and the persisted layout consumers of
// the backing files expect), and an embedded SQLite database storing
// one JSON document per record.
package storage

import "context"

// MutateFunc receives the current records and returns the replacement
// list. Returning persist=false leaves the backing store untouched;
// this is how not-found mutations avoid a spurious write.
type MutateFunc[T any] func(records []T) (next []T, persist bool, err error)

// Store is a whole-collection record store.
//
// Mutations are serialized by an in-process lock, so overlapping calls
// within one server cannot lose updates. Writers in other processes are
// not coordinated; the last whole-file write wins.
type Store[T any] interface {
	// List returns the full collection in insertion order.
	List(ctx context.Context) ([]T, error)

	// Mutate runs fn under the store lock in a read-modify-write cycle
	// and persists the returned records when fn asks for it.
	Mutate(ctx context.Context, fn MutateFunc[T]) error

	// Path returns the location of the backing store on disk.
	Path() string

	// Close releases backend resources.
	Close() error
}
