package storage

import "context"

// notifyingStore decorates a Store and invokes a callback after every
// persisted mutation. The sqlite backend uses this in place of the
// filesystem watcher: WAL commits land in the -wal sidecar, not the
// database file, so fsnotify on the database file misses them.
type notifyingStore[T any] struct {
	Store[T]
	onWrite func()
}

// NotifyOnWrite wraps a store so onWrite runs after each mutation that
// actually persisted. Mutations that persist nothing, or fail, do not
// trigger the callback.
func NotifyOnWrite[T any](store Store[T], onWrite func()) Store[T] {
	return &notifyingStore[T]{Store: store, onWrite: onWrite}
}

func (s *notifyingStore[T]) Mutate(ctx context.Context, fn MutateFunc[T]) error {
	persisted := false
	err := s.Store.Mutate(ctx, func(records []T) ([]T, bool, error) {
		next, persist, err := fn(records)
		persisted = persist && err == nil
		return next, persist, err
	})
	if err == nil && persisted {
		s.onWrite()
	}
	return err
}
