// Package store defines the sentinel errors shared by every storage
// implementation. Consumers declare their own narrow interfaces and test
// against these errors.
package store

import "errors"

var (
	// ErrNotFound is returned when no row matched the lookup.
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicate is returned when an insert violated a uniqueness
	// constraint. Callers registering locations are expected to recover by
	// re-reading the now-present row.
	ErrDuplicate = errors.New("store: duplicate")
)
