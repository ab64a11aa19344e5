package storage

import "errors"

// Common storage errors
var (
	// ErrEntityNotFound indicates that entity has no state in the version store
	ErrEntityNotFound = errors.New("entity not found")

	// ErrChangeNotFound indicates that change record was not found
	ErrChangeNotFound = errors.New("change not found")

	// ErrConflictNotFound indicates that sync conflict was not found
	ErrConflictNotFound = errors.New("conflict not found")

	// ErrClientNotFound indicates that client has never synced
	ErrClientNotFound = errors.New("client not found")
)
