package storage

import "errors"

// Common client storage errors
var (
	// ErrPendingNotFound indicates that queued change was not found
	ErrPendingNotFound = errors.New("pending change not found")

	// ErrSnapshotNotFound indicates that local entity snapshot was not found
	ErrSnapshotNotFound = errors.New("entity snapshot not found")
)
