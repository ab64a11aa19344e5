package storage

import "context"

//go:generate moq -out metadata_mock.go . MetadataStorage

// MetadataStorage defines interface for storing client sync metadata
type MetadataStorage interface {
	// SaveSyncToken saves the opaque token returned by the last sync
	SaveSyncToken(ctx context.Context, token string) error

	// GetSyncToken retrieves the saved sync token
	// Returns empty string if no sync has been performed yet
	GetSyncToken(ctx context.Context) (string, error)

	// SaveClientID persists the generated client identifier
	SaveClientID(ctx context.Context, clientID string) error

	// GetClientID retrieves the client identifier
	// Returns empty string on first run
	GetClientID(ctx context.Context) (string, error)

	// SaveLastSyncAt saves the wall-clock time of the last successful sync
	SaveLastSyncAt(ctx context.Context, timestamp int64) error

	// GetLastSyncAt retrieves the time of the last successful sync
	// Returns 0 if no sync has been performed yet
	GetLastSyncAt(ctx context.Context) (int64, error)
}
