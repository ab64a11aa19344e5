package storage

import (
	"context"

	"github.com/iudanet/crmsync/internal/models"
)

// ClientStorage defines interface for per-client sync state persistence.
// States are created lazily on first push/pull and are never deleted:
// they are needed to detect stale pushes even after long offline periods.
type ClientStorage interface {
	// GetClientState retrieves state by client ID
	// Returns ErrClientNotFound if client has never synced
	GetClientState(ctx context.Context, clientID string) (*models.ClientState, error)

	// SaveClientState creates or replaces the state for a client
	SaveClientState(ctx context.Context, state *models.ClientState) error

	// CountClients returns the number of known clients
	CountClients(ctx context.Context) (int64, error)
}

// SyncRecordStorage defines interface for push/pull session summaries
type SyncRecordStorage interface {
	// SaveSyncRecord stores a completed session summary
	SaveSyncRecord(ctx context.Context, record *models.SyncRecord) error

	// CountSyncRecords returns the number of stored session summaries
	CountSyncRecords(ctx context.Context) (int64, error)
}
