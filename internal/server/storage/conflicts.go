package storage

import (
	"context"

	"github.com/iudanet/crmsync/internal/models"
)

// ConflictStorage defines interface for sync conflict persistence
type ConflictStorage interface {
	// SaveConflict stores a newly detected conflict
	SaveConflict(ctx context.Context, conflict *models.SyncConflict) error

	// GetConflict retrieves a conflict by ID
	// Returns ErrConflictNotFound if conflict doesn't exist
	GetConflict(ctx context.Context, id string) (*models.SyncConflict, error)

	// UpdateConflict persists resolution fields of an already stored conflict
	// Returns ErrConflictNotFound if conflict doesn't exist
	UpdateConflict(ctx context.Context, conflict *models.SyncConflict) error

	// ListConflicts retrieves conflicts ordered by detection time descending,
	// optionally only unresolved ones, truncated to limit (0 means no limit).
	// Returns empty slice if no conflicts found
	ListConflicts(ctx context.Context, unresolvedOnly bool, limit int) ([]*models.SyncConflict, error)

	// CountConflicts returns total and unresolved conflict counts
	CountConflicts(ctx context.Context) (total, unresolved int64, err error)
}
