package storage

import (
	"context"
	"time"

	"github.com/iudanet/crmsync/internal/models"
)

// ChangeStorage defines interface for the append-only change log.
// Records are immutable once saved and are never deleted:
// the log forms the durable audit trail of every accepted mutation.
type ChangeStorage interface {
	// SaveChange appends an accepted change record to the log
	SaveChange(ctx context.Context, change *models.ChangeRecord) error

	// GetChange retrieves a single change record by ID
	// Returns ErrChangeNotFound if record doesn't exist
	GetChange(ctx context.Context, id string) (*models.ChangeRecord, error)

	// GetChangesSince retrieves change records with timestamp strictly after
	// the boundary, optionally filtered by entity types, ordered ascending
	// by timestamp and truncated to limit (0 means no limit).
	// Returns empty slice if no records found
	GetChangesSince(ctx context.Context, since time.Time, entityTypes []string, limit int) ([]*models.ChangeRecord, error)

	// GetEntityChanges retrieves the full per-entity ordered history
	// (ascending by version). Returns empty slice if no records found
	GetEntityChanges(ctx context.Context, entityType, entityID string) ([]*models.ChangeRecord, error)

	// CountChanges returns total and synced change record counts
	CountChanges(ctx context.Context) (total, synced int64, err error)
}

// EntityStorage defines interface for the entity version store:
// authoritative version counter and last accepted snapshot per entity key.
type EntityStorage interface {
	// GetEntityState retrieves current version and snapshot for an entity
	// Returns ErrEntityNotFound if the key has never been seen
	GetEntityState(ctx context.Context, entityType, entityID string) (*models.EntityState, error)

	// SaveEntityState creates or replaces the state for an entity key.
	// A DELETE is persisted as state with nil Data: the snapshot is gone
	// but the version counter survives, so a re-created key continues
	// its version sequence instead of restarting from 1.
	SaveEntityState(ctx context.Context, state *models.EntityState) error
}
