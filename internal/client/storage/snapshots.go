package storage

import (
	"context"

	"github.com/iudanet/crmsync/internal/models"
)

//go:generate moq -out snapshots_mock.go . SnapshotStorage

// SnapshotStorage defines interface for the local entity mirror.
// Snapshots are updated from pulled changes and read by CLI commands;
// a deleted entity keeps its row with nil Data, mirroring the server.
type SnapshotStorage interface {
	// SaveSnapshot creates or replaces the local state of an entity
	SaveSnapshot(ctx context.Context, state *models.EntityState) error

	// GetSnapshot retrieves the local state of an entity
	// Returns ErrSnapshotNotFound if the key was never pulled
	GetSnapshot(ctx context.Context, entityType, entityID string) (*models.EntityState, error)

	// ListSnapshots returns local states, optionally filtered by entity type.
	// Deleted entities (nil Data) are included
	ListSnapshots(ctx context.Context, entityType string) ([]*models.EntityState, error)
}
