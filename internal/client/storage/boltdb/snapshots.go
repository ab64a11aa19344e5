package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.etcd.io/bbolt"

	"github.com/iudanet/crmsync/internal/client/storage"
	"github.com/iudanet/crmsync/internal/models"
)

// snapshotKey ключ снапшота в bucket'е: "type:id"
func snapshotKey(entityType, entityID string) []byte {
	return []byte(models.EntityKey{Type: entityType, ID: entityID}.String())
}

// SaveSnapshot creates or replaces the local state of an entity
func (s *Storage) SaveSnapshot(ctx context.Context, state *models.EntityState) error {
	value, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSnapshots)
		if bucket == nil {
			return fmt.Errorf("snapshots bucket not found")
		}

		if err := bucket.Put(snapshotKey(state.EntityType, state.EntityID), value); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		return nil
	})
}

// GetSnapshot retrieves the local state of an entity
// Returns ErrSnapshotNotFound if the key was never pulled
func (s *Storage) GetSnapshot(ctx context.Context, entityType, entityID string) (*models.EntityState, error) {
	var state models.EntityState

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSnapshots)
		if bucket == nil {
			return fmt.Errorf("snapshots bucket not found")
		}

		value := bucket.Get(snapshotKey(entityType, entityID))
		if value == nil {
			return storage.ErrSnapshotNotFound
		}

		if err := json.Unmarshal(value, &state); err != nil {
			return fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &state, nil
}

// ListSnapshots returns local states, optionally filtered by entity type
func (s *Storage) ListSnapshots(ctx context.Context, entityType string) ([]*models.EntityState, error) {
	var snapshots []*models.EntityState

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSnapshots)
		if bucket == nil {
			return fmt.Errorf("snapshots bucket not found")
		}

		cursor := bucket.Cursor()

		// Ключи имеют форму "type:id", поэтому фильтр по типу —
		// это обход префикса
		if entityType != "" {
			prefix := []byte(entityType + ":")
			for key, value := cursor.Seek(prefix); key != nil && strings.HasPrefix(string(key), string(prefix)); key, value = cursor.Next() {
				state := &models.EntityState{}
				if err := json.Unmarshal(value, state); err != nil {
					return fmt.Errorf("failed to unmarshal snapshot: %w", err)
				}
				snapshots = append(snapshots, state)
			}
			return nil
		}

		return bucket.ForEach(func(_, value []byte) error {
			state := &models.EntityState{}
			if err := json.Unmarshal(value, state); err != nil {
				return fmt.Errorf("failed to unmarshal snapshot: %w", err)
			}
			snapshots = append(snapshots, state)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	return snapshots, nil
}
