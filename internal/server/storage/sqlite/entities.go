package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/crmsync/internal/models"
	"github.com/iudanet/crmsync/internal/server/storage"
)

// GetEntityState retrieves current version and snapshot for an entity
// Returns ErrEntityNotFound if the key has never been seen
func (s *Storage) GetEntityState(ctx context.Context, entityType, entityID string) (*models.EntityState, error) {
	query := `
		SELECT entity_type, entity_id, version, data
		FROM entities
		WHERE entity_type = ? AND entity_id = ?
	`

	state := &models.EntityState{}
	var data sql.NullString

	err := s.db.QueryRowContext(ctx, query, entityType, entityID).Scan(
		&state.EntityType,
		&state.EntityID,
		&state.Version,
		&data,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrEntityNotFound
		}
		return nil, fmt.Errorf("failed to get entity state: %w", err)
	}

	if state.Data, err = unmarshalMap(data); err != nil {
		return nil, err
	}

	return state, nil
}

// SaveEntityState creates or replaces the state for an entity key.
// DELETE сохраняет строку с data = NULL: снапшот убран из version store,
// но счетчик версий продолжает последовательность при пересоздании ключа.
func (s *Storage) SaveEntityState(ctx context.Context, state *models.EntityState) error {
	data, err := marshalMap(state.Data)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO entities (entity_type, entity_id, version, data, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (entity_type, entity_id) DO UPDATE SET
			version = excluded.version,
			data = excluded.data,
			updated_at = excluded.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		state.EntityType,
		state.EntityID,
		state.Version,
		data,
		time.Now().UnixNano(),
	)

	if err != nil {
		return fmt.Errorf("failed to save entity state: %w", err)
	}

	return nil
}
