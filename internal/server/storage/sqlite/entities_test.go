package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/crmsync/internal/models"
	"github.com/iudanet/crmsync/internal/server/storage"
)

func TestEntityStorage_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	state := &models.EntityState{
		EntityType: models.EntityTypeContact,
		EntityID:   "42",
		Version:    1,
		Data:       map[string]any{"name": "Alice"},
	}
	require.NoError(t, s.SaveEntityState(ctx, state))

	got, err := s.GetEntityState(ctx, models.EntityTypeContact, "42")
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.Version)
	assert.Equal(t, "Alice", got.Data["name"])
}

func TestEntityStorage_GetNotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.GetEntityState(ctx, models.EntityTypeContact, "missing")
	assert.ErrorIs(t, err, storage.ErrEntityNotFound)
}

func TestEntityStorage_UpsertReplacesState(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	require.NoError(t, s.SaveEntityState(ctx, &models.EntityState{
		EntityType: models.EntityTypeContact,
		EntityID:   "42",
		Version:    1,
		Data:       map[string]any{"name": "Alice"},
	}))
	require.NoError(t, s.SaveEntityState(ctx, &models.EntityState{
		EntityType: models.EntityTypeContact,
		EntityID:   "42",
		Version:    2,
		Data:       map[string]any{"name": "Bob"},
	}))

	got, err := s.GetEntityState(ctx, models.EntityTypeContact, "42")
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.Version)
	assert.Equal(t, "Bob", got.Data["name"])
}

func TestEntityStorage_DeleteKeepsVersionRow(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	require.NoError(t, s.SaveEntityState(ctx, &models.EntityState{
		EntityType: models.EntityTypeContact,
		EntityID:   "42",
		Version:    2,
		Data:       map[string]any{"name": "Alice"},
	}))

	// DELETE: снапшот убран, версия продолжает жить
	require.NoError(t, s.SaveEntityState(ctx, &models.EntityState{
		EntityType: models.EntityTypeContact,
		EntityID:   "42",
		Version:    3,
	}))

	got, err := s.GetEntityState(ctx, models.EntityTypeContact, "42")
	require.NoError(t, err)
	assert.EqualValues(t, 3, got.Version)
	assert.Nil(t, got.Data)
}

func TestEntityStorage_SameIDDifferentTypesAreDistinct(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	require.NoError(t, s.SaveEntityState(ctx, &models.EntityState{
		EntityType: models.EntityTypeContact,
		EntityID:   "a",
		Version:    5,
		Data:       map[string]any{"name": "Alice"},
	}))
	require.NoError(t, s.SaveEntityState(ctx, &models.EntityState{
		EntityType: models.EntityTypeDeal,
		EntityID:   "a",
		Version:    1,
		Data:       map[string]any{"amount": 100},
	}))

	contact, err := s.GetEntityState(ctx, models.EntityTypeContact, "a")
	require.NoError(t, err)
	deal, err := s.GetEntityState(ctx, models.EntityTypeDeal, "a")
	require.NoError(t, err)

	assert.EqualValues(t, 5, contact.Version)
	assert.EqualValues(t, 1, deal.Version)
}
