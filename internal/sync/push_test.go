package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/crmsync/internal/models"
	"github.com/iudanet/crmsync/internal/validation"
)

func TestService_PushChanges_AppliesFreshChanges(t *testing.T) {
	svc, _ := setupTestService()
	ctx := context.Background()

	result, err := svc.PushChanges(ctx, "client-a", "user-1", []IncomingChange{
		{
			EntityType:    models.EntityTypeContact,
			EntityID:      "42",
			Operation:     models.OperationCreate,
			ClientVersion: 0,
			Data:          map[string]any{"name": "Alice"},
			DeviceID:      "phone",
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Applied, 1)
	assert.Empty(t, result.Conflicts)
	assert.Empty(t, result.Errors)
	assert.EqualValues(t, 1, result.Applied[0].Version)
	assert.True(t, result.Applied[0].Synced)
	assert.Equal(t, "phone", result.Applied[0].DeviceID)
	assert.NotEmpty(t, result.SyncToken)
	assert.Equal(t, models.SyncStatusCompleted, result.Record.Status)
	assert.Equal(t, models.SyncDirectionPush, result.Record.Direction)
}

func TestService_PushChanges_StaleClientVersionConflicts(t *testing.T) {
	svc, _ := setupTestService()
	ctx := context.Background()

	// Сервер уже на версии 2
	_, err := svc.RecordChange(ctx, RecordChangeParams{
		EntityType: models.EntityTypeContact,
		EntityID:   "42",
		Operation:  models.OperationCreate,
		Data:       map[string]any{"name": "Alice", "phone": "111"},
	})
	require.NoError(t, err)
	_, err = svc.RecordChange(ctx, RecordChangeParams{
		EntityType:   models.EntityTypeContact,
		EntityID:     "42",
		Operation:    models.OperationUpdate,
		Data:         map[string]any{"name": "Alice", "phone": "222"},
		PreviousData: map[string]any{"name": "Alice", "phone": "111"},
	})
	require.NoError(t, err)

	// Клиент видел только версию 1
	result, err := svc.PushChanges(ctx, "client-a", "user-1", []IncomingChange{
		{
			EntityType:    models.EntityTypeContact,
			EntityID:      "42",
			Operation:     models.OperationUpdate,
			ClientVersion: 1,
			Data:          map[string]any{"name": "Alice", "phone": "333"},
		},
	})
	require.NoError(t, err)

	assert.Empty(t, result.Applied)
	require.Len(t, result.Conflicts, 1)

	conflict := result.Conflicts[0]
	assert.EqualValues(t, 1, conflict.LocalVersion)
	assert.EqualValues(t, 2, conflict.ServerVersion)
	assert.Equal(t, "333", conflict.LocalData["phone"])
	assert.Equal(t, "222", conflict.ServerData["phone"])
	assert.Equal(t, []string{"phone"}, conflict.ConflictingFields)
	assert.Equal(t, "client-a", conflict.ClientID)
	assert.False(t, conflict.Resolved())

	// Конфликт не меняет состояние сущности
	history, err := svc.EntityChanges(ctx, models.EntityTypeContact, "42")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestService_PushChanges_EqualVersionApplies(t *testing.T) {
	svc, _ := setupTestService()
	ctx := context.Background()

	_, err := svc.RecordChange(ctx, RecordChangeParams{
		EntityType: models.EntityTypeContact,
		EntityID:   "42",
		Operation:  models.OperationCreate,
		Data:       map[string]any{"name": "Alice"},
	})
	require.NoError(t, err)

	// client_version == current_version: клиент актуален, изменение применяется
	result, err := svc.PushChanges(ctx, "client-a", "user-1", []IncomingChange{
		{
			EntityType:    models.EntityTypeContact,
			EntityID:      "42",
			Operation:     models.OperationUpdate,
			ClientVersion: 1,
			Data:          map[string]any{"name": "Bob"},
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Applied, 1)
	assert.Empty(t, result.Conflicts)
	assert.EqualValues(t, 2, result.Applied[0].Version)
}

func TestService_PushChanges_FirstWriterWinsOnTie(t *testing.T) {
	svc, _ := setupTestService()
	ctx := context.Background()

	_, err := svc.RecordChange(ctx, RecordChangeParams{
		EntityType: models.EntityTypeContact,
		EntityID:   "42",
		Operation:  models.OperationCreate,
		Data:       map[string]any{"name": "Alice"},
	})
	require.NoError(t, err)

	// Оба клиента видели версию 1
	first, err := svc.PushChanges(ctx, "client-a", "user-1", []IncomingChange{
		{
			EntityType:    models.EntityTypeContact,
			EntityID:      "42",
			Operation:     models.OperationUpdate,
			ClientVersion: 1,
			Data:          map[string]any{"name": "Bob"},
		},
	})
	require.NoError(t, err)
	require.Len(t, first.Applied, 1)

	// Второй клиент с той же базовой версией получает конфликт
	second, err := svc.PushChanges(ctx, "client-b", "user-2", []IncomingChange{
		{
			EntityType:    models.EntityTypeContact,
			EntityID:      "42",
			Operation:     models.OperationUpdate,
			ClientVersion: 1,
			Data:          map[string]any{"name": "Carol"},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, second.Applied)
	require.Len(t, second.Conflicts, 1)
	assert.EqualValues(t, 2, second.Conflicts[0].ServerVersion)
}

func TestService_PushChanges_InvalidItemDoesNotAbortBatch(t *testing.T) {
	svc, _ := setupTestService()
	ctx := context.Background()

	result, err := svc.PushChanges(ctx, "client-a", "user-1", []IncomingChange{
		{
			EntityType:    "spaceship",
			EntityID:      "x",
			Operation:     models.OperationCreate,
			ClientVersion: 0,
			Data:          map[string]any{"x": 1},
		},
		{
			EntityType:    models.EntityTypeContact,
			EntityID:      "42",
			Operation:     models.OperationCreate,
			ClientVersion: 0,
			Data:          map[string]any{"name": "Alice"},
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, 0, result.Errors[0].Index)
	assert.Contains(t, result.Errors[0].Message, "spaceship")

	require.Len(t, result.Applied, 1)
	assert.Equal(t, "42", result.Applied[0].EntityID)

	assert.Equal(t, models.SyncStatusPartial, result.Record.Status)
}

func TestService_PushChanges_UpdatesClientState(t *testing.T) {
	svc, _ := setupTestService()
	ctx := context.Background()

	_, err := svc.PushChanges(ctx, "client-a", "user-1", []IncomingChange{
		{
			EntityType:    models.EntityTypeContact,
			EntityID:      "42",
			Operation:     models.OperationCreate,
			ClientVersion: 0,
			Data:          map[string]any{"name": "Alice"},
		},
	})
	require.NoError(t, err)

	state, err := svc.ClientState(ctx, "client-a")
	require.NoError(t, err)
	assert.Equal(t, "user-1", state.UserID)
	assert.NotEmpty(t, state.LastSyncToken)
	assert.EqualValues(t, 1, state.AcknowledgedVersion(models.EntityKey{Type: models.EntityTypeContact, ID: "42"}))
}

func TestService_PushChanges_EmptyClientID(t *testing.T) {
	svc, _ := setupTestService()

	_, err := svc.PushChanges(context.Background(), "", "user-1", nil)
	assert.ErrorIs(t, err, validation.ErrValidation)
}

func TestService_PushChanges_EmptyBatchStillMintsToken(t *testing.T) {
	svc, _ := setupTestService()

	result, err := svc.PushChanges(context.Background(), "client-a", "user-1", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, result.SyncToken)
	assert.Equal(t, models.SyncStatusCompleted, result.Record.Status)
}
