package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/iudanet/crmsync/internal/metrics"
	"github.com/iudanet/crmsync/internal/models"
	"github.com/iudanet/crmsync/internal/server/storage"
	"github.com/iudanet/crmsync/internal/validation"
)

// IncomingChange одно изменение из push-батча клиента.
// ClientVersion — версия сущности, которую клиент наблюдал последней.
type IncomingChange struct {
	Data          map[string]any
	PreviousData  map[string]any
	EntityType    string
	EntityID      string
	DeviceID      string
	Operation     models.Operation
	ClientVersion int64
}

// PushError ошибка валидации одного элемента батча.
// Один некорректный элемент никогда не прерывает остальные.
type PushError struct {
	Message    string `json:"message"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Index      int    `json:"index"`
}

// PushResult результат обработки push-батча.
type PushResult struct {
	Record    *models.SyncRecord
	SyncToken string
	Applied   []*models.ChangeRecord
	Conflicts []*models.SyncConflict
	Errors    []PushError
}

// PushChanges обрабатывает батч изменений от клиента.
// Каждый элемент проходит свою машину состояний:
//  1. Невалидный элемент попадает в Errors, батч продолжается.
//  2. client_version < current_version — конфликт: фиксируется SyncConflict
//     с обоими снапшотами, изменение не применяется.
//  3. Иначе изменение применяется через журнал; равенство версий означает
//     "клиент актуален" и всегда применяется (first-writer-wins на равенстве).
//
// Элементы обрабатываются последовательно, каждый — своя атомарная единица:
// конфликт или ошибка на элементе N не откатывает элементы 1..N-1.
func (s *Service) PushChanges(
	ctx context.Context,
	clientID, userID string,
	incoming []IncomingChange,
) (*PushResult, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: client id cannot be empty", validation.ErrValidation)
	}

	startedAt := s.now()
	result := &PushResult{}

	state, err := s.loadOrCreateClientState(ctx, clientID, userID)
	if err != nil {
		return nil, err
	}

	for i, change := range incoming {
		if err := validation.ValidateChange(change.EntityType, change.EntityID, change.Operation, change.Data); err != nil {
			result.Errors = append(result.Errors, PushError{
				Index:      i,
				EntityType: change.EntityType,
				EntityID:   change.EntityID,
				Message:    err.Error(),
			})
			metrics.PushErrors.Inc()
			continue
		}

		applied, conflict, err := s.pushOne(ctx, clientID, userID, change)
		if err != nil {
			return nil, fmt.Errorf("failed to process change %d: %w", i, err)
		}

		if conflict != nil {
			result.Conflicts = append(result.Conflicts, conflict)
			continue
		}

		result.Applied = append(result.Applied, applied)
		state.Acknowledge(applied.Key(), applied.Version)
	}

	completedAt := s.now()

	token, err := s.tokens.Mint(completedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to mint sync token: %w", err)
	}
	result.SyncToken = token

	state.LastSyncAt = completedAt
	state.LastSyncToken = token
	if err := s.clients.SaveClientState(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save client state: %w", err)
	}

	status := models.SyncStatusCompleted
	if len(result.Errors) > 0 {
		status = models.SyncStatusPartial
	}

	record := &models.SyncRecord{
		ID:             uuid.New().String(),
		ClientID:       clientID,
		UserID:         userID,
		Direction:      models.SyncDirectionPush,
		Status:         status,
		SyncToken:      token,
		ChangesPushed:  len(result.Applied),
		ConflictsCount: len(result.Conflicts),
		ErrorsCount:    len(result.Errors),
		StartedAt:      startedAt,
		CompletedAt:    completedAt,
	}
	if err := s.records.SaveSyncRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save sync record: %w", err)
	}
	result.Record = record

	metrics.PushSessions.WithLabelValues(string(status)).Inc()

	s.logger.Info("push completed",
		"client_id", clientID,
		"applied", len(result.Applied),
		"conflicts", len(result.Conflicts),
		"errors", len(result.Errors))

	return result, nil
}

// pushOne обрабатывает один валидный элемент батча под блокировкой ключа.
func (s *Service) pushOne(
	ctx context.Context,
	clientID, userID string,
	change IncomingChange,
) (*models.ChangeRecord, *models.SyncConflict, error) {
	key := models.EntityKey{Type: change.EntityType, ID: change.EntityID}

	unlock := s.locks.Lock(key.String())
	defer unlock()

	var currentVersion int64
	var serverData map[string]any

	state, err := s.entities.GetEntityState(ctx, change.EntityType, change.EntityID)
	switch {
	case err == nil:
		currentVersion = state.Version
		serverData = state.Data
	case errors.Is(err, storage.ErrEntityNotFound):
		currentVersion = 0
	default:
		return nil, nil, fmt.Errorf("failed to read entity state: %w", err)
	}

	// Устаревший клиент: фиксируем конфликт, изменение не применяем
	if change.ClientVersion < currentVersion {
		conflict := &models.SyncConflict{
			ID:                uuid.New().String(),
			EntityType:        change.EntityType,
			EntityID:          change.EntityID,
			ClientID:          clientID,
			LocalVersion:      change.ClientVersion,
			ServerVersion:     currentVersion,
			LocalData:         change.Data,
			ServerData:        serverData,
			ConflictingFields: DiffFields(change.Data, serverData),
			DetectedAt:        s.now(),
		}

		if err := s.conflicts.SaveConflict(ctx, conflict); err != nil {
			return nil, nil, fmt.Errorf("failed to save conflict: %w", err)
		}

		metrics.ConflictsDetected.Inc()

		s.logger.Info("conflict detected",
			"entity", key.String(),
			"client_id", clientID,
			"local_version", change.ClientVersion,
			"server_version", currentVersion)

		return nil, conflict, nil
	}

	record, err := s.applyChange(ctx, RecordChangeParams{
		EntityType:   change.EntityType,
		EntityID:     change.EntityID,
		Operation:    change.Operation,
		Data:         change.Data,
		PreviousData: change.PreviousData,
		UserID:       userID,
		DeviceID:     change.DeviceID,
		Synced:       true,
	})
	if err != nil {
		return nil, nil, err
	}

	return record, nil, nil
}

// loadOrCreateClientState лениво создает состояние клиента при первом обращении.
func (s *Service) loadOrCreateClientState(ctx context.Context, clientID, userID string) (*models.ClientState, error) {
	state, err := s.clients.GetClientState(ctx, clientID)
	if err == nil {
		return state, nil
	}
	if errors.Is(err, storage.ErrClientNotFound) {
		return models.NewClientState(clientID, userID), nil
	}
	return nil, fmt.Errorf("failed to load client state: %w", err)
}
