// Package sync реализует клиентский цикл синхронизации:
// push локальной очереди, pull журнала сервера, обновление снапшотов.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/crmsync/internal/client/storage"
	"github.com/iudanet/crmsync/internal/models"
	"github.com/iudanet/crmsync/pkg/api"
)

// pullPageLimit размер страницы при выкачивании журнала сервера
const pullPageLimit = 200

//go:generate moq -out service_mock.go . Service

// Service определяет интерфейс клиентского цикла синхронизации
type Service interface {
	// Sync выполняет полную синхронизацию с сервером
	Sync(ctx context.Context) (*SyncResult, error)

	// Status возвращает сводку локального состояния синхронизации
	Status(ctx context.Context) (*SyncStatus, error)
}

// ServerAPI часть HTTP клиента, которую использует цикл синхронизации
type ServerAPI interface {
	Push(ctx context.Context, req api.PushRequest) (*api.PushResponse, error)
	Pull(ctx context.Context, req api.PullRequest) (*api.PullResponse, error)
}

// service handles synchronization between client and server
type service struct {
	apiClient       ServerAPI
	queueStorage    storage.QueueStorage
	snapshotStorage storage.SnapshotStorage
	metadataStorage storage.MetadataStorage
	logger          *slog.Logger
}

// NewService creates a new sync service
func NewService(
	apiClient ServerAPI,
	queueStorage storage.QueueStorage,
	snapshotStorage storage.SnapshotStorage,
	metadataStorage storage.MetadataStorage,
	logger *slog.Logger,
) Service {
	return &service{
		apiClient:       apiClient,
		queueStorage:    queueStorage,
		snapshotStorage: snapshotStorage,
		metadataStorage: metadataStorage,
		logger:          logger,
	}
}

// SyncResult contains sync operation results
type SyncResult struct {
	SyncToken string // токен, сохраненный для следующей синхронизации
	Pushed    int    // количество отправленных на сервер изменений
	Applied   int    // количество принятых сервером изменений
	Conflicts int    // количество зафиксированных сервером конфликтов
	Rejected  int    // количество отклоненных валидацией изменений
	Pulled    int    // количество полученных с сервера изменений
}

// SyncStatus сводка локального состояния для команды status
type SyncStatus struct {
	ClientID       string
	LastSyncAt     time.Time
	PendingChanges int
	Snapshots      int
}

// Sync performs full synchronization with server
// 1. Pushes queued local changes
// 2. Pulls server changes page by page until has_more is false
// 3. Applies pulled changes to local snapshots and saves the new sync token
func (s *service) Sync(ctx context.Context) (*SyncResult, error) {
	clientID, err := s.ensureClientID(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Starting synchronization", "client_id", clientID)

	result := &SyncResult{}

	if err := s.pushPending(ctx, clientID, result); err != nil {
		return nil, err
	}

	token, err := s.pullChanges(ctx, clientID, result)
	if err != nil {
		return nil, err
	}
	result.SyncToken = token

	if err := s.metadataStorage.SaveSyncToken(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to save sync token: %w", err)
	}
	if err := s.metadataStorage.SaveLastSyncAt(ctx, time.Now().UnixNano()); err != nil {
		s.logger.Warn("Failed to save last sync time", "error", err)
		// Не прерываем синхронизацию: токен уже сохранен
	}

	s.logger.Info("Synchronization completed",
		"pushed", result.Pushed,
		"applied", result.Applied,
		"conflicts", result.Conflicts,
		"rejected", result.Rejected,
		"pulled", result.Pulled)

	return result, nil
}

// ensureClientID возвращает сохраненный идентификатор клиента,
// генерируя и сохраняя новый при первом запуске.
func (s *service) ensureClientID(ctx context.Context) (string, error) {
	clientID, err := s.metadataStorage.GetClientID(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get client id: %w", err)
	}
	if clientID != "" {
		return clientID, nil
	}

	clientID = uuid.New().String()
	if err := s.metadataStorage.SaveClientID(ctx, clientID); err != nil {
		return "", fmt.Errorf("failed to save client id: %w", err)
	}

	s.logger.Info("Generated new client id", "client_id", clientID)
	return clientID, nil
}

// pushPending отправляет очередь локальных изменений одним батчем.
// Принятые и конфликтующие элементы удаляются из очереди, отклоненные
// валидацией остаются для исправления.
func (s *service) pushPending(ctx context.Context, clientID string, result *SyncResult) error {
	pending, err := s.queueStorage.Pending(ctx)
	if err != nil {
		return fmt.Errorf("failed to read pending queue: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	result.Pushed = len(pending)

	changes := make([]api.PushChange, 0, len(pending))
	for _, p := range pending {
		changes = append(changes, api.PushChange{
			EntityType:    p.EntityType,
			EntityID:      p.EntityID,
			Operation:     string(p.Operation),
			Data:          p.Data,
			PreviousData:  p.PreviousData,
			ClientVersion: p.BaseVersion,
			DeviceID:      p.DeviceID,
		})
	}

	resp, err := s.apiClient.Push(ctx, api.PushRequest{
		ClientID: clientID,
		Changes:  changes,
	})
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}

	result.Applied = len(resp.Applied)
	result.Conflicts = len(resp.Conflicts)
	result.Rejected = len(resp.Errors)

	for _, conflict := range resp.Conflicts {
		s.logger.Warn("Server recorded conflict",
			"conflict_id", conflict.ID,
			"entity_type", conflict.EntityType,
			"entity_id", conflict.EntityID,
			"server_version", conflict.ServerVersion)
	}

	// Индексы элементов, отклоненных валидацией: они остаются в очереди
	rejected := make(map[int]bool, len(resp.Errors))
	for _, itemErr := range resp.Errors {
		rejected[itemErr.Index] = true
		s.logger.Warn("Server rejected change",
			"index", itemErr.Index,
			"entity_type", itemErr.EntityType,
			"entity_id", itemErr.EntityID,
			"message", itemErr.Message)
	}

	for i, p := range pending {
		if rejected[i] {
			continue
		}
		if err := s.queueStorage.Remove(ctx, p.ID); err != nil {
			return fmt.Errorf("failed to remove queued change %s: %w", p.ID, err)
		}
	}

	return nil
}

// pullChanges выкачивает журнал сервера страницами и применяет
// изменения к локальным снапшотам. Возвращает токен последней страницы.
func (s *service) pullChanges(ctx context.Context, clientID string, result *SyncResult) (string, error) {
	token, err := s.metadataStorage.GetSyncToken(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get sync token: %w", err)
	}

	for {
		resp, err := s.apiClient.Pull(ctx, api.PullRequest{
			ClientID:   clientID,
			SinceToken: token,
			Limit:      pullPageLimit,
		})
		if err != nil {
			return "", fmt.Errorf("pull request failed: %w", err)
		}

		for i := range resp.Changes {
			if err := s.applyChange(ctx, &resp.Changes[i]); err != nil {
				return "", err
			}
		}
		result.Pulled += len(resp.Changes)

		token = resp.SyncToken
		if !resp.HasMore {
			return token, nil
		}
	}
}

// applyChange применяет одно изменение журнала к локальному снапшоту.
// Снапшот обновляется только если версия изменения не ниже локальной:
// журнал отсортирован, но снапшот мог быть обновлен push-ответом.
func (s *service) applyChange(ctx context.Context, change *api.Change) error {
	existing, err := s.snapshotStorage.GetSnapshot(ctx, change.EntityType, change.EntityID)
	if err != nil && err != storage.ErrSnapshotNotFound {
		return fmt.Errorf("failed to get snapshot: %w", err)
	}
	if existing != nil && existing.Version > change.Version {
		s.logger.Debug("Skipping stale change",
			"entity_type", change.EntityType,
			"entity_id", change.EntityID,
			"change_version", change.Version,
			"snapshot_version", existing.Version)
		return nil
	}

	state := &models.EntityState{
		EntityType: change.EntityType,
		EntityID:   change.EntityID,
		Version:    change.Version,
		Data:       change.Data,
	}
	// DELETE хранится как снапшот без данных: счетчик версий
	// сущности переживает удаление
	if change.Operation == string(models.OperationDelete) {
		state.Data = nil
	}

	if err := s.snapshotStorage.SaveSnapshot(ctx, state); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Status возвращает сводку локального состояния синхронизации
func (s *service) Status(ctx context.Context) (*SyncStatus, error) {
	status := &SyncStatus{}

	clientID, err := s.metadataStorage.GetClientID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get client id: %w", err)
	}
	status.ClientID = clientID

	lastSyncAt, err := s.metadataStorage.GetLastSyncAt(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get last sync time: %w", err)
	}
	if lastSyncAt > 0 {
		status.LastSyncAt = time.Unix(0, lastSyncAt)
	}

	pending, err := s.queueStorage.CountPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending changes: %w", err)
	}
	status.PendingChanges = pending

	snapshots, err := s.snapshotStorage.ListSnapshots(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	status.Snapshots = len(snapshots)

	return status, nil
}
