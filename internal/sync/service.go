package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/crmsync/internal/metrics"
	"github.com/iudanet/crmsync/internal/models"
	"github.com/iudanet/crmsync/internal/server/storage"
	"github.com/iudanet/crmsync/internal/validation"
)

// Service движок отслеживания изменений, оптимистичной конкурентности
// и разрешения конфликтов. Хранилища инжектируются интерфейсами,
// публичный контракт движка не зависит от выбора персистентности.
type Service struct {
	now       func() time.Time
	changes   storage.ChangeStorage
	entities  storage.EntityStorage
	conflicts storage.ConflictStorage
	clients   storage.ClientStorage
	records   storage.SyncRecordStorage
	tokens    *TokenCodec
	locks     *keyedLocks
	logger    *slog.Logger
}

// NewService creates a new sync engine instance
func NewService(
	changes storage.ChangeStorage,
	entities storage.EntityStorage,
	conflicts storage.ConflictStorage,
	clients storage.ClientStorage,
	records storage.SyncRecordStorage,
	tokens *TokenCodec,
	logger *slog.Logger,
) *Service {
	return &Service{
		now:       time.Now,
		changes:   changes,
		entities:  entities,
		conflicts: conflicts,
		clients:   clients,
		records:   records,
		tokens:    tokens,
		locks:     newKeyedLocks(),
		logger:    logger,
	}
}

// RecordChangeParams входные данные для записи одного изменения.
type RecordChangeParams struct {
	Data         map[string]any
	PreviousData map[string]any
	EntityType   string
	EntityID     string
	UserID       string
	DeviceID     string
	Operation    models.Operation
	Synced       bool
}

// RecordChange валидирует изменение, присваивает ему следующую версию
// сущности, вычисляет diff полей и checksum, дописывает запись в журнал
// и обновляет version store. Для корректного ключа операция всегда успешна;
// некорректный вход — локальная ошибка валидации.
func (s *Service) RecordChange(ctx context.Context, p RecordChangeParams) (*models.ChangeRecord, error) {
	if err := validation.ValidateChange(p.EntityType, p.EntityID, p.Operation, p.Data); err != nil {
		return nil, err
	}

	key := models.EntityKey{Type: p.EntityType, ID: p.EntityID}

	// Блокируем ключ на всю последовательность read-compare-apply
	unlock := s.locks.Lock(key.String())
	defer unlock()

	return s.applyChange(ctx, p)
}

// applyChange выполняет read-compare-apply без взятия блокировки.
// Вызывающая сторона обязана держать блокировку ключа сущности.
func (s *Service) applyChange(ctx context.Context, p RecordChangeParams) (*models.ChangeRecord, error) {
	var currentVersion int64

	state, err := s.entities.GetEntityState(ctx, p.EntityType, p.EntityID)
	switch {
	case err == nil:
		currentVersion = state.Version
	case errors.Is(err, storage.ErrEntityNotFound):
		currentVersion = 0
	default:
		return nil, fmt.Errorf("failed to read entity state: %w", err)
	}

	newVersion := currentVersion + 1

	record := &models.ChangeRecord{
		ID:           uuid.New().String(),
		EntityType:   p.EntityType,
		EntityID:     p.EntityID,
		Operation:    p.Operation,
		Version:      newVersion,
		Data:         p.Data,
		PreviousData: p.PreviousData,
		Timestamp:    s.now(),
		UserID:       p.UserID,
		DeviceID:     p.DeviceID,
		Synced:       p.Synced,
	}

	// changed_fields вычисляется только для UPDATE с известным previous_data
	if p.Operation == models.OperationUpdate && p.PreviousData != nil {
		record.ChangedFields = DiffFields(p.Data, p.PreviousData)
	}

	// DELETE не несет снапшота, checksum считается только по данным
	if p.Operation != models.OperationDelete {
		checksum, err := Checksum(p.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to compute checksum: %w", err)
		}
		record.Checksum = checksum
	}

	if err := s.changes.SaveChange(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to append change: %w", err)
	}

	// Обновляем version store: DELETE очищает снапшот,
	// но счетчик версий продолжает свою последовательность
	newState := &models.EntityState{
		EntityType: p.EntityType,
		EntityID:   p.EntityID,
		Version:    newVersion,
	}
	if p.Operation != models.OperationDelete {
		newState.Data = p.Data
	}

	if err := s.entities.SaveEntityState(ctx, newState); err != nil {
		return nil, fmt.Errorf("failed to update entity state: %w", err)
	}

	metrics.ChangesRecorded.WithLabelValues(string(p.Operation)).Inc()

	s.logger.Debug("change recorded",
		"entity", record.Key().String(),
		"operation", record.Operation,
		"version", record.Version)

	return record, nil
}

// GetChangesSince декодирует since-токен в границу по времени и возвращает
// изменения строго после нее (или всю историю при пустом токене), опционально
// отфильтрованные по типам сущностей. Новый токен выпускается всегда, даже
// если изменений нет: вызывающая сторона обязана сохранить его, чтобы не
// перечитывать уже виденную историю при следующем pull. Усеченный ответ
// получает токен на границе последней отданной записи, так что следующий
// pull с этим токеном продолжает с хвоста.
func (s *Service) GetChangesSince(
	ctx context.Context,
	sinceToken string,
	entityTypes []string,
	limit int,
) (changes []*models.ChangeRecord, newToken string, hasMore bool, err error) {
	var boundary time.Time

	if sinceToken != "" {
		boundary, err = s.tokens.Decode(sinceToken)
		if err != nil {
			return nil, "", false, err
		}
	}

	for _, entityType := range entityTypes {
		if err := validation.ValidateEntityType(entityType); err != nil {
			return nil, "", false, err
		}
	}

	// Читаем на одну запись больше лимита, чтобы честно сообщить об усечении
	fetchLimit := limit
	if limit > 0 {
		fetchLimit = limit + 1
	}

	changes, err = s.changes.GetChangesSince(ctx, boundary, entityTypes, fetchLimit)
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to read changes: %w", err)
	}

	if limit > 0 && len(changes) > limit {
		changes = changes[:limit]
		hasMore = true
	}

	// При усечении токен чеканится по времени последней отданной записи:
	// граница следующего pull встает сразу за ней, и хвост не теряется.
	// Без усечения токен представляет "сейчас".
	tokenAt := s.now()
	if hasMore {
		tokenAt = changes[len(changes)-1].Timestamp
	}

	newToken, err = s.tokens.Mint(tokenAt)
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to mint sync token: %w", err)
	}

	return changes, newToken, hasMore, nil
}

// EntityChanges возвращает полную историю изменений сущности
// в порядке возрастания версий.
func (s *Service) EntityChanges(ctx context.Context, entityType, entityID string) ([]*models.ChangeRecord, error) {
	if err := validation.ValidateEntityType(entityType); err != nil {
		return nil, err
	}
	if err := validation.ValidateEntityID(entityID); err != nil {
		return nil, err
	}

	return s.changes.GetEntityChanges(ctx, entityType, entityID)
}

// ClientState возвращает серверное состояние клиента.
// Возвращает storage.ErrClientNotFound для клиента, который никогда
// не синхронизировался.
func (s *Service) ClientState(ctx context.Context, clientID string) (*models.ClientState, error) {
	return s.clients.GetClientState(ctx, clientID)
}

// Conflict возвращает конфликт по идентификатору.
func (s *Service) Conflict(ctx context.Context, conflictID string) (*models.SyncConflict, error) {
	return s.conflicts.GetConflict(ctx, conflictID)
}

// ListConflicts возвращает конфликты, опционально только неразрешенные.
func (s *Service) ListConflicts(ctx context.Context, unresolvedOnly bool, limit int) ([]*models.SyncConflict, error) {
	return s.conflicts.ListConflicts(ctx, unresolvedOnly, limit)
}

// Stats собирает агрегированные счетчики движка.
// Чисто производное чтение, без побочных эффектов.
func (s *Service) Stats(ctx context.Context) (*models.SyncStats, error) {
	totalChanges, syncedChanges, err := s.changes.CountChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count changes: %w", err)
	}

	totalConflicts, unresolved, err := s.conflicts.CountConflicts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count conflicts: %w", err)
	}

	clients, err := s.clients.CountClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count clients: %w", err)
	}

	sessions, err := s.records.CountSyncRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count sync records: %w", err)
	}

	return &models.SyncStats{
		TotalChanges:        totalChanges,
		SyncedChanges:       syncedChanges,
		PendingChanges:      totalChanges - syncedChanges,
		TotalConflicts:      totalConflicts,
		UnresolvedConflicts: unresolved,
		ActiveClients:       clients,
		SyncSessions:        sessions,
	}, nil
}
