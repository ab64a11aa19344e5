package sync

import (
	"context"
	"fmt"

	"github.com/iudanet/crmsync/internal/metrics"
	"github.com/iudanet/crmsync/internal/models"
	"github.com/iudanet/crmsync/internal/validation"
)

// ResolveConflict разрешает конфликт одной из пяти стратегий и записывает
// итоговый снапшот как новое UPDATE-изменение (previous_data = server_data),
// поднимая версию сущности: оба клиента увидят результат на следующем pull.
// Если выбранная копия пуста, то есть конфликт шел против удаления,
// разрешение фиксируется DELETE-записью.
// Конфликт разрешается ровно один раз; повторная попытка — ошибка без
// мутации состояния.
func (s *Service) ResolveConflict(
	ctx context.Context,
	conflictID string,
	resolution models.Resolution,
	resolvedData map[string]any,
	resolvedBy string,
) (*models.SyncConflict, error) {
	conflict, err := s.conflicts.GetConflict(ctx, conflictID)
	if err != nil {
		return nil, err
	}

	if conflict.Resolved() {
		return nil, ErrConflictAlreadyResolved
	}

	data, err := resolveData(conflict, resolution, resolvedData)
	if err != nil {
		return nil, err
	}

	// Выбранная копия может быть удалением (конфликт против серверного
	// DELETE): пустой снапшот фиксируется DELETE-записью, иначе UPDATE
	op := models.OperationUpdate
	if len(data) == 0 {
		op = models.OperationDelete
		data = nil
	}

	// Исход проверяется до любой записи: неудачное разрешение
	// не мутирует состояние
	if err := validation.ValidateChange(conflict.EntityType, conflict.EntityID, op, data); err != nil {
		return nil, err
	}

	resolvedAt := s.now()
	conflict.Resolution = resolution
	conflict.ResolvedData = data
	conflict.ResolvedAt = &resolvedAt
	conflict.ResolvedBy = resolvedBy

	if err := s.conflicts.UpdateConflict(ctx, conflict); err != nil {
		return nil, fmt.Errorf("failed to update conflict: %w", err)
	}

	// Разрешение порождает ровно одну новую запись в журнале
	if _, err := s.RecordChange(ctx, RecordChangeParams{
		EntityType:   conflict.EntityType,
		EntityID:     conflict.EntityID,
		Operation:    op,
		Data:         data,
		PreviousData: conflict.ServerData,
		UserID:       resolvedBy,
	}); err != nil {
		return nil, fmt.Errorf("failed to record resolution change: %w", err)
	}

	metrics.ConflictsResolved.WithLabelValues(string(resolution)).Inc()

	s.logger.Info("conflict resolved",
		"conflict_id", conflict.ID,
		"entity", conflict.Key().String(),
		"resolution", resolution)

	return conflict, nil
}

// resolveData выбирает итоговый снапшот по стратегии.
func resolveData(conflict *models.SyncConflict, resolution models.Resolution, manual map[string]any) (map[string]any, error) {
	switch resolution {
	case models.ResolutionServerWins:
		return conflict.ServerData, nil

	case models.ResolutionClientWins:
		return conflict.LocalData, nil

	case models.ResolutionLatestWins:
		// Полевых timestamp'ов в модели данных нет, поэтому
		// latest-wins детерминированно берет серверную копию
		return conflict.ServerData, nil

	case models.ResolutionMerge:
		// Shallow merge: серверный снапшот как основа,
		// клиентские поля выигрывают при пересечении
		merged := make(map[string]any, len(conflict.ServerData)+len(conflict.LocalData))
		for k, v := range conflict.ServerData {
			merged[k] = v
		}
		for k, v := range conflict.LocalData {
			merged[k] = v
		}
		return merged, nil

	case models.ResolutionManual:
		if len(manual) == 0 {
			return nil, ErrMissingManualData
		}
		return manual, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownResolution, resolution)
	}
}
