package sync

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/iudanet/crmsync/internal/metrics"
	"github.com/iudanet/crmsync/internal/models"
	"github.com/iudanet/crmsync/internal/validation"
)

// PullResult результат pull-сессии клиента.
type PullResult struct {
	SyncToken string
	Changes   []*models.ChangeRecord
	HasMore   bool
}

// PullChanges отдает клиенту изменения после его since-токена.
// Если токен не передан, используется сохраненный токен клиента
// (клиент без истории получает всю историю целиком). После выборки
// состояние клиента обновляется свежевыпущенным токеном.
// HasMore сообщает, было ли усечение по limit.
func (s *Service) PullChanges(
	ctx context.Context,
	clientID, userID, sinceToken string,
	entityTypes []string,
	limit int,
) (*PullResult, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: client id cannot be empty", validation.ErrValidation)
	}

	startedAt := s.now()

	state, err := s.loadOrCreateClientState(ctx, clientID, userID)
	if err != nil {
		return nil, err
	}

	if sinceToken == "" {
		sinceToken = state.LastSyncToken
	}

	changes, newToken, hasMore, err := s.GetChangesSince(ctx, sinceToken, entityTypes, limit)
	if err != nil {
		return nil, err
	}

	// Запоминаем версии, отданные клиенту
	for _, change := range changes {
		state.Acknowledge(change.Key(), change.Version)
	}

	completedAt := s.now()
	state.LastSyncAt = completedAt
	state.LastSyncToken = newToken
	if err := s.clients.SaveClientState(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save client state: %w", err)
	}

	record := &models.SyncRecord{
		ID:            uuid.New().String(),
		ClientID:      clientID,
		UserID:        userID,
		Direction:     models.SyncDirectionPull,
		Status:        models.SyncStatusCompleted,
		SyncToken:     newToken,
		ChangesPulled: len(changes),
		StartedAt:     startedAt,
		CompletedAt:   completedAt,
	}
	if err := s.records.SaveSyncRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save sync record: %w", err)
	}

	metrics.PullSessions.Inc()

	s.logger.Info("pull completed",
		"client_id", clientID,
		"changes", len(changes),
		"has_more", hasMore)

	return &PullResult{
		Changes:   changes,
		SyncToken: newToken,
		HasMore:   hasMore,
	}, nil
}
