package handlers

import (
	"context"

	"github.com/iudanet/crmsync/internal/models"
	engine "github.com/iudanet/crmsync/internal/sync"
)

// Engine определяет интерфейс движка синхронизации, который потребляют handlers
type Engine interface {
	// RecordChange записывает одно изменение напрямую (минуя push-протокол)
	RecordChange(ctx context.Context, p engine.RecordChangeParams) (*models.ChangeRecord, error)

	// GetChangesSince возвращает изменения после since-токена и свежий токен
	GetChangesSince(ctx context.Context, sinceToken string, entityTypes []string, limit int) ([]*models.ChangeRecord, string, bool, error)

	// PushChanges обрабатывает push-батч клиента
	PushChanges(ctx context.Context, clientID, userID string, incoming []engine.IncomingChange) (*engine.PushResult, error)

	// PullChanges отдает клиенту изменения после его since-токена
	PullChanges(ctx context.Context, clientID, userID, sinceToken string, entityTypes []string, limit int) (*engine.PullResult, error)

	// ResolveConflict разрешает конфликт выбранной стратегией
	ResolveConflict(ctx context.Context, conflictID string, resolution models.Resolution, resolvedData map[string]any, resolvedBy string) (*models.SyncConflict, error)

	// Conflict возвращает конфликт по идентификатору
	Conflict(ctx context.Context, conflictID string) (*models.SyncConflict, error)

	// ListConflicts возвращает конфликты, опционально только неразрешенные
	ListConflicts(ctx context.Context, unresolvedOnly bool, limit int) ([]*models.SyncConflict, error)

	// ClientState возвращает серверное состояние клиента
	ClientState(ctx context.Context, clientID string) (*models.ClientState, error)

	// Stats возвращает агрегированные счетчики движка
	Stats(ctx context.Context) (*models.SyncStats, error)
}
