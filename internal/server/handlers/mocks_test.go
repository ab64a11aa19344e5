package handlers

import (
	"context"
	"log/slog"
	"os"

	"github.com/iudanet/crmsync/internal/models"
	engine "github.com/iudanet/crmsync/internal/sync"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors in tests
	}
	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

// mockEngine is a mock implementation of Engine for testing
type mockEngine struct {
	recordChangeFunc    func(ctx context.Context, p engine.RecordChangeParams) (*models.ChangeRecord, error)
	getChangesSinceFunc func(ctx context.Context, sinceToken string, entityTypes []string, limit int) ([]*models.ChangeRecord, string, bool, error)
	pushChangesFunc     func(ctx context.Context, clientID, userID string, incoming []engine.IncomingChange) (*engine.PushResult, error)
	pullChangesFunc     func(ctx context.Context, clientID, userID, sinceToken string, entityTypes []string, limit int) (*engine.PullResult, error)
	resolveConflictFunc func(ctx context.Context, conflictID string, resolution models.Resolution, resolvedData map[string]any, resolvedBy string) (*models.SyncConflict, error)
	conflictFunc        func(ctx context.Context, conflictID string) (*models.SyncConflict, error)
	listConflictsFunc   func(ctx context.Context, unresolvedOnly bool, limit int) ([]*models.SyncConflict, error)
	clientStateFunc     func(ctx context.Context, clientID string) (*models.ClientState, error)
	statsFunc           func(ctx context.Context) (*models.SyncStats, error)
}

func (m *mockEngine) RecordChange(ctx context.Context, p engine.RecordChangeParams) (*models.ChangeRecord, error) {
	return m.recordChangeFunc(ctx, p)
}

func (m *mockEngine) GetChangesSince(ctx context.Context, sinceToken string, entityTypes []string, limit int) ([]*models.ChangeRecord, string, bool, error) {
	return m.getChangesSinceFunc(ctx, sinceToken, entityTypes, limit)
}

func (m *mockEngine) PushChanges(ctx context.Context, clientID, userID string, incoming []engine.IncomingChange) (*engine.PushResult, error) {
	return m.pushChangesFunc(ctx, clientID, userID, incoming)
}

func (m *mockEngine) PullChanges(ctx context.Context, clientID, userID, sinceToken string, entityTypes []string, limit int) (*engine.PullResult, error) {
	return m.pullChangesFunc(ctx, clientID, userID, sinceToken, entityTypes, limit)
}

func (m *mockEngine) ResolveConflict(ctx context.Context, conflictID string, resolution models.Resolution, resolvedData map[string]any, resolvedBy string) (*models.SyncConflict, error) {
	return m.resolveConflictFunc(ctx, conflictID, resolution, resolvedData, resolvedBy)
}

func (m *mockEngine) Conflict(ctx context.Context, conflictID string) (*models.SyncConflict, error) {
	return m.conflictFunc(ctx, conflictID)
}

func (m *mockEngine) ListConflicts(ctx context.Context, unresolvedOnly bool, limit int) ([]*models.SyncConflict, error) {
	return m.listConflictsFunc(ctx, unresolvedOnly, limit)
}

func (m *mockEngine) ClientState(ctx context.Context, clientID string) (*models.ClientState, error) {
	return m.clientStateFunc(ctx, clientID)
}

func (m *mockEngine) Stats(ctx context.Context) (*models.SyncStats, error) {
	return m.statsFunc(ctx)
}
