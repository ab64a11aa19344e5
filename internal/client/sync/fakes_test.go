package sync

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/iudanet/crmsync/internal/client/storage"
	"github.com/iudanet/crmsync/internal/models"
	"github.com/iudanet/crmsync/pkg/api"
)

// fakeAPI подменяет HTTP клиент сервера в тестах
type fakeAPI struct {
	pushFunc func(ctx context.Context, req api.PushRequest) (*api.PushResponse, error)
	pullFunc func(ctx context.Context, req api.PullRequest) (*api.PullResponse, error)

	pushRequests []api.PushRequest
	pullRequests []api.PullRequest
}

func (f *fakeAPI) Push(ctx context.Context, req api.PushRequest) (*api.PushResponse, error) {
	f.pushRequests = append(f.pushRequests, req)
	if f.pushFunc == nil {
		return &api.PushResponse{SyncToken: "push-token", Status: "completed"}, nil
	}
	return f.pushFunc(ctx, req)
}

func (f *fakeAPI) Pull(ctx context.Context, req api.PullRequest) (*api.PullResponse, error) {
	f.pullRequests = append(f.pullRequests, req)
	if f.pullFunc == nil {
		return &api.PullResponse{SyncToken: "pull-token"}, nil
	}
	return f.pullFunc(ctx, req)
}

// memClientStorage реализует клиентские storage-интерфейсы в памяти
type memClientStorage struct {
	mu         sync.Mutex
	queue      []*models.PendingChange
	snapshots  map[string]*models.EntityState
	syncToken  string
	clientID   string
	lastSyncAt int64
}

func newMemClientStorage() *memClientStorage {
	return &memClientStorage{
		snapshots: make(map[string]*models.EntityState),
	}
}

func (m *memClientStorage) Enqueue(_ context.Context, change *models.PendingChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, change)
	return nil
}

func (m *memClientStorage) Pending(_ context.Context) ([]*models.PendingChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.PendingChange, len(m.queue))
	copy(out, m.queue)
	return out, nil
}

func (m *memClientStorage) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.queue {
		if p.ID == id {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return nil
		}
	}
	return storage.ErrPendingNotFound
}

func (m *memClientStorage) CountPending(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue), nil
}

func (m *memClientStorage) SaveSnapshot(_ context.Context, state *models.EntityState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[state.Key().String()] = state
	return nil
}

func (m *memClientStorage) GetSnapshot(_ context.Context, entityType, entityID string) (*models.EntityState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.snapshots[models.EntityKey{Type: entityType, ID: entityID}.String()]
	if !ok {
		return nil, storage.ErrSnapshotNotFound
	}
	return state, nil
}

func (m *memClientStorage) ListSnapshots(_ context.Context, entityType string) ([]*models.EntityState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.EntityState
	for _, state := range m.snapshots {
		if entityType != "" && state.EntityType != entityType {
			continue
		}
		out = append(out, state)
	}
	return out, nil
}

func (m *memClientStorage) SaveSyncToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncToken = token
	return nil
}

func (m *memClientStorage) GetSyncToken(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syncToken, nil
}

func (m *memClientStorage) SaveClientID(_ context.Context, clientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clientID = clientID
	return nil
}

func (m *memClientStorage) GetClientID(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clientID, nil
}

func (m *memClientStorage) SaveLastSyncAt(_ context.Context, timestamp int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSyncAt = timestamp
	return nil
}

func (m *memClientStorage) GetLastSyncAt(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSyncAt, nil
}

func setupTestService(apiClient *fakeAPI) (Service, *memClientStorage) {
	mem := newMemClientStorage()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(apiClient, mem, mem, mem, logger), mem
}
