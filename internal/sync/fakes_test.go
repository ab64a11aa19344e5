package sync

import (
	"context"
	"io"
	"log/slog"
	"sort"
	gosync "sync"
	"time"

	"github.com/iudanet/crmsync/internal/models"
	"github.com/iudanet/crmsync/internal/server/storage"
)

// memStorage is an in-memory implementation of every repository interface,
// good enough to drive full push/pull/resolve scenarios in tests.
type memStorage struct {
	mu       gosync.Mutex
	changes  []*models.ChangeRecord
	entities map[string]*models.EntityState
	confs    map[string]*models.SyncConflict
	clients  map[string]*models.ClientState
	records  []*models.SyncRecord
}

func newMemStorage() *memStorage {
	return &memStorage{
		entities: make(map[string]*models.EntityState),
		confs:    make(map[string]*models.SyncConflict),
		clients:  make(map[string]*models.ClientState),
	}
}

func (m *memStorage) SaveChange(_ context.Context, change *models.ChangeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changes = append(m.changes, change)
	return nil
}

func (m *memStorage) GetChange(_ context.Context, id string) (*models.ChangeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.changes {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, storage.ErrChangeNotFound
}

func (m *memStorage) GetChangesSince(_ context.Context, since time.Time, entityTypes []string, limit int) ([]*models.ChangeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	typeSet := make(map[string]bool)
	for _, t := range entityTypes {
		typeSet[t] = true
	}

	var out []*models.ChangeRecord
	for _, c := range m.changes {
		if !c.Timestamp.After(since) {
			continue
		}
		if len(typeSet) > 0 && !typeSet[c.EntityType] {
			continue
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStorage) GetEntityChanges(_ context.Context, entityType, entityID string) ([]*models.ChangeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.ChangeRecord
	for _, c := range m.changes {
		if c.EntityType == entityType && c.EntityID == entityID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Version < out[j].Version
	})
	return out, nil
}

func (m *memStorage) CountChanges(_ context.Context) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var synced int64
	for _, c := range m.changes {
		if c.Synced {
			synced++
		}
	}
	return int64(len(m.changes)), synced, nil
}

func (m *memStorage) GetEntityState(_ context.Context, entityType, entityID string) (*models.EntityState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := models.EntityKey{Type: entityType, ID: entityID}
	state, ok := m.entities[key.String()]
	if !ok {
		return nil, storage.ErrEntityNotFound
	}
	return state, nil
}

func (m *memStorage) SaveEntityState(_ context.Context, state *models.EntityState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[state.Key().String()] = state
	return nil
}

func (m *memStorage) SaveConflict(_ context.Context, conflict *models.SyncConflict) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confs[conflict.ID] = conflict
	return nil
}

func (m *memStorage) GetConflict(_ context.Context, id string) (*models.SyncConflict, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conflict, ok := m.confs[id]
	if !ok {
		return nil, storage.ErrConflictNotFound
	}
	return conflict, nil
}

func (m *memStorage) UpdateConflict(_ context.Context, conflict *models.SyncConflict) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.confs[conflict.ID]; !ok {
		return storage.ErrConflictNotFound
	}
	m.confs[conflict.ID] = conflict
	return nil
}

func (m *memStorage) ListConflicts(_ context.Context, unresolvedOnly bool, limit int) ([]*models.SyncConflict, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.SyncConflict
	for _, c := range m.confs {
		if unresolvedOnly && c.Resolved() {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DetectedAt.After(out[j].DetectedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStorage) CountConflicts(_ context.Context) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var unresolved int64
	for _, c := range m.confs {
		if !c.Resolved() {
			unresolved++
		}
	}
	return int64(len(m.confs)), unresolved, nil
}

func (m *memStorage) GetClientState(_ context.Context, clientID string) (*models.ClientState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.clients[clientID]
	if !ok {
		return nil, storage.ErrClientNotFound
	}
	return state, nil
}

func (m *memStorage) SaveClientState(_ context.Context, state *models.ClientState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[state.ClientID] = state
	return nil
}

func (m *memStorage) CountClients(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.clients)), nil
}

func (m *memStorage) SaveSyncRecord(_ context.Context, record *models.SyncRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return nil
}

func (m *memStorage) CountSyncRecords(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.records)), nil
}

// setupTestService wires the engine on top of an in-memory storage.
// The returned clock advances by one millisecond on every call, so
// every change record gets a distinct timestamp.
func setupTestService() (*Service, *memStorage) {
	mem := newMemStorage()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewService(mem, mem, mem, mem, mem, NewTokenCodec("test-secret"), logger)

	base := time.Unix(1700000000, 0)
	var calls int64
	var mu gosync.Mutex
	svc.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return base.Add(time.Duration(calls) * time.Millisecond)
	}

	return svc, mem
}
