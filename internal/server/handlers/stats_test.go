package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/crmsync/internal/models"
	"github.com/iudanet/crmsync/internal/server/storage"
	"github.com/iudanet/crmsync/pkg/api"
)

func TestStatsHandler_HandleGet_Success(t *testing.T) {
	logger := setupTestLogger()

	eng := &mockEngine{
		statsFunc: func(_ context.Context) (*models.SyncStats, error) {
			return &models.SyncStats{
				TotalChanges:        10,
				SyncedChanges:       7,
				PendingChanges:      3,
				TotalConflicts:      2,
				UnresolvedConflicts: 1,
				ActiveClients:       4,
				SyncSessions:        5,
			}, nil
		},
	}
	handler := NewStatsHandler(logger, eng)

	req := httptest.NewRequest(http.MethodGet, "/sync/stats", nil)
	w := httptest.NewRecorder()
	handler.HandleGet(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp api.StatsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.EqualValues(t, 10, resp.TotalChanges)
	assert.EqualValues(t, 3, resp.PendingChanges)
	assert.EqualValues(t, 1, resp.UnresolvedConflicts)
}

func TestStatsHandler_HandleGet_EngineError(t *testing.T) {
	logger := setupTestLogger()

	eng := &mockEngine{
		statsFunc: func(_ context.Context) (*models.SyncStats, error) {
			return nil, errors.New("boom")
		},
	}
	handler := NewStatsHandler(logger, eng)

	req := httptest.NewRequest(http.MethodGet, "/sync/stats", nil)
	w := httptest.NewRecorder()
	handler.HandleGet(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestClientsHandler_HandleGet_Success(t *testing.T) {
	logger := setupTestLogger()

	eng := &mockEngine{
		clientStateFunc: func(_ context.Context, clientID string) (*models.ClientState, error) {
			assert.Equal(t, "client-a", clientID)
			return &models.ClientState{
				ClientID:      "client-a",
				UserID:        "user-1",
				LastSyncToken: "tok-7",
				LastSyncAt:    time.Now(),
				VersionMap:    map[string]int64{"contact:42": 3},
			}, nil
		},
	}
	handler := NewClientsHandler(logger, eng)

	req := httptest.NewRequest(http.MethodGet, "/sync/clients/client-a", nil)
	req.SetPathValue("id", "client-a")
	w := httptest.NewRecorder()
	handler.HandleGet(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp api.ClientStateResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "client-a", resp.ClientID)
	assert.Equal(t, "tok-7", resp.LastSyncToken)
	assert.EqualValues(t, 3, resp.VersionMap["contact:42"])
}

func TestClientsHandler_HandleGet_NotFound(t *testing.T) {
	logger := setupTestLogger()

	eng := &mockEngine{
		clientStateFunc: func(_ context.Context, _ string) (*models.ClientState, error) {
			return nil, storage.ErrClientNotFound
		},
	}
	handler := NewClientsHandler(logger, eng)

	req := httptest.NewRequest(http.MethodGet, "/sync/clients/nope", nil)
	req.SetPathValue("id", "nope")
	w := httptest.NewRecorder()
	handler.HandleGet(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error {
	return m.err
}

func TestHealthHandler_HandleHealth_OK(t *testing.T) {
	logger := setupTestLogger()
	handler := NewHealthHandler(logger, &mockPinger{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	handler.HandleHealth(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestHealthHandler_HandleHealth_StorageDown(t *testing.T) {
	logger := setupTestLogger()
	handler := NewHealthHandler(logger, &mockPinger{err: errors.New("db is gone")})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	handler.HandleHealth(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
