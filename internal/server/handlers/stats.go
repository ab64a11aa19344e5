package handlers

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/crmsync/pkg/api"
)

// StatsHandler handles aggregate sync statistics requests
type StatsHandler struct {
	logger *slog.Logger
	engine Engine
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(logger *slog.Logger, eng Engine) *StatsHandler {
	return &StatsHandler{
		logger: logger,
		engine: eng,
	}
}

// HandleGet обрабатывает GET /sync/stats
func (h *StatsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.Stats(r.Context())
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, api.StatsResponse{
		TotalChanges:        stats.TotalChanges,
		SyncedChanges:       stats.SyncedChanges,
		PendingChanges:      stats.PendingChanges,
		TotalConflicts:      stats.TotalConflicts,
		UnresolvedConflicts: stats.UnresolvedConflicts,
		ActiveClients:       stats.ActiveClients,
		SyncSessions:        stats.SyncSessions,
	})
}
