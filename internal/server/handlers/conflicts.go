package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iudanet/crmsync/internal/models"
	"github.com/iudanet/crmsync/pkg/api"
)

// defaultConflictsLimit лимит списка конфликтов по умолчанию
const defaultConflictsLimit = 100

// ConflictsHandler handles conflict inspection and resolution requests
type ConflictsHandler struct {
	logger *slog.Logger
	engine Engine
}

// NewConflictsHandler creates a new conflicts handler
func NewConflictsHandler(logger *slog.Logger, eng Engine) *ConflictsHandler {
	return &ConflictsHandler{
		logger: logger,
		engine: eng,
	}
}

// HandleList обрабатывает GET /sync/conflicts?unresolved_only=&limit=
func (h *ConflictsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	unresolvedOnly := query.Get("unresolved_only") == "true"

	limit := defaultConflictsLimit
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	conflicts, err := h.engine.ListConflicts(r.Context(), unresolvedOnly, limit)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, api.ConflictsResponse{
		Conflicts: toAPIConflicts(conflicts),
	})
}

// HandleGet обрабатывает GET /sync/conflicts/{id}
func (h *ConflictsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	conflictID := r.PathValue("id")
	if conflictID == "" {
		http.Error(w, "conflict id is required", http.StatusBadRequest)
		return
	}

	conflict, err := h.engine.Conflict(r.Context(), conflictID)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, toAPIConflict(conflict))
}

// HandleResolve обрабатывает POST /sync/conflicts/{id}/resolve
// Разрешение одноразовое: повторный вызов для уже разрешенного
// конфликта вернет 409.
func (h *ConflictsHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	conflictID := r.PathValue("id")
	if conflictID == "" {
		http.Error(w, "conflict id is required", http.StatusBadRequest)
		return
	}

	var req api.ResolveConflictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode resolve request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Resolution == "" {
		http.Error(w, "resolution is required", http.StatusBadRequest)
		return
	}

	conflict, err := h.engine.ResolveConflict(
		r.Context(),
		conflictID,
		models.Resolution(req.Resolution),
		req.ResolvedData,
		req.ResolvedBy,
	)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, toAPIConflict(conflict))
}
