package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/iudanet/crmsync/internal/models"
	engine "github.com/iudanet/crmsync/internal/sync"
	"github.com/iudanet/crmsync/pkg/api"
)

// defaultPullLimit лимит выборки, если клиент его не задал
const defaultPullLimit = 500

// SyncHandler handles push/pull and change log requests
type SyncHandler struct {
	logger *slog.Logger
	engine Engine
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(logger *slog.Logger, eng Engine) *SyncHandler {
	return &SyncHandler{
		logger: logger,
		engine: eng,
	}
}

// HandlePush обрабатывает POST /sync/push
// Принимает батч изменений клиента; невалидные элементы собираются
// в errors[] и не прерывают остальные (partial-failure семантика).
func (h *SyncHandler) HandlePush(w http.ResponseWriter, r *http.Request) {
	var req api.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode push request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.ClientID == "" {
		http.Error(w, "client_id is required", http.StatusBadRequest)
		return
	}

	incoming := make([]engine.IncomingChange, 0, len(req.Changes))
	for _, c := range req.Changes {
		incoming = append(incoming, engine.IncomingChange{
			EntityType:    c.EntityType,
			EntityID:      c.EntityID,
			Operation:     models.Operation(c.Operation),
			ClientVersion: c.ClientVersion,
			Data:          c.Data,
			PreviousData:  c.PreviousData,
			DeviceID:      c.DeviceID,
		})
	}

	result, err := h.engine.PushChanges(r.Context(), req.ClientID, req.UserID, incoming)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}

	resp := api.PushResponse{
		Applied:   toAPIChanges(result.Applied),
		Conflicts: toAPIConflicts(result.Conflicts),
		Errors:    make([]api.PushItemError, 0, len(result.Errors)),
		SyncToken: result.SyncToken,
		Status:    string(result.Record.Status),
	}
	for _, e := range result.Errors {
		resp.Errors = append(resp.Errors, api.PushItemError{
			Index:      e.Index,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Message:    e.Message,
		})
	}

	writeJSON(w, h.logger, http.StatusOK, resp)
}

// HandlePull обрабатывает POST /sync/pull
// Возвращает изменения после since-токена клиента и свежий токен,
// который клиент обязан сохранить для следующего pull.
func (h *SyncHandler) HandlePull(w http.ResponseWriter, r *http.Request) {
	var req api.PullRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode pull request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.ClientID == "" {
		http.Error(w, "client_id is required", http.StatusBadRequest)
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultPullLimit
	}

	result, err := h.engine.PullChanges(r.Context(), req.ClientID, req.UserID, req.SinceToken, req.EntityTypes, limit)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, api.PullResponse{
		Changes:   toAPIChanges(result.Changes),
		SyncToken: result.SyncToken,
		HasMore:   result.HasMore,
	})
}

// HandleRecordChange обрабатывает POST /sync/changes
// Прямая запись одного изменения в обход push-протокола —
// используется серверными CRUD-обработчиками.
func (h *SyncHandler) HandleRecordChange(w http.ResponseWriter, r *http.Request) {
	var req api.RecordChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode record change request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	record, err := h.engine.RecordChange(r.Context(), engine.RecordChangeParams{
		EntityType:   req.EntityType,
		EntityID:     req.EntityID,
		Operation:    models.Operation(req.Operation),
		Data:         req.Data,
		PreviousData: req.PreviousData,
		UserID:       req.UserID,
		DeviceID:     req.DeviceID,
	})
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, toAPIChange(record))
}

// HandleGetChanges обрабатывает GET /sync/changes?since_token=&entity_types=&limit=
// Запрос истории без обновления состояния какого-либо клиента.
func (h *SyncHandler) HandleGetChanges(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	sinceToken := query.Get("since_token")

	var entityTypes []string
	if raw := query.Get("entity_types"); raw != "" {
		entityTypes = strings.Split(raw, ",")
	}

	limit := defaultPullLimit
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	changes, newToken, hasMore, err := h.engine.GetChangesSince(r.Context(), sinceToken, entityTypes, limit)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, api.ChangesResponse{
		Changes:   toAPIChanges(changes),
		SyncToken: newToken,
		HasMore:   hasMore,
	})
}
