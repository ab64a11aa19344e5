package handlers

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/crmsync/pkg/api"
)

// ClientsHandler handles client state inspection requests
type ClientsHandler struct {
	logger *slog.Logger
	engine Engine
}

// NewClientsHandler creates a new clients handler
func NewClientsHandler(logger *slog.Logger, eng Engine) *ClientsHandler {
	return &ClientsHandler{
		logger: logger,
		engine: eng,
	}
}

// HandleGet обрабатывает GET /sync/clients/{id}
func (h *ClientsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	clientID := r.PathValue("id")
	if clientID == "" {
		http.Error(w, "client id is required", http.StatusBadRequest)
		return
	}

	state, err := h.engine.ClientState(r.Context(), clientID)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, api.ClientStateResponse{
		LastSyncAt:    state.LastSyncAt,
		VersionMap:    state.VersionMap,
		ClientID:      state.ClientID,
		UserID:        state.UserID,
		LastSyncToken: state.LastSyncToken,
	})
}
