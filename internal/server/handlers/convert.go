package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/crmsync/internal/models"
	"github.com/iudanet/crmsync/internal/server/storage"
	engine "github.com/iudanet/crmsync/internal/sync"
	"github.com/iudanet/crmsync/internal/validation"
	"github.com/iudanet/crmsync/pkg/api"
)

// toAPIChange конвертирует запись журнала в API-формат
func toAPIChange(c *models.ChangeRecord) api.Change {
	return api.Change{
		ID:            c.ID,
		EntityType:    c.EntityType,
		EntityID:      c.EntityID,
		Operation:     string(c.Operation),
		Version:       c.Version,
		Data:          c.Data,
		PreviousData:  c.PreviousData,
		ChangedFields: c.ChangedFields,
		Checksum:      c.Checksum,
		Timestamp:     c.Timestamp,
		UserID:        c.UserID,
		DeviceID:      c.DeviceID,
		Synced:        c.Synced,
	}
}

func toAPIChanges(changes []*models.ChangeRecord) []api.Change {
	out := make([]api.Change, 0, len(changes))
	for _, c := range changes {
		out = append(out, toAPIChange(c))
	}
	return out
}

// toAPIConflict конвертирует конфликт в API-формат
func toAPIConflict(c *models.SyncConflict) api.Conflict {
	return api.Conflict{
		ID:                c.ID,
		EntityType:        c.EntityType,
		EntityID:          c.EntityID,
		ClientID:          c.ClientID,
		LocalVersion:      c.LocalVersion,
		ServerVersion:     c.ServerVersion,
		LocalData:         c.LocalData,
		ServerData:        c.ServerData,
		ConflictingFields: c.ConflictingFields,
		Resolution:        string(c.Resolution),
		ResolvedData:      c.ResolvedData,
		ResolvedAt:        c.ResolvedAt,
		ResolvedBy:        c.ResolvedBy,
		DetectedAt:        c.DetectedAt,
	}
}

func toAPIConflicts(conflicts []*models.SyncConflict) []api.Conflict {
	out := make([]api.Conflict, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, toAPIConflict(c))
	}
	return out
}

// writeJSON пишет успешный JSON-ответ
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// writeEngineError отображает ошибку движка в HTTP-статус.
// Вся таксономия ошибок движка восстановимая: 4xx для ошибок вызывающей
// стороны, 500 только для инфраструктурных сбоев.
func writeEngineError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var status int

	switch {
	case errors.Is(err, validation.ErrValidation),
		errors.Is(err, engine.ErrInvalidSyncToken),
		errors.Is(err, engine.ErrMissingManualData),
		errors.Is(err, engine.ErrUnknownResolution):
		status = http.StatusBadRequest

	case errors.Is(err, storage.ErrConflictNotFound),
		errors.Is(err, storage.ErrClientNotFound),
		errors.Is(err, storage.ErrChangeNotFound),
		errors.Is(err, storage.ErrEntityNotFound):
		status = http.StatusNotFound

	case errors.Is(err, engine.ErrConflictAlreadyResolved):
		status = http.StatusConflict

	default:
		logger.Error("internal error", "error", err)
		status = http.StatusInternalServerError
	}

	payload := api.ErrorResponse{Error: http.StatusText(status)}
	if status != http.StatusInternalServerError {
		// Детали не раскрываются для внутренних ошибок
		payload.Message = err.Error()
	}

	writeJSON(w, logger, status, payload)
}
