// Package api содержит wire-типы HTTP API движка синхронизации.
package api

import "time"

// Change одна запись журнала изменений в API-формате
type Change struct {
	Timestamp     time.Time      `json:"timestamp"`
	Data          map[string]any `json:"data,omitempty"`
	PreviousData  map[string]any `json:"previous_data,omitempty"`
	ID            string         `json:"id"`
	EntityType    string         `json:"entity_type"`
	EntityID      string         `json:"entity_id"`
	Operation     string         `json:"operation"`
	Checksum      string         `json:"checksum,omitempty"`
	UserID        string         `json:"user_id,omitempty"`
	DeviceID      string         `json:"device_id,omitempty"`
	ChangedFields []string       `json:"changed_fields,omitempty"`
	Version       int64          `json:"version"`
	Synced        bool           `json:"synced"`
}

// PushChange одно изменение в push-батче клиента.
// ClientVersion — версия сущности, которую клиент видел последней.
type PushChange struct {
	Data          map[string]any `json:"data,omitempty"`
	PreviousData  map[string]any `json:"previous_data,omitempty"`
	EntityType    string         `json:"entity_type"`
	EntityID      string         `json:"entity_id"`
	Operation     string         `json:"operation"`
	DeviceID      string         `json:"device_id,omitempty"`
	ClientVersion int64          `json:"client_version"`
}

// PushRequest запрос POST /sync/push
type PushRequest struct {
	ClientID string       `json:"client_id"`
	UserID   string       `json:"user_id,omitempty"`
	Changes  []PushChange `json:"changes"`
}

// PushItemError ошибка валидации одного элемента батча
type PushItemError struct {
	Message    string `json:"message"`
	EntityType string `json:"entity_type,omitempty"`
	EntityID   string `json:"entity_id,omitempty"`
	Index      int    `json:"index"`
}

// Conflict конфликт синхронизации в API-формате
type Conflict struct {
	DetectedAt        time.Time      `json:"detected_at"`
	ResolvedAt        *time.Time     `json:"resolved_at,omitempty"`
	LocalData         map[string]any `json:"local_data,omitempty"`
	ServerData        map[string]any `json:"server_data,omitempty"`
	ResolvedData      map[string]any `json:"resolved_data,omitempty"`
	ID                string         `json:"id"`
	EntityType        string         `json:"entity_type"`
	EntityID          string         `json:"entity_id"`
	ClientID          string         `json:"client_id,omitempty"`
	Resolution        string         `json:"resolution,omitempty"`
	ResolvedBy        string         `json:"resolved_by,omitempty"`
	ConflictingFields []string       `json:"conflicting_fields,omitempty"`
	LocalVersion      int64          `json:"local_version"`
	ServerVersion     int64          `json:"server_version"`
}

// PushResponse ответ POST /sync/push
type PushResponse struct {
	SyncToken string          `json:"sync_token"`
	Status    string          `json:"status"`
	Applied   []Change        `json:"applied"`
	Conflicts []Conflict      `json:"conflicts"`
	Errors    []PushItemError `json:"errors"`
}

// PullRequest запрос POST /sync/pull
type PullRequest struct {
	ClientID    string   `json:"client_id"`
	UserID      string   `json:"user_id,omitempty"`
	SinceToken  string   `json:"since_token,omitempty"`
	EntityTypes []string `json:"entity_types,omitempty"`
	Limit       int      `json:"limit,omitempty"`
}

// PullResponse ответ POST /sync/pull
type PullResponse struct {
	SyncToken string   `json:"sync_token"`
	Changes   []Change `json:"changes"`
	HasMore   bool     `json:"has_more"`
}

// RecordChangeRequest запрос POST /sync/changes (прямая запись одного изменения)
type RecordChangeRequest struct {
	Data         map[string]any `json:"data,omitempty"`
	PreviousData map[string]any `json:"previous_data,omitempty"`
	EntityType   string         `json:"entity_type"`
	EntityID     string         `json:"entity_id"`
	Operation    string         `json:"operation"`
	UserID       string         `json:"user_id,omitempty"`
	DeviceID     string         `json:"device_id,omitempty"`
}

// ChangesResponse ответ GET /sync/changes
type ChangesResponse struct {
	SyncToken string   `json:"sync_token"`
	Changes   []Change `json:"changes"`
	HasMore   bool     `json:"has_more"`
}

// ResolveConflictRequest запрос POST /sync/conflicts/{id}/resolve
type ResolveConflictRequest struct {
	ResolvedData map[string]any `json:"resolved_data,omitempty"`
	Resolution   string         `json:"resolution"`
	ResolvedBy   string         `json:"resolved_by,omitempty"`
}

// ConflictsResponse ответ GET /sync/conflicts
type ConflictsResponse struct {
	Conflicts []Conflict `json:"conflicts"`
}

// ClientStateResponse ответ GET /sync/clients/{id}
type ClientStateResponse struct {
	LastSyncAt    time.Time        `json:"last_sync_at"`
	VersionMap    map[string]int64 `json:"version_map"`
	ClientID      string           `json:"client_id"`
	UserID        string           `json:"user_id,omitempty"`
	LastSyncToken string           `json:"last_sync_token,omitempty"`
}

// StatsResponse ответ GET /sync/stats
type StatsResponse struct {
	TotalChanges        int64 `json:"total_changes"`
	SyncedChanges       int64 `json:"synced_changes"`
	PendingChanges      int64 `json:"pending_changes"`
	TotalConflicts      int64 `json:"total_conflicts"`
	UnresolvedConflicts int64 `json:"unresolved_conflicts"`
	ActiveClients       int64 `json:"active_clients"`
	SyncSessions        int64 `json:"sync_sessions"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
