package models

import "time"

// SyncDirection направление сессии синхронизации.
type SyncDirection string

// SyncStatus итоговый статус сессии.
type SyncStatus string

const (
	SyncDirectionPush SyncDirection = "PUSH"
	SyncDirectionPull SyncDirection = "PULL"

	// SyncStatusCompleted все изменения батча обработаны без ошибок валидации
	SyncStatusCompleted SyncStatus = "COMPLETED"
	// SyncStatusPartial часть изменений батча отклонена с ошибками
	SyncStatusPartial SyncStatus = "PARTIAL"
)

// SyncRecord сводка одной push/pull сессии: счетчики, статус, выданный токен.
type SyncRecord struct {
	StartedAt      time.Time     `json:"started_at"`
	CompletedAt    time.Time     `json:"completed_at"`
	ID             string        `json:"id"`
	ClientID       string        `json:"client_id"`
	UserID         string        `json:"user_id"`
	Direction      SyncDirection `json:"direction"`
	Status         SyncStatus    `json:"status"`
	SyncToken      string        `json:"sync_token"`
	ChangesPushed  int           `json:"changes_pushed"`
	ChangesPulled  int           `json:"changes_pulled"`
	ConflictsCount int           `json:"conflicts_count"`
	ErrorsCount    int           `json:"errors_count"`
}

// SyncStats агрегированные счетчики для операционных дашбордов.
// Чисто производное состояние, вычисляется на чтение без побочных эффектов.
type SyncStats struct {
	TotalChanges        int64 `json:"total_changes"`
	SyncedChanges       int64 `json:"synced_changes"`
	PendingChanges      int64 `json:"pending_changes"`
	TotalConflicts      int64 `json:"total_conflicts"`
	UnresolvedConflicts int64 `json:"unresolved_conflicts"`
	ActiveClients       int64 `json:"active_clients"`
	SyncSessions        int64 `json:"sync_sessions"`
}
