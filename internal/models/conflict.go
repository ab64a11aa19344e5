package models

import "time"

// Resolution стратегия разрешения конфликта.
type Resolution string

// Стратегии разрешения конфликтов
const (
	// ResolutionServerWins серверный снапшот берется как есть
	ResolutionServerWins Resolution = "SERVER_WINS"
	// ResolutionClientWins клиентский снапшот берется как есть
	ResolutionClientWins Resolution = "CLIENT_WINS"
	// ResolutionLatestWins без по-полевых timestamp'ов ведет себя как SERVER_WINS
	ResolutionLatestWins Resolution = "LATEST_WINS"
	// ResolutionMerge shallow merge: server_data + все поля из local_data поверх
	ResolutionMerge Resolution = "MERGE"
	// ResolutionManual данные задаются вызывающей стороной
	ResolutionManual Resolution = "MANUAL"
)

// SyncConflict зафиксированное расхождение между изменением клиента
// и текущим состоянием сервера для одной сущности.
// Создается детектором конфликтов при push, когда client_version < server_version.
// После установки ResolvedAt конфликт терминален и повторно не разрешается.
type SyncConflict struct {
	DetectedAt        time.Time      `json:"detected_at"`
	ResolvedAt        *time.Time     `json:"resolved_at,omitempty"`
	LocalData         map[string]any `json:"local_data,omitempty"`    // LocalData снапшот, предложенный клиентом
	ServerData        map[string]any `json:"server_data,omitempty"`   // ServerData актуальный серверный снапшот
	ResolvedData      map[string]any `json:"resolved_data,omitempty"` // ResolvedData итоговый снапшот после разрешения
	ID                string         `json:"id"`
	EntityType        string         `json:"entity_type"`
	EntityID          string         `json:"entity_id"`
	ClientID          string         `json:"client_id,omitempty"` // ClientID клиент, чей push породил конфликт
	Resolution        Resolution     `json:"resolution,omitempty"`
	ResolvedBy        string         `json:"resolved_by,omitempty"`
	ConflictingFields []string       `json:"conflicting_fields,omitempty"` // ConflictingFields поля с различающимися значениями
	LocalVersion      int64          `json:"local_version"`                // LocalVersion версия, которую клиент видел последней
	ServerVersion     int64          `json:"server_version"`               // ServerVersion авторитетная версия на момент push
}

// Key возвращает составной ключ конфликтующей сущности.
func (c *SyncConflict) Key() EntityKey {
	return EntityKey{Type: c.EntityType, ID: c.EntityID}
}

// Resolved сообщает, был ли конфликт уже разрешен.
func (c *SyncConflict) Resolved() bool {
	return c.ResolvedAt != nil
}
