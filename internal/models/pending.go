package models

import "time"

// PendingChange локальное изменение на клиенте, ожидающее отправки на сервер.
// Хранится в очереди клиентского хранилища, пока push не подтвердит
// применение (или не вернет конфликт/ошибку).
type PendingChange struct {
	QueuedAt     time.Time      `json:"queued_at"`
	Data         map[string]any `json:"data,omitempty"`
	PreviousData map[string]any `json:"previous_data,omitempty"`
	ID           string         `json:"id"` // ID уникальный идентификатор элемента очереди (UUID)
	EntityType   string         `json:"entity_type"`
	EntityID     string         `json:"entity_id"`
	Operation    Operation      `json:"operation"`
	DeviceID     string         `json:"device_id,omitempty"`
	BaseVersion  int64          `json:"base_version"` // BaseVersion версия сущности, которую клиент видел последней
}

// Key возвращает составной ключ сущности изменения.
func (p *PendingChange) Key() EntityKey {
	return EntityKey{Type: p.EntityType, ID: p.EntityID}
}
