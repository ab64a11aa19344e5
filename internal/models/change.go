package models

import "time"

// Operation тип операции над сущностью.
type Operation string

// Допустимые операции
const (
	OperationCreate Operation = "CREATE"
	OperationUpdate Operation = "UPDATE"
	OperationDelete Operation = "DELETE"
)

// Типы синхронизируемых сущностей.
// Добавление нового типа требует расширения этого списка:
// неизвестные типы отклоняются на границе API.
const (
	EntityTypeContact  = "contact"
	EntityTypeAccount  = "account"
	EntityTypeDeal     = "deal"
	EntityTypeTask     = "task"
	EntityTypeMeeting  = "meeting"
	EntityTypeNote     = "note"
	EntityTypeActivity = "activity"
)

// ChangeRecord одна принятая мутация в append-only журнале изменений.
// Создается ровно один раз, после этого неизменяема и никогда не удаляется —
// журнал образует долговременный audit trail.
type ChangeRecord struct {
	Timestamp     time.Time      `json:"timestamp"`
	Data          map[string]any `json:"data,omitempty"`          // Data полный снапшот после изменения (CREATE/UPDATE)
	PreviousData  map[string]any `json:"previous_data,omitempty"` // PreviousData снапшот до изменения (опционально)
	ID            string         `json:"id"`                      // ID уникальный идентификатор записи (UUID)
	EntityType    string         `json:"entity_type"`
	EntityID      string         `json:"entity_id"`
	Operation     Operation      `json:"operation"`
	Checksum      string         `json:"checksum"` // Checksum детерминированный хеш Data (не зависит от порядка полей)
	UserID        string         `json:"user_id,omitempty"`
	DeviceID      string         `json:"device_id,omitempty"`
	ChangedFields []string       `json:"changed_fields,omitempty"` // ChangedFields поля, различающиеся между Data и PreviousData
	Version       int64          `json:"version"`                  // Version строго возрастает на 1 для каждого ключа, начиная с 1
	Synced        bool           `json:"synced"`                   // Synced true, если запись принята через push
}

// Key возвращает составной ключ сущности, к которой относится изменение.
func (c *ChangeRecord) Key() EntityKey {
	return EntityKey{Type: c.EntityType, ID: c.EntityID}
}
