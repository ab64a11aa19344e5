package models

import "fmt"

// EntityKey составной идентификатор сущности (тип + id).
// Ключ никогда не переиспользуется: после удаления сущности история
// изменений для этого ключа сохраняется.
type EntityKey struct {
	Type string `json:"entity_type"` // Type тип сущности (например, "contact", "deal")
	ID   string `json:"entity_id"`   // ID идентификатор сущности внутри типа
}

// String возвращает строковую форму ключа "type:id".
// Используется как ключ в version map и в keyed-блокировках.
func (k EntityKey) String() string {
	return fmt.Sprintf("%s:%s", k.Type, k.ID)
}

// EntityState текущее состояние сущности в version store:
// авторитетная версия и последний принятый снапшот.
type EntityState struct {
	Data       map[string]any `json:"data"` // Data последний принятый снапшот (nil после DELETE)
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Version    int64          `json:"version"` // Version монотонно растущий счетчик, только увеличивается
}

// Key возвращает составной ключ сущности.
func (s *EntityState) Key() EntityKey {
	return EntityKey{Type: s.EntityType, ID: s.EntityID}
}
