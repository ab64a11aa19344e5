package models

import "time"

// ClientState серверное состояние одного синхронизирующегося клиента.
// Создается лениво при первом push/pull и никогда не удаляется —
// нужно для детектирования устаревших push даже после долгого оффлайна.
type ClientState struct {
	LastSyncAt    time.Time        `json:"last_sync_at"`
	VersionMap    map[string]int64 `json:"version_map"` // VersionMap ключ сущности ("type:id") -> последняя подтвержденная версия
	ClientID      string           `json:"client_id"`
	UserID        string           `json:"user_id"`
	LastSyncToken string           `json:"last_sync_token"`
}

// NewClientState создает пустое состояние для нового клиента.
func NewClientState(clientID, userID string) *ClientState {
	return &ClientState{
		ClientID:   clientID,
		UserID:     userID,
		VersionMap: make(map[string]int64),
	}
}

// AcknowledgedVersion возвращает последнюю подтвержденную клиентом версию
// для ключа сущности (0, если клиент сущность еще не видел).
func (s *ClientState) AcknowledgedVersion(key EntityKey) int64 {
	return s.VersionMap[key.String()]
}

// Acknowledge запоминает версию, принятую от клиента либо отданную ему.
func (s *ClientState) Acknowledge(key EntityKey, version int64) {
	if s.VersionMap == nil {
		s.VersionMap = make(map[string]int64)
	}
	s.VersionMap[key.String()] = version
}
