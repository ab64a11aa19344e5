package sync

import "errors"

// Ошибки движка синхронизации.
// Все они восстановимые и отображаются HTTP-слоем в 4xx ответы;
// ничто в движке не фатально для процесса.
var (
	// ErrConflictAlreadyResolved конфликт разрешается ровно один раз
	ErrConflictAlreadyResolved = errors.New("conflict already resolved")

	// ErrMissingManualData для MANUAL стратегии обязателен resolved_data
	ErrMissingManualData = errors.New("resolved data is required for manual resolution")

	// ErrUnknownResolution стратегия разрешения не входит в допустимый набор
	ErrUnknownResolution = errors.New("unknown resolution strategy")

	// ErrInvalidSyncToken токен не прошел проверку подписи или формата
	ErrInvalidSyncToken = errors.New("invalid sync token")
)
