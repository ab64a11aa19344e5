package sync

import (
	gosync "sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// keyedLocks набор мьютексов по ключу сущности.
// Последовательность read-compare-apply в record_change и в ветке
// детектирования конфликтов должна быть атомарной для каждого ключа:
// два конкурентных push по одной сущности не могут оба увидеть одну
// и ту же текущую версию и оба "выиграть".
type keyedLocks struct {
	locks *xsync.MapOf[string, *gosync.Mutex]
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{
		locks: xsync.NewMapOf[string, *gosync.Mutex](),
	}
}

// Lock блокирует ключ и возвращает функцию разблокировки.
// Мьютексы создаются лениво и не удаляются: множество живых ключей
// ограничено размером реестра сущностей.
func (l *keyedLocks) Lock(key string) func() {
	mu, _ := l.locks.LoadOrCompute(key, func() *gosync.Mutex {
		return &gosync.Mutex{}
	})

	mu.Lock()
	return mu.Unlock
}
