package sync

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/crypto/blake2b"
)

// Checksum вычисляет детерминированный хеш снапшота.
// Хеш не зависит от порядка полей: ключи обходятся в отсортированном
// порядке, значения сериализуются в JSON (encoding/json сортирует ключи
// вложенных map). Используется клиентами для дешевой проверки равенства.
func Checksum(data map[string]any) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", fmt.Errorf("failed to init checksum hash: %w", err)
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		value, err := json.Marshal(data[k])
		if err != nil {
			return "", fmt.Errorf("failed to marshal field %q: %w", k, err)
		}

		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write(value)
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
