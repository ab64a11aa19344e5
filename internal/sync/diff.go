package sync

import (
	"bytes"
	"encoding/json"
	"sort"
)

// DiffFields возвращает отсортированный список полей, значения которых
// различаются между двумя снапшотами. Обходится объединение ключей обеих
// сторон, поэтому результат симметричен: DiffFields(a, b) == DiffFields(b, a).
// Используется и для changed_fields записи изменения, и для
// conflicting_fields конфликта.
func DiffFields(a, b map[string]any) []string {
	union := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		union[k] = struct{}{}
	}
	for k := range b {
		union[k] = struct{}{}
	}

	var fields []string
	for k := range union {
		av, aok := a[k]
		bv, bok := b[k]

		if aok != bok || !equalValues(av, bv) {
			fields = append(fields, k)
		}
	}

	sort.Strings(fields)
	return fields
}

// equalValues сравнивает два значения поля через их JSON-представление.
// Снапшоты приходят из JSON, поэтому числа уже нормализованы в float64,
// а encoding/json дает детерминированную форму для вложенных map.
func equalValues(a, b any) bool {
	aj, err := json.Marshal(a)
	if err != nil {
		return false
	}

	bj, err := json.Marshal(b)
	if err != nil {
		return false
	}

	return bytes.Equal(aj, bj)
}
