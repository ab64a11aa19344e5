package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// Снапшоты и списки полей хранятся в TEXT-колонках как JSON;
// nil кодируется как NULL, чтобы отличать "нет снапшота" от пустого объекта.

func marshalMap(m map[string]any) (any, error) {
	if m == nil {
		return nil, nil
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal map: %w", err)
	}

	return string(data), nil
}

func unmarshalMap(ns sql.NullString) (map[string]any, error) {
	if !ns.Valid {
		return nil, nil
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(ns.String), &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal map: %w", err)
	}

	return m, nil
}

func marshalStrings(values []string) (any, error) {
	if values == nil {
		return nil, nil
	}

	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal string list: %w", err)
	}

	return string(data), nil
}

func unmarshalStrings(ns sql.NullString) ([]string, error) {
	if !ns.Valid {
		return nil, nil
	}

	var values []string
	if err := json.Unmarshal([]byte(ns.String), &values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal string list: %w", err)
	}

	return values, nil
}
