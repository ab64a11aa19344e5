package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/crmsync/internal/models"
	"github.com/iudanet/crmsync/internal/server/storage"
)

// SaveConflict stores a newly detected conflict
func (s *Storage) SaveConflict(ctx context.Context, conflict *models.SyncConflict) error {
	localData, err := marshalMap(conflict.LocalData)
	if err != nil {
		return err
	}

	serverData, err := marshalMap(conflict.ServerData)
	if err != nil {
		return err
	}

	conflictingFields, err := marshalStrings(conflict.ConflictingFields)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO conflicts (
			id, entity_type, entity_id, client_id,
			local_version, server_version, local_data, server_data,
			conflicting_fields, detected_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		conflict.ID,
		conflict.EntityType,
		conflict.EntityID,
		conflict.ClientID,
		conflict.LocalVersion,
		conflict.ServerVersion,
		localData,
		serverData,
		conflictingFields,
		conflict.DetectedAt.UnixNano(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert conflict: %w", err)
	}

	return nil
}

// GetConflict retrieves a conflict by ID
// Returns ErrConflictNotFound if conflict doesn't exist
func (s *Storage) GetConflict(ctx context.Context, id string) (*models.SyncConflict, error) {
	query := selectConflicts + ` WHERE id = ?`

	conflict, err := scanConflict(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrConflictNotFound
		}
		return nil, err
	}

	return conflict, nil
}

// UpdateConflict persists resolution fields of an already stored conflict
// Returns ErrConflictNotFound if conflict doesn't exist
func (s *Storage) UpdateConflict(ctx context.Context, conflict *models.SyncConflict) error {
	resolvedData, err := marshalMap(conflict.ResolvedData)
	if err != nil {
		return err
	}

	var resolvedAt any
	if conflict.ResolvedAt != nil {
		resolvedAt = conflict.ResolvedAt.UnixNano()
	}

	var resolution any
	if conflict.Resolution != "" {
		resolution = string(conflict.Resolution)
	}

	query := `
		UPDATE conflicts
		SET resolution = ?, resolved_data = ?, resolved_at = ?, resolved_by = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		resolution,
		resolvedData,
		resolvedAt,
		conflict.ResolvedBy,
		conflict.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update conflict: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrConflictNotFound
	}

	return nil
}

// ListConflicts retrieves conflicts ordered by detection time descending
func (s *Storage) ListConflicts(ctx context.Context, unresolvedOnly bool, limit int) ([]*models.SyncConflict, error) {
	query := selectConflicts
	var args []any

	if unresolvedOnly {
		query += ` WHERE resolved_at IS NULL`
	}

	query += ` ORDER BY detected_at DESC`

	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conflicts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var conflicts []*models.SyncConflict
	for rows.Next() {
		conflict, err := scanConflict(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conflict: %w", err)
		}
		conflicts = append(conflicts, conflict)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return conflicts, nil
}

// CountConflicts returns total and unresolved conflict counts
func (s *Storage) CountConflicts(ctx context.Context) (total, unresolved int64, err error) {
	query := `SELECT COUNT(*), COALESCE(SUM(resolved_at IS NULL), 0) FROM conflicts`

	if err := s.db.QueryRowContext(ctx, query).Scan(&total, &unresolved); err != nil {
		return 0, 0, fmt.Errorf("failed to count conflicts: %w", err)
	}

	return total, unresolved, nil
}

const selectConflicts = `
	SELECT id, entity_type, entity_id, client_id,
	       local_version, server_version, local_data, server_data,
	       conflicting_fields, resolution, resolved_data,
	       resolved_at, resolved_by, detected_at
	FROM conflicts
`

func scanConflict(row rowScanner) (*models.SyncConflict, error) {
	conflict := &models.SyncConflict{}
	var localData, serverData, conflictingFields, resolution, resolvedData, resolvedBy sql.NullString
	var resolvedAt sql.NullInt64
	var detectedAt int64

	err := row.Scan(
		&conflict.ID,
		&conflict.EntityType,
		&conflict.EntityID,
		&conflict.ClientID,
		&conflict.LocalVersion,
		&conflict.ServerVersion,
		&localData,
		&serverData,
		&conflictingFields,
		&resolution,
		&resolvedData,
		&resolvedAt,
		&resolvedBy,
		&detectedAt,
	)
	if err != nil {
		return nil, err
	}

	conflict.DetectedAt = nanosToTime(detectedAt)

	if resolution.Valid {
		conflict.Resolution = models.Resolution(resolution.String)
	}
	if resolvedBy.Valid {
		conflict.ResolvedBy = resolvedBy.String
	}
	if resolvedAt.Valid {
		t := nanosToTime(resolvedAt.Int64)
		conflict.ResolvedAt = &t
	}

	if conflict.LocalData, err = unmarshalMap(localData); err != nil {
		return nil, err
	}
	if conflict.ServerData, err = unmarshalMap(serverData); err != nil {
		return nil, err
	}
	if conflict.ResolvedData, err = unmarshalMap(resolvedData); err != nil {
		return nil, err
	}
	if conflict.ConflictingFields, err = unmarshalStrings(conflictingFields); err != nil {
		return nil, err
	}

	return conflict, nil
}
