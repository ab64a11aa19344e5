package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/crmsync/internal/models"
	"github.com/iudanet/crmsync/internal/server/storage"
)

// SaveChange appends an accepted change record to the log
func (s *Storage) SaveChange(ctx context.Context, change *models.ChangeRecord) error {
	data, err := marshalMap(change.Data)
	if err != nil {
		return err
	}

	previousData, err := marshalMap(change.PreviousData)
	if err != nil {
		return err
	}

	changedFields, err := marshalStrings(change.ChangedFields)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO changes (
			id, entity_type, entity_id, operation, version,
			data, previous_data, changed_fields, checksum,
			timestamp, user_id, device_id, synced
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		change.ID,
		change.EntityType,
		change.EntityID,
		string(change.Operation),
		change.Version,
		data,
		previousData,
		changedFields,
		change.Checksum,
		change.Timestamp.UnixNano(),
		change.UserID,
		change.DeviceID,
		boolToInt(change.Synced),
	)

	if err != nil {
		return fmt.Errorf("failed to insert change: %w", err)
	}

	return nil
}

// GetChange retrieves a single change record by ID
// Returns ErrChangeNotFound if record doesn't exist
func (s *Storage) GetChange(ctx context.Context, id string) (*models.ChangeRecord, error) {
	query := selectChanges + ` WHERE id = ?`

	row := s.db.QueryRowContext(ctx, query, id)

	change, err := scanChange(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrChangeNotFound
		}
		return nil, err
	}

	return change, nil
}

// GetChangesSince retrieves change records with timestamp strictly after
// the boundary, optionally filtered by entity types, ordered ascending
// by timestamp and truncated to limit (0 means no limit)
func (s *Storage) GetChangesSince(ctx context.Context, since time.Time, entityTypes []string, limit int) ([]*models.ChangeRecord, error) {
	query := selectChanges + ` WHERE timestamp > ?`
	args := []any{since.UnixNano()}

	if len(entityTypes) > 0 {
		placeholders := strings.Repeat("?,", len(entityTypes))
		query += fmt.Sprintf(" AND entity_type IN (%s)", placeholders[:len(placeholders)-1])
		for _, t := range entityTypes {
			args = append(args, t)
		}
	}

	query += ` ORDER BY timestamp ASC`

	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query changes since timestamp: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanChanges(rows)
}

// GetEntityChanges retrieves the full per-entity ordered history
func (s *Storage) GetEntityChanges(ctx context.Context, entityType, entityID string) ([]*models.ChangeRecord, error) {
	query := selectChanges + ` WHERE entity_type = ? AND entity_id = ? ORDER BY version ASC`

	rows, err := s.db.QueryContext(ctx, query, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entity changes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanChanges(rows)
}

// CountChanges returns total and synced change record counts
func (s *Storage) CountChanges(ctx context.Context) (total, synced int64, err error) {
	query := `SELECT COUNT(*), COALESCE(SUM(synced), 0) FROM changes`

	if err := s.db.QueryRowContext(ctx, query).Scan(&total, &synced); err != nil {
		return 0, 0, fmt.Errorf("failed to count changes: %w", err)
	}

	return total, synced, nil
}

const selectChanges = `
	SELECT id, entity_type, entity_id, operation, version,
	       data, previous_data, changed_fields, checksum,
	       timestamp, user_id, device_id, synced
	FROM changes
`

// rowScanner покрывает и *sql.Row, и *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanChange(row rowScanner) (*models.ChangeRecord, error) {
	change := &models.ChangeRecord{}
	var operation string
	var data, previousData, changedFields sql.NullString
	var timestamp int64
	var synced int

	err := row.Scan(
		&change.ID,
		&change.EntityType,
		&change.EntityID,
		&operation,
		&change.Version,
		&data,
		&previousData,
		&changedFields,
		&change.Checksum,
		&timestamp,
		&change.UserID,
		&change.DeviceID,
		&synced,
	)
	if err != nil {
		return nil, err
	}

	change.Operation = models.Operation(operation)
	change.Timestamp = nanosToTime(timestamp)
	change.Synced = intToBool(synced)

	if change.Data, err = unmarshalMap(data); err != nil {
		return nil, err
	}
	if change.PreviousData, err = unmarshalMap(previousData); err != nil {
		return nil, err
	}
	if change.ChangedFields, err = unmarshalStrings(changedFields); err != nil {
		return nil, err
	}

	return change, nil
}

func scanChanges(rows *sql.Rows) ([]*models.ChangeRecord, error) {
	var changes []*models.ChangeRecord

	for rows.Next() {
		change, err := scanChange(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan change: %w", err)
		}
		changes = append(changes, change)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return changes, nil
}
