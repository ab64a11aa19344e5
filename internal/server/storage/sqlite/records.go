package sqlite

import (
	"context"
	"fmt"

	"github.com/iudanet/crmsync/internal/models"
)

// SaveSyncRecord stores a completed session summary
func (s *Storage) SaveSyncRecord(ctx context.Context, record *models.SyncRecord) error {
	query := `
		INSERT INTO sync_records (
			id, client_id, user_id, direction, status, sync_token,
			changes_pushed, changes_pulled, conflicts_count, errors_count,
			started_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.ClientID,
		record.UserID,
		string(record.Direction),
		string(record.Status),
		record.SyncToken,
		record.ChangesPushed,
		record.ChangesPulled,
		record.ConflictsCount,
		record.ErrorsCount,
		record.StartedAt.UnixNano(),
		record.CompletedAt.UnixNano(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert sync record: %w", err)
	}

	return nil
}

// CountSyncRecords returns the number of stored session summaries
func (s *Storage) CountSyncRecords(ctx context.Context) (int64, error) {
	var count int64

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sync_records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sync records: %w", err)
	}

	return count, nil
}
