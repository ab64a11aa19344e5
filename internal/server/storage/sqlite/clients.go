package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iudanet/crmsync/internal/models"
	"github.com/iudanet/crmsync/internal/server/storage"
)

// GetClientState retrieves state by client ID
// Returns ErrClientNotFound if client has never synced
func (s *Storage) GetClientState(ctx context.Context, clientID string) (*models.ClientState, error) {
	query := `
		SELECT client_id, user_id, last_sync_at, last_sync_token, version_map
		FROM client_states
		WHERE client_id = ?
	`

	state := &models.ClientState{}
	var lastSyncAt int64
	var versionMap string

	err := s.db.QueryRowContext(ctx, query, clientID).Scan(
		&state.ClientID,
		&state.UserID,
		&lastSyncAt,
		&state.LastSyncToken,
		&versionMap,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client state: %w", err)
	}

	state.LastSyncAt = nanosToTime(lastSyncAt)

	if err := json.Unmarshal([]byte(versionMap), &state.VersionMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal version map: %w", err)
	}

	return state, nil
}

// SaveClientState creates or replaces the state for a client
func (s *Storage) SaveClientState(ctx context.Context, state *models.ClientState) error {
	versionMap := state.VersionMap
	if versionMap == nil {
		versionMap = map[string]int64{}
	}

	versionMapJSON, err := json.Marshal(versionMap)
	if err != nil {
		return fmt.Errorf("failed to marshal version map: %w", err)
	}

	query := `
		INSERT INTO client_states (client_id, user_id, last_sync_at, last_sync_token, version_map)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (client_id) DO UPDATE SET
			user_id = excluded.user_id,
			last_sync_at = excluded.last_sync_at,
			last_sync_token = excluded.last_sync_token,
			version_map = excluded.version_map
	`

	_, err = s.db.ExecContext(ctx, query,
		state.ClientID,
		state.UserID,
		state.LastSyncAt.UnixNano(),
		state.LastSyncToken,
		string(versionMapJSON),
	)

	if err != nil {
		return fmt.Errorf("failed to save client state: %w", err)
	}

	return nil
}

// CountClients returns the number of known clients
func (s *Storage) CountClients(ctx context.Context) (int64, error) {
	var count int64

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM client_states`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count clients: %w", err)
	}

	return count, nil
}
