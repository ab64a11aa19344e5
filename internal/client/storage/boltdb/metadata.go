package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"
)

const (
	keySyncToken  = "sync_token"
	keyClientID   = "client_id"
	keyLastSyncAt = "last_sync_at"
)

// SaveSyncToken saves the opaque token returned by the last sync
func (s *Storage) SaveSyncToken(ctx context.Context, token string) error {
	return s.putMetadata(keySyncToken, []byte(token))
}

// GetSyncToken retrieves the saved sync token
// Returns empty string if no sync has been performed yet
func (s *Storage) GetSyncToken(ctx context.Context) (string, error) {
	value, err := s.getMetadata(keySyncToken)
	if err != nil {
		return "", err
	}
	return string(value), nil
}

// SaveClientID persists the generated client identifier
func (s *Storage) SaveClientID(ctx context.Context, clientID string) error {
	return s.putMetadata(keyClientID, []byte(clientID))
}

// GetClientID retrieves the client identifier
// Returns empty string on first run
func (s *Storage) GetClientID(ctx context.Context) (string, error) {
	value, err := s.getMetadata(keyClientID)
	if err != nil {
		return "", err
	}
	return string(value), nil
}

// SaveLastSyncAt saves the wall-clock time of the last successful sync
func (s *Storage) SaveLastSyncAt(ctx context.Context, timestamp int64) error {
	value := make([]byte, 8)
	binary.BigEndian.PutUint64(value, uint64(timestamp))
	return s.putMetadata(keyLastSyncAt, value)
}

// GetLastSyncAt retrieves the time of the last successful sync
// Returns 0 if no sync has been performed yet
func (s *Storage) GetLastSyncAt(ctx context.Context) (int64, error) {
	value, err := s.getMetadata(keyLastSyncAt)
	if err != nil {
		return 0, err
	}
	if value == nil {
		return 0, nil
	}
	return int64(binary.BigEndian.Uint64(value)), nil
}

func (s *Storage) putMetadata(key string, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		if err := bucket.Put([]byte(key), value); err != nil {
			return fmt.Errorf("failed to save metadata %q: %w", key, err)
		}
		return nil
	})
}

func (s *Storage) getMetadata(key string) ([]byte, error) {
	var value []byte

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		if stored := bucket.Get([]byte(key)); stored != nil {
			value = make([]byte, len(stored))
			copy(value, stored)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata %q: %w", key, err)
	}

	return value, nil
}
