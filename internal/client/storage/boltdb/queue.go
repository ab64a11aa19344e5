package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/crmsync/internal/client/storage"
	"github.com/iudanet/crmsync/internal/models"
)

// queueEntry обертка для сериализации элемента очереди вместе
// с его порядковым номером.
type queueEntry struct {
	Change *models.PendingChange `json:"change"`
	Seq    uint64                `json:"seq"`
}

// Enqueue appends a local change to the queue.
// Ключом служит монотонный sequence number bucket'a: обход курсором
// возвращает изменения строго в порядке постановки в очередь.
func (s *Storage) Enqueue(ctx context.Context, change *models.PendingChange) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue)
		if bucket == nil {
			return fmt.Errorf("queue bucket not found")
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to get next sequence: %w", err)
		}

		value, err := json.Marshal(queueEntry{Change: change, Seq: seq})
		if err != nil {
			return fmt.Errorf("failed to marshal pending change: %w", err)
		}

		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)

		if err := bucket.Put(key, value); err != nil {
			return fmt.Errorf("failed to enqueue change: %w", err)
		}
		return nil
	})
}

// Pending returns all queued changes in insertion order
func (s *Storage) Pending(ctx context.Context) ([]*models.PendingChange, error) {
	var pending []*models.PendingChange

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue)
		if bucket == nil {
			return fmt.Errorf("queue bucket not found")
		}

		return bucket.ForEach(func(_, value []byte) error {
			var entry queueEntry
			if err := json.Unmarshal(value, &entry); err != nil {
				return fmt.Errorf("failed to unmarshal pending change: %w", err)
			}
			pending = append(pending, entry.Change)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read pending changes: %w", err)
	}

	return pending, nil
}

// Remove deletes a queued change after the server acknowledged it
func (s *Storage) Remove(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue)
		if bucket == nil {
			return fmt.Errorf("queue bucket not found")
		}

		cursor := bucket.Cursor()
		for key, value := cursor.First(); key != nil; key, value = cursor.Next() {
			var entry queueEntry
			if err := json.Unmarshal(value, &entry); err != nil {
				return fmt.Errorf("failed to unmarshal pending change: %w", err)
			}
			if entry.Change.ID == id {
				return bucket.Delete(key)
			}
		}

		return storage.ErrPendingNotFound
	})
}

// CountPending returns the number of queued changes
func (s *Storage) CountPending(ctx context.Context) (int, error) {
	var count int

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketQueue)
		if bucket == nil {
			return fmt.Errorf("queue bucket not found")
		}
		count = bucket.Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count pending changes: %w", err)
	}

	return count, nil
}
