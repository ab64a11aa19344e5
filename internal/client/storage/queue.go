// Package storage определяет интерфейсы локального хранилища клиента.
package storage

import (
	"context"

	"github.com/iudanet/crmsync/internal/models"
)

//go:generate moq -out queue_mock.go . QueueStorage

// QueueStorage defines interface for the offline change queue.
// Changes are enqueued while offline and drained by push in FIFO order.
type QueueStorage interface {
	// Enqueue appends a local change to the queue
	Enqueue(ctx context.Context, change *models.PendingChange) error

	// Pending returns all queued changes in insertion order
	Pending(ctx context.Context) ([]*models.PendingChange, error)

	// Remove deletes a queued change after the server acknowledged it
	// Returns ErrPendingNotFound if the change doesn't exist
	Remove(ctx context.Context, id string) error

	// CountPending returns the number of queued changes
	CountPending(ctx context.Context) (int, error)
}
