package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/crmsync/internal/client/storage"
	"github.com/iudanet/crmsync/internal/models"
	"github.com/iudanet/crmsync/internal/validation"
)

// runRecord ставит локальное изменение в очередь на отправку.
// Базовой версией становится версия локального снапшота: сервер
// сравнит ее со своей при push.
func (c *Cli) runRecord(ctx context.Context, op models.Operation, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("missing arguments. Usage: crmsync-client %s <type> <id> %s",
			opCommand(op), opDataHint(op))
	}

	entityType := args[0]
	entityID := args[1]

	var data map[string]any
	if op != models.OperationDelete {
		if len(args) < 3 {
			return fmt.Errorf("missing entity data. Usage: crmsync-client %s <type> <id> '<json>'", opCommand(op))
		}
		if err := json.Unmarshal([]byte(args[2]), &data); err != nil {
			return fmt.Errorf("invalid entity data: %w", err)
		}
	}

	if err := validation.ValidateChange(entityType, entityID, op, data); err != nil {
		return err
	}

	change := &models.PendingChange{
		ID:         uuid.New().String(),
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  op,
		Data:       data,
		QueuedAt:   time.Now().UTC(),
	}

	// Снапшот дает базовую версию и прежнее состояние для diff'а
	snapshot, err := c.snapshots.GetSnapshot(ctx, entityType, entityID)
	switch {
	case err == nil:
		change.BaseVersion = snapshot.Version
		change.PreviousData = snapshot.Data
	case err == storage.ErrSnapshotNotFound:
		// Сущность еще не синхронизировалась, базовая версия 0
	default:
		return fmt.Errorf("failed to get snapshot: %w", err)
	}

	if err := c.queue.Enqueue(ctx, change); err != nil {
		return fmt.Errorf("failed to queue change: %w", err)
	}

	c.io.Printf("Queued %s for %s:%s (base version %d)\n",
		op, entityType, entityID, change.BaseVersion)
	c.io.Println("Run 'crmsync-client sync' to send it to the server.")

	return nil
}

func opCommand(op models.Operation) string {
	switch op {
	case models.OperationCreate:
		return "create"
	case models.OperationDelete:
		return "delete"
	default:
		return "update"
	}
}

func opDataHint(op models.Operation) string {
	if op == models.OperationDelete {
		return ""
	}
	return "'<json>'"
}
