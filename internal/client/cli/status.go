package cli

import (
	"context"
	"fmt"
	"time"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Sync Status ===")
	c.io.Println()

	status, err := c.syncService.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get sync status: %w", err)
	}

	if status.ClientID == "" {
		c.io.Println("Client ID: not assigned yet (first sync will generate one)")
	} else {
		c.io.Printf("Client ID: %s\n", status.ClientID)
	}

	if status.LastSyncAt.IsZero() {
		c.io.Println("Last sync: never")
	} else {
		c.io.Printf("Last sync: %s\n", status.LastSyncAt.Format(time.RFC3339))
	}

	c.io.Printf("Local entities: %d\n", status.Snapshots)
	c.io.Println()

	if status.PendingChanges > 0 {
		c.io.Printf("Pending sync: %d change(s) waiting to be pushed\n", status.PendingChanges)
		c.io.Println("Run 'crmsync-client sync' to synchronize with server.")
	} else {
		c.io.Println("All local changes synchronized with server")
	}

	return nil
}
