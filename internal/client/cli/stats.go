package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runStats(ctx context.Context) error {
	stats, err := c.apiClient.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get server stats: %w", err)
	}

	c.io.Println("=== Server Statistics ===")
	c.io.Println()
	c.io.Printf("Total changes:        %d\n", stats.TotalChanges)
	c.io.Printf("Synced changes:       %d\n", stats.SyncedChanges)
	c.io.Printf("Pending changes:      %d\n", stats.PendingChanges)
	c.io.Printf("Total conflicts:      %d\n", stats.TotalConflicts)
	c.io.Printf("Unresolved conflicts: %d\n", stats.UnresolvedConflicts)
	c.io.Printf("Active clients:       %d\n", stats.ActiveClients)
	c.io.Printf("Sync sessions:        %d\n", stats.SyncSessions)

	return nil
}
