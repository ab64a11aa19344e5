package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runSync(ctx context.Context) error {
	c.io.Println("=== Synchronization ===")
	c.io.Println()
	c.io.Println("Starting synchronization with server...")

	result, err := c.syncService.Sync(ctx)
	if err != nil {
		return fmt.Errorf("synchronization failed: %w", err)
	}

	c.io.Println()
	c.io.Println("Synchronization completed.")
	c.io.Println()
	c.io.Printf("Pushed to server:   %d change(s)\n", result.Pushed)
	c.io.Printf("Applied by server:  %d change(s)\n", result.Applied)
	c.io.Printf("Pulled from server: %d change(s)\n", result.Pulled)

	if result.Conflicts > 0 {
		c.io.Printf("Conflicts recorded: %d\n", result.Conflicts)
		c.io.Println()
		c.io.Println("Run 'crmsync-client conflicts' to review them.")
	}
	if result.Rejected > 0 {
		c.io.Printf("Rejected changes:   %d (still queued, fix and sync again)\n", result.Rejected)
	}

	return nil
}
