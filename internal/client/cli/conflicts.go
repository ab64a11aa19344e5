package cli

import (
	"context"
	"fmt"
	"strings"
)

// conflictsPageLimit максимум конфликтов в выводе одной команды
const conflictsPageLimit = 50

func (c *Cli) runConflicts(ctx context.Context) error {
	resp, err := c.apiClient.GetConflicts(ctx, true, conflictsPageLimit)
	if err != nil {
		return fmt.Errorf("failed to get conflicts: %w", err)
	}

	c.io.Println("=== Unresolved Conflicts ===")
	c.io.Println()

	if len(resp.Conflicts) == 0 {
		c.io.Println("No unresolved conflicts.")
		return nil
	}

	c.io.Printf("Found %d conflict(s):\n", len(resp.Conflicts))
	c.io.Println()

	for i, conflict := range resp.Conflicts {
		c.io.Printf("%d. %s\n", i+1, conflict.ID)
		c.io.Printf("   Entity:   %s:%s\n", conflict.EntityType, conflict.EntityID)
		c.io.Printf("   Versions: client %d vs server %d\n", conflict.LocalVersion, conflict.ServerVersion)
		if conflict.ClientID != "" {
			c.io.Printf("   Client:   %s\n", conflict.ClientID)
		}
		if len(conflict.ConflictingFields) > 0 {
			c.io.Printf("   Fields:   %s\n", strings.Join(conflict.ConflictingFields, ", "))
		}
		c.io.Println()
	}

	c.io.Println("Use 'crmsync-client resolve <id> <strategy>' to resolve a conflict.")

	return nil
}
