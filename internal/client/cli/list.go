package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/iudanet/crmsync/internal/validation"
)

func (c *Cli) runList(ctx context.Context, args []string) error {
	entityType := ""
	if len(args) > 0 {
		entityType = args[0]
		if err := validation.ValidateEntityType(entityType); err != nil {
			return err
		}
	}

	snapshots, err := c.snapshots.ListSnapshots(ctx, entityType)
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}

	c.io.Println("=== Local Entities ===")
	c.io.Println()

	if len(snapshots) == 0 {
		c.io.Println("No entities found.")
		c.io.Println()
		c.io.Println("Use 'crmsync-client sync' to pull entities from the server.")
		return nil
	}

	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].EntityType != snapshots[j].EntityType {
			return snapshots[i].EntityType < snapshots[j].EntityType
		}
		return snapshots[i].EntityID < snapshots[j].EntityID
	})

	c.io.Printf("Found %d entit(ies):\n", len(snapshots))
	c.io.Println()

	for i, snap := range snapshots {
		marker := ""
		if snap.Data == nil {
			marker = " [deleted]"
		}
		c.io.Printf("%d. %s:%s (version %d)%s\n", i+1, snap.EntityType, snap.EntityID, snap.Version, marker)
	}

	c.io.Println()
	c.io.Println("Use 'crmsync-client get <type> <id>' to view entity data.")

	return nil
}
