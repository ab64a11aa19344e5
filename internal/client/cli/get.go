package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iudanet/crmsync/internal/client/storage"
)

func (c *Cli) runGet(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("missing arguments. Usage: crmsync-client get <type> <id>")
	}

	snapshot, err := c.snapshots.GetSnapshot(ctx, args[0], args[1])
	if err != nil {
		if err == storage.ErrSnapshotNotFound {
			return fmt.Errorf("entity %s:%s not found locally. Run 'crmsync-client sync' first", args[0], args[1])
		}
		return fmt.Errorf("failed to get snapshot: %w", err)
	}

	c.io.Printf("Entity:  %s:%s\n", snapshot.EntityType, snapshot.EntityID)
	c.io.Printf("Version: %d\n", snapshot.Version)

	if snapshot.Data == nil {
		c.io.Println("State:   deleted")
		return nil
	}

	encoded, err := json.MarshalIndent(snapshot.Data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode entity data: %w", err)
	}
	c.io.Println("Data:")
	c.io.Printf("%s\n", encoded)

	return nil
}
