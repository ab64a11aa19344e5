package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iudanet/crmsync/internal/models"
	"github.com/iudanet/crmsync/pkg/api"
)

func (c *Cli) runResolve(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("missing arguments. Usage: crmsync-client resolve <conflict-id> <strategy> [json]")
	}

	conflictID := args[0]
	strategy := models.Resolution(strings.ToUpper(args[1]))

	req := api.ResolveConflictRequest{
		Resolution: string(strategy),
	}

	if len(args) > 2 {
		var resolvedData map[string]any
		if err := json.Unmarshal([]byte(args[2]), &resolvedData); err != nil {
			return fmt.Errorf("invalid resolved data: %w", err)
		}
		req.ResolvedData = resolvedData
	}

	if strategy == models.ResolutionManual && req.ResolvedData == nil {
		return fmt.Errorf("MANUAL resolution requires the resolved entity state as a JSON argument")
	}

	conflict, err := c.apiClient.ResolveConflict(ctx, conflictID, req)
	if err != nil {
		return fmt.Errorf("failed to resolve conflict: %w", err)
	}

	c.io.Printf("Conflict %s resolved with %s\n", conflict.ID, conflict.Resolution)
	c.io.Printf("Entity: %s:%s\n", conflict.EntityType, conflict.EntityID)

	if conflict.ResolvedData != nil {
		encoded, err := json.MarshalIndent(conflict.ResolvedData, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode resolved data: %w", err)
		}
		c.io.Println("Resolved state:")
		c.io.Printf("%s\n", encoded)
	}

	c.io.Println()
	c.io.Println("Run 'crmsync-client sync' to pull the resolution.")

	return nil
}
