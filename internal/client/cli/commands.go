package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/iudanet/crmsync/internal/models"
)

func (c *Cli) Run(ctx context.Context, command string, args []string) {
	var err error

	switch command {
	case "create":
		err = c.runRecord(ctx, models.OperationCreate, args)
	case "update":
		err = c.runRecord(ctx, models.OperationUpdate, args)
	case "delete":
		err = c.runRecord(ctx, models.OperationDelete, args)
	case "list":
		err = c.runList(ctx, args)
	case "get":
		err = c.runGet(ctx, args)
	case "status":
		err = c.runStatus(ctx)
	case "sync":
		err = c.runSync(ctx)
	case "conflicts":
		err = c.runConflicts(ctx)
	case "resolve":
		err = c.runResolve(ctx, args)
	case "stats":
		err = c.runStats(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		PrintUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
