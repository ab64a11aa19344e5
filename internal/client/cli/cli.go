// Package cli реализует команды консольного клиента синхронизации.
package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/crmsync/internal/client/iocli"
	"github.com/iudanet/crmsync/internal/client/storage"
	"github.com/iudanet/crmsync/internal/client/sync"
	"github.com/iudanet/crmsync/internal/validation"
	"github.com/iudanet/crmsync/pkg/api"
)

// ServerClient часть HTTP клиента, которую используют команды
// работы с конфликтами и статистикой сервера
type ServerClient interface {
	GetConflicts(ctx context.Context, unresolvedOnly bool, limit int) (*api.ConflictsResponse, error)
	ResolveConflict(ctx context.Context, conflictID string, req api.ResolveConflictRequest) (*api.Conflict, error)
	GetStats(ctx context.Context) (*api.StatsResponse, error)
	Health(ctx context.Context) error
}

type Cli struct {
	apiClient   ServerClient
	syncService sync.Service
	queue       storage.QueueStorage
	snapshots   storage.SnapshotStorage
	io          iocli.IO
}

func New(
	apiClient ServerClient,
	syncService sync.Service,
	queue storage.QueueStorage,
	snapshots storage.SnapshotStorage,
	io iocli.IO,
) *Cli {
	return &Cli{
		apiClient:   apiClient,
		syncService: syncService,
		queue:       queue,
		snapshots:   snapshots,
		io:          io,
	}
}

func PrintUsage() {
	fmt.Println("CRM Sync Client")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  crmsync-client [OPTIONS] COMMAND")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version        Show version information")
	fmt.Println("  --server URL     Server URL (default: http://localhost:8080)")
	fmt.Println("  --db PATH        Path to local database (default: crmsync-client.db)")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  create <type> <id> <json>         Queue entity creation")
	fmt.Println("  update <type> <id> <json>         Queue entity update")
	fmt.Println("  delete <type> <id>                Queue entity deletion")
	fmt.Println("  list [type]                       List local entity snapshots")
	fmt.Println("  get <type> <id>                   Show entity snapshot")
	fmt.Println("  status                            Show local sync status")
	fmt.Println("  sync                              Synchronize with server")
	fmt.Println("  conflicts                         List unresolved server conflicts")
	fmt.Println("  resolve <id> <strategy> [json]    Resolve a conflict")
	fmt.Println("  stats                             Show server statistics")
	fmt.Println()
	fmt.Println("Resolution strategies:")
	fmt.Println("  SERVER_WINS, CLIENT_WINS, LATEST_WINS, MERGE, MANUAL")
	fmt.Println("  MANUAL requires the resolved entity state as a JSON argument.")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println(`  crmsync-client create contact 42 '{"name": "Alice", "phone": "555-0101"}'`)
	fmt.Println(`  crmsync-client update contact 42 '{"name": "Alice", "phone": "555-0202"}'`)
	fmt.Println("  crmsync-client sync")
	fmt.Println("  crmsync-client conflicts")
	fmt.Println(`  crmsync-client resolve 4f7c28a1 MERGE`)
	fmt.Println(`  crmsync-client resolve 4f7c28a1 MANUAL '{"name": "Alice", "phone": "555-0303"}'`)
	fmt.Printf("\nSupported entity types: %v\n", validation.EntityTypes())
}
