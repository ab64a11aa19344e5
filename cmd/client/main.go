package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/iudanet/crmsync/internal/client/api"
	"github.com/iudanet/crmsync/internal/client/cli"
	"github.com/iudanet/crmsync/internal/client/iocli"
	"github.com/iudanet/crmsync/internal/client/storage/boltdb"
	"github.com/iudanet/crmsync/internal/client/sync"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Глобальные флаги
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8080", "Server URL")
	dbPath := flag.String("db", "crmsync-client.db", "Path to local database")
	verbose := flag.Bool("verbose", false, "Log sync internals to stderr")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage()
		os.Exit(1)
	}

	command := args[0]

	ctx := context.Background()

	// Открываем BoltDB storage
	boltStorage, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	var logOutput io.Writer = io.Discard
	if *verbose {
		logOutput = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(logOutput, nil))

	apiClient := api.NewClient(*serverURL)
	syncService := sync.NewService(apiClient, boltStorage, boltStorage, boltStorage, logger)

	c := cli.New(apiClient, syncService, boltStorage, boltStorage, iocli.NewStdio())
	c.Run(ctx, command, args[1:])
}

func printVersion() {
	fmt.Printf("CRM Sync Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
