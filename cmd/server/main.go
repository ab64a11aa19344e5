package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iudanet/crmsync/internal/metrics"
	"github.com/iudanet/crmsync/internal/server/handlers"
	"github.com/iudanet/crmsync/internal/server/middleware"
	"github.com/iudanet/crmsync/internal/server/storage/sqlite"
	"github.com/iudanet/crmsync/internal/sync"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	addr := flag.String("addr", ":8080", "Listen address")
	dbPath := flag.String("db", "crmsync.db", "Path to SQLite database")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	tokenSecret := flag.String("token-secret", "", "Sync token signing secret (or CRMSYNC_TOKEN_SECRET)")
	rateLimit := flag.Int("rate-limit", 100, "Requests per client per window")
	rateWindow := flag.Duration("rate-window", time.Minute, "Rate limit window")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(*logLevel),
	}))

	secret := *tokenSecret
	if secret == "" {
		secret = os.Getenv("CRMSYNC_TOKEN_SECRET")
	}
	if secret == "" {
		fmt.Fprintln(os.Stderr, "token secret is required: pass -token-secret or set CRMSYNC_TOKEN_SECRET")
		os.Exit(1)
	}

	if err := run(logger, *addr, *dbPath, secret, *rateLimit, *rateWindow); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, addr, dbPath, secret string, rateLimit int, rateWindow time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage", "error", err)
		}
	}()

	engine := sync.NewService(store, store, store, store, store, sync.NewTokenCodec(secret), logger)

	syncH := handlers.NewSyncHandler(logger, engine)
	conflictsH := handlers.NewConflictsHandler(logger, engine)
	clientsH := handlers.NewClientsHandler(logger, engine)
	statsH := handlers.NewStatsHandler(logger, engine)
	healthH := handlers.NewHealthHandler(logger, store)

	apiMux := handlers.Routes(syncH, conflictsH, clientsH, statsH, healthH)

	limiter := middleware.RateLimit(rateLimit, rateWindow, logger)
	logging := middleware.LoggingWithSkip(logger, []string{"/healthz", "/metrics"})
	recovery := middleware.Recovery(logger)

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("/", limiter(apiMux))

	srv := &http.Server{
		Addr:              addr,
		Handler:           recovery(logging(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "addr", addr, "version", Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()

	select {
	case err := <-errC:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func printVersion() {
	fmt.Printf("CRM Sync Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
