package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/canadian-trail/internal/config"
	"github.com/jwebster45206/canadian-trail/internal/content"
	"github.com/jwebster45206/canadian-trail/internal/handlers"
	"github.com/jwebster45206/canadian-trail/internal/logger"
	"github.com/jwebster45206/canadian-trail/internal/services/broadcast"
	internalstorage "github.com/jwebster45206/canadian-trail/internal/storage"
	"github.com/jwebster45206/canadian-trail/pkg/events"
	"github.com/jwebster45206/canadian-trail/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Canadian Trail API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"storage_backend", cfg.StorageBackend,
		"data_dir", cfg.DataDir)

	store, publisher, err := openStore(cfg, log)
	if err != nil {
		log.Error("Failed to open storage", "error", err)
		os.Exit(1)
	}

	loader := content.NewLoader(cfg.DataDir, log)
	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startCancel()

	if _, err := loader.LoadSkeleton(startCtx); err != nil {
		log.Error("Failed to load world skeleton", "error", err)
		os.Exit(1)
	}
	engine := events.NewEngine(log)
	if err := engine.Initialize(startCtx, loader); err != nil {
		log.Error("Failed to load event library", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, engine, log)
	mux.Handle("/health", healthHandler)

	runHandler := handlers.NewRunHandler(store, loader, engine, log).
		WithLegacyGraph(loader).
		WithPublisher(publisher)
	mux.Handle("/v1/runs", runHandler)
	mux.Handle("/v1/runs/", runHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handlers.RequestLogger(log, mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing storage", "error", err)
	}

	log.Info("Server exited")
}

// openStore connects the configured save backend. Run activity is only
// broadcast when saves live in Redis.
func openStore(cfg *config.Config, log *slog.Logger) (storage.Store, broadcast.Publisher, error) {
	switch cfg.StorageBackend {
	case config.BackendRedis:
		rs, err := internalstorage.NewRedisStore(cfg.RedisURL, log)
		if err != nil {
			return nil, nil, err
		}
		rs.WithTTL(cfg.SaveTTL)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := rs.WaitForConnection(ctx, 30, 2*time.Second); err != nil {
			_ = rs.Close()
			return nil, nil, err
		}
		return rs, broadcast.NewBroadcaster(rs.Client(), log), nil
	case config.BackendSQLite:
		ss, err := internalstorage.OpenSQLite(cfg.SQLitePath, log)
		if err != nil {
			return nil, nil, err
		}
		return ss, broadcast.Nop{}, nil
	default:
		log.Warn("Using in-memory storage; runs are lost on restart")
		return storage.NewMemoryStore(), broadcast.Nop{}, nil
	}
}
