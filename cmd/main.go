package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/mytechsonamy/crypto-stock-platform/internal/bootstrap"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/config"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/logger"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/postgres"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(logger.WithLoggingLevel(logger.Level(cfg.App.LogLevel)))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	pgClient, err := postgres.NewClient(ctx, cfg.Postgres)
	if err != nil {
		appLogger.Error(err, logger.Field{Key: "component", Value: "postgres"})
		return
	}
	defer pgClient.Close()

	// The cache is optional: without Redis the pipeline persists and
	// distributes as usual, only the latest-bar mirror is skipped.
	var redisClient redis.Client
	candidate := redis.NewClient(appLogger, &cfg.Redis)
	if err := candidate.Connect(ctx); err != nil {
		appLogger.Warn("redis unavailable, retrying before starting without bar cache",
			logger.Field{Key: "error", Value: err.Error()},
		)
		if candidate.Reconnect(ctx) {
			redisClient = candidate
		}
	} else {
		redisClient = candidate
	}
	if redisClient != nil {
		defer redisClient.Disconnect(context.Background())
	} else {
		appLogger.Warn("running without bar cache")
	}

	app := (&bootstrap.Bootstrap{}).Init(bootstrap.BootstrapConfig{
		Config:   cfg,
		Logger:   appLogger,
		Postgres: pgClient,
		Redis:    redisClient,
	})

	// Seed indicator windows from persisted history before any live tick
	// arrives, covering every enabled feed's symbol set.
	seedCtx, cancelSeed := context.WithTimeout(ctx, 30*time.Second)
	for _, target := range cfg.SeedTargets() {
		app.Processing.Pipeline.Seed(seedCtx, target.Symbols, target.Exchange)
	}
	cancelSeed()

	app.Processing.Distributor.Start()
	app.Processing.Pipeline.Start(ctx)

	for _, feed := range app.Collectors.Feeds {
		if err := feed.Start(ctx); err != nil {
			appLogger.Error(err, logger.Field{Key: "collector", Value: feed.Name()})
			return
		}
		appLogger.Info("collector started", logger.Field{Key: "collector", Value: feed.Name()})
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: newRouter(&app),
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error(err, logger.Field{Key: "component", Value: "http"})
			stop()
		}
	}()

	appLogger.Info("market data pipeline started",
		logger.Field{Key: "app", Value: cfg.App.Name},
		logger.Field{Key: "environment", Value: cfg.App.Environment},
		logger.Field{Key: "port", Value: cfg.App.Port},
		logger.Field{Key: "collectors", Value: len(app.Collectors.Feeds)},
	)

	<-ctx.Done()
	appLogger.Info("shutting down market data pipeline")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop feeds first so no new ticks arrive, then drain the pipeline,
	// then flush subscribers.
	for _, feed := range app.Collectors.Feeds {
		if err := feed.Stop(shutdownCtx); err != nil {
			appLogger.Error(err, logger.Field{Key: "collector", Value: feed.Name()})
		}
	}
	app.Processing.Pipeline.Stop()
	app.Processing.Distributor.Stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(err, logger.Field{Key: "component", Value: "http"})
	}

	appLogger.Info("market data pipeline stopped")
}

// feedStatus is the per-collector entry on the health and stats surfaces.
type feedStatus struct {
	Healthy bool   `json:"healthy"`
	Circuit string `json:"circuit"`
}

func feedStatuses(app *bootstrap.Bootstrap) map[string]feedStatus {
	feeds := make(map[string]feedStatus, len(app.Collectors.Feeds))
	for _, feed := range app.Collectors.Feeds {
		feeds[feed.Name()] = feedStatus{
			Healthy: feed.Healthy(),
			Circuit: string(feed.CircuitState()),
		}
	}
	return feeds
}

func newRouter(app *bootstrap.Bootstrap) http.Handler {
	mux := http.NewServeMux()

	if app.Transport.WSHandler != nil {
		mux.Handle("/ws", app.Transport.WSHandler)
	}

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		feeds := feedStatuses(app)
		healthy := true
		for _, status := range feeds {
			if !status.Healthy {
				healthy = false
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"healthy": healthy,
			"feeds":   feeds,
		})
	})

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"pipeline": app.Processing.Pipeline.Stats(),
			"feeds":    feedStatuses(app),
		})
	})

	return mux
}
