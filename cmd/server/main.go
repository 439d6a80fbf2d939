// Package main is the entry point for the warenbuchung service: the
// offline-capable booking engine plus its local HTTP surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"warenbuchung/internal/config"
	"warenbuchung/internal/core/units"
	"warenbuchung/internal/domain/aggregate"
	"warenbuchung/internal/domain/booking"
	"warenbuchung/internal/domain/catalog"
	"warenbuchung/internal/domain/gate"
	"warenbuchung/internal/domain/session"
	"warenbuchung/internal/domain/settings"
	v1 "warenbuchung/internal/infrastructure/http/v1"
	"warenbuchung/internal/infrastructure/remote"
	"warenbuchung/internal/infrastructure/storage/sqlite"
	"warenbuchung/pkg/logger"
)

func main() {
	configPath := flag.String("config", getEnv("APP_CONFIG", "config.yaml"), "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development || cfg.App.Env == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	log.Info("starting warenbuchung service")

	// --- Local store ---
	db, err := sqlite.Open(cfg.Storage.Path)
	if err != nil {
		log.Fatalw("failed to open local store", "error", err, "path", cfg.Storage.Path)
	}
	defer db.Close()

	if err := sqlite.Migrate(ctx, db); err != nil {
		log.Fatalw("failed to migrate local store", "error", err)
	}
	log.Infow("local store ready", "path", cfg.Storage.Path)

	txManager := sqlite.NewTxManager(db)
	journal, err := sqlite.NewJournal(txManager)
	if err != nil {
		log.Fatalw("failed to create journal", "error", err)
	}

	movementRepo := sqlite.NewMovementRepo(txManager, journal)
	productRepo := sqlite.NewProductRepo(txManager)
	sessionRepo := sqlite.NewSessionRepo(txManager)

	// --- Session and remote API ---
	sessionManager := session.NewManager(nil, sessionRepo)
	apiClient := remote.NewClient(cfg.API.BaseURL, cfg.API.Timeout, sessionManager)
	sessionManager.SetRemote(apiClient)
	sessionManager.Restore(ctx)

	// --- Catalog resolver, primed from the local cache ---
	resolver := catalog.NewResolver(apiClient, productRepo)
	if cached, err := productRepo.ListProducts(ctx); err != nil {
		log.Warnw("loading cached products failed", "error", err)
	} else {
		resolver.Prime(cached)
		log.Infow("product cache primed", "count", len(cached))
	}

	// --- Gate and aggregation ---
	movementGate := gate.New(apiClient, movementRepo, sessionManager)

	unitTable := units.NewTable(cfg.Units.PaletteFactor)
	normalizer := aggregate.NewNormalizer(unitTable, resolver)
	engine := aggregate.NewEngine(normalizer)

	bookingService := booking.NewService(movementGate, engine, resolver, apiClient, unitTable)
	settingsService := settings.NewService(apiClient)

	// --- Background connectivity and replay loops ---
	go movementGate.RunProber(ctx, cfg.Sync.ProbeInterval)
	go movementGate.RunSyncer(ctx, cfg.Sync.ProbeInterval, cfg.Sync.BatchSize)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		DB:              db,
		Logger:          log,
		SessionManager:  sessionManager,
		Gate:            movementGate,
		BookingService:  bookingService,
		Resolver:        resolver,
		Searcher:        apiClient,
		SettingsService: settingsService,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	cancel()

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
