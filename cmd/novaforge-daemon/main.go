package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmarrick/novaforge/internal/adapters/catalogfile"
	"github.com/dmarrick/novaforge/internal/adapters/equipment"
	"github.com/dmarrick/novaforge/internal/adapters/metrics"
	"github.com/dmarrick/novaforge/internal/application/common"
	"github.com/dmarrick/novaforge/internal/application/engine"
	"github.com/dmarrick/novaforge/internal/infrastructure/config"
	"github.com/dmarrick/novaforge/internal/infrastructure/database"
	"github.com/dmarrick/novaforge/internal/infrastructure/logging"
	"github.com/dmarrick/novaforge/internal/infrastructure/pidfile"
)

func main() {
	configFlag := flag.String("config", "", "Path to config file")
	flag.Parse()

	fmt.Println("NovaForge Daemon v0.1.0")
	fmt.Println("=======================")

	fmt.Println("Loading configuration...")
	cfg := config.MustLoadConfig(*configFlag)

	fmt.Printf("Acquiring PID file lock: %s\n", cfg.Daemon.PIDFile)
	pf := pidfile.New(cfg.Daemon.PIDFile)
	if err := pf.Acquire(); err != nil {
		log.Fatalf("Failed to acquire PID file lock: %v", err)
	}
	defer func() {
		if err := pf.Release(); err != nil {
			log.Printf("Warning: failed to release PID file: %v", err)
		}
	}()
	fmt.Println("PID file lock acquired")

	if err := run(cfg); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(cfg *config.Config) error {
	logger, err := logging.NewFromConfig(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	fmt.Printf("Loading catalog from %s...\n", cfg.Engine.CatalogPath)
	cat, err := catalogfile.Load(cfg.Engine.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	fmt.Printf("Catalog loaded: %d recipes, %d facilities, %d sites\n",
		len(cat.RecipeIDs()), len(cat.FacilityIDs()), len(cat.SiteIDs()))

	fmt.Printf("Connecting to %s database...\n", cfg.Database.Type)
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	fmt.Println("Database connected")

	var recorder *metrics.JobMetricsCollector
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		registry := metrics.NewRegistry()
		recorder = metrics.NewJobMetricsCollector(registry)

		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler(registry))
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Metrics.Host, cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			fmt.Printf("Metrics server listening on %s%s\n", metricsServer.Addr, cfg.Metrics.Path)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Log("ERROR", "metrics server failed", map[string]interface{}{"error": err.Error()})
			}
		}()
	}

	opts := engine.Options{
		Catalog:       cat,
		Equipment:     equipment.NewStaticProvider(),
		Logger:        logger,
		Clock:         nil,
		YieldSeed:     cfg.Engine.YieldSeed,
		RecoveryRate:  cfg.Engine.RecoveryRate,
		SweepInterval: cfg.Engine.SweepInterval,
		PersistEvents: true,
	}
	if recorder != nil {
		opts.Metrics = recorder
	}

	eng, err := engine.New(db, opts)
	if err != nil {
		return fmt.Errorf("failed to assemble engine: %w", err)
	}

	eng.Subscribe(common.CompletionObserverFunc(func(event common.CompletionEvent) {
		logger.Log("INFO", "job finished", map[string]interface{}{
			"job_id": event.JobID,
			"kind":   string(event.Kind),
			"status": string(event.Status),
			"output": event.Output,
		})
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Println("Recovering in-flight jobs...")
	if err := eng.Start(ctx); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	fmt.Println("Engine started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	fmt.Printf("Received %s, shutting down...\n", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Daemon.ShutdownTimeout)
	defer shutdownCancel()

	eng.Stop()
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Log("WARN", "metrics server shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}

	// Give the completion paths a moment to drain before closing the store
	select {
	case <-shutdownCtx.Done():
	case <-time.After(100 * time.Millisecond):
	}

	fmt.Println("Shutdown complete")
	return nil
}
