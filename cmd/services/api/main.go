package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/crimecast/crimecast/internal/cache"
	"github.com/crimecast/crimecast/internal/config"
	"github.com/crimecast/crimecast/internal/dataset"
	"github.com/crimecast/crimecast/internal/logging"
	"github.com/crimecast/crimecast/internal/metrics"
	"github.com/crimecast/crimecast/internal/queue"
	"github.com/crimecast/crimecast/internal/router"
	"github.com/crimecast/crimecast/internal/services"
	"github.com/crimecast/crimecast/internal/utils"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("Forecast API starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	// Load the dataset once; it is read-only afterwards
	logger.Info("Loading dataset", "path", cfg.Dataset.Path)
	store, err := dataset.LoadFile(cfg.Dataset.Path, dataset.ColumnsFromConfig(cfg.Dataset.Columns))
	if err != nil {
		logger.Fatal("Failed to load dataset", "error", err)
	}
	logger.Info("Dataset loaded",
		"records", store.Len(), "jurisdictions", len(store.Jurisdictions()), "version", store.Version())

	m := metrics.New()
	m.SetDatasetRecords(store.Len())

	logger.Info("Opening forecast cache", "type", cfg.Cache.Type)
	forecastCache, err := cache.New(cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to open cache", "error", err)
	}
	defer func() { _ = forecastCache.Close() }()

	logger.Info("Connecting to event backend", "type", cfg.Events.Type, "url", cfg.Events.URL)
	publisher, err := queue.NewPublisher(cfg.Events)
	if err != nil {
		logger.Fatal("Failed to connect to event backend", "error", err)
	}
	defer func() { _ = publisher.Close() }()

	// Log authentication status
	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	forecastService := services.NewForecastService(logger, store, cfg.Forecast, forecastCache, publisher, m).
		WithSubject(cfg.Events.Subject)
	datasetService := services.NewDatasetService(store)

	app := router.New(logger, router.Dependencies{
		Forecast: forecastService,
		Dataset:  datasetService,
		Metrics:  m,
	}, *cfg)

	// Start server in goroutine
	go func() {
		addr := cfg.GetServerAddress()
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), utils.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
