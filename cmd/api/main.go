package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	_ "hackverse-mindmap/docs/swagger"
	"hackverse-mindmap/internal/config"
	"hackverse-mindmap/internal/di"
	"hackverse-mindmap/internal/infrastructure/logging"
	"hackverse-mindmap/internal/interfaces/http/rest"
)

// @title Hackverse Mind Map API
// @version 1.0
// @description Resource storage and mind-map generation.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	loader := config.NewLoader(os.Getenv("CONFIG_PATH"), "")
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize dependency container
	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()
	logger := container.Logging.Logger

	// Reload the log level when the config files change in development
	if cfg.Environment == config.Development {
		watcher, err := config.NewWatcher(loader, cfg, logger)
		if err != nil {
			logger.Warn("Config watcher disabled", zap.Error(err))
		} else {
			defer watcher.Stop()
			watcher.OnChange(func(next *config.Config) {
				logging.SetLevel(container.Logging.Level, next.Logging.Level)
				logger.Info("Log level updated", zap.String("level", next.Logging.Level))
			})
		}
	}

	logger.Info("Configuration loaded",
		zap.String("environment", string(cfg.Environment)),
		zap.String("store", cfg.Store.Provider),
		zap.String("llm", cfg.LLM.Provider),
		zap.Strings("sources", cfg.LoadedFrom))

	if err := rest.Serve(ctx, cfg.Server, container.Router, logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
		cleanup()
		os.Exit(1)
	}
}
