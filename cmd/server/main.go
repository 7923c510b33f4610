package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/handicap-tracker/internal/api"
	"github.com/mcoot/handicap-tracker/internal/config"
	"github.com/mcoot/handicap-tracker/internal/extraction"
	"github.com/mcoot/handicap-tracker/internal/factory"
	redisstorage "github.com/mcoot/handicap-tracker/internal/storage/redis"
)

func main() {
	configPath := flag.String("config", "hcap.toml", "Path to the TOML config file")
	envFile := flag.String("env-file", ".env", "Path to a .env file")
	flag.Parse()

	// Bootstrap logger until the configured level is known
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := config.LoadDotEnv(*envFile); err != nil {
		logger.Error("failed to load env file", slog.String("error", err.Error()))
		os.Exit(1)
	}

	conf, err := config.Load(*configPath)
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	level, _ := conf.LogLevel()
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Build factory config
	extractionCfg := extraction.DefaultConfig()
	extractionCfg.Endpoint = conf.Extraction.Endpoint
	extractionCfg.Model = conf.Extraction.Model
	extractionCfg.APIKey = conf.Extraction.APIKey
	extractionCfg.Timeout = conf.Extraction.Timeout.Duration
	extractionCfg.MaxTokens = conf.Extraction.MaxTokens

	cfg := factory.Config{
		Logger:      logger,
		StorageType: conf.Storage.Type,
		SQLitePath:  conf.Storage.SQLitePath,
		Extraction:  extractionCfg,
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = conf.Storage.RedisURL
		redisCfg.KeyPrefix = conf.Storage.RedisPrefix
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	logger.Info("storage ready", slog.String("type", conf.Storage.Type))

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:           logger,
		Metrics:          app.Metrics,
		Reconciler:       app.Reconciler,
		RosterController: app.RosterController,
		GamesController:  app.GamesController,
	})

	// Create server
	server := api.NewServer(router, api.ServerConfig{
		Host:            conf.Server.Host,
		Port:            conf.Server.Port,
		ReadTimeout:     conf.Server.ReadTimeout.Duration,
		WriteTimeout:    conf.Server.WriteTimeout.Duration,
		ShutdownTimeout: conf.Server.ShutdownTimeout.Duration,
	}, logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
