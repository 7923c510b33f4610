package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/handicap-tracker/internal/dependencies/clock"
	"github.com/mcoot/handicap-tracker/internal/dependencies/ids"
	"github.com/mcoot/handicap-tracker/internal/extraction"
	"github.com/mcoot/handicap-tracker/internal/metrics"
	"github.com/mcoot/handicap-tracker/internal/services/games"
	"github.com/mcoot/handicap-tracker/internal/services/reconcile"
	"github.com/mcoot/handicap-tracker/internal/services/roster"
	"github.com/mcoot/handicap-tracker/internal/storage"
	"github.com/mcoot/handicap-tracker/internal/storage/memory"
	redisstorage "github.com/mcoot/handicap-tracker/internal/storage/redis"
	"github.com/mcoot/handicap-tracker/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock     clock.Clock
	IDs       ids.Generator
	Extractor extraction.Extractor // nil when no extraction model is configured

	// Services
	Metrics          *metrics.Metrics
	Reconciler       *reconcile.Service
	RosterController *roster.Controller
	GamesController  *games.Controller
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// Extraction configures the screenshot model. Screenshot analysis is
	// disabled unless it is Enabled().
	Extraction extraction.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		store = sqliteStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}

	var extractor extraction.Extractor
	if cfg.Extraction.Enabled() {
		extractor = extraction.NewClient(cfg.Extraction, logger)
	} else {
		logger.Info("screenshot extraction disabled, no API key configured")
	}

	return newWithDependencies(store, clock.New(), ids.New(), extractor, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	idGen ids.Generator,
	extractor extraction.Extractor,
	logger *slog.Logger,
) *App {
	m := metrics.New()
	reconciler := reconcile.New(logger, m)
	rosterController := roster.NewController(store, clk, idGen, m, logger)
	gamesController := games.NewController(store, reconciler, extractor, clk, idGen, m, logger)

	return &App{
		Storage:          store,
		Clock:            clk,
		IDs:              idGen,
		Extractor:        extractor,
		Metrics:          m,
		Reconciler:       reconciler,
		RosterController: rosterController,
		GamesController:  gamesController,
	}
}

// Close releases the storage backend if it holds connections
func (a *App) Close() error {
	if c, ok := a.Storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
