package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/handicap-tracker/internal/api/handler"
	"github.com/mcoot/handicap-tracker/internal/api/middleware"
	"github.com/mcoot/handicap-tracker/internal/metrics"
	"github.com/mcoot/handicap-tracker/internal/services/games"
	"github.com/mcoot/handicap-tracker/internal/services/reconcile"
	"github.com/mcoot/handicap-tracker/internal/services/roster"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger           *slog.Logger
	Metrics          *metrics.Metrics
	Reconciler       *reconcile.Service
	RosterController *roster.Controller
	GamesController  *games.Controller
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.RosterController)
	gameHandler := handler.NewGameHandler(cfg.GamesController, cfg.RosterController)
	reconcileHandler := handler.NewReconcileHandler(cfg.Reconciler, cfg.RosterController)
	teamHandler := handler.NewTeamHandler(cfg.RosterController, cfg.GamesController)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	metricsMiddleware := middleware.Metrics(cfg.Metrics)

	// Prometheus scrape endpoint lives outside the versioned API
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	api.Use(metricsMiddleware)

	// Player routes
	api.HandleFunc("/players", playerHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/players", playerHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/players/select-all", playerHandler.SelectAll).Methods(http.MethodPost)
	api.HandleFunc("/players/{id}", playerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}", playerHandler.Update).Methods(http.MethodPatch)
	api.HandleFunc("/players/{id}", playerHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/players/{id}/toggle", playerHandler.Toggle).Methods(http.MethodPost)

	// Stateless calculations
	api.HandleFunc("/reconcile", reconcileHandler.Reconcile).Methods(http.MethodPost)
	api.HandleFunc("/handicap", reconcileHandler.Handicap).Methods(http.MethodGet)

	// Game routes
	api.HandleFunc("/games", gameHandler.Record).Methods(http.MethodPost)
	api.HandleFunc("/games", gameHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/games/analyze", gameHandler.Analyze).Methods(http.MethodPost)
	api.HandleFunc("/games/recalculate", gameHandler.Recalculate).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}", gameHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", gameHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/games/{id}/scores", gameHandler.AddScore).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/scores/{player_id}", gameHandler.UpdateScore).Methods(http.MethodPatch)

	// Teams and analytics
	api.HandleFunc("/teams", teamHandler.Balance).Methods(http.MethodGet)
	api.HandleFunc("/stats/players", teamHandler.PlayerStats).Methods(http.MethodGet)
	api.HandleFunc("/stats/connections", teamHandler.Connections).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
