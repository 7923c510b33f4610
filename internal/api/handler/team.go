package handler

import (
	"math"
	"net/http"
	"strconv"

	"github.com/mcoot/handicap-tracker/internal/api/response"
	"github.com/mcoot/handicap-tracker/internal/services/games"
	"github.com/mcoot/handicap-tracker/internal/services/roster"
	"github.com/mcoot/handicap-tracker/internal/services/stats"
)

// TeamHandler handles team balancing and analytics endpoints
type TeamHandler struct {
	rosterController *roster.Controller
	gamesController  *games.Controller
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(rosterController *roster.Controller, gamesController *games.Controller) *TeamHandler {
	return &TeamHandler{
		rosterController: rosterController,
		gamesController:  gamesController,
	}
}

// Balance handles GET /api/v1/teams?shuffle=N
func (h *TeamHandler) Balance(w http.ResponseWriter, r *http.Request) {
	shuffle, err := intParam(r, "shuffle", 0)
	if err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.rosterController.BalanceTeams(r.Context(), shuffle)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TeamsFromResult(result))
}

// PlayerStats handles GET /api/v1/stats/players
func (h *TeamHandler) PlayerStats(w http.ResponseWriter, r *http.Request) {
	players, err := h.rosterController.ListPlayers(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	history, err := h.gamesController.ListGames(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerStatsFromModel(stats.ForPlayers(players, history)))
}

// Connections handles GET /api/v1/stats/connections?min_games=N&metric=M&min=V
func (h *TeamHandler) Connections(w http.ResponseWriter, r *http.Request) {
	minGames, err := intParam(r, "min_games", 1)
	if err != nil {
		WriteError(w, err)
		return
	}
	metric, err := stats.ParseMetric(r.URL.Query().Get("metric"))
	if err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}
	minValue, err := floatParam(r, "min", 0)
	if err != nil {
		WriteError(w, err)
		return
	}

	players, err := h.rosterController.ListPlayers(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	history, err := h.gamesController.ListGames(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	minGames = max(minGames, 1)
	connections := stats.FilterConnections(stats.Connections(players, history, minGames), metric, minValue)
	out := response.ConnectionsFromModel(connections, minGames, response.NamesFromPlayers(players))
	out.Metric = string(metric)
	out.Min = minValue
	response.JSON(w, http.StatusOK, out)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, NewInvalidRequestError(name + " must be an integer")
	}
	return n, nil
}

func floatParam(r *http.Request, name string, def float64) (float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, NewInvalidRequestError(name + " must be a number")
	}
	return f, nil
}
