package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/handicap-tracker/internal/api/request"
	"github.com/mcoot/handicap-tracker/internal/api/response"
	"github.com/mcoot/handicap-tracker/internal/model"
	"github.com/mcoot/handicap-tracker/internal/services/games"
	"github.com/mcoot/handicap-tracker/internal/services/roster"
)

// GameHandler handles game recording endpoints
type GameHandler struct {
	gamesController  *games.Controller
	rosterController *roster.Controller
}

// NewGameHandler creates a new game handler
func NewGameHandler(gamesController *games.Controller, rosterController *roster.Controller) *GameHandler {
	return &GameHandler{
		gamesController:  gamesController,
		rosterController: rosterController,
	}
}

// Record handles POST /api/v1/games
func (h *GameHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req request.RecordGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := req.Validate(); err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}

	scores := make([]games.ManualScore, len(req.Scores))
	for i, sc := range req.Scores {
		scores[i] = games.ManualScore{
			PlayerID: model.PlayerID(sc.PlayerID),
			Kills:    sc.Kills,
			Deaths:   sc.Deaths,
			Assists:  sc.Assists,
			Score:    sc.Score,
			Team:     sc.Team,
		}
	}

	result, err := h.gamesController.RecordGame(r.Context(), games.RecordRequest{
		Payload:       req.Payload.Bytes(),
		Scores:        scores,
		GameMode:      req.GameMode,
		WinningTeam:   req.WinningTeam,
		Map:           req.Map,
		ScreenshotURL: req.ScreenshotURL,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, "/api/v1/games/"+string(result.Game.ID), response.RecordResultFromModel(result, h.names(r)))
}

// Analyze handles POST /api/v1/games/analyze
func (h *GameHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req request.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.ImageURL == "" {
		WriteError(w, NewInvalidRequestError("image_url is required"))
		return
	}

	result, err := h.gamesController.AnalyzeScreenshot(r.Context(), games.AnalyzeRequest{
		ImageURL:    req.ImageURL,
		Map:         req.Map,
		WinningTeam: req.WinningTeam,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, "/api/v1/games/"+string(result.Game.ID), response.RecordResultFromModel(result, h.names(r)))
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.gamesController.ListGames(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	names := h.names(r)
	out := make([]response.Game, len(all))
	for i, g := range all {
		out[i] = response.GameFromModel(g, names)
	}

	response.JSON(w, http.StatusOK, response.GameList{Games: out})
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.GameID(mux.Vars(r)["id"])

	game, err := h.gamesController.GetGame(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(game, h.names(r)))
}

// Delete handles DELETE /api/v1/games/{id}
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := model.GameID(mux.Vars(r)["id"])

	players, err := h.gamesController.DeleteGame(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.DeleteGameResponse{Players: response.PlayersFromModel(players)})
}

// AddScore handles POST /api/v1/games/{id}/scores
func (h *GameHandler) AddScore(w http.ResponseWriter, r *http.Request) {
	id := model.GameID(mux.Vars(r)["id"])

	var req request.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.PlayerID == "" {
		WriteError(w, NewInvalidRequestError("player_id is required"))
		return
	}

	update, err := h.gamesController.AddPlayerToGame(r.Context(), id, games.ManualScore{
		PlayerID: model.PlayerID(req.PlayerID),
		Kills:    req.Kills,
		Deaths:   req.Deaths,
		Assists:  req.Assists,
		Score:    req.Score,
		Team:     req.Team,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, "/api/v1/games/"+string(id), h.gameUpdate(r, update))
}

// UpdateScore handles PATCH /api/v1/games/{id}/scores/{player_id}
func (h *GameHandler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req request.UpdateScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}

	update, err := h.gamesController.UpdateScore(r.Context(), model.GameID(vars["id"]), model.PlayerID(vars["player_id"]), games.ScoreEdit{
		Kills:   req.Kills,
		Deaths:  req.Deaths,
		Assists: req.Assists,
		Score:   req.Score,
		Team:    req.Team,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, h.gameUpdate(r, update))
}

func (h *GameHandler) gameUpdate(r *http.Request, update *games.GameUpdate) response.GameUpdate {
	return response.GameUpdate{
		Game:    response.GameFromModel(update.Game, h.names(r)),
		Players: response.PlayersFromModel(update.Players),
	}
}

// Recalculate handles POST /api/v1/games/recalculate
func (h *GameHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	players, err := h.gamesController.RecalculateAll(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerList{Players: response.PlayersFromModel(players)})
}

// names looks up current player names; scores still render without them
func (h *GameHandler) names(r *http.Request) response.Names {
	players, err := h.rosterController.ListPlayers(r.Context())
	if err != nil {
		return response.Names{}
	}
	return response.NamesFromPlayers(players)
}
