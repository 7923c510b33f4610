package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/handicap-tracker/internal/api/request"
	"github.com/mcoot/handicap-tracker/internal/api/response"
	"github.com/mcoot/handicap-tracker/internal/model"
	"github.com/mcoot/handicap-tracker/internal/services/roster"
)

// PlayerHandler handles roster endpoints
type PlayerHandler struct {
	rosterController *roster.Controller
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(rosterController *roster.Controller) *PlayerHandler {
	return &PlayerHandler{
		rosterController: rosterController,
	}
}

// Create handles POST /api/v1/players
func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreatePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Name == "" {
		WriteError(w, NewInvalidRequestError("name is required"))
		return
	}

	player, err := h.rosterController.AddPlayer(r.Context(), req.Name)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, "/api/v1/players/"+string(player.ID), response.PlayerFromModel(player))
}

// List handles GET /api/v1/players
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := h.rosterController.ListPlayers(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerList{Players: response.PlayersFromModel(players)})
}

// Get handles GET /api/v1/players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	player, err := h.rosterController.GetPlayer(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Update handles PATCH /api/v1/players/{id}
func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	var req request.UpdatePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Name == nil && req.IsSelected == nil {
		WriteError(w, NewInvalidRequestError("name or is_selected is required"))
		return
	}

	player, err := h.rosterController.GetPlayer(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	if req.Name != nil {
		player, err = h.rosterController.RenamePlayer(r.Context(), id, *req.Name)
		if err != nil {
			WriteError(w, err)
			return
		}
	}
	if req.IsSelected != nil {
		player, err = h.rosterController.SetSelected(r.Context(), id, *req.IsSelected)
		if err != nil {
			WriteError(w, err)
			return
		}
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Delete handles DELETE /api/v1/players/{id}
func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	if err := h.rosterController.RemovePlayer(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Toggle handles POST /api/v1/players/{id}/toggle
func (h *PlayerHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	player, err := h.rosterController.ToggleSelected(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// SelectAll handles POST /api/v1/players/select-all
func (h *PlayerHandler) SelectAll(w http.ResponseWriter, r *http.Request) {
	var req request.SelectAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	selected := true
	if req.Selected != nil {
		selected = *req.Selected
	}

	players, err := h.rosterController.SelectAll(r.Context(), selected)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerList{Players: response.PlayersFromModel(players)})
}
