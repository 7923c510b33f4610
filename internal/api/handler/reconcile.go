package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/mcoot/handicap-tracker/internal/api/request"
	"github.com/mcoot/handicap-tracker/internal/api/response"
	"github.com/mcoot/handicap-tracker/internal/model"
	"github.com/mcoot/handicap-tracker/internal/services/handicap"
	"github.com/mcoot/handicap-tracker/internal/services/reconcile"
	"github.com/mcoot/handicap-tracker/internal/services/roster"
)

// ReconcileHandler handles stateless calculation endpoints
type ReconcileHandler struct {
	reconciler       *reconcile.Service
	rosterController *roster.Controller
}

// NewReconcileHandler creates a new reconcile handler
func NewReconcileHandler(reconciler *reconcile.Service, rosterController *roster.Controller) *ReconcileHandler {
	return &ReconcileHandler{
		reconciler:       reconciler,
		rosterController: rosterController,
	}
}

// Reconcile handles POST /api/v1/reconcile. Nothing is stored.
func (h *ReconcileHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req request.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if len(req.Payload) == 0 {
		WriteError(w, NewInvalidRequestError("payload is required"))
		return
	}

	players, err := h.rosterController.ListPlayers(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	current := make([]model.Player, len(players))
	for i, p := range players {
		current[i] = *p
	}

	result, err := h.reconciler.Process(req.Payload.Bytes(), current, req.WinningTeam)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ReconciliationFromModel(result, response.NamesFromPlayers(players)))
}

// Handicap handles GET /api/v1/handicap?kills=&deaths=&assists=
func (h *ReconcileHandler) Handicap(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var counts [3]int
	for i, name := range []string{"kills", "deaths", "assists"} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteError(w, NewInvalidRequestError(name+" must be a non-negative integer"))
			return
		}
		counts[i] = n
	}
	kills, deaths, assists := counts[0], counts[1], counts[2]

	response.JSON(w, http.StatusOK, response.Handicap{
		Kills:    kills,
		Deaths:   deaths,
		Assists:  assists,
		KDA:      handicap.KDA(kills, deaths, assists),
		Handicap: handicap.Calculate(kills, deaths, assists),
	})
}
