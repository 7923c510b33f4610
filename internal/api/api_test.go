package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/handicap-tracker/internal/api"
	"github.com/mcoot/handicap-tracker/internal/api/apierr"
	"github.com/mcoot/handicap-tracker/internal/api/response"
	"github.com/mcoot/handicap-tracker/internal/extraction"
	"github.com/mcoot/handicap-tracker/internal/factory"
	"github.com/mcoot/handicap-tracker/internal/model"
)

const scoreboard = `{
	"gameMode": "Team Slayer",
	"winningTeam": 1,
	"scores": {
		"Jon_99":   {"kills": 20, "deaths": 2, "assists": 5, "score": 2500, "team": 1},
		"Cortana":  {"kills": 3, "deaths": 12, "assists": 1, "score": 400, "team": 2},
		"Opponent": {"kills": 9, "deaths": 9, "assists": 9, "score": 900, "team": 2},
		"ghost":    null
	}
}`

type stubExtractor struct {
	content string
	err     error
	got     extraction.Request
}

func (e *stubExtractor) Extract(ctx context.Context, req extraction.Request) (string, error) {
	e.got = req
	return e.content, e.err
}

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T, extractor extraction.Extractor) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app := factory.NewTestApp(extractor)

	router := api.NewRouter(api.RouterConfig{
		Logger:           logger,
		Metrics:          app.Metrics,
		Reconciler:       app.Reconciler,
		RosterController: app.RosterController,
		GamesController:  app.GamesController,
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reqBody = bytes.NewBuffer(nil)
	case string:
		reqBody = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) addPlayer(t *testing.T, name string) response.Player {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var p response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	require.Equal(t, "/api/v1/players/"+p.ID, rr.Header().Get("Location"))
	return p
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[apierr.ErrorResponse](t, rr).Error.Code
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.addPlayer(t, "Jon")
	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]any{"payload": json.RawMessage(scoreboard)})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "hcap_games_recorded_total")
	assert.Contains(t, rr.Body.String(), `hcap_http_requests_total{code="201",method="POST",route="/api/v1/games"} 1`)
}

func TestPlayerLifecycle(t *testing.T) {
	ts := newTestServer(t, nil)

	// Create
	jon := ts.addPlayer(t, "  Jon ")
	assert.Equal(t, "Jon", jon.Name)
	assert.Equal(t, 1, jon.Handicap)
	assert.True(t, jon.IsSelected)

	// Get
	rr := ts.request(http.MethodGet, "/api/v1/players/"+jon.ID, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	// Rename and deselect together
	rr = ts.request(http.MethodPatch, "/api/v1/players/"+jon.ID, `{"name":"Jonathan","is_selected":false}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[response.Player](t, rr)
	assert.Equal(t, "Jonathan", updated.Name)
	assert.False(t, updated.IsSelected)

	// Toggle back on
	rr = ts.request(http.MethodPost, "/api/v1/players/"+jon.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, decode[response.Player](t, rr).IsSelected)

	// List
	ts.addPlayer(t, "Cortana")
	rr = ts.request(http.MethodGet, "/api/v1/players", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[response.PlayerList](t, rr)
	require.Len(t, list.Players, 2)
	assert.Equal(t, "Jonathan", list.Players[0].Name)

	// Select all with an empty body
	rr = ts.request(http.MethodPost, "/api/v1/players/select-all", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	for _, p := range decode[response.PlayerList](t, rr).Players {
		assert.True(t, p.IsSelected)
	}

	// Deselect all
	rr = ts.request(http.MethodPost, "/api/v1/players/select-all", `{"selected":false}`)
	require.Equal(t, http.StatusOK, rr.Code)
	for _, p := range decode[response.PlayerList](t, rr).Players {
		assert.False(t, p.IsSelected)
	}

	// Delete
	rr = ts.request(http.MethodDelete, "/api/v1/players/"+jon.ID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = ts.request(http.MethodGet, "/api/v1/players/"+jon.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodePlayerNotFound, errorCode(t, rr))
}

func TestPlayerValidation(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.addPlayer(t, "Master Chief")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"missing name", http.MethodPost, "/api/v1/players", `{}`, http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"bad json", http.MethodPost, "/api/v1/players", `{`, http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"punctuation only", http.MethodPost, "/api/v1/players", `{"name":"!!!"}`, http.StatusBadRequest, apierr.CodeInvalidPlayerName},
		{"duplicate", http.MethodPost, "/api/v1/players", `{"name":"master_chief"}`, http.StatusConflict, apierr.CodeDuplicatePlayerName},
		{"unknown player", http.MethodGet, "/api/v1/players/nope", nil, http.StatusNotFound, apierr.CodePlayerNotFound},
		{"empty patch", http.MethodPatch, "/api/v1/players/nope", `{}`, http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"delete unknown", http.MethodDelete, "/api/v1/players/nope", nil, http.StatusNotFound, apierr.CodePlayerNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			assert.Equal(t, tt.code, errorCode(t, rr))
		})
	}
}

func TestReconcileDryRun(t *testing.T) {
	ts := newTestServer(t, nil)
	jon := ts.addPlayer(t, "Jon")
	ts.addPlayer(t, "Cortana")

	rr := ts.request(http.MethodPost, "/api/v1/reconcile", map[string]any{"payload": json.RawMessage(scoreboard)})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	result := decode[response.Reconciliation](t, rr)
	assert.Equal(t, "Team Slayer", result.GameMode)
	require.Len(t, result.Scores, 2)
	assert.Equal(t, jon.ID, result.Scores[0].PlayerID)
	assert.Equal(t, "Jon", result.Scores[0].PlayerName)
	assert.True(t, result.Scores[0].Won)
	assert.False(t, result.Scores[1].Won)
	assert.Equal(t, []string{"Opponent"}, result.Unmatched)
	assert.Equal(t, []string{"ghost"}, result.Unread)

	// Nothing was stored
	rr = ts.request(http.MethodGet, "/api/v1/games", nil)
	assert.Empty(t, decode[response.GameList](t, rr).Games)
	rr = ts.request(http.MethodGet, "/api/v1/players/"+jon.ID, nil)
	assert.Equal(t, 0, decode[response.Player](t, rr).Kills)
}

func TestReconcileAcceptsRawModelOutput(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.addPlayer(t, "Jon")

	fenced := "```json\n" + scoreboard + "\n```"
	rr := ts.request(http.MethodPost, "/api/v1/reconcile", map[string]any{"payload": fenced, "winning_team": 2})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	result := decode[response.Reconciliation](t, rr)
	require.NotNil(t, result.WinningTeam)
	assert.Equal(t, 2, *result.WinningTeam)
	require.Len(t, result.Scores, 1)
	assert.False(t, result.Scores[0].Won)
}

func TestReconcileMalformed(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.request(http.MethodPost, "/api/v1/reconcile", `{"payload":"not json at all"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, apierr.CodeMalformedExtraction, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/reconcile", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandicapEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.request(http.MethodGet, "/api/v1/handicap?kills=10&deaths=0&assists=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	h := decode[response.Handicap](t, rr)
	assert.Equal(t, 10, h.Handicap)
	assert.Equal(t, 12.0, h.KDA)

	rr = ts.request(http.MethodGet, "/api/v1/handicap", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, model.MinHandicap, decode[response.Handicap](t, rr).Handicap)

	rr = ts.request(http.MethodGet, "/api/v1/handicap?kills=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGameLifecycle(t *testing.T) {
	ts := newTestServer(t, nil)
	jon := ts.addPlayer(t, "Jon")
	cortana := ts.addPlayer(t, "Cortana")

	// Record
	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]any{
		"payload": json.RawMessage(scoreboard),
		"map":     "Lockout",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	recorded := decode[response.RecordResult](t, rr)
	assert.Equal(t, "/api/v1/games/"+recorded.Game.ID, rr.Header().Get("Location"))
	assert.Equal(t, "Lockout", recorded.Game.Map)
	assert.Equal(t, []string{jon.ID}, recorded.Game.Winners)
	assert.Equal(t, []string{"Opponent"}, recorded.Unmatched)
	require.Len(t, recorded.Players, 2)

	// Totals moved
	rr = ts.request(http.MethodGet, "/api/v1/players/"+jon.ID, nil)
	p := decode[response.Player](t, rr)
	assert.Equal(t, 20, p.Kills)
	assert.Equal(t, 10, p.Handicap)

	// Get and list
	rr = ts.request(http.MethodGet, "/api/v1/games/"+recorded.Game.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[response.Game](t, rr).Scores, 2)

	rr = ts.request(http.MethodGet, "/api/v1/games", nil)
	assert.Len(t, decode[response.GameList](t, rr).Games, 1)

	// Manual scores
	rr = ts.request(http.MethodPost, "/api/v1/games", map[string]any{
		"game_mode": "Slayer",
		"scores": []map[string]any{
			{"player_id": cortana.ID, "kills": 30, "deaths": 1},
			{"player_id": jon.ID, "kills": 1, "deaths": 30},
		},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	manual := decode[response.RecordResult](t, rr)
	assert.Equal(t, []string{cortana.ID}, manual.Game.Winners)

	// Recalculate leaves derived values unchanged
	rr = ts.request(http.MethodPost, "/api/v1/games/recalculate", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	// Delete the first game
	rr = ts.request(http.MethodDelete, "/api/v1/games/"+recorded.Game.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = ts.request(http.MethodGet, "/api/v1/players/"+jon.ID, nil)
	assert.Equal(t, 1, decode[response.Player](t, rr).Kills)

	rr = ts.request(http.MethodGet, "/api/v1/games/"+recorded.Game.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeGameNotFound, errorCode(t, rr))
}

func TestRecordGameErrors(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.addPlayer(t, "Jon")

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"empty", `{}`, http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"malformed payload", `{"payload":"garbage"}`, http.StatusUnprocessableEntity, apierr.CodeMalformedExtraction},
		{"nobody matched", map[string]any{"payload": json.RawMessage(`{"scores":{"Stranger":{"kills":1}}}`)}, http.StatusUnprocessableEntity, apierr.CodeNoScoresMatched},
		{"unknown manual player", `{"scores":[{"player_id":"nope","kills":1}]}`, http.StatusNotFound, apierr.CodePlayerNotFound},
		{"manual score without player", `{"scores":[{"kills":1}]}`, http.StatusBadRequest, apierr.CodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/v1/games", tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			assert.Equal(t, tt.code, errorCode(t, rr))
		})
	}
}

func TestGameScoreEdits(t *testing.T) {
	ts := newTestServer(t, nil)
	jon := ts.addPlayer(t, "Jon")
	cortana := ts.addPlayer(t, "Cortana")
	chief := ts.addPlayer(t, "Master Chief")

	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]any{
		"game_mode":    "Team Slayer",
		"winning_team": 1,
		"scores": []map[string]any{
			{"player_id": jon.ID, "kills": 4, "deaths": 4, "team": 2},
			{"player_id": cortana.ID, "kills": 2, "deaths": 6, "team": 1},
		},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	gameID := decode[response.RecordResult](t, rr).Game.ID
	scoresPath := "/api/v1/games/" + gameID + "/scores"

	// Correct Jon's kills and team
	rr = ts.request(http.MethodPatch, scoresPath+"/"+jon.ID, `{"kills":16,"team":1}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	edited := decode[response.GameUpdate](t, rr)
	assert.ElementsMatch(t, []string{jon.ID, cortana.ID}, edited.Game.Winners)
	require.Len(t, edited.Players, 1)
	assert.Equal(t, jon.ID, edited.Players[0].ID)
	assert.Equal(t, 16, edited.Players[0].Kills)
	assert.Equal(t, 4, edited.Players[0].Deaths)
	assert.Equal(t, 8, edited.Players[0].Handicap)

	rr = ts.request(http.MethodGet, "/api/v1/players/"+jon.ID, nil)
	assert.Equal(t, 8, decode[response.Player](t, rr).Handicap)

	// Add a player the scoreboard missed
	rr = ts.request(http.MethodPost, scoresPath, map[string]any{
		"player_id": chief.ID, "kills": 9, "deaths": 3, "team": 1,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "/api/v1/games/"+gameID, rr.Header().Get("Location"))
	added := decode[response.GameUpdate](t, rr)
	assert.Len(t, added.Game.Scores, 3)
	assert.Contains(t, added.Game.Winners, chief.ID)
	require.Len(t, added.Players, 1)
	assert.Equal(t, 6, added.Players[0].Handicap)

	rr = ts.request(http.MethodGet, "/api/v1/games/"+gameID, nil)
	assert.Len(t, decode[response.Game](t, rr).Scores, 3)
}

func TestGameScoreEditErrors(t *testing.T) {
	ts := newTestServer(t, nil)
	jon := ts.addPlayer(t, "Jon")
	cortana := ts.addPlayer(t, "Cortana")

	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]any{
		"scores": []map[string]any{{"player_id": jon.ID, "kills": 4, "deaths": 4}},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	scoresPath := "/api/v1/games/" + decode[response.RecordResult](t, rr).Game.ID + "/scores"

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"edit with nothing to change", http.MethodPatch, scoresPath + "/" + jon.ID, `{}`, http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"edit malformed body", http.MethodPatch, scoresPath + "/" + jon.ID, `{"kills":`, http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"edit player not in game", http.MethodPatch, scoresPath + "/" + cortana.ID, `{"kills":1}`, http.StatusNotFound, apierr.CodeScoreNotFound},
		{"edit unknown game", http.MethodPatch, "/api/v1/games/nope/scores/" + jon.ID, `{"kills":1}`, http.StatusNotFound, apierr.CodeGameNotFound},
		{"add without player", http.MethodPost, scoresPath, `{"kills":1}`, http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"add unknown player", http.MethodPost, scoresPath, `{"player_id":"nope"}`, http.StatusNotFound, apierr.CodePlayerNotFound},
		{"add player twice", http.MethodPost, scoresPath, map[string]any{"player_id": jon.ID}, http.StatusConflict, apierr.CodeAlreadyInGame},
		{"add to unknown game", http.MethodPost, "/api/v1/games/nope/scores", map[string]any{"player_id": cortana.ID}, http.StatusNotFound, apierr.CodeGameNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			assert.Equal(t, tt.code, errorCode(t, rr))
		})
	}
}

func TestAnalyzeScreenshot(t *testing.T) {
	extractor := &stubExtractor{content: "```json\n" + scoreboard + "\n```"}
	ts := newTestServer(t, extractor)
	ts.addPlayer(t, "Jon")

	rr := ts.request(http.MethodPost, "/api/v1/games/analyze", map[string]string{
		"image_url": "https://example.com/board.png",
		"map":       "Guardian",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	result := decode[response.RecordResult](t, rr)
	assert.Equal(t, "https://example.com/board.png", result.Game.ScreenshotURL)
	assert.Equal(t, "Guardian", result.Game.Map)
	assert.Equal(t, []string{"Jon"}, extractor.got.RosterNames)

	rr = ts.request(http.MethodPost, "/api/v1/games/analyze", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAnalyzeScreenshotErrors(t *testing.T) {
	ts := newTestServer(t, nil)
	rr := ts.request(http.MethodPost, "/api/v1/games/analyze", `{"image_url":"https://example.com/x.png"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, apierr.CodeExtractionUnavailable, errorCode(t, rr))

	failing := &stubExtractor{err: fmt.Errorf("%w: upstream 500", model.ErrExtractionFailed)}
	ts = newTestServer(t, failing)
	rr = ts.request(http.MethodPost, "/api/v1/games/analyze", `{"image_url":"https://example.com/x.png"}`)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, apierr.CodeExtractionFailed, errorCode(t, rr))
}

func TestBalanceTeams(t *testing.T) {
	ts := newTestServer(t, nil)

	// Not enough players is not an error
	rr := ts.request(http.MethodGet, "/api/v1/teams", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[response.Teams](t, rr).InsufficientPlayers)

	for _, name := range []string{"Alpha", "Bravo", "Charlie", "Delta"} {
		ts.addPlayer(t, name)
	}

	rr = ts.request(http.MethodGet, "/api/v1/teams?shuffle=3", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	teams := decode[response.Teams](t, rr)
	assert.Len(t, teams.TeamA, 2)
	assert.Len(t, teams.TeamB, 2)
	assert.Equal(t, 0, teams.Imbalance)

	// Same key, same split
	rr = ts.request(http.MethodGet, "/api/v1/teams?shuffle=3", nil)
	assert.Equal(t, teams, decode[response.Teams](t, rr))

	rr = ts.request(http.MethodGet, "/api/v1/teams?shuffle=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStats(t *testing.T) {
	ts := newTestServer(t, nil)
	jon := ts.addPlayer(t, "Jon")
	cortana := ts.addPlayer(t, "Cortana")

	for i := 0; i < 2; i++ {
		rr := ts.request(http.MethodPost, "/api/v1/games", map[string]any{
			"game_mode":    "Team Slayer",
			"winning_team": 1,
			"scores": []map[string]any{
				{"player_id": jon.ID, "kills": 10, "deaths": 5, "team": 1},
				{"player_id": cortana.ID, "kills": 5, "deaths": 5, "team": 1},
			},
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	rr := ts.request(http.MethodGet, "/api/v1/stats/players", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	players := decode[response.PlayerStatsList](t, rr).Players
	require.Len(t, players, 2)
	assert.Equal(t, 2, players[0].GamesPlayed)
	assert.Equal(t, 100.0, players[0].WinRate)
	assert.Equal(t, 10.0, players[0].AvgKills)

	rr = ts.request(http.MethodGet, "/api/v1/stats/connections?min_games=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	conns := decode[response.ConnectionList](t, rr)
	require.Len(t, conns.Connections, 1)
	assert.Equal(t, "Jon", conns.Connections[0].PlayerAName)
	assert.Equal(t, "Cortana", conns.Connections[0].PlayerBName)
	assert.Equal(t, 2, conns.Connections[0].GamesPlayed)

	assert.Equal(t, "games_played", conns.Metric)

	rr = ts.request(http.MethodGet, "/api/v1/stats/connections?min_games=3", nil)
	assert.Empty(t, decode[response.ConnectionList](t, rr).Connections)
}

func TestConnectionsByMetric(t *testing.T) {
	ts := newTestServer(t, nil)
	jon := ts.addPlayer(t, "Jon")
	cortana := ts.addPlayer(t, "Cortana")

	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]any{
		"game_mode":    "Team Slayer",
		"winning_team": 1,
		"scores": []map[string]any{
			{"player_id": jon.ID, "kills": 10, "deaths": 5, "team": 1},
			{"player_id": cortana.ID, "kills": 5, "deaths": 5, "team": 1},
		},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	tests := []struct {
		query string
		want  int
	}{
		{"metric=win_rate&min=100", 1},
		{"metric=win_rate&min=100.5", 0},
		{"metric=avg_kda&min=1.5", 1},
		{"metric=avg_kda&min=1.6", 0},
		{"metric=games_played&min=2", 0},
		{"metric=games_played", 1},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rr := ts.request(http.MethodGet, "/api/v1/stats/connections?"+tt.query, nil)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.Len(t, decode[response.ConnectionList](t, rr).Connections, tt.want)
		})
	}

	rr = ts.request(http.MethodGet, "/api/v1/stats/connections?metric=avg_kda&min=1.5", nil)
	conns := decode[response.ConnectionList](t, rr)
	assert.Equal(t, "avg_kda", conns.Metric)
	assert.Equal(t, 1.5, conns.Min)

	for _, query := range []string{"metric=kills", "min=lots", "min=NaN", "metric=win_rate&min=Inf"} {
		rr := ts.request(http.MethodGet, "/api/v1/stats/connections?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, query)
		assert.Equal(t, apierr.CodeInvalidRequest, errorCode(t, rr), query)
	}
}
