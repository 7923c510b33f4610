package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/handicap-tracker/internal/api"
	"github.com/mcoot/handicap-tracker/internal/api/response"
	"github.com/mcoot/handicap-tracker/internal/factory"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "hcap-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/hcap")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// Use the persistent backend so the full stack is exercised
	app, err := factory.New(factory.Config{
		Logger:      logger,
		StorageType: factory.StorageTypeSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "hcap.db"),
	})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:           logger,
		Metrics:          app.Metrics,
		Reconciler:       app.Reconciler,
		RosterController: app.RosterController,
		GamesController:  app.GamesController,
	})
	server := api.NewServer(router, api.DefaultServerConfig(), logger)

	// Start server
	go func() {
		if err := server.Serve(listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

func decode[T any](t *testing.T, output string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(output), &v), "output: %s", output)
	return v
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	assert.Equal(t, "ok", decode[struct {
		Status string `json:"status"`
	}](t, output).Status)
}

func TestCLI_GameNight(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Build the roster
	ids := map[string]string{}
	for _, name := range []string{"Jon", "Master Chief", "Cortana", "Arbiter"} {
		output, err := cli.run("player", "add", name)
		require.NoError(t, err, "output: %s", output)
		ids[name] = decode[response.Player](t, output).ID
	}

	// Record a scoreboard
	payload := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(payload, []byte(`{
		"gameMode": "Team Slayer",
		"winningTeam": 1,
		"scores": {
			"Jon_99":      {"kills": 20, "deaths": 2, "assists": 5, "score": 2500, "team": 1},
			"MasterChief": {"kills": 15, "deaths": 5, "assists": 10, "score": 2000, "team": 1},
			"Cortana":     {"kills": 3, "deaths": 12, "assists": 1, "score": 400, "team": 2},
			"Arbiter":     {"kills": 1, "deaths": 10, "assists": 0, "score": 200, "team": 2},
			"ghost":       null
		}
	}`), 0o600))

	output, err := cli.run("game", "record", "--file", payload, "--map", "Lockout")
	require.NoError(t, err, "output: %s", output)
	recorded := decode[response.RecordResult](t, output)
	assert.Len(t, recorded.Game.Scores, 4)
	assert.Equal(t, []string{"ghost"}, recorded.Unread)

	// Handicaps moved
	output, err = cli.run("player", "get", ids["Jon"])
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, 10, decode[response.Player](t, output).Handicap)

	// Balance: the two strong players end up on opposite teams
	output, err = cli.run("teams")
	require.NoError(t, err, "output: %s", output)
	teams := decode[response.Teams](t, output)
	assert.Equal(t, 0, teams.Imbalance)
	assert.Len(t, teams.TeamA, 2)

	// Connections between winning teammates
	output, err = cli.run("stats", "connections")
	require.NoError(t, err, "output: %s", output)
	conns := decode[response.ConnectionList](t, output)
	require.Len(t, conns.Connections, 2)
	assert.Equal(t, "Jon", conns.Connections[0].PlayerAName)
	assert.Equal(t, "Master Chief", conns.Connections[0].PlayerBName)
	assert.Equal(t, 100.0, conns.Connections[0].WinRate)

	// Deleting the game rolls everything back
	output, err = cli.run("game", "delete", recorded.Game.ID)
	require.NoError(t, err, "output: %s", output)
	for _, p := range decode[response.PlayerList](t, output).Players {
		assert.Equal(t, 1, p.Handicap, p.Name)
	}
}

func TestCLI_Errors(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("player", "get", "missing")
	require.Error(t, err)
	assert.Contains(t, output, "PLAYER_NOT_FOUND")

	output, err = cli.run("game", "analyze", "https://example.com/board.png")
	require.Error(t, err)
	assert.Contains(t, output, "EXTRACTION_UNAVAILABLE")
}
