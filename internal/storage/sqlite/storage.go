// Package sqlite is a single-file persistent storage backend.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mcoot/handicap-tracker/internal/model"
	"github.com/mcoot/handicap-tracker/internal/storage"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Open opens or creates the database at path and applies migrations.
// ":memory:" gives a private in-memory database.
func Open(path string) (*Storage, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases coherent and serializes writers
	db.SetMaxOpenConns(1)

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return s, nil
}

// Close closes the underlying database
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate() error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			kills INTEGER NOT NULL,
			deaths INTEGER NOT NULL,
			assists INTEGER NOT NULL,
			handicap INTEGER NOT NULL,
			is_selected INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			game_mode TEXT NOT NULL,
			map TEXT NOT NULL,
			screenshot_url TEXT NOT NULL,
			winning_team INTEGER,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS game_scores (
			game_id TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			player_id TEXT NOT NULL,
			kills INTEGER NOT NULL,
			deaths INTEGER NOT NULL,
			assists INTEGER NOT NULL,
			score INTEGER NOT NULL,
			team INTEGER,
			won INTEGER NOT NULL,
			PRIMARY KEY (game_id, player_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_players_created_at ON players(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_games_created_at ON games(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_game_scores_player ON game_scores(player_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, p *model.Player) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO players (id, name, kills, deaths, assists, handicap, is_selected, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kills = excluded.kills,
			deaths = excluded.deaths,
			assists = excluded.assists,
			handicap = excluded.handicap,
			is_selected = excluded.is_selected,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		string(p.ID), p.Name, p.Kills, p.Deaths, p.Assists, p.Handicap, p.IsSelected,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	return err
}

const playerColumns = `id, name, kills, deaths, assists, handicap, is_selected, created_at, updated_at`

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, string(id))
	p, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	return p, err
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+playerColumns+` FROM players`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	players := []*model.Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Text timestamps do not sort chronologically across offsets
	storage.SortPlayers(players)
	return players, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, string(id))
	return err
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, g *model.Game) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO games (id, game_mode, map, screenshot_url, winning_team, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			game_mode = excluded.game_mode,
			map = excluded.map,
			screenshot_url = excluded.screenshot_url,
			winning_team = excluded.winning_team,
			created_at = excluded.created_at`,
		string(g.ID), g.GameMode, g.Map, g.ScreenshotURL, nullInt(g.WinningTeam), formatTime(g.CreatedAt),
	); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM game_scores WHERE game_id = ?`, string(g.ID)); err != nil {
		return err
	}

	if len(g.Scores) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO game_scores (game_id, position, player_id, kills, deaths, assists, score, team, won)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for i, sc := range g.Scores {
			if _, err := stmt.ExecContext(ctx,
				string(g.ID), i, string(sc.PlayerID), sc.Kills, sc.Deaths, sc.Assists, sc.Score, nullInt(sc.Team), sc.Won,
			); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, game_mode, map, screenshot_url, winning_team, created_at FROM games WHERE id = ?`, string(id))
	g, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}

	scores, err := s.queryScores(ctx, `WHERE game_id = ?`, string(id))
	if err != nil {
		return nil, err
	}
	g.Scores = scores[g.ID]
	return g, nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_mode, map, screenshot_url, winning_team, created_at FROM games`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	games := []*model.Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	scores, err := s.queryScores(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, g := range games {
		g.Scores = scores[g.ID]
	}

	storage.SortGames(games)
	return games, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, string(id))
	return err
}

// Score operations

func (s *Storage) ListScoresForPlayer(ctx context.Context, id model.PlayerID) ([]model.ReconciledScore, error) {
	byGame, err := s.queryScores(ctx, `WHERE player_id = ?`, string(id))
	if err != nil {
		return nil, err
	}

	scores := []model.ReconciledScore{}
	for _, gameScores := range byGame {
		scores = append(scores, gameScores...)
	}
	return scores, nil
}

// queryScores loads score rows grouped by game, in recorded order
func (s *Storage) queryScores(ctx context.Context, where string, args ...any) (map[model.GameID][]model.ReconciledScore, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT game_id, player_id, kills, deaths, assists, score, team, won
		 FROM game_scores `+where+` ORDER BY game_id, position`, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[model.GameID][]model.ReconciledScore)
	for rows.Next() {
		var (
			gameID, playerID string
			sc               model.ReconciledScore
			team             sql.NullInt64
		)
		if err := rows.Scan(&gameID, &playerID, &sc.Kills, &sc.Deaths, &sc.Assists, &sc.Score, &team, &sc.Won); err != nil {
			return nil, err
		}
		sc.PlayerID = model.PlayerID(playerID)
		sc.Team = intFromNull(team)
		out[model.GameID(gameID)] = append(out[model.GameID(gameID)], sc)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row scanner) (*model.Player, error) {
	var (
		p                    model.Player
		id                   string
		createdAt, updatedAt string
	)
	if err := row.Scan(&id, &p.Name, &p.Kills, &p.Deaths, &p.Assists, &p.Handicap, &p.IsSelected, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.ID = model.PlayerID(id)

	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanGame(row scanner) (*model.Game, error) {
	var (
		g           model.Game
		id          string
		winningTeam sql.NullInt64
		createdAt   string
	)
	if err := row.Scan(&id, &g.GameMode, &g.Map, &g.ScreenshotURL, &winningTeam, &createdAt); err != nil {
		return nil, err
	}
	g.ID = model.GameID(id)
	g.WinningTeam = intFromNull(winningTeam)

	var err error
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &g, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intFromNull(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
