// Package games records reconciled games and keeps player totals in step with them.
package games

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/handicap-tracker/internal/dependencies/clock"
	"github.com/mcoot/handicap-tracker/internal/dependencies/ids"
	"github.com/mcoot/handicap-tracker/internal/extraction"
	"github.com/mcoot/handicap-tracker/internal/metrics"
	"github.com/mcoot/handicap-tracker/internal/model"
	"github.com/mcoot/handicap-tracker/internal/services/handicap"
	"github.com/mcoot/handicap-tracker/internal/services/reconcile"
	"github.com/mcoot/handicap-tracker/internal/storage"
)

// ManualScore is a score entered by hand for a known player
type ManualScore struct {
	PlayerID model.PlayerID
	Kills    int
	Deaths   int
	Assists  int
	Score    int
	Team     *int
}

// RecordRequest is a game to record. Exactly one of Payload or Scores is used;
// Payload wins when both are set.
type RecordRequest struct {
	Payload       []byte        // Raw extraction model output
	Scores        []ManualScore // Already-matched scores
	GameMode      string        // Overrides the payload's mode when set
	WinningTeam   *int          // Overrides the payload's winning team when set
	Map           string
	ScreenshotURL string
}

// AnalyzeRequest is a screenshot to extract and record
type AnalyzeRequest struct {
	ImageURL    string
	Map         string
	WinningTeam *int
}

// ScoreEdit changes a recorded score. Nil fields keep their current value.
type ScoreEdit struct {
	Kills   *int
	Deaths  *int
	Assists *int
	Score   *int
	Team    *int
}

// GameUpdate is an edited game and the players whose totals were re-derived
type GameUpdate struct {
	Game    *model.Game
	Players []*model.Player
}

// RecordResult is a stored game plus what was dropped on the way
type RecordResult struct {
	Game      *model.Game
	Unmatched []string
	Unread    []string
	Players   []*model.Player // Players whose totals changed
}

// Controller records games and re-derives player handicaps from history
type Controller struct {
	storage    storage.Storage
	reconciler *reconcile.Service
	extractor  extraction.Extractor
	clock      clock.Clock
	ids        ids.Generator
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewController creates a new games Controller. extractor may be nil,
// in which case AnalyzeScreenshot reports model.ErrExtractionUnavailable.
func NewController(
	storage storage.Storage,
	reconciler *reconcile.Service,
	extractor extraction.Extractor,
	clock clock.Clock,
	ids ids.Generator,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:    storage,
		reconciler: reconciler,
		extractor:  extractor,
		clock:      clock,
		ids:        ids,
		metrics:    metrics,
		logger:     logger,
	}
}

// RecordGame reconciles and stores a game, then refreshes the totals and
// handicap of every player in it.
func (c *Controller) RecordGame(ctx context.Context, req RecordRequest) (*RecordResult, error) {
	players, err := c.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	roster := make([]model.Player, len(players))
	for i, p := range players {
		roster[i] = *p
	}

	game := &model.Game{
		ID:            model.GameID(c.ids.NewID()),
		GameMode:      strings.TrimSpace(req.GameMode),
		Map:           strings.TrimSpace(req.Map),
		ScreenshotURL: strings.TrimSpace(req.ScreenshotURL),
		WinningTeam:   req.WinningTeam,
		CreatedAt:     c.clock.Now(),
	}
	result := &RecordResult{Game: game}

	switch {
	case len(req.Payload) > 0:
		res, err := c.reconciler.Process(req.Payload, roster, req.WinningTeam)
		if err != nil {
			return nil, err
		}
		if game.GameMode == "" {
			game.GameMode = res.GameMode
		}
		game.WinningTeam = res.WinningTeam
		game.Scores = res.Scores
		result.Unmatched = res.Unmatched
		result.Unread = res.Unread

	case len(req.Scores) > 0:
		scores, err := manualScores(req.Scores, players, req.WinningTeam)
		if err != nil {
			return nil, err
		}
		game.Scores = scores

	default:
		return nil, model.ErrEmptyGame
	}

	if game.GameMode == "" {
		game.GameMode = model.GameModeSlayer
	}
	if len(game.Scores) == 0 {
		return nil, model.ErrNoScoresMatched
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	c.metrics.IncGamesRecorded()

	updated, err := c.refreshPlayers(ctx, playerIDs(game))
	if err != nil {
		return nil, err
	}
	result.Players = updated

	c.logger.Info("game recorded",
		slog.String("game_id", string(game.ID)),
		slog.String("game_mode", game.GameMode),
		slog.Int("scores", len(game.Scores)),
		slog.Int("unmatched", len(result.Unmatched)),
	)
	return result, nil
}

// AnalyzeScreenshot runs the screenshot through the extraction model and records the result
func (c *Controller) AnalyzeScreenshot(ctx context.Context, req AnalyzeRequest) (*RecordResult, error) {
	if c.extractor == nil {
		return nil, model.ErrExtractionUnavailable
	}

	players, err := c.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}

	content, err := c.extractor.Extract(ctx, extraction.Request{
		ImageURL:    req.ImageURL,
		RosterNames: names,
	})
	if err != nil {
		c.logger.Warn("screenshot extraction failed",
			slog.String("image_url", req.ImageURL),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	return c.RecordGame(ctx, RecordRequest{
		Payload:       []byte(content),
		WinningTeam:   req.WinningTeam,
		Map:           req.Map,
		ScreenshotURL: req.ImageURL,
	})
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, id)
}

// ListGames returns every game, newest first
func (c *Controller) ListGames(ctx context.Context) ([]*model.Game, error) {
	return c.storage.ListGames(ctx)
}

// DeleteGame removes a game and re-derives the totals of everyone who played in it
func (c *Controller) DeleteGame(ctx context.Context, id model.GameID) ([]*model.Player, error) {
	game, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.storage.DeleteGame(ctx, id); err != nil {
		return nil, err
	}

	updated, err := c.refreshPlayers(ctx, playerIDs(game))
	if err != nil {
		return nil, err
	}

	c.logger.Info("game deleted", slog.String("game_id", string(id)))
	return updated, nil
}

// UpdateScore corrects one player's numbers in a recorded game.
// Won is re-derived from the team and the game's winning team.
func (c *Controller) UpdateScore(ctx context.Context, gameID model.GameID, playerID model.PlayerID, edit ScoreEdit) (*GameUpdate, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	current := game.ScoreFor(playerID)
	if current == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrScoreNotFound, playerID)
	}

	entry := &model.RawExtractionEntry{
		Kills:   pick(edit.Kills, current.Kills),
		Deaths:  pick(edit.Deaths, current.Deaths),
		Assists: pick(edit.Assists, current.Assists),
		Score:   pick(edit.Score, current.Score),
		Team:    current.Team,
	}
	if edit.Team != nil {
		entry.Team = edit.Team
	}
	*current = reconcile.FromEntry(playerID, entry, game.WinningTeam)

	return c.saveEdited(ctx, game, "score updated", playerID)
}

// AddPlayerToGame adds a roster player who was missing from a recorded game
func (c *Controller) AddPlayerToGame(ctx context.Context, gameID model.GameID, score ManualScore) (*GameUpdate, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if _, err := c.storage.GetPlayer(ctx, score.PlayerID); err != nil {
		return nil, err
	}
	if game.HasPlayer(score.PlayerID) {
		return nil, fmt.Errorf("%w: %s", model.ErrAlreadyInGame, score.PlayerID)
	}

	game.Scores = append(game.Scores, reconcile.FromEntry(score.PlayerID, &model.RawExtractionEntry{
		Kills:   &score.Kills,
		Deaths:  &score.Deaths,
		Assists: &score.Assists,
		Score:   &score.Score,
		Team:    score.Team,
	}, game.WinningTeam))

	return c.saveEdited(ctx, game, "player added to game", score.PlayerID)
}

func (c *Controller) saveEdited(ctx context.Context, game *model.Game, msg string, playerID model.PlayerID) (*GameUpdate, error) {
	reconcile.SortForDisplay(game.Scores)
	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, err
	}

	updated, err := c.refreshPlayers(ctx, []model.PlayerID{playerID})
	if err != nil {
		return nil, err
	}

	c.logger.Info(msg,
		slog.String("game_id", string(game.ID)),
		slog.String("player_id", string(playerID)),
	)
	return &GameUpdate{Game: game, Players: updated}, nil
}

func pick(edit *int, current int) *int {
	if edit != nil {
		return edit
	}
	return &current
}

// RecalculateAll rebuilds every player's totals and handicap from the full game history
func (c *Controller) RecalculateAll(ctx context.Context) ([]*model.Player, error) {
	games, err := c.storage.ListGames(ctx)
	if err != nil {
		return nil, err
	}
	var scores []model.ReconciledScore
	for _, g := range games {
		scores = append(scores, g.Scores...)
	}
	totals := handicap.SumScores(scores)

	players, err := c.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	for _, p := range players {
		handicap.Apply(p, totals[p.ID])
		p.UpdatedAt = now
		if err := c.storage.SavePlayer(ctx, p); err != nil {
			return nil, err
		}
	}

	c.logger.Info("recalculated all handicaps",
		slog.Int("players", len(players)),
		slog.Int("games", len(games)),
	)
	return players, nil
}

// refreshPlayers re-sums each player's stored scores and saves the new handicap.
// Players no longer on the roster are skipped.
func (c *Controller) refreshPlayers(ctx context.Context, ids []model.PlayerID) ([]*model.Player, error) {
	now := c.clock.Now()
	updated := make([]*model.Player, 0, len(ids))
	for _, id := range ids {
		player, err := c.storage.GetPlayer(ctx, id)
		if errors.Is(err, model.ErrPlayerNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		scores, err := c.storage.ListScoresForPlayer(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("list scores for %s: %w", id, err)
		}

		before := player.Handicap
		handicap.Apply(player, handicap.SumScores(scores)[id])
		player.UpdatedAt = now
		if err := c.storage.SavePlayer(ctx, player); err != nil {
			return nil, err
		}

		if before != player.Handicap {
			c.logger.Debug("handicap changed",
				slog.String("player_id", string(id)),
				slog.Int("from", before),
				slog.Int("to", player.Handicap),
			)
		}
		updated = append(updated, player)
	}
	return updated, nil
}

// manualScores validates hand-entered scores against the roster and derives wins
func manualScores(in []ManualScore, players []*model.Player, winningTeam *int) ([]model.ReconciledScore, error) {
	known := make(map[model.PlayerID]bool, len(players))
	for _, p := range players {
		known[p.ID] = true
	}

	byPlayer := make(map[model.PlayerID]int)
	scores := make([]model.ReconciledScore, 0, len(in))
	for _, ms := range in {
		if !known[ms.PlayerID] {
			return nil, fmt.Errorf("%w: %s", model.ErrPlayerNotFound, ms.PlayerID)
		}

		score := reconcile.FromEntry(ms.PlayerID, &model.RawExtractionEntry{
			Kills:   &ms.Kills,
			Deaths:  &ms.Deaths,
			Assists: &ms.Assists,
			Score:   &ms.Score,
			Team:    ms.Team,
		}, winningTeam)

		if idx, ok := byPlayer[ms.PlayerID]; ok {
			scores[idx] = score
			continue
		}
		byPlayer[ms.PlayerID] = len(scores)
		scores = append(scores, score)
	}

	reconcile.SortForDisplay(scores)
	return scores, nil
}

func playerIDs(g *model.Game) []model.PlayerID {
	out := make([]model.PlayerID, len(g.Scores))
	for i, sc := range g.Scores {
		out[i] = sc.PlayerID
	}
	return out
}
