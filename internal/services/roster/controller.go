// Package roster manages the player list and builds balanced teams from it.
package roster

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mcoot/handicap-tracker/internal/dependencies/clock"
	"github.com/mcoot/handicap-tracker/internal/dependencies/ids"
	"github.com/mcoot/handicap-tracker/internal/metrics"
	"github.com/mcoot/handicap-tracker/internal/model"
	"github.com/mcoot/handicap-tracker/internal/services/balance"
	"github.com/mcoot/handicap-tracker/internal/services/matching"
	"github.com/mcoot/handicap-tracker/internal/storage"
)

// Controller manages roster membership and selection
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewController creates a new roster Controller
func NewController(
	storage storage.Storage,
	clock clock.Clock,
	ids ids.Generator,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		ids:     ids,
		metrics: metrics,
		logger:  logger,
	}
}

// AddPlayer registers a new player. Names are trimmed and must be unique
// once case and punctuation are ignored, since that is how scoreboards are matched.
func (c *Controller) AddPlayer(ctx context.Context, name string) (*model.Player, error) {
	name = strings.TrimSpace(name)
	if err := c.checkName(ctx, name, ""); err != nil {
		return nil, err
	}

	player := model.NewPlayer(model.PlayerID(c.ids.NewID()), name, c.clock.Now())
	if err := c.storage.SavePlayer(ctx, player); err != nil {
		c.logger.Error("failed to save player",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("player added",
		slog.String("player_id", string(player.ID)),
		slog.String("name", player.Name),
	)
	return player, nil
}

// ListPlayers returns the roster in creation order
func (c *Controller) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	return c.storage.ListPlayers(ctx)
}

// Roster returns the roster as values, for matching and balancing
func (c *Controller) Roster(ctx context.Context) ([]model.Player, error) {
	players, err := c.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Player, len(players))
	for i, p := range players {
		out[i] = *p
	}
	return out, nil
}

// GetPlayer retrieves a player by ID
func (c *Controller) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return c.storage.GetPlayer(ctx, id)
}

// RenamePlayer changes a player's display name
func (c *Controller) RenamePlayer(ctx context.Context, id model.PlayerID, name string) (*model.Player, error) {
	player, err := c.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if err := c.checkName(ctx, name, id); err != nil {
		return nil, err
	}

	player.Name = name
	player.UpdatedAt = c.clock.Now()
	if err := c.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

// RemovePlayer deletes a player. Their scores stay on recorded games.
func (c *Controller) RemovePlayer(ctx context.Context, id model.PlayerID) error {
	if _, err := c.storage.GetPlayer(ctx, id); err != nil {
		return err
	}
	if err := c.storage.DeletePlayer(ctx, id); err != nil {
		return err
	}

	c.logger.Info("player removed", slog.String("player_id", string(id)))
	return nil
}

// SetSelected includes or excludes a player from team balancing
func (c *Controller) SetSelected(ctx context.Context, id model.PlayerID, selected bool) (*model.Player, error) {
	player, err := c.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	if player.IsSelected == selected {
		return player, nil
	}

	player.IsSelected = selected
	player.UpdatedAt = c.clock.Now()
	if err := c.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

// ToggleSelected flips a player's selection
func (c *Controller) ToggleSelected(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	player, err := c.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.SetSelected(ctx, id, !player.IsSelected)
}

// SelectAll sets every player's selection to the same value
func (c *Controller) SelectAll(ctx context.Context, selected bool) ([]*model.Player, error) {
	players, err := c.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	for _, p := range players {
		if p.IsSelected == selected {
			continue
		}
		p.IsSelected = selected
		p.UpdatedAt = now
		if err := c.storage.SavePlayer(ctx, p); err != nil {
			return nil, err
		}
	}
	return players, nil
}

// BalanceTeams splits the selected players into two teams.
// The same shuffleKey always gives the same split for the same roster.
func (c *Controller) BalanceTeams(ctx context.Context, shuffleKey int) (balance.Result, error) {
	players, err := c.Roster(ctx)
	if err != nil {
		return balance.Result{}, err
	}

	result := balance.Balance(players, shuffleKey)
	if result.InsufficientPlayers {
		c.logger.Info("not enough players selected to balance", slog.Int("shuffle_key", shuffleKey))
		return result, nil
	}

	c.metrics.ObserveBalance(result.Iterations, result.Imbalance)
	c.logger.Info("teams balanced",
		slog.Int("shuffle_key", shuffleKey),
		slog.Int("team_a", result.SumA),
		slog.Int("team_b", result.SumB),
		slog.Int("iterations", result.Iterations),
		slog.Bool("repair_limit_reached", result.RepairLimitReached),
	)
	return result, nil
}

// checkName validates a trimmed name against the roster, ignoring the player being renamed
func (c *Controller) checkName(ctx context.Context, name string, self model.PlayerID) error {
	normalized := matching.Normalize(name)
	if normalized == "" {
		return model.ErrInvalidPlayerName
	}

	players, err := c.storage.ListPlayers(ctx)
	if err != nil {
		return err
	}
	for _, p := range players {
		if p.ID != self && matching.Normalize(p.Name) == normalized {
			return model.ErrDuplicatePlayerName
		}
	}
	return nil
}
