package storage

import (
	"context"
	"sort"

	"github.com/mcoot/handicap-tracker/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	// ListPlayers returns the roster in creation order
	ListPlayers(ctx context.Context) ([]*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Game operations
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	// ListGames returns every recorded game, newest first
	ListGames(ctx context.Context) ([]*model.Game, error)
	DeleteGame(ctx context.Context, id model.GameID) error

	// ListScoresForPlayer returns every stored score belonging to the player
	ListScoresForPlayer(ctx context.Context, id model.PlayerID) ([]model.ReconciledScore, error)
}

// SortPlayers orders players by creation time, then ID
func SortPlayers(players []*model.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		if !players[i].CreatedAt.Equal(players[j].CreatedAt) {
			return players[i].CreatedAt.Before(players[j].CreatedAt)
		}
		return players[i].ID < players[j].ID
	})
}

// SortGames orders games newest first, then by ID
func SortGames(games []*model.Game) {
	sort.SliceStable(games, func(i, j int) bool {
		if !games[i].CreatedAt.Equal(games[j].CreatedAt) {
			return games[i].CreatedAt.After(games[j].CreatedAt)
		}
		return games[i].ID < games[j].ID
	})
}
