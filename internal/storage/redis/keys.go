package redis

import (
	"fmt"

	"github.com/mcoot/handicap-tracker/internal/model"
)

// keys builds every Redis key under a common prefix
type keys struct {
	prefix string
}

// player returns the key holding a Player as JSON
func (k keys) player(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", k.prefix, id)
}

// playerIndex is a sorted set of player IDs scored by creation time
func (k keys) playerIndex() string {
	return fmt.Sprintf("%s:idx:players", k.prefix)
}

// game returns the key holding a Game as JSON
func (k keys) game(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", k.prefix, id)
}

// gameIndex is a sorted set of game IDs scored by creation time
func (k keys) gameIndex() string {
	return fmt.Sprintf("%s:idx:games", k.prefix)
}

// gamesForPlayer is the set of game IDs the player has a score in
func (k keys) gamesForPlayer(id model.PlayerID) string {
	return fmt.Sprintf("%s:idx:games_for_player:%s", k.prefix, id)
}
