package model

import "time"

// GameID uniquely identifies a recorded game
type GameID string

// Game modes reported by the extraction model
const (
	GameModeSlayer     = "Slayer"      // Free-for-all, winner by kills
	GameModeTeamSlayer = "Team Slayer" // Two teams, winner by declared team
)

// Game is a recorded match with its reconciled scores
type Game struct {
	ID            GameID
	GameMode      string
	Map           string
	ScreenshotURL string
	WinningTeam   *int
	Scores        []ReconciledScore
	CreatedAt     time.Time
}

// IsTeamGame returns true unless the game is free-for-all
func (g *Game) IsTeamGame() bool {
	return g.GameMode != GameModeSlayer
}

// ScoreFor returns the score for the given player, or nil if they did not play
func (g *Game) ScoreFor(playerID PlayerID) *ReconciledScore {
	for i := range g.Scores {
		if g.Scores[i].PlayerID == playerID {
			return &g.Scores[i]
		}
	}
	return nil
}

// HasPlayer returns true if the player has a score in this game
func (g *Game) HasPlayer(playerID PlayerID) bool {
	return g.ScoreFor(playerID) != nil
}
