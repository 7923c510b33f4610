package model

import "math"

// MaxStatValue bounds any single kill, death, assist or score value read from
// a scoreboard or entered by hand. Larger inputs are clamped to it.
const MaxStatValue = math.MaxInt32

// RawExtractionEntry is one row read off a scoreboard by the extraction model.
// Fields are nil when the model did not emit them.
type RawExtractionEntry struct {
	Kills   *int
	Deaths  *int
	Assists *int
	Score   *int
	Team    *int
}

// Extraction is a parsed extraction model response
type Extraction struct {
	GameMode    string
	WinningTeam *int
	// Entries maps the declared name to its row. A nil row means the
	// model could not read it.
	Entries map[string]*RawExtractionEntry
}

// ReconciledScore is a single player's result in a game, matched to the roster
type ReconciledScore struct {
	PlayerID PlayerID
	Kills    int
	Deaths   int
	Assists  int
	Score    int
	Team     *int
	Won      bool
}

// IsWin reports whether team is non-nil and equal to winningTeam
func IsWin(team, winningTeam *int) bool {
	return team != nil && winningTeam != nil && *team == *winningTeam
}
