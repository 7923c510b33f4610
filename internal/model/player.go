package model

import (
	"math"
	"time"
)

// PlayerID uniquely identifies a player on the roster
type PlayerID string

// Handicap bounds
const (
	MinHandicap = 1
	MaxHandicap = 10
)

// Player is a roster entry with cumulative stats across all recorded games
type Player struct {
	ID         PlayerID
	Name       string
	Kills      int
	Deaths     int
	Assists    int
	Handicap   int  // Derived from cumulative totals, never set directly by callers
	IsSelected bool // Included in team balancing
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewPlayer creates a roster entry with zero totals and the minimum handicap
func NewPlayer(id PlayerID, name string, now time.Time) *Player {
	return &Player{
		ID:         id,
		Name:       name,
		Handicap:   MinHandicap,
		IsSelected: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Totals holds cumulative kill/death/assist counts
type Totals struct {
	Kills   int
	Deaths  int
	Assists int
}

// Add accumulates a single game's numbers, saturating at math.MaxInt
func (t *Totals) Add(kills, deaths, assists int) {
	t.Kills = saturatingAdd(t.Kills, kills)
	t.Deaths = saturatingAdd(t.Deaths, deaths)
	t.Assists = saturatingAdd(t.Assists, assists)
}

func saturatingAdd(a, b int) int {
	if b > 0 && a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}
