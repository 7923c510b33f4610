// Package handicap derives a player's 1-10 handicap from cumulative totals.
package handicap

import (
	"math"

	"github.com/mcoot/handicap-tracker/internal/model"
)

// KDA is (kills + assists) / deaths, with deaths floored at one.
// Summed in float64 so totals near the int limit cannot wrap.
func KDA(kills, deaths, assists int) float64 {
	return (float64(kills) + float64(assists)) / float64(max(deaths, 1))
}

// Calculate maps cumulative totals onto the handicap scale.
// The result is round(KDA * 2) clamped to [model.MinHandicap, model.MaxHandicap].
// Clamping happens before the int conversion, which is undefined for huge floats.
func Calculate(kills, deaths, assists int) int {
	h := math.Round(KDA(kills, deaths, assists) * 2)
	h = math.Min(math.Max(h, model.MinHandicap), model.MaxHandicap)
	return int(h)
}

// FromTotals is Calculate over a Totals value
func FromTotals(t model.Totals) int {
	return Calculate(t.Kills, t.Deaths, t.Assists)
}

// Apply sets the player's totals and re-derives its handicap
func Apply(p *model.Player, t model.Totals) {
	p.Kills = t.Kills
	p.Deaths = t.Deaths
	p.Assists = t.Assists
	p.Handicap = FromTotals(t)
}

// SumScores totals every score per player
func SumScores(scores []model.ReconciledScore) map[model.PlayerID]model.Totals {
	totals := make(map[model.PlayerID]model.Totals)
	for _, sc := range scores {
		t := totals[sc.PlayerID]
		t.Add(sc.Kills, sc.Deaths, sc.Assists)
		totals[sc.PlayerID] = t
	}
	return totals
}
