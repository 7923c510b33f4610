// Package stats computes per-player and pairwise analytics over recorded games.
package stats

import (
	"math"
	"sort"

	"github.com/mcoot/handicap-tracker/internal/model"
	"github.com/mcoot/handicap-tracker/internal/services/handicap"
)

// WeightedKDA values an assist as a third of a kill: (k + a/3) / max(d, 1)
func WeightedKDA(kills, deaths, assists int) float64 {
	return (float64(kills) + float64(assists)/3) / float64(max(deaths, 1))
}

// WinRate is wins as a percentage of games, or 0 with no games
func WinRate(wins, games int) float64 {
	if games == 0 {
		return 0
	}
	return float64(wins) / float64(games) * 100
}

// PlayerStats summarises one player's recorded games
type PlayerStats struct {
	PlayerID    model.PlayerID
	Name        string
	Handicap    int
	GamesPlayed int
	Wins        int
	WinRate     float64
	AvgKills    float64
	AvgDeaths   float64
	AvgAssists  float64
	KDA         float64 // (k + a) / max(d, 1) over all games
	WeightedKDA float64
	TeamKDA     float64 // Weighted KDA in team games only
	SoloKDA     float64 // Weighted KDA in free-for-all games only
}

// ForPlayers computes stats for every player, in roster order.
// Players with no games get zeroed averages.
func ForPlayers(players []*model.Player, games []*model.Game) []PlayerStats {
	type acc struct {
		games, wins    int
		all, team, ffa model.Totals
	}
	byPlayer := make(map[model.PlayerID]*acc, len(players))
	for _, p := range players {
		byPlayer[p.ID] = &acc{}
	}

	for _, g := range games {
		for _, sc := range g.Scores {
			a, ok := byPlayer[sc.PlayerID]
			if !ok {
				continue
			}
			a.games++
			if sc.Won {
				a.wins++
			}
			a.all.Add(sc.Kills, sc.Deaths, sc.Assists)
			if g.IsTeamGame() {
				a.team.Add(sc.Kills, sc.Deaths, sc.Assists)
			} else {
				a.ffa.Add(sc.Kills, sc.Deaths, sc.Assists)
			}
		}
	}

	out := make([]PlayerStats, 0, len(players))
	for _, p := range players {
		a := byPlayer[p.ID]
		n := float64(max(a.games, 1))
		out = append(out, PlayerStats{
			PlayerID:    p.ID,
			Name:        p.Name,
			Handicap:    p.Handicap,
			GamesPlayed: a.games,
			Wins:        a.wins,
			WinRate:     round2(WinRate(a.wins, a.games)),
			AvgKills:    round2(float64(a.all.Kills) / n),
			AvgDeaths:   round2(float64(a.all.Deaths) / n),
			AvgAssists:  round2(float64(a.all.Assists) / n),
			KDA:         round2(handicap.KDA(a.all.Kills, a.all.Deaths, a.all.Assists)),
			WeightedKDA: round2(WeightedKDA(a.all.Kills, a.all.Deaths, a.all.Assists)),
			TeamKDA:     round2(WeightedKDA(a.team.Kills, a.team.Deaths, a.team.Assists)),
			SoloKDA:     round2(WeightedKDA(a.ffa.Kills, a.ffa.Deaths, a.ffa.Assists)),
		})
	}
	return out
}

// Connection is how two players do when they share a team
type Connection struct {
	PlayerA     model.PlayerID
	PlayerB     model.PlayerID
	GamesPlayed int
	Wins        int
	WinRate     float64
	AvgKDA      float64 // Mean weighted KDA of the pair across their shared games
}

// Connections pairs up every two roster players who were on the same team
// in at least minGames games. Pairs follow roster order; free-for-all games
// and scores without a team never count.
func Connections(players []*model.Player, games []*model.Game, minGames int) []Connection {
	minGames = max(minGames, 1)

	index := make(map[model.PlayerID]int, len(players))
	for i, p := range players {
		index[p.ID] = i
	}

	type pair struct{ a, b int }
	type acc struct {
		games, wins int
		kdaSum      float64
	}
	pairs := make(map[pair]*acc)

	for _, g := range games {
		if !g.IsTeamGame() {
			continue
		}
		for i := 0; i < len(g.Scores); i++ {
			for j := i + 1; j < len(g.Scores); j++ {
				x, y := g.Scores[i], g.Scores[j]
				if x.Team == nil || y.Team == nil || *x.Team != *y.Team {
					continue
				}
				xi, okX := index[x.PlayerID]
				yi, okY := index[y.PlayerID]
				if !okX || !okY {
					continue
				}
				if xi > yi {
					xi, yi = yi, xi
				}

				k := pair{xi, yi}
				a, ok := pairs[k]
				if !ok {
					a = &acc{}
					pairs[k] = a
				}
				a.games++
				if x.Won {
					a.wins++
				}
				a.kdaSum += (WeightedKDA(x.Kills, x.Deaths, x.Assists) + WeightedKDA(y.Kills, y.Deaths, y.Assists)) / 2
			}
		}
	}

	out := []Connection{}
	for k, a := range pairs {
		if a.games < minGames {
			continue
		}
		out = append(out, Connection{
			PlayerA:     players[k.a].ID,
			PlayerB:     players[k.b].ID,
			GamesPlayed: a.games,
			Wins:        a.wins,
			WinRate:     round2(WinRate(a.wins, a.games)),
			AvgKDA:      round2(a.kdaSum / float64(a.games)),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		ai, aj := index[out[i].PlayerA], index[out[j].PlayerA]
		if ai != aj {
			return ai < aj
		}
		return index[out[i].PlayerB] < index[out[j].PlayerB]
	})
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
