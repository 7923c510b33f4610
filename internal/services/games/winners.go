package games

import "github.com/mcoot/handicap-tracker/internal/model"

// Winners returns the players who won the game.
// Free-for-all games are won by everyone tied on the most kills; team games
// by every player on the winning team.
func Winners(g *model.Game) []model.PlayerID {
	winners := []model.PlayerID{}
	if len(g.Scores) == 0 {
		return winners
	}

	if !g.IsTeamGame() {
		most := g.Scores[0].Kills
		for _, sc := range g.Scores[1:] {
			most = max(most, sc.Kills)
		}
		for _, sc := range g.Scores {
			if sc.Kills == most {
				winners = append(winners, sc.PlayerID)
			}
		}
		return winners
	}

	for _, sc := range g.Scores {
		if sc.Won {
			winners = append(winners, sc.PlayerID)
		}
	}
	return winners
}
