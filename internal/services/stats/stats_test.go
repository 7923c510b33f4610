package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/handicap-tracker/internal/model"
)

func intPtr(v int) *int {
	return &v
}

func TestWeightedKDA(t *testing.T) {
	assert.InDelta(t, 4.0, WeightedKDA(9, 3, 3), 1e-9)
	assert.InDelta(t, 3.0, WeightedKDA(2, 0, 3), 1e-9)
	assert.Equal(t, 0.0, WeightedKDA(0, 4, 0))
}

func TestWinRate(t *testing.T) {
	assert.Equal(t, 0.0, WinRate(0, 0))
	assert.Equal(t, 50.0, WinRate(2, 4))
	assert.Equal(t, 100.0, WinRate(3, 3))
}

type StatsSuite struct {
	suite.Suite
	players []*model.Player
	games   []*model.Game
}

func TestStatsSuite(t *testing.T) {
	suite.Run(t, new(StatsSuite))
}

func (s *StatsSuite) SetupTest() {
	s.players = []*model.Player{
		{ID: "a", Name: "Alpha", Handicap: 4},
		{ID: "b", Name: "Bravo", Handicap: 2},
		{ID: "c", Name: "Charlie", Handicap: 1},
	}
	s.games = []*model.Game{
		{
			ID:          "g1",
			GameMode:    model.GameModeTeamSlayer,
			WinningTeam: intPtr(1),
			Scores: []model.ReconciledScore{
				{PlayerID: "a", Kills: 10, Deaths: 2, Assists: 3, Team: intPtr(1), Won: true},
				{PlayerID: "b", Kills: 4, Deaths: 4, Assists: 0, Team: intPtr(1), Won: true},
				{PlayerID: "c", Kills: 2, Deaths: 8, Assists: 1, Team: intPtr(2)},
			},
		},
		{
			ID:       "g2",
			GameMode: model.GameModeSlayer,
			Scores: []model.ReconciledScore{
				{PlayerID: "a", Kills: 6, Deaths: 6, Assists: 0},
				{PlayerID: "b", Kills: 8, Deaths: 2, Assists: 0},
				{PlayerID: "ghost", Kills: 50},
			},
		},
		{
			ID:          "g3",
			GameMode:    model.GameModeTeamSlayer,
			WinningTeam: intPtr(2),
			Scores: []model.ReconciledScore{
				{PlayerID: "a", Kills: 5, Deaths: 5, Assists: 0, Team: intPtr(1)},
				{PlayerID: "b", Kills: 5, Deaths: 5, Assists: 0, Team: intPtr(1)},
				{PlayerID: "c", Kills: 5, Deaths: 5, Assists: 0, Team: intPtr(2), Won: true},
			},
		},
	}
}

func (s *StatsSuite) TestForPlayers() {
	stats := ForPlayers(s.players, s.games)
	s.Require().Len(stats, 3)

	a := stats[0]
	s.Equal(model.PlayerID("a"), a.PlayerID)
	s.Equal("Alpha", a.Name)
	s.Equal(4, a.Handicap)
	s.Equal(3, a.GamesPlayed)
	s.Equal(1, a.Wins)
	s.Equal(33.33, a.WinRate)
	s.Equal(7.0, a.AvgKills)     // 21 / 3
	s.Equal(4.33, a.AvgDeaths)   // 13 / 3
	s.Equal(1.0, a.AvgAssists)   // 3 / 3
	s.Equal(1.85, a.KDA)         // 24 / 13
	s.Equal(1.69, a.WeightedKDA) // 22 / 13
	s.Equal(2.29, a.TeamKDA)     // 16 / 7
	s.Equal(1.0, a.SoloKDA)      // 6 / 6
}

func (s *StatsSuite) TestForPlayersWithoutGames() {
	players := append(s.players, &model.Player{ID: "d", Name: "Delta", Handicap: 1})

	stats := ForPlayers(players, s.games)
	d := stats[3]
	s.Equal(0, d.GamesPlayed)
	s.Equal(0.0, d.WinRate)
	s.Equal(0.0, d.AvgKills)
	s.Equal(0.0, d.KDA)
}

func (s *StatsSuite) TestConnections() {
	conns := Connections(s.players, s.games, 1)

	// Only a and b ever shared a team
	s.Require().Len(conns, 1)
	c := conns[0]
	s.Equal(model.PlayerID("a"), c.PlayerA)
	s.Equal(model.PlayerID("b"), c.PlayerB)
	s.Equal(2, c.GamesPlayed)
	s.Equal(1, c.Wins)
	s.Equal(50.0, c.WinRate)
	// g1: (11/2 + 4/4) / 2 = 3.25, g3: (1 + 1) / 2 = 1
	s.Equal(2.13, c.AvgKDA)
}

func (s *StatsSuite) TestConnectionsMinGames() {
	s.Empty(Connections(s.players, s.games, 3))
	s.Len(Connections(s.players, s.games, 2), 1)
	s.Len(Connections(s.players, s.games, 0), 1)
}

func TestConnectionsFollowRosterOrder(t *testing.T) {
	players := []*model.Player{{ID: "z"}, {ID: "y"}, {ID: "x"}}
	games := []*model.Game{{
		GameMode: model.GameModeTeamSlayer,
		Scores: []model.ReconciledScore{
			{PlayerID: "x", Team: intPtr(1)},
			{PlayerID: "y", Team: intPtr(1)},
			{PlayerID: "z", Team: intPtr(1)},
		},
	}}

	conns := Connections(players, games, 1)
	require.Len(t, conns, 3)
	assert.Equal(t, model.PlayerID("z"), conns[0].PlayerA)
	assert.Equal(t, model.PlayerID("y"), conns[0].PlayerB)
	assert.Equal(t, model.PlayerID("z"), conns[1].PlayerA)
	assert.Equal(t, model.PlayerID("x"), conns[1].PlayerB)
	assert.Equal(t, model.PlayerID("y"), conns[2].PlayerA)
	assert.Equal(t, model.PlayerID("x"), conns[2].PlayerB)
}
