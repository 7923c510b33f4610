// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/handicap-tracker/internal/model"
	"github.com/mcoot/handicap-tracker/internal/storage"
)

// Suite runs the common storage tests against the backend returned by NewStorage.
// Backends embed it and set NewStorage in their own SetupTest.
type Suite struct {
	suite.Suite
	NewStorage func() storage.Storage

	Storage storage.Storage
	Ctx     context.Context
	base    time.Time
}

func (s *Suite) SetupTest() {
	s.Require().NotNil(s.NewStorage, "NewStorage must be set before SetupTest")
	s.Storage = s.NewStorage()
	s.Ctx = context.Background()
	s.base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int {
	return &v
}

func (s *Suite) player(id, name string, offset time.Duration) *model.Player {
	p := model.NewPlayer(model.PlayerID(id), name, s.base.Add(offset))
	return p
}

func (s *Suite) game(id string, offset time.Duration, scores ...model.ReconciledScore) *model.Game {
	return &model.Game{
		ID:          model.GameID(id),
		GameMode:    model.GameModeTeamSlayer,
		Map:         "Lockout",
		WinningTeam: intPtr(1),
		Scores:      scores,
		CreatedAt:   s.base.Add(offset),
	}
}

// Player tests

func (s *Suite) TestSaveAndGetPlayer() {
	p := s.player("p1", "Alice", 0)
	p.Kills, p.Deaths, p.Assists, p.Handicap = 10, 4, 2, 6
	p.IsSelected = false

	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, p))

	got, err := s.Storage.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal("Alice", got.Name)
	s.Equal(10, got.Kills)
	s.Equal(4, got.Deaths)
	s.Equal(2, got.Assists)
	s.Equal(6, got.Handicap)
	s.False(got.IsSelected)
	s.True(p.CreatedAt.Equal(got.CreatedAt))
}

func (s *Suite) TestSavePlayerOverwrites() {
	p := s.player("p1", "Alice", 0)
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, p))

	p.Name = "Alicia"
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, p))

	got, err := s.Storage.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal("Alicia", got.Name)

	all, err := s.Storage.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Storage.GetPlayer(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestReturnedPlayerIsDetached() {
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, s.player("p1", "Alice", 0)))

	got, err := s.Storage.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	got.Name = "changed"

	again, err := s.Storage.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal("Alice", again.Name)
}

func (s *Suite) TestListPlayersInCreationOrder() {
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, s.player("c", "Carol", 2*time.Minute)))
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, s.player("a", "Alice", 0)))
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, s.player("b", "Bob", time.Minute)))

	players, err := s.Storage.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 3)
	s.Equal(model.PlayerID("a"), players[0].ID)
	s.Equal(model.PlayerID("b"), players[1].ID)
	s.Equal(model.PlayerID("c"), players[2].ID)
}

func (s *Suite) TestListPlayersEmpty() {
	players, err := s.Storage.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.NotNil(players)
	s.Empty(players)
}

func (s *Suite) TestDeletePlayer() {
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, s.player("p1", "Alice", 0)))

	s.Require().NoError(s.Storage.DeletePlayer(s.Ctx, "p1"))

	_, err := s.Storage.GetPlayer(s.Ctx, "p1")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	players, err := s.Storage.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Empty(players)
}

func (s *Suite) TestDeleteMissingPlayerIsNoop() {
	s.NoError(s.Storage.DeletePlayer(s.Ctx, "nonexistent"))
}

// Game tests

func (s *Suite) TestSaveAndGetGame() {
	g := s.game("g1", 0,
		model.ReconciledScore{PlayerID: "p1", Kills: 10, Deaths: 2, Assists: 3, Score: 1200, Team: intPtr(1), Won: true},
		model.ReconciledScore{PlayerID: "p2", Kills: 4, Deaths: 6},
	)
	g.ScreenshotURL = "https://example.com/shot.png"

	s.Require().NoError(s.Storage.SaveGame(s.Ctx, g))

	got, err := s.Storage.GetGame(s.Ctx, "g1")
	s.Require().NoError(err)
	s.Equal(model.GameModeTeamSlayer, got.GameMode)
	s.Equal("Lockout", got.Map)
	s.Equal("https://example.com/shot.png", got.ScreenshotURL)
	s.Require().NotNil(got.WinningTeam)
	s.Equal(1, *got.WinningTeam)
	s.True(g.CreatedAt.Equal(got.CreatedAt))
	s.Require().Len(got.Scores, 2)

	first := got.ScoreFor("p1")
	s.Require().NotNil(first)
	s.Equal(10, first.Kills)
	s.Equal(1200, first.Score)
	s.Require().NotNil(first.Team)
	s.Equal(1, *first.Team)
	s.True(first.Won)

	second := got.ScoreFor("p2")
	s.Require().NotNil(second)
	s.Nil(second.Team)
	s.False(second.Won)
}

func (s *Suite) TestGameWithoutWinningTeam() {
	g := s.game("g1", 0, model.ReconciledScore{PlayerID: "p1"})
	g.WinningTeam = nil
	g.GameMode = model.GameModeSlayer

	s.Require().NoError(s.Storage.SaveGame(s.Ctx, g))

	got, err := s.Storage.GetGame(s.Ctx, "g1")
	s.Require().NoError(err)
	s.Nil(got.WinningTeam)
	s.False(got.IsTeamGame())
}

func (s *Suite) TestGetGameNotFound() {
	_, err := s.Storage.GetGame(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestListGamesNewestFirst() {
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, s.game("old", 0)))
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, s.game("new", 2*time.Hour)))
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, s.game("mid", time.Hour)))

	games, err := s.Storage.ListGames(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(games, 3)
	s.Equal(model.GameID("new"), games[0].ID)
	s.Equal(model.GameID("mid"), games[1].ID)
	s.Equal(model.GameID("old"), games[2].ID)
}

func (s *Suite) TestDeleteGame() {
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, s.game("g1", 0, model.ReconciledScore{PlayerID: "p1", Kills: 3})))

	s.Require().NoError(s.Storage.DeleteGame(s.Ctx, "g1"))

	_, err := s.Storage.GetGame(s.Ctx, "g1")
	s.ErrorIs(err, model.ErrGameNotFound)

	scores, err := s.Storage.ListScoresForPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Empty(scores)
}

// Score tests

func (s *Suite) TestListScoresForPlayer() {
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, s.game("g1", 0,
		model.ReconciledScore{PlayerID: "p1", Kills: 3, Deaths: 1},
		model.ReconciledScore{PlayerID: "p2", Kills: 9},
	)))
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, s.game("g2", time.Hour,
		model.ReconciledScore{PlayerID: "p1", Kills: 5, Assists: 2},
	)))
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, s.game("g3", 2*time.Hour,
		model.ReconciledScore{PlayerID: "p2", Kills: 1},
	)))

	scores, err := s.Storage.ListScoresForPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Require().Len(scores, 2)

	total := model.Totals{}
	for _, sc := range scores {
		s.Equal(model.PlayerID("p1"), sc.PlayerID)
		total.Add(sc.Kills, sc.Deaths, sc.Assists)
	}
	s.Equal(model.Totals{Kills: 8, Deaths: 1, Assists: 2}, total)
}

func (s *Suite) TestListScoresForUnknownPlayer() {
	scores, err := s.Storage.ListScoresForPlayer(s.Ctx, "nobody")
	s.Require().NoError(err)
	s.NotNil(scores)
	s.Empty(scores)
}

func (s *Suite) TestResavingGameReplacesScores() {
	g := s.game("g1", 0,
		model.ReconciledScore{PlayerID: "p1", Kills: 3},
		model.ReconciledScore{PlayerID: "p2", Kills: 4},
	)
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, g))

	g.Scores = []model.ReconciledScore{{PlayerID: "p2", Kills: 7}}
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, g))

	p1, err := s.Storage.ListScoresForPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Empty(p1)

	p2, err := s.Storage.ListScoresForPlayer(s.Ctx, "p2")
	s.Require().NoError(err)
	s.Require().Len(p2, 1)
	s.Equal(7, p2[0].Kills)
}
