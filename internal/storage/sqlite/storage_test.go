package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/handicap-tracker/internal/model"
	"github.com/mcoot/handicap-tracker/internal/storage"
	"github.com/mcoot/handicap-tracker/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	sqlite *Storage
}

func TestStorageSuite(t *testing.T) {
	s := new(StorageSuite)
	s.NewStorage = func() storage.Storage {
		st, err := Open(filepath.Join(s.T().TempDir(), "hcap.db"))
		s.Require().NoError(err)
		s.sqlite = st
		return st
	}
	suite.Run(t, s)
}

func (s *StorageSuite) TearDownTest() {
	if s.sqlite != nil {
		_ = s.sqlite.Close()
	}
}

func (s *StorageSuite) TestScoresKeepRecordedOrder() {
	g := &model.Game{
		ID:        "g1",
		CreatedAt: time.Now(),
		Scores: []model.ReconciledScore{
			{PlayerID: "zed", Score: 900},
			{PlayerID: "amy", Score: 500},
			{PlayerID: "mo", Score: 100},
		},
	}
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, g))

	got, err := s.Storage.GetGame(s.Ctx, "g1")
	s.Require().NoError(err)
	s.Require().Len(got.Scores, 3)
	s.Equal(model.PlayerID("zed"), got.Scores[0].PlayerID)
	s.Equal(model.PlayerID("amy"), got.Scores[1].PlayerID)
	s.Equal(model.PlayerID("mo"), got.Scores[2].PlayerID)
}

func TestDataSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "hcap.db")

	st, err := Open(path)
	require.NoError(t, err)
	p := model.NewPlayer("p1", "Alice", time.Date(2025, 1, 2, 3, 4, 5, 6000, time.UTC))
	require.NoError(t, st.SavePlayer(t.Context(), p))
	require.NoError(t, st.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetPlayer(t.Context(), "p1")
	require.NoError(t, err)
	require.Equal(t, "Alice", got.Name)
	require.True(t, p.CreatedAt.Equal(got.CreatedAt))
}

func TestOpenInMemory(t *testing.T) {
	st, err := Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	players, err := st.ListPlayers(t.Context())
	require.NoError(t, err)
	require.Empty(t, players)
}
