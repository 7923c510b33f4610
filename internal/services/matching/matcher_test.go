package matching

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/handicap-tracker/internal/model"
)

type MatcherSuite struct {
	suite.Suite
	roster []model.Player
}

func TestMatcherSuite(t *testing.T) {
	suite.Run(t, new(MatcherSuite))
}

func (s *MatcherSuite) SetupTest() {
	s.roster = []model.Player{
		{ID: "p1", Name: "Jon"},
		{ID: "p2", Name: "Master Chief"},
		{ID: "p3", Name: "Arbiter-117"},
		{ID: "p4", Name: "Cortana"},
	}
}

// Normalize tests

func (s *MatcherSuite) TestNormalizeStripsCaseAndPunctuation() {
	s.Equal("masterchief", Normalize("Master Chief"))
	s.Equal("arbiter117", Normalize("Arbiter-117"))
	s.Equal("jon99", Normalize("  JON_99!! "))
	s.Equal("", Normalize("___"))
}

func (s *MatcherSuite) TestNormalizeDropsNonASCII() {
	s.Equal("jos", Normalize("José"))
}

// Similarity tests

func (s *MatcherSuite) TestSimilarityExact() {
	s.Equal(1.0, Similarity("cortana", "cortana"))
}

func (s *MatcherSuite) TestSimilaritySubstring() {
	s.Equal(0.8, Similarity("jon99", "jon"))
	s.Equal(0.8, Similarity("jon", "jon99"))
}

func (s *MatcherSuite) TestSimilarityPositionalOverlap() {
	// c-o-r-t-a-n-a vs c-o-r-t-a-n-o: 6 of 7 positions agree
	s.InDelta(6.0/7.0, Similarity("cortana", "cortano"), 1e-9)
}

func (s *MatcherSuite) TestSimilarityIsOrderSensitive() {
	// Same letters, shifted by one: no positional agreement
	s.Equal(0.0, Similarity("abc", "bca"))
}

func (s *MatcherSuite) TestSimilarityDividesByLongerLength() {
	// "abx" vs "abyz": 2 agreeing positions over length 4
	s.Equal(0.5, Similarity("abx", "abyz"))
}

// Match tests

func (s *MatcherSuite) TestMatchExact() {
	p := Match("Cortana", s.roster)
	s.Require().NotNil(p)
	s.Equal(model.PlayerID("p4"), p.ID)
}

func (s *MatcherSuite) TestMatchIgnoresCaseAndPunctuation() {
	p := Match("master_chief", s.roster)
	s.Require().NotNil(p)
	s.Equal(model.PlayerID("p2"), p.ID)
}

func (s *MatcherSuite) TestMatchTruncatedName() {
	p := Match("Arbiter", s.roster)
	s.Require().NotNil(p)
	s.Equal(model.PlayerID("p3"), p.ID)
}

func (s *MatcherSuite) TestMatchPrefixedName() {
	p := Match("Jon_99", s.roster)
	s.Require().NotNil(p)
	s.Equal(model.PlayerID("p1"), p.ID)
}

func (s *MatcherSuite) TestMatchSingleTypo() {
	// 6/7 > 0.7
	p := Match("Cortama", s.roster)
	s.Require().NotNil(p)
	s.Equal(model.PlayerID("p4"), p.ID)
}

func (s *MatcherSuite) TestMatchRejectsAtThreshold() {
	// 7/10 is exactly the threshold and must be rejected
	roster := []model.Player{{ID: "p1", Name: "abcdefghij"}}
	s.InDelta(0.7, Similarity("abcdefgxyz", "abcdefghij"), 1e-9)
	s.Nil(Match("abcdefgxyz", roster))
}

func (s *MatcherSuite) TestMatchUnrelatedName() {
	s.Nil(Match("Opponent", s.roster))
}

func (s *MatcherSuite) TestMatchEmptyCandidate() {
	s.Nil(Match("", s.roster))
	s.Nil(Match("!!!", s.roster))
}

func (s *MatcherSuite) TestMatchSkipsRosterEntriesWithoutLetters() {
	roster := []model.Player{{ID: "blank", Name: "???"}, {ID: "p1", Name: "Jon"}}
	p := Match("Jon", roster)
	s.Require().NotNil(p)
	s.Equal(model.PlayerID("p1"), p.ID)
	s.Nil(Match("Zed", roster))
}

func (s *MatcherSuite) TestMatchTieGoesToFirstRosterEntry() {
	roster := []model.Player{
		{ID: "first", Name: "Jonathan"},
		{ID: "second", Name: "Jonas"},
	}
	// "jon" is a substring of both: 0.8 each
	p := Match("jon", roster)
	s.Require().NotNil(p)
	s.Equal(model.PlayerID("first"), p.ID)
}

func (s *MatcherSuite) TestMatchPrefersExactOverSubstring() {
	roster := []model.Player{
		{ID: "short", Name: "Jon"},
		{ID: "long", Name: "Jonathan"},
	}
	p := Match("Jonathan", roster)
	s.Require().NotNil(p)
	s.Equal(model.PlayerID("long"), p.ID)
}

func (s *MatcherSuite) TestMatchReturnsRosterElement() {
	p := Match("Jon", s.roster)
	s.Require().NotNil(p)
	s.Same(&s.roster[0], p)
}

func (s *MatcherSuite) TestBestMatchReportsRejectedSimilarity() {
	r := BestMatch("Jxx", s.roster)
	s.False(r.Matched())
	s.InDelta(1.0/3.0, r.Similarity, 1e-9)
}

func (s *MatcherSuite) TestMatchEmptyRoster() {
	s.Nil(Match("Jon", nil))
}

// Property tests

func TestEveryRosterEntryMatchesItself(t *testing.T) {
	roster := []model.Player{
		{ID: "a", Name: "Alpha"},
		{ID: "b", Name: "Bravo_2"},
		{ID: "c", Name: "Charlie Delta"},
		{ID: "d", Name: "Echo"},
		{ID: "e", Name: "xXSniperXx"},
	}

	for i := range roster {
		p := Match(Normalize(roster[i].Name), roster)
		require.NotNil(t, p, roster[i].Name)
		assert.Equal(t, roster[i].ID, p.ID)
	}
}

func TestMatchNeverAcceptsAtOrBelowThreshold(t *testing.T) {
	roster := []model.Player{
		{ID: "a", Name: "Alpha"},
		{ID: "b", Name: "Bravo"},
		{ID: "c", Name: "Charlie"},
	}

	// Deterministic pseudo-random candidates
	seed := uint32(12345)
	next := func() uint32 {
		seed = seed*1664525 + 1013904223
		return seed
	}
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	for n := 0; n < 500; n++ {
		length := 1 + int(next()%10)
		buf := make([]byte, length)
		for i := range buf {
			buf[i] = alphabet[next()%uint32(len(alphabet))]
		}
		candidate := string(buf)

		r := BestMatch(candidate, roster)
		if r.Matched() {
			sim := Similarity(Normalize(candidate), Normalize(r.Player.Name))
			assert.Greater(t, sim, MatchThreshold, fmt.Sprintf("candidate %q", candidate))
		}
	}
}
