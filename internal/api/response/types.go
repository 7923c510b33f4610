package response

import (
	"time"

	"github.com/mcoot/handicap-tracker/internal/model"
	"github.com/mcoot/handicap-tracker/internal/services/balance"
	"github.com/mcoot/handicap-tracker/internal/services/games"
	"github.com/mcoot/handicap-tracker/internal/services/reconcile"
	"github.com/mcoot/handicap-tracker/internal/services/stats"
)

// Player represents a roster entry in API responses
type Player struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Kills      int       `json:"kills"`
	Deaths     int       `json:"deaths"`
	Assists    int       `json:"assists"`
	Handicap   int       `json:"handicap"`
	IsSelected bool      `json:"is_selected"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:         string(p.ID),
		Name:       p.Name,
		Kills:      p.Kills,
		Deaths:     p.Deaths,
		Assists:    p.Assists,
		Handicap:   p.Handicap,
		IsSelected: p.IsSelected,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// PlayersFromModel converts a list of players, never returning nil
func PlayersFromModel(players []*model.Player) []Player {
	out := make([]Player, len(players))
	for i, p := range players {
		out[i] = PlayerFromModel(p)
	}
	return out
}

// PlayerList wraps a list of players
type PlayerList struct {
	Players []Player `json:"players"`
}

// Names maps player IDs to display names for decorating scores
type Names map[model.PlayerID]string

// NamesFromPlayers builds a Names lookup
func NamesFromPlayers(players []*model.Player) Names {
	names := make(Names, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}
	return names
}

// Score represents one player's reconciled result
type Score struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name,omitempty"`
	Kills      int    `json:"kills"`
	Deaths     int    `json:"deaths"`
	Assists    int    `json:"assists"`
	Score      int    `json:"score"`
	Team       *int   `json:"team"`
	Won        bool   `json:"won"`
}

// ScoresFromModel converts reconciled scores, filling in names where known
func ScoresFromModel(scores []model.ReconciledScore, names Names) []Score {
	out := make([]Score, len(scores))
	for i, sc := range scores {
		out[i] = Score{
			PlayerID:   string(sc.PlayerID),
			PlayerName: names[sc.PlayerID],
			Kills:      sc.Kills,
			Deaths:     sc.Deaths,
			Assists:    sc.Assists,
			Score:      sc.Score,
			Team:       sc.Team,
			Won:        sc.Won,
		}
	}
	return out
}

// Game represents a recorded game
type Game struct {
	ID            string    `json:"id"`
	GameMode      string    `json:"game_mode"`
	Map           string    `json:"map,omitempty"`
	ScreenshotURL string    `json:"screenshot_url,omitempty"`
	WinningTeam   *int      `json:"winning_team"`
	Scores        []Score   `json:"scores"`
	Winners       []string  `json:"winners"`
	CreatedAt     time.Time `json:"created_at"`
}

// GameFromModel converts a model.Game to a response Game
func GameFromModel(g *model.Game, names Names) Game {
	winnerIDs := games.Winners(g)
	winners := make([]string, len(winnerIDs))
	for i, id := range winnerIDs {
		winners[i] = string(id)
	}
	return Game{
		ID:            string(g.ID),
		GameMode:      g.GameMode,
		Map:           g.Map,
		ScreenshotURL: g.ScreenshotURL,
		WinningTeam:   g.WinningTeam,
		Scores:        ScoresFromModel(g.Scores, names),
		Winners:       winners,
		CreatedAt:     g.CreatedAt,
	}
}

// GameList wraps a list of games
type GameList struct {
	Games []Game `json:"games"`
}

// RecordResult is the response for recording or analyzing a game
type RecordResult struct {
	Game      Game     `json:"game"`
	Unmatched []string `json:"unmatched"`
	Unread    []string `json:"unread"`
	Players   []Player `json:"players"`
}

// RecordResultFromModel converts a games.RecordResult
func RecordResultFromModel(r *games.RecordResult, names Names) RecordResult {
	return RecordResult{
		Game:      GameFromModel(r.Game, names),
		Unmatched: nonNil(r.Unmatched),
		Unread:    nonNil(r.Unread),
		Players:   PlayersFromModel(r.Players),
	}
}

// DeleteGameResponse lists the players whose totals were re-derived
type DeleteGameResponse struct {
	Players []Player `json:"players"`
}

// GameUpdate is an edited game plus the players it touched
type GameUpdate struct {
	Game    Game     `json:"game"`
	Players []Player `json:"players"`
}

// Reconciliation is the response for a reconciliation dry run
type Reconciliation struct {
	GameMode    string   `json:"game_mode"`
	WinningTeam *int     `json:"winning_team"`
	Scores      []Score  `json:"scores"`
	Unmatched   []string `json:"unmatched"`
	Unread      []string `json:"unread"`
}

// ReconciliationFromModel converts a reconcile.Result
func ReconciliationFromModel(r *reconcile.Result, names Names) Reconciliation {
	return Reconciliation{
		GameMode:    r.GameMode,
		WinningTeam: r.WinningTeam,
		Scores:      ScoresFromModel(r.Scores, names),
		Unmatched:   nonNil(r.Unmatched),
		Unread:      nonNil(r.Unread),
	}
}

// Handicap is the response for a handicap calculation
type Handicap struct {
	Kills    int     `json:"kills"`
	Deaths   int     `json:"deaths"`
	Assists  int     `json:"assists"`
	KDA      float64 `json:"kda"`
	Handicap int     `json:"handicap"`
}

// TeamMember is a player on a balanced team
type TeamMember struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Handicap int    `json:"handicap"`
}

// Teams is the response for team balancing
type Teams struct {
	TeamA               []TeamMember `json:"team_a"`
	TeamB               []TeamMember `json:"team_b"`
	SumA                int          `json:"sum_a"`
	SumB                int          `json:"sum_b"`
	Imbalance           int          `json:"imbalance"`
	Iterations          int          `json:"iterations"`
	RepairLimitReached  bool         `json:"repair_limit_reached"`
	InsufficientPlayers bool         `json:"insufficient_players"`
}

// TeamsFromResult converts a balance.Result
func TeamsFromResult(r balance.Result) Teams {
	return Teams{
		TeamA:               teamMembers(r.TeamA),
		TeamB:               teamMembers(r.TeamB),
		SumA:                r.SumA,
		SumB:                r.SumB,
		Imbalance:           r.Imbalance,
		Iterations:          r.Iterations,
		RepairLimitReached:  r.RepairLimitReached,
		InsufficientPlayers: r.InsufficientPlayers,
	}
}

func teamMembers(team []model.Player) []TeamMember {
	out := make([]TeamMember, len(team))
	for i, p := range team {
		out[i] = TeamMember{ID: string(p.ID), Name: p.Name, Handicap: p.Handicap}
	}
	return out
}

// PlayerStats is one player's analytics
type PlayerStats struct {
	PlayerID    string  `json:"player_id"`
	Name        string  `json:"name"`
	Handicap    int     `json:"handicap"`
	GamesPlayed int     `json:"games_played"`
	Wins        int     `json:"wins"`
	WinRate     float64 `json:"win_rate"`
	AvgKills    float64 `json:"avg_kills"`
	AvgDeaths   float64 `json:"avg_deaths"`
	AvgAssists  float64 `json:"avg_assists"`
	KDA         float64 `json:"kda"`
	WeightedKDA float64 `json:"weighted_kda"`
	TeamKDA     float64 `json:"team_kda"`
	SoloKDA     float64 `json:"solo_kda"`
}

// PlayerStatsList wraps per-player analytics
type PlayerStatsList struct {
	Players []PlayerStats `json:"players"`
}

// PlayerStatsFromModel converts stats.PlayerStats
func PlayerStatsFromModel(all []stats.PlayerStats) PlayerStatsList {
	out := make([]PlayerStats, len(all))
	for i, s := range all {
		out[i] = PlayerStats{
			PlayerID:    string(s.PlayerID),
			Name:        s.Name,
			Handicap:    s.Handicap,
			GamesPlayed: s.GamesPlayed,
			Wins:        s.Wins,
			WinRate:     s.WinRate,
			AvgKills:    s.AvgKills,
			AvgDeaths:   s.AvgDeaths,
			AvgAssists:  s.AvgAssists,
			KDA:         s.KDA,
			WeightedKDA: s.WeightedKDA,
			TeamKDA:     s.TeamKDA,
			SoloKDA:     s.SoloKDA,
		}
	}
	return PlayerStatsList{Players: out}
}

// Connection is how a pair of players does together
type Connection struct {
	PlayerA     string  `json:"player_a"`
	PlayerAName string  `json:"player_a_name"`
	PlayerB     string  `json:"player_b"`
	PlayerBName string  `json:"player_b_name"`
	GamesPlayed int     `json:"games_played"`
	Wins        int     `json:"wins"`
	WinRate     float64 `json:"win_rate"`
	AvgKDA      float64 `json:"avg_kda"`
}

// ConnectionList wraps pairwise analytics
type ConnectionList struct {
	MinGames    int          `json:"min_games"`
	Metric      string       `json:"metric"`
	Min         float64      `json:"min"`
	Connections []Connection `json:"connections"`
}

// ConnectionsFromModel converts stats.Connection values
func ConnectionsFromModel(all []stats.Connection, minGames int, names Names) ConnectionList {
	out := make([]Connection, len(all))
	for i, c := range all {
		out[i] = Connection{
			PlayerA:     string(c.PlayerA),
			PlayerAName: names[c.PlayerA],
			PlayerB:     string(c.PlayerB),
			PlayerBName: names[c.PlayerB],
			GamesPlayed: c.GamesPlayed,
			Wins:        c.Wins,
			WinRate:     c.WinRate,
			AvgKDA:      c.AvgKDA,
		}
	}
	return ConnectionList{MinGames: minGames, Connections: out}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
