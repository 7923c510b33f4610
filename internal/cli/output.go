package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mcoot/handicap-tracker/internal/api/response"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	winStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C0C0C0")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	teamBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A")).
			Padding(0, 1)
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
		if v.Server != "" {
			fmt.Fprintf(o.w, "Server: %s\n", v.Server)
		}
	case response.Player:
		o.printPlayer(v)
	case response.PlayerList:
		o.printPlayers(v.Players)
	case response.Game:
		o.printGame(v)
	case response.GameList:
		o.printGames(v.Games)
	case response.RecordResult:
		o.printRecordResult(v)
	case response.GameUpdate:
		o.printGame(v.Game)
		o.printHandicaps(v.Players)
	case response.Reconciliation:
		o.printReconciliation(v)
	case response.Teams:
		o.printTeams(v)
	case response.Handicap:
		fmt.Fprintf(o.w, "KDA: %.2f\nHandicap: %d\n", v.KDA, v.Handicap)
	case response.PlayerStatsList:
		o.printPlayerStats(v.Players)
	case response.ConnectionList:
		o.printConnections(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func (o *Output) render(t *table.Table) {
	fmt.Fprintln(o.w, t.Render())
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func teamString(team *int) string {
	if team == nil {
		return "-"
	}
	return strconv.Itoa(*team)
}

func (o *Output) printPlayer(p response.Player) {
	fmt.Fprintf(o.w, "%s %s\n", titleStyle.Render(p.Name), mutedStyle.Render("("+p.ID+")"))
	fmt.Fprintf(o.w, "Handicap: %d\n", p.Handicap)
	fmt.Fprintf(o.w, "Totals: %d kills, %d deaths, %d assists\n", p.Kills, p.Deaths, p.Assists)
	fmt.Fprintf(o.w, "Selected: %s\n", yesNo(p.IsSelected))
}

func (o *Output) printPlayers(players []response.Player) {
	if len(players) == 0 {
		fmt.Fprintln(o.w, mutedStyle.Render("No players"))
		return
	}

	t := newTable("ID", "Name", "Handicap", "K", "D", "A", "Selected")
	for _, p := range players {
		t.Row(p.ID, p.Name, strconv.Itoa(p.Handicap),
			strconv.Itoa(p.Kills), strconv.Itoa(p.Deaths), strconv.Itoa(p.Assists),
			yesNo(p.IsSelected))
	}
	o.render(t)
}

func scoreName(s response.Score) string {
	if s.PlayerName != "" {
		return s.PlayerName
	}
	return s.PlayerID
}

func (o *Output) printScores(scores []response.Score) {
	t := newTable("Player", "Team", "K", "D", "A", "Score", "Won")
	for _, s := range scores {
		won := ""
		if s.Won {
			won = winStyle.Render("W")
		}
		t.Row(scoreName(s), teamString(s.Team),
			strconv.Itoa(s.Kills), strconv.Itoa(s.Deaths), strconv.Itoa(s.Assists),
			strconv.Itoa(s.Score), won)
	}
	o.render(t)
}

func (o *Output) printGame(g response.Game) {
	header := g.GameMode
	if g.Map != "" {
		header += " on " + g.Map
	}
	fmt.Fprintf(o.w, "%s %s\n", titleStyle.Render(header), mutedStyle.Render("("+g.ID+")"))
	fmt.Fprintf(o.w, "Played: %s\n", g.CreatedAt.Format("2006-01-02 15:04"))
	if g.WinningTeam != nil {
		fmt.Fprintf(o.w, "Winning team: %d\n", *g.WinningTeam)
	}
	o.printScores(g.Scores)
}

func (o *Output) printGames(all []response.Game) {
	if len(all) == 0 {
		fmt.Fprintln(o.w, mutedStyle.Render("No games recorded"))
		return
	}

	t := newTable("ID", "Played", "Mode", "Map", "Players", "Winners")
	for _, g := range all {
		names := make(map[string]string, len(g.Scores))
		for _, s := range g.Scores {
			names[s.PlayerID] = scoreName(s)
		}
		winners := make([]string, len(g.Winners))
		for i, id := range g.Winners {
			winners[i] = names[id]
		}
		t.Row(g.ID, g.CreatedAt.Format("2006-01-02 15:04"), g.GameMode, g.Map,
			strconv.Itoa(len(g.Scores)), strings.Join(winners, ", "))
	}
	o.render(t)
}

func (o *Output) printDropped(unmatched, unread []string) {
	if len(unmatched) > 0 {
		fmt.Fprintf(o.w, "Not on roster: %s\n", strings.Join(unmatched, ", "))
	}
	if len(unread) > 0 {
		fmt.Fprintf(o.w, "Unreadable: %s\n", strings.Join(unread, ", "))
	}
}

func (o *Output) printRecordResult(r response.RecordResult) {
	o.printGame(r.Game)
	o.printDropped(r.Unmatched, r.Unread)
	o.printHandicaps(r.Players)
}

func (o *Output) printHandicaps(players []response.Player) {
	if len(players) == 0 {
		return
	}
	fmt.Fprintln(o.w, "Updated handicaps:")
	for _, p := range players {
		fmt.Fprintf(o.w, "  %s: %d\n", p.Name, p.Handicap)
	}
}

func (o *Output) printReconciliation(r response.Reconciliation) {
	mode := r.GameMode
	if mode == "" {
		mode = "Unknown mode"
	}
	fmt.Fprintln(o.w, titleStyle.Render(mode))
	if r.WinningTeam != nil {
		fmt.Fprintf(o.w, "Winning team: %d\n", *r.WinningTeam)
	}
	if len(r.Scores) == 0 {
		fmt.Fprintln(o.w, mutedStyle.Render("No roster players matched"))
	} else {
		o.printScores(r.Scores)
	}
	o.printDropped(r.Unmatched, r.Unread)
}

func (o *Output) teamBox(title string, sum int, members []response.TeamMember) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%d)", title, sum)))
	for _, m := range members {
		fmt.Fprintf(&b, "\n%s %s", m.Name, mutedStyle.Render(strconv.Itoa(m.Handicap)))
	}
	return teamBoxStyle.Render(b.String())
}

func (o *Output) printTeams(t response.Teams) {
	if t.InsufficientPlayers {
		fmt.Fprintln(o.w, "At least two players must be selected to balance teams")
		return
	}

	fmt.Fprintln(o.w, lipgloss.JoinHorizontal(lipgloss.Top,
		o.teamBox("Team A", t.SumA, t.TeamA),
		"  ",
		o.teamBox("Team B", t.SumB, t.TeamB),
	))
	fmt.Fprintf(o.w, "Imbalance: %d\n", t.Imbalance)
	if t.RepairLimitReached {
		fmt.Fprintln(o.w, mutedStyle.Render("Stopped improving after the swap limit"))
	}
}

func (o *Output) printPlayerStats(all []response.PlayerStats) {
	if len(all) == 0 {
		fmt.Fprintln(o.w, mutedStyle.Render("No players"))
		return
	}

	t := newTable("Name", "Hcap", "Games", "Win %", "K", "D", "A", "KDA", "wKDA", "Team", "Solo")
	for _, s := range all {
		t.Row(s.Name, strconv.Itoa(s.Handicap), strconv.Itoa(s.GamesPlayed),
			formatFloat(s.WinRate), formatFloat(s.AvgKills), formatFloat(s.AvgDeaths),
			formatFloat(s.AvgAssists), formatFloat(s.KDA), formatFloat(s.WeightedKDA),
			formatFloat(s.TeamKDA), formatFloat(s.SoloKDA))
	}
	o.render(t)
}

func (o *Output) printConnections(c response.ConnectionList) {
	if len(c.Connections) == 0 {
		msg := fmt.Sprintf("No pairs with %d or more games together", c.MinGames)
		if c.Min > 0 {
			msg += fmt.Sprintf(" and %s of at least %s", c.Metric, formatFloat(c.Min))
		}
		fmt.Fprintln(o.w, mutedStyle.Render(msg))
		return
	}

	t := newTable("Player", "Player", "Games", "Wins", "Win %", "Avg wKDA")
	for _, conn := range c.Connections {
		t.Row(conn.PlayerAName, conn.PlayerBName, strconv.Itoa(conn.GamesPlayed),
			strconv.Itoa(conn.Wins), formatFloat(conn.WinRate), formatFloat(conn.AvgKDA))
	}
	o.render(t)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
