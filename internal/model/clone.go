package model

// Clone returns a copy of the player
func (p *Player) Clone() *Player {
	c := *p
	return &c
}

// Clone returns a deep copy of the game
func (g *Game) Clone() *Game {
	c := *g
	if g.WinningTeam != nil {
		w := *g.WinningTeam
		c.WinningTeam = &w
	}
	if g.Scores != nil {
		c.Scores = make([]ReconciledScore, len(g.Scores))
		for i, sc := range g.Scores {
			if sc.Team != nil {
				t := *sc.Team
				sc.Team = &t
			}
			c.Scores[i] = sc
		}
	}
	return &c
}
