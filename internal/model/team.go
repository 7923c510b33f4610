package model

// TeamAssignment is a partition of the selected players into two teams
type TeamAssignment struct {
	TeamA []Player
	TeamB []Player
}

// TeamHandicap sums the handicaps of a team
func TeamHandicap(team []Player) int {
	sum := 0
	for _, p := range team {
		sum += p.Handicap
	}
	return sum
}

// Imbalance returns the absolute difference between the two team sums
func (t TeamAssignment) Imbalance() int {
	diff := TeamHandicap(t.TeamA) - TeamHandicap(t.TeamB)
	if diff < 0 {
		return -diff
	}
	return diff
}
