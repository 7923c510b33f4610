// Package reconcile turns raw extraction model output into roster-matched scores.
package reconcile

import (
	"sort"

	"github.com/mcoot/handicap-tracker/internal/model"
	"github.com/mcoot/handicap-tracker/internal/services/matching"
)

// Outcome is the detailed result of a reconcile pass
type Outcome struct {
	Scores    []model.ReconciledScore
	Unmatched []string // Declared names with no roster match
	Unread    []string // Declared names whose row was null
}

// Reconcile matches every non-null entry to the roster and returns one score per matched player
func Reconcile(extraction *model.Extraction, roster []model.Player, winningTeam *int) []model.ReconciledScore {
	return ReconcileDetailed(extraction, roster, winningTeam).Scores
}

// ReconcileDetailed is Reconcile, also reporting which names were dropped and why.
//
// Entries are processed in declared-name order. When two names resolve to
// the same player the later one replaces the earlier.
func ReconcileDetailed(extraction *model.Extraction, roster []model.Player, winningTeam *int) Outcome {
	out := Outcome{
		Scores:    []model.ReconciledScore{},
		Unmatched: []string{},
		Unread:    []string{},
	}
	if extraction == nil {
		return out
	}

	names := make([]string, 0, len(extraction.Entries))
	for name := range extraction.Entries {
		names = append(names, name)
	}
	sort.Strings(names)

	byPlayer := make(map[model.PlayerID]int)
	for _, name := range names {
		entry := extraction.Entries[name]
		if entry == nil {
			out.Unread = append(out.Unread, name)
			continue
		}

		player := matching.Match(name, roster)
		if player == nil {
			out.Unmatched = append(out.Unmatched, name)
			continue
		}

		score := FromEntry(player.ID, entry, winningTeam)
		if idx, ok := byPlayer[player.ID]; ok {
			out.Scores[idx] = score
			continue
		}
		byPlayer[player.ID] = len(out.Scores)
		out.Scores = append(out.Scores, score)
	}

	SortForDisplay(out.Scores)
	return out
}

// FromEntry builds a score from a raw row. Missing numbers default to zero
// and every number is bounded to [0, model.MaxStatValue].
func FromEntry(playerID model.PlayerID, entry *model.RawExtractionEntry, winningTeam *int) model.ReconciledScore {
	var team *int
	if entry.Team != nil {
		t := *entry.Team
		team = &t
	}
	return model.ReconciledScore{
		PlayerID: playerID,
		Kills:    statValue(entry.Kills),
		Deaths:   statValue(entry.Deaths),
		Assists:  statValue(entry.Assists),
		Score:    statValue(entry.Score),
		Team:     team,
		Won:      model.IsWin(team, winningTeam),
	}
}

// SortForDisplay orders scores by score, then kills, highest first
func SortForDisplay(scores []model.ReconciledScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		if scores[i].Kills != scores[j].Kills {
			return scores[i].Kills > scores[j].Kills
		}
		return scores[i].PlayerID < scores[j].PlayerID
	})
}

// statValue maps a raw number into [0, model.MaxStatValue], with absent as zero
func statValue(v *int) int {
	if v == nil || *v < 0 {
		return 0
	}
	return min(*v, model.MaxStatValue)
}
