// Package matching resolves free-text names read off a scoreboard to roster players.
package matching

import (
	"strings"

	"github.com/mcoot/handicap-tracker/internal/model"
)

const (
	// MatchThreshold is the similarity a roster entry must exceed to be accepted
	MatchThreshold = 0.7

	exactSimilarity     = 1.0
	substringSimilarity = 0.8
)

// Normalize lower-cases the name and drops everything outside [a-z0-9]
func Normalize(name string) string {
	lower := strings.ToLower(name)
	var b strings.Builder
	b.Grow(len(lower))
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Similarity scores two already-normalized names in [0, 1].
//
// Equal names score 1.0 and a name contained in the other scores 0.8.
// Otherwise the score is the fraction of positions in the longer name
// holding the same character as the shorter one. This is order-sensitive
// and intentionally not an edit distance.
func Similarity(a, b string) float64 {
	if a == b {
		return exactSimilarity
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return substringSimilarity
	}

	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(longer) == 0 {
		return 0
	}

	same := 0
	for i := 0; i < len(shorter); i++ {
		if shorter[i] == longer[i] {
			same++
		}
	}
	return float64(same) / float64(len(longer))
}

// Result is the outcome of matching a single name against a roster
type Result struct {
	Player     *model.Player // nil when nothing passed the threshold
	Similarity float64       // Best similarity seen, even when rejected
}

// Matched returns true if a roster entry was accepted
func (r Result) Matched() bool {
	return r.Player != nil
}

// BestMatch finds the roster entry most similar to candidate.
// Ties at the best similarity go to the earliest roster entry.
func BestMatch(candidate string, roster []model.Player) Result {
	search := Normalize(candidate)
	if search == "" {
		return Result{}
	}

	bestIdx := -1
	best := 0.0
	for i := range roster {
		name := Normalize(roster[i].Name)
		if name == "" {
			continue
		}
		sim := Similarity(search, name)
		if sim > best {
			best = sim
			bestIdx = i
		}
	}

	if bestIdx < 0 || best <= MatchThreshold {
		return Result{Similarity: best}
	}
	return Result{Player: &roster[bestIdx], Similarity: best}
}

// Match returns the matching roster entry, or nil if none is similar enough
func Match(candidate string, roster []model.Player) *model.Player {
	return BestMatch(candidate, roster).Player
}
