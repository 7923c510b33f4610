// Package balance splits the selected roster into two teams of near-equal total handicap.
package balance

import (
	"encoding/binary"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/mcoot/handicap-tracker/internal/model"
)

// MaxRepairIterations bounds the swap search after greedy assignment
const MaxRepairIterations = 100

// Result is a team assignment plus how it was reached
type Result struct {
	model.TeamAssignment
	SumA                int
	SumB                int
	Imbalance           int
	Iterations          int
	RepairLimitReached  bool
	InsufficientPlayers bool
}

// Balance partitions the selected players into two teams.
//
// Fewer than two selected players yields two empty teams. Equal handicaps
// are ordered by a hash of shuffleKey and the player ID, so each key gives
// a different but reproducible split.
func Balance(players []model.Player, shuffleKey int) Result {
	selected := make([]model.Player, 0, len(players))
	for _, p := range players {
		if p.IsSelected {
			selected = append(selected, p)
		}
	}

	if len(selected) < 2 {
		return Result{
			TeamAssignment: model.TeamAssignment{
				TeamA: []model.Player{},
				TeamB: []model.Player{},
			},
			InsufficientPlayers: true,
		}
	}

	sortForAssignment(selected, shuffleKey)

	teamA := make([]model.Player, 0, len(selected)/2+1)
	teamB := make([]model.Player, 0, len(selected)/2+1)
	sumA, sumB := 0, 0
	for _, p := range selected {
		if sumA <= sumB {
			teamA = append(teamA, p)
			sumA += p.Handicap
		} else {
			teamB = append(teamB, p)
			sumB += p.Handicap
		}
	}

	iterations := 0
	for abs(sumA-sumB) > 1 && iterations < MaxRepairIterations {
		i, j, ok := bestSwap(teamA, teamB, sumA, sumB)
		if !ok {
			break
		}
		iterations++
		delta := teamB[j].Handicap - teamA[i].Handicap
		teamA[i], teamB[j] = teamB[j], teamA[i]
		sumA += delta
		sumB -= delta
	}

	imbalance := abs(sumA - sumB)
	return Result{
		TeamAssignment: model.TeamAssignment{
			TeamA: teamA,
			TeamB: teamB,
		},
		SumA:               sumA,
		SumB:               sumB,
		Imbalance:          imbalance,
		Iterations:         iterations,
		RepairLimitReached: imbalance > 1 && iterations >= MaxRepairIterations,
	}
}

// bestSwap finds the cross-team pair whose exchange leaves the smallest
// imbalance. ok is false when no swap is strictly better than the current split.
func bestSwap(teamA, teamB []model.Player, sumA, sumB int) (int, int, bool) {
	best := abs(sumA - sumB)
	bestI, bestJ := -1, -1
	for i := range teamA {
		for j := range teamB {
			delta := teamB[j].Handicap - teamA[i].Handicap
			if d := abs((sumA + delta) - (sumB - delta)); d < best {
				best = d
				bestI, bestJ = i, j
			}
		}
	}
	return bestI, bestJ, bestI >= 0
}

// sortForAssignment orders by handicap descending, breaking ties by the
// shuffle hash and then by ID.
func sortForAssignment(players []model.Player, shuffleKey int) {
	keys := make(map[model.PlayerID]uint64, len(players))
	for _, p := range players {
		keys[p.ID] = shuffleHash(shuffleKey, p.ID)
	}

	sort.SliceStable(players, func(i, j int) bool {
		a, b := players[i], players[j]
		if a.Handicap != b.Handicap {
			return a.Handicap > b.Handicap
		}
		if keys[a.ID] != keys[b.ID] {
			return keys[a.ID] < keys[b.ID]
		}
		return a.ID < b.ID
	})
}

func shuffleHash(shuffleKey int, id model.PlayerID) uint64 {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(int64(shuffleKey)))

	d := xxhash.New()
	_, _ = d.Write(buf[:])
	_, _ = d.WriteString(string(id))
	return d.Sum64()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
