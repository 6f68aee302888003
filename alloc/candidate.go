package alloc

import (
	"cmp"
	"slices"

	"github.com/brensch/snekgreedy/game"
)

// Candidate is a food a snake reaches strictly before every other snake.
type Candidate struct {
	Snake  int
	Food   int
	Target game.Point
	Entry  Entry
}

// SelectCandidate returns the food at position iteration among the foods
// snake reaches strictly faster than every rival, ordered by distance. Equal
// distances keep food index order. A tie with any rival disqualifies the
// food. The bool is false when fewer than iteration+1 foods qualify.
func SelectCandidate(snake int, m *Matrix, iteration int) (Candidate, bool) {
	own := m.rows[snake]

	eligible := make([]int, 0, len(own))
	for f, e := range own {
		if !e.Reachable() {
			continue
		}
		fastest := true
		for j := range m.rows {
			if j != snake && m.rows[j][f].Distance <= e.Distance {
				fastest = false
				break
			}
		}
		if fastest {
			eligible = append(eligible, f)
		}
	}
	if len(eligible) <= iteration {
		return Candidate{}, false
	}

	slices.SortStableFunc(eligible, func(a, b int) int {
		return cmp.Compare(own[a].Distance, own[b].Distance)
	})
	f := eligible[iteration]
	return Candidate{Snake: snake, Food: f, Target: m.foods[f], Entry: own[f]}, true
}
