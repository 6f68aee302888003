package alloc

import (
	"slices"

	"github.com/brensch/snekgreedy/game"
)

// Outcome records how a decision was reached.
type Outcome uint8

const (
	OutcomeDead Outcome = iota
	OutcomeClaimed
	OutcomeStalemate
	OutcomeRoundLimit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDead:
		return "dead"
	case OutcomeClaimed:
		return "claimed"
	case OutcomeStalemate:
		return "stalemate"
	case OutcomeRoundLimit:
		return "round_limit"
	default:
		return "unknown"
	}
}

// Round is one completed allocation round in which at least one rival
// claimed a food.
type Round struct {
	Index  int
	Claims []Candidate
	// After is the matrix with the round's detours and exclusions applied.
	After *Matrix
}

// Decision is the full trace of one call. Decide only needs Move; the rest
// feeds the archive and the inspector.
type Decision struct {
	Move    game.Move
	Outcome Outcome

	// Target is set when the controlled snake claimed a food.
	Target *Candidate

	Rounds []Round

	// Iterations holds the per-snake candidate index after the last round.
	Iterations []int
	// Claims holds, per snake, every food index it claimed in round order.
	// Nothing reads it during allocation.
	Claims [][]int

	Initial *Matrix
	Final   *Matrix

	// SafeFallback is set when allocation failed and a safe neighbouring
	// cell was found. LastResort names the policy used when none was.
	SafeFallback bool
	LastResort   string

	RemainingRounds int32
}

// RepeatedClaims returns, per snake, the foods that snake claimed more than
// once. Claims are not remembered between rounds, so a snake whose previous
// claim drops back into its candidate list can take it again.
func (d *Decision) RepeatedClaims() map[int][]int {
	out := map[int][]int{}
	for snake, foods := range d.Claims {
		seen := map[int]int{}
		for _, f := range foods {
			seen[f]++
			if seen[f] == 2 {
				out[snake] = append(out[snake], f)
			}
		}
		slices.Sort(out[snake])
	}
	return out
}
