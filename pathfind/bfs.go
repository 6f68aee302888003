// Package pathfind finds shortest paths for a four-segment snake.
//
// The search runs over whole body configurations rather than head cells, so
// the snake's own body moves out of the way as it travels. Everything that is
// not the searching snake is frozen for the duration of a search.
package pathfind

import (
	"github.com/brensch/snekgreedy/game"
	"github.com/brensch/snekgreedy/rules"
)

// DefaultMaxDepth caps the number of turns a search will look ahead.
const DefaultMaxDepth = 200

// Path is the result of a successful search: the move to make now and the
// number of turns until the head reaches the target.
type Path struct {
	First  game.Move
	Length int
}

// Finder is a breadth-first pathfinder. The zero value uses DefaultMaxDepth.
type Finder struct {
	MaxDepth int
}

type searchState struct {
	body  game.Body
	first game.Move
	depth int
}

// Find searches from body to target with DefaultMaxDepth.
func Find(body game.Body, target game.Point, obstacles game.Obstacles, boardSize int32) (Path, bool) {
	return Finder{}.Find(body, target, obstacles, boardSize)
}

// Find returns the first move and length of a shortest path that brings the
// head onto target, or false if no path exists within the depth cap.
func (f Finder) Find(body game.Body, target game.Point, obstacles game.Obstacles, boardSize int32) (Path, bool) {
	maxDepth := f.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	// Depth is monotone along the queue, so the first visit of a body is
	// always via a shortest path and the key can ignore depth and first move.
	visited := map[game.Body]struct{}{body: {}}
	queue := []searchState{{body: body, first: game.MoveError}}

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		if cur.depth >= maxDepth {
			continue
		}

		for _, m := range game.Moves {
			next := cur.body.Head().Add(m)
			if !rules.IsSafe(cur.body, next, boardSize, obstacles) {
				continue
			}

			first := cur.first
			if first == game.MoveError {
				first = m
			}
			if next == target {
				return Path{First: first, Length: cur.depth + 1}, true
			}

			nb := rules.Advance(cur.body, m)
			if _, seen := visited[nb]; seen {
				continue
			}
			visited[nb] = struct{}{}
			queue = append(queue, searchState{body: nb, first: first, depth: cur.depth + 1})
		}
	}
	return Path{First: game.MoveError, Length: -1}, false
}
