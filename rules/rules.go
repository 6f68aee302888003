// Package rules implements the single-step movement rules used while
// searching: advancing a body by one move and deciding whether a cell is
// safe to enter.
package rules

import (
	"github.com/brensch/snekgreedy/game"
)

// Advance returns the body after moving the head one cell in the given
// direction: new head, previous head, previous segment 2, previous segment 3.
// The previous tail is dropped.
func Advance(body game.Body, move game.Move) game.Body {
	return game.Body{body[0].Add(move), body[0], body[1], body[2]}
}

// IsSafe reports whether the head of body may enter p this turn.
func IsSafe(body game.Body, p game.Point, boardSize int32, obstacles game.Obstacles) bool {
	// 1. Bounds
	if !game.InBounds(p, boardSize) {
		return false
	}

	// 2. Own body; the tail moves out on the same turn
	if body.Blocks(p) {
		return false
	}

	// 3. Everything else
	return !obstacles.Contains(p)
}

// LegalMoves returns the safe moves in up, left, down, right order.
func LegalMoves(body game.Body, boardSize int32, obstacles game.Obstacles) []game.Move {
	moves := make([]game.Move, 0, len(game.Moves))
	for _, m := range game.Moves {
		if IsSafe(body, body.Head().Add(m), boardSize, obstacles) {
			moves = append(moves, m)
		}
	}
	return moves
}

// SafeMove returns the first legal move in scan order. When every direction
// is fatal it returns MoveError and false; choosing what to do then is left
// to the caller's last-resort policy.
func SafeMove(body game.Body, boardSize int32, obstacles game.Obstacles) (game.Move, bool) {
	head := body.Head()
	for _, m := range game.Moves {
		if IsSafe(body, head.Add(m), boardSize, obstacles) {
			return m, true
		}
	}
	return game.MoveError, false
}
