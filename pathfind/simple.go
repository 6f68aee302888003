package pathfind

import (
	"github.com/brensch/snekgreedy/game"
)

// ClassicBoardSize is the board used by the single-food variants.
const ClassicBoardSize = 8

// GreedyMove heads straight for a single food on an open board: along x
// first, then along y, refusing only to leave the board or turn back onto
// the neck. It never proves that the food is unreachable.
func GreedyMove(body game.Body, food game.Point, boardSize int32) game.Move {
	head, neck := body[0], body[1]
	move := game.MoveUp

	stepX := game.MoveError
	switch {
	case food.X < head.X:
		stepX = game.MoveLeft
	case food.X > head.X:
		stepX = game.MoveRight
	}
	crushX := false
	if stepX != game.MoveError {
		move = stepX
		next := head.Add(stepX)
		crushX = next == neck
		if game.InBounds(next, boardSize) && !crushX {
			return stepX
		}
	}

	stepY := game.MoveError
	switch {
	case food.Y < head.Y:
		stepY = game.MoveDown
	case food.Y > head.Y:
		stepY = game.MoveUp
	}
	crushY := false
	if stepY != game.MoveError {
		move = stepY
		next := head.Add(stepY)
		crushY = next == neck
		if game.InBounds(next, boardSize) && !crushY {
			return stepY
		}
	}

	// Food is straight behind the head: sidestep.
	if crushX && stepY == game.MoveError {
		move = game.MoveUp
		if head.Y+1 > boardSize {
			move = game.MoveDown
		}
	}
	if crushY && stepX == game.MoveError {
		move = game.MoveRight
		if head.X+1 > boardSize {
			move = game.MoveLeft
		}
	}
	return move
}

// StaticMove finds the first move toward food around a fixed set of
// obstacles. The bool is false when the food cannot be reached.
func StaticMove(body game.Body, food game.Point, obstacles game.Obstacles, boardSize int32) (game.Move, bool) {
	path, ok := Find(body, food, obstacles, boardSize)
	if !ok {
		return game.MoveError, false
	}
	return path.First, true
}
