package game

import "fmt"

// Move is one step of the head. The numeric values are part of the wire
// format: 0=up, 1=left, 2=down, 3=right.
type Move int8

const (
	MoveUp    Move = 0
	MoveLeft  Move = 1
	MoveDown  Move = 2
	MoveRight Move = 3

	// MoveError means no valid move was found.
	MoveError Move = -1
)

// Moves lists the directions in scan order.
var Moves = [4]Move{MoveUp, MoveLeft, MoveDown, MoveRight}

var moveDeltas = [4]Point{
	MoveUp:    {X: 0, Y: 1},
	MoveLeft:  {X: -1, Y: 0},
	MoveDown:  {X: 0, Y: -1},
	MoveRight: {X: 1, Y: 0},
}

var moveNames = [4]string{"up", "left", "down", "right"}

func (m Move) Valid() bool { return m >= MoveUp && m <= MoveRight }

// Delta returns the coordinate change of the move, or the zero point for MoveError.
func (m Move) Delta() Point {
	if !m.Valid() {
		return Point{}
	}
	return moveDeltas[m]
}

func (m Move) String() string {
	if !m.Valid() {
		return "error"
	}
	return moveNames[m]
}

// ParseMove accepts the lower-case direction names and "error".
func ParseMove(s string) (Move, error) {
	for i, name := range moveNames {
		if name == s {
			return Move(i), nil
		}
	}
	if s == "error" {
		return MoveError, nil
	}
	return MoveError, fmt.Errorf("unknown move %q", s)
}

func (p Point) Add(m Move) Point {
	d := m.Delta()
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// InBounds reports whether p lies on a square board of the given side.
func InBounds(p Point, boardSize int32) bool {
	return p.X >= 1 && p.X <= boardSize && p.Y >= 1 && p.Y <= boardSize
}

func Manhattan(a, b Point) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return int(dx + dy)
}

// Obstacles is a set of impassable cells.
type Obstacles map[Point]struct{}

func NewObstacles(points ...Point) Obstacles {
	o := make(Obstacles, len(points))
	for _, p := range points {
		o[p] = struct{}{}
	}
	return o
}

func (o Obstacles) Contains(p Point) bool {
	_, ok := o[p]
	return ok
}

// ObstaclesFor collects the first three segments of every snake except
// snakes[self]. Rival tails are left out for the same reason a snake may
// step onto its own tail.
func ObstaclesFor(snakes []Body, self int) Obstacles {
	o := make(Obstacles, (BodyLen-1)*len(snakes))
	for j, s := range snakes {
		if j == self {
			continue
		}
		for _, p := range s[:BodyLen-1] {
			o[p] = struct{}{}
		}
	}
	return o
}
