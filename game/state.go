// Package game defines the core state types for the multi-snake food race.
//
// These types are the minimal snapshot a single decision call needs: the
// board side, the controlled snake, its rivals and the food on the board.
// Everything is a plain value so a snapshot can be cloned cheaply and
// discarded when the call returns.
package game

import (
	"errors"
	"fmt"
)

// Point is a board coordinate. Valid cells are in [1, boardSize] on both axes.
type Point struct {
	X int32
	Y int32
}

// DeadPoint marks every segment of a snake that is no longer on the board.
var DeadPoint = Point{X: -1, Y: -1}

// BodyLen is the fixed number of segments of every snake.
const BodyLen = 4

// Body is a snake from head to tail.
type Body [BodyLen]Point

func (b Body) Head() Point { return b[0] }
func (b Body) Tail() Point { return b[BodyLen-1] }

// IsDead reports whether every segment is the dead sentinel.
func (b Body) IsDead() bool {
	for _, p := range b {
		if p != DeadPoint {
			return false
		}
	}
	return true
}

// Blocks reports whether p is one of the first three segments. The tail cell
// is free because the tail leaves it on the same move.
func (b Body) Blocks(p Point) bool {
	for _, s := range b[:BodyLen-1] {
		if s == p {
			return true
		}
	}
	return false
}

// Snapshot is the complete input of one decision call.
type Snapshot struct {
	BoardSize       int32
	You             Body
	Rivals          []Body
	Food            []Point
	RemainingRounds int32
}

// Snakes returns every snake with the controlled snake at index 0.
func (s *Snapshot) Snakes() []Body {
	out := make([]Body, 0, len(s.Rivals)+1)
	out = append(out, s.You)
	return append(out, s.Rivals...)
}

// Clone performs a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}

	out := &Snapshot{
		BoardSize:       s.BoardSize,
		You:             s.You,
		RemainingRounds: s.RemainingRounds,
	}
	if len(s.Rivals) > 0 {
		out.Rivals = make([]Body, len(s.Rivals))
		copy(out.Rivals, s.Rivals)
	}
	if len(s.Food) > 0 {
		out.Food = make([]Point, len(s.Food))
		copy(out.Food, s.Food)
	}
	return out
}

var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Validate checks that the snapshot fits on its board. Dead snakes are
// allowed to sit on the off-board sentinel.
func (s *Snapshot) Validate() error {
	if s.BoardSize < 1 {
		return fmt.Errorf("%w: board size %d", ErrInvalidSnapshot, s.BoardSize)
	}
	check := func(name string, b Body) error {
		if b.IsDead() {
			return nil
		}
		for i, p := range b {
			if !InBounds(p, s.BoardSize) {
				return fmt.Errorf("%w: %s segment %d at (%d,%d) is off the board", ErrInvalidSnapshot, name, i, p.X, p.Y)
			}
		}
		return nil
	}
	if err := check("snake", s.You); err != nil {
		return err
	}
	for i, r := range s.Rivals {
		if err := check(fmt.Sprintf("rival %d", i), r); err != nil {
			return err
		}
	}
	for i, f := range s.Food {
		if !InBounds(f, s.BoardSize) {
			return fmt.Errorf("%w: food %d at (%d,%d) is off the board", ErrInvalidSnapshot, i, f.X, f.Y)
		}
	}
	return nil
}
