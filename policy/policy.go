// Package policy decides what a snake does when no direction is safe.
//
// The historical behavior is to move up regardless, which is kept as
// Default. NoMove turns the situation into an explicit MoveError signal, and
// Script hands the choice to a Lua function.
package policy

import (
	"fmt"

	"github.com/brensch/snekgreedy/game"
)

// LastResort picks a move after every direction has been ruled out.
type LastResort interface {
	Choose(body game.Body, boardSize int32) game.Move
	Name() string
}

// Fixed always answers with the same move.
type Fixed struct {
	Move game.Move
}

func (f Fixed) Choose(game.Body, int32) game.Move { return f.Move }
func (f Fixed) Name() string                       { return "fixed:" + f.Move.String() }

// Default moves up, fatal or not.
var Default LastResort = Fixed{Move: game.MoveUp}

// NoMove reports that there is no safe move.
type NoMove struct{}

func (NoMove) Choose(game.Body, int32) game.Move { return game.MoveError }
func (NoMove) Name() string                       { return "none" }

// Parse maps a flag value to a built-in policy: a direction name for Fixed,
// or "none" for NoMove.
func Parse(name string) (LastResort, error) {
	if name == "none" {
		return NoMove{}, nil
	}
	m, err := game.ParseMove(name)
	if err != nil || !m.Valid() {
		return nil, fmt.Errorf("unknown last resort policy %q", name)
	}
	return Fixed{Move: m}, nil
}
