// Package api holds the JSON wire types for one decision call.
package api

import (
	"errors"
	"fmt"

	"github.com/brensch/snekgreedy/alloc"
	"github.com/brensch/snekgreedy/game"
)

// MaxBoardSize bounds the boards the service accepts. The search cost grows
// with the board area.
const MaxBoardSize = 255

var ErrBadRequest = errors.New("bad request")

type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DecideRequest is the input of one decision. Every snake is exactly four
// coordinates from head to tail; a dead snake is four (-1,-1) entries.
type DecideRequest struct {
	BoardSize       int       `json:"board_size"`
	Snake           []Coord   `json:"snake"`
	Rivals          [][]Coord `json:"rivals"`
	Foods           []Coord   `json:"foods"`
	RemainingRounds int       `json:"remaining_rounds"`
}

type DecideResponse struct {
	Move         string `json:"move"`
	Code         int    `json:"code"`
	Outcome      string `json:"outcome"`
	Rounds       int    `json:"rounds"`
	FallbackSafe bool   `json:"fallback_safe"`
	LastResort   string `json:"last_resort,omitempty"`
}

type InfoResponse struct {
	APIVersion string `json:"apiversion"`
	Author     string `json:"author"`
	Version    string `json:"version"`
	MaxRounds  int    `json:"max_rounds"`
	MaxDepth   int    `json:"max_depth"`
	LastResort string `json:"last_resort"`
}

func toBody(name string, cs []Coord) (game.Body, error) {
	var b game.Body
	if len(cs) != game.BodyLen {
		return b, fmt.Errorf("%w: %s has %d segments, want %d", ErrBadRequest, name, len(cs), game.BodyLen)
	}
	for i, c := range cs {
		b[i] = game.Point{X: int32(c.X), Y: int32(c.Y)}
	}
	return b, nil
}

// ToSnapshot converts and validates the request. Errors wrap ErrBadRequest.
func (r *DecideRequest) ToSnapshot() (*game.Snapshot, error) {
	if r.BoardSize < 1 || r.BoardSize > MaxBoardSize {
		return nil, fmt.Errorf("%w: board_size %d out of range [1,%d]", ErrBadRequest, r.BoardSize, MaxBoardSize)
	}

	you, err := toBody("snake", r.Snake)
	if err != nil {
		return nil, err
	}
	s := &game.Snapshot{
		BoardSize:       int32(r.BoardSize),
		You:             you,
		RemainingRounds: int32(r.RemainingRounds),
	}
	for i, rc := range r.Rivals {
		b, err := toBody(fmt.Sprintf("rival %d", i), rc)
		if err != nil {
			return nil, err
		}
		s.Rivals = append(s.Rivals, b)
	}
	for _, f := range r.Foods {
		s.Food = append(s.Food, game.Point{X: int32(f.X), Y: int32(f.Y)})
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return s, nil
}

func coords(ps []game.Point) []Coord {
	out := make([]Coord, len(ps))
	for i, p := range ps {
		out[i] = Coord{X: int(p.X), Y: int(p.Y)}
	}
	return out
}

// FromSnapshot builds the request that reproduces s.
func FromSnapshot(s *game.Snapshot) DecideRequest {
	r := DecideRequest{
		BoardSize:       int(s.BoardSize),
		Snake:           coords(s.You[:]),
		Foods:           coords(s.Food),
		RemainingRounds: int(s.RemainingRounds),
	}
	for _, b := range s.Rivals {
		r.Rivals = append(r.Rivals, coords(b[:]))
	}
	return r
}

func NewDecideResponse(d *alloc.Decision) DecideResponse {
	return DecideResponse{
		Move:         d.Move.String(),
		Code:         int(d.Move),
		Outcome:      d.Outcome.String(),
		Rounds:       len(d.Rounds),
		FallbackSafe: d.SafeFallback,
		LastResort:   d.LastResort,
	}
}
