package alloc

import (
	"github.com/brensch/snekgreedy/game"
	"github.com/brensch/snekgreedy/pathfind"
)

// ClaimedDistance is the sentinel distance for entries that are unreachable
// or have been removed from consideration. It is larger than any path the
// depth-capped search can return.
const ClaimedDistance = 1000

// Entry is one cell of the distance matrix: the first move of a shortest
// path and its length in turns.
type Entry struct {
	Move     game.Move
	Distance int
}

// Unreachable is stored when the pathfinder finds no path.
var Unreachable = Entry{Move: game.MoveError, Distance: ClaimedDistance}

func (e Entry) Reachable() bool { return e.Move != game.MoveError }

// Matrix maps (snake, food) to an Entry. Row 0 is the controlled snake.
//
// During allocation entries only ever grow: inflate adds a non-negative
// detour and exclude raises an entry to ClaimedDistance.
type Matrix struct {
	foods []game.Point
	rows  [][]Entry
}

func newMatrix(snakes int, foods []game.Point) *Matrix {
	m := &Matrix{
		foods: append([]game.Point(nil), foods...),
		rows:  make([][]Entry, snakes),
	}
	for i := range m.rows {
		m.rows[i] = make([]Entry, len(foods))
	}
	return m
}

// BuildMatrix runs one search per (snake, food) pair. Each snake treats the
// first three segments of every other snake as fixed obstacles.
func BuildMatrix(snakes []game.Body, foods []game.Point, boardSize int32, finder pathfind.Finder) *Matrix {
	m := newMatrix(len(snakes), foods)
	for i, body := range snakes {
		obstacles := game.ObstaclesFor(snakes, i)
		for f, food := range foods {
			path, ok := finder.Find(body, food, obstacles, boardSize)
			if !ok {
				m.rows[i][f] = Unreachable
				continue
			}
			m.rows[i][f] = Entry{Move: path.First, Distance: path.Length}
		}
	}
	return m
}

func (m *Matrix) Snakes() int              { return len(m.rows) }
func (m *Matrix) Foods() int               { return len(m.foods) }
func (m *Matrix) Food(f int) game.Point    { return m.foods[f] }
func (m *Matrix) At(snake, food int) Entry { return m.rows[snake][food] }

// Row returns a copy of one snake's entries.
func (m *Matrix) Row(snake int) []Entry {
	return append([]Entry(nil), m.rows[snake]...)
}

func (m *Matrix) Clone() *Matrix {
	out := &Matrix{
		foods: append([]game.Point(nil), m.foods...),
		rows:  make([][]Entry, len(m.rows)),
	}
	for i, r := range m.rows {
		out.rows[i] = append([]Entry(nil), r...)
	}
	return out
}

func (m *Matrix) inflate(snake, food, by int) {
	if by < 0 {
		panic("alloc: negative detour")
	}
	m.rows[snake][food].Distance += by
}

func (m *Matrix) exclude(snake, food int) {
	if m.rows[snake][food].Distance < ClaimedDistance {
		m.rows[snake][food].Distance = ClaimedDistance
	}
}
