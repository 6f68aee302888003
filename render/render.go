// Package render draws snapshots and allocation traces as plain text.
package render

import (
	"fmt"
	"strings"

	"github.com/brensch/snekgreedy/alloc"
	"github.com/brensch/snekgreedy/game"
)

// Board draws the board with y increasing upwards. The controlled snake is
// O/o, rival i is the i-th capital letter for its head and lower case for
// the rest of its body, and F is food. Off-board segments are skipped.
func Board(s *game.Snapshot) string {
	n := int(s.BoardSize)
	grid := make([][]byte, n)
	for y := range grid {
		grid[y] = []byte(strings.Repeat(".", n))
	}

	put := func(p game.Point, c byte) {
		if game.InBounds(p, s.BoardSize) {
			grid[p.Y-1][p.X-1] = c
		}
	}

	for _, f := range s.Food {
		put(f, 'F')
	}
	for i, r := range s.Rivals {
		head := byte('A' + i%26)
		for j := len(r) - 1; j >= 0; j-- {
			c := head + ('a' - 'A')
			if j == 0 {
				c = head
			}
			put(r[j], c)
		}
	}
	for j := len(s.You) - 1; j >= 0; j-- {
		c := byte('o')
		if j == 0 {
			c = 'O'
		}
		put(s.You[j], c)
	}

	var sb strings.Builder
	for y := n - 1; y >= 0; y-- {
		fmt.Fprintf(&sb, "%2d ", y+1)
		for x := 0; x < n; x++ {
			sb.WriteByte(grid[y][x])
			sb.WriteByte(' ')
		}
		sb.WriteString("\n")
	}
	sb.WriteString("   ")
	for x := 1; x <= n; x++ {
		fmt.Fprintf(&sb, "%d ", x%10)
	}
	sb.WriteString("\n")
	return sb.String()
}

// Cell formats one matrix entry: "-" when unreachable, "x" once the distance
// has reached the claimed sentinel, otherwise the move initial and distance.
func Cell(e alloc.Entry) string {
	switch {
	case !e.Reachable():
		return "-"
	case e.Distance >= alloc.ClaimedDistance:
		return "x"
	default:
		return fmt.Sprintf("%c%d", e.Move.String()[0], e.Distance)
	}
}

// SnakeLabel names row i of a matrix.
func SnakeLabel(i int) string {
	if i == 0 {
		return "you"
	}
	return string(rune('A' + (i-1)%26))
}

// Matrix draws one row per snake and one column per food.
func Matrix(m *alloc.Matrix) string {
	if m == nil {
		return ""
	}

	const width = 8
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-5s", "")
	for f := range m.Foods() {
		p := m.Food(f)
		fmt.Fprintf(&sb, "%*s", width, fmt.Sprintf("(%d,%d)", p.X, p.Y))
	}
	sb.WriteString("\n")
	for i := range m.Snakes() {
		fmt.Fprintf(&sb, "%-5s", SnakeLabel(i))
		for f := range m.Foods() {
			fmt.Fprintf(&sb, "%*s", width, Cell(m.At(i, f)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Round lists the claims made in one allocation round.
func Round(r alloc.Round) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "round %d:", r.Index)
	for _, c := range r.Claims {
		fmt.Fprintf(&sb, " %s->(%d,%d)@%d", SnakeLabel(c.Snake), c.Target.X, c.Target.Y, c.Entry.Distance)
	}
	return sb.String()
}

// Decision draws the board followed by the full allocation trace.
func Decision(s *game.Snapshot, d *alloc.Decision) string {
	var sb strings.Builder
	sb.WriteString(Board(s))
	if d.Initial != nil {
		sb.WriteString("\ninitial\n")
		sb.WriteString(Matrix(d.Initial))
	}
	for _, r := range d.Rounds {
		sb.WriteString(Round(r))
		sb.WriteString("\n")
	}
	if len(d.Rounds) > 0 {
		sb.WriteString("\nfinal\n")
		sb.WriteString(Matrix(d.Final))
	}
	fmt.Fprintf(&sb, "\noutcome=%s move=%s", d.Outcome, d.Move)
	if d.Target != nil {
		fmt.Fprintf(&sb, " target=(%d,%d)", d.Target.Target.X, d.Target.Target.Y)
	}
	if d.SafeFallback {
		sb.WriteString(" fallback=safe")
	}
	if d.LastResort != "" {
		fmt.Fprintf(&sb, " fallback=%s", d.LastResort)
	}
	sb.WriteString("\n")
	return sb.String()
}
