package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/brensch/snekgreedy/alloc"
	"github.com/brensch/snekgreedy/game"
	"github.com/brensch/snekgreedy/render"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	claimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	outcomeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	helpStyle    = lipgloss.NewStyle().Faint(true)
)

// model steps through a decision: step 0 is the initial matrix and step i is
// the matrix after round i-1.
type model struct {
	snap *game.Snapshot
	d    *alloc.Decision
	step int
}

func newModel(snap *game.Snapshot, d *alloc.Decision) model {
	return model{snap: snap, d: d}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "n":
			if m.step < len(m.d.Rounds) {
				m.step++
			}
		case "left", "h", "p":
			if m.step > 0 {
				m.step--
			}
		case "home", "g":
			m.step = 0
		case "end", "G":
			m.step = len(m.d.Rounds)
		}
	}
	return m, nil
}

func (m model) matrix() *alloc.Matrix {
	if m.step == 0 {
		return m.d.Initial
	}
	return m.d.Rounds[m.step-1].After
}

func (m model) View() string {
	title := titleStyle.Render(fmt.Sprintf("step %d/%d", m.step, len(m.d.Rounds)))

	matrix := "snake is dead, no matrix"
	if mx := m.matrix(); mx != nil {
		matrix = render.Matrix(mx)
	}
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Render(render.Board(m.snap)),
		paneStyle.Render(matrix),
	)

	claims := "initial distances"
	if m.step > 0 {
		claims = claimStyle.Render(render.Round(m.d.Rounds[m.step-1]))
	}

	outcome := fmt.Sprintf("outcome=%s move=%s", m.d.Outcome, m.d.Move)
	switch {
	case m.d.Target != nil:
		outcome += fmt.Sprintf(" target=(%d,%d)", m.d.Target.Target.X, m.d.Target.Target.Y)
	case m.d.SafeFallback:
		outcome += " fallback=safe"
	case m.d.LastResort != "":
		outcome += " fallback=" + m.d.LastResort
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		panes,
		claims,
		outcomeStyle.Render(outcome),
		helpStyle.Render("←/→ step · g/G first/last · q quit"),
	) + "\n"
}
