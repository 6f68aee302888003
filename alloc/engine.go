// Package alloc picks a move for the controlled snake by simulating which
// snake wins each food.
//
// A distance matrix is built once per call. Rivals then claim the foods they
// reach first, round by round. Each claim makes every other food look further
// away for that rival and removes the claimed food from the controlled
// snake's consideration. The first time the controlled snake is strictly
// fastest to some food, it heads there.
package alloc

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/brensch/snekgreedy/game"
	"github.com/brensch/snekgreedy/pathfind"
	"github.com/brensch/snekgreedy/policy"
	"github.com/brensch/snekgreedy/rules"
)

const DefaultMaxRounds = 20

// NoopMove is returned for a snake that is no longer on the board.
const NoopMove = game.MoveUp

type Config struct {
	MaxRounds  int
	MaxDepth   int
	LastResort policy.LastResort
	Logger     *log.Logger
}

func DefaultConfig() Config {
	return Config{
		MaxRounds:  DefaultMaxRounds,
		MaxDepth:   pathfind.DefaultMaxDepth,
		LastResort: policy.Default,
	}
}

// Engine holds no per-call state and is safe for concurrent use as long as
// its LastResort is.
type Engine struct {
	cfg    Config
	finder pathfind.Finder
	logger *log.Logger
}

func New(cfg Config) *Engine {
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = DefaultMaxRounds
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = pathfind.DefaultMaxDepth
	}
	if cfg.LastResort == nil {
		cfg.LastResort = policy.Default
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{
		cfg:    cfg,
		finder: pathfind.Finder{MaxDepth: cfg.MaxDepth},
		logger: logger.WithPrefix("alloc"),
	}
}

func (e *Engine) Config() Config { return e.cfg }

// Decide returns the move for s.You.
func (e *Engine) Decide(s *game.Snapshot) game.Move {
	return e.Trace(s).Move
}

// Trace runs the same computation as Decide and keeps every intermediate
// step. The snapshot is not modified.
func (e *Engine) Trace(s *game.Snapshot) *Decision {
	d := &Decision{RemainingRounds: s.RemainingRounds}
	if s.You.IsDead() {
		d.Move = NoopMove
		d.Outcome = OutcomeDead
		return d
	}

	snakes := s.Snakes()
	m := BuildMatrix(snakes, s.Food, s.BoardSize, e.finder)
	d.Initial = m.Clone()
	e.logger.Debug("matrix built", "snakes", m.Snakes(), "foods", m.Foods())

	e.allocate(m, d)
	d.Final = m

	if d.Outcome == OutcomeClaimed {
		d.Move = d.Target.Entry.Move
		e.logger.Debug("claimed food", "food", d.Target.Food, "move", d.Move, "distance", d.Target.Entry.Distance, "rounds", len(d.Rounds))
		return d
	}

	obstacles := game.ObstaclesFor(snakes, 0)
	if mv, ok := rules.SafeMove(s.You, s.BoardSize, obstacles); ok {
		d.Move = mv
		d.SafeFallback = true
	} else {
		d.Move = e.cfg.LastResort.Choose(s.You, s.BoardSize)
		d.LastResort = e.cfg.LastResort.Name()
	}
	e.logger.Debug("no food won", "outcome", d.Outcome, "move", d.Move, "safe", d.SafeFallback)
	return d
}

// allocate runs the claim rounds on m in place.
func (e *Engine) allocate(m *Matrix, d *Decision) {
	n := m.Snakes()
	d.Iterations = make([]int, n)
	d.Claims = make([][]int, n)

	for round := 0; round < e.cfg.MaxRounds; round++ {
		if c, ok := SelectCandidate(0, m, d.Iterations[0]); ok {
			d.Outcome = OutcomeClaimed
			d.Target = &c
			return
		}

		r := Round{Index: round}
		for i := 1; i < n; i++ {
			c, ok := SelectCandidate(i, m, d.Iterations[i])
			if !ok {
				continue
			}
			r.Claims = append(r.Claims, c)
			d.Claims[i] = append(d.Claims[i], c.Food)
			d.Iterations[i]++
		}
		if len(r.Claims) == 0 {
			d.Outcome = OutcomeStalemate
			return
		}

		// A claiming rival has to travel from its food to reach any other.
		for _, c := range r.Claims {
			for f := range m.Foods() {
				if f == c.Food || m.rows[c.Snake][f].Distance == ClaimedDistance {
					continue
				}
				m.inflate(c.Snake, f, game.Manhattan(c.Target, m.foods[f]))
			}
		}
		for _, c := range r.Claims {
			m.exclude(0, c.Food)
		}

		r.After = m.Clone()
		d.Rounds = append(d.Rounds, r)
		e.logger.Debug("round", "index", round, "claims", len(r.Claims))
	}
	d.Outcome = OutcomeRoundLimit
}

var defaultEngine = New(DefaultConfig())

// Decide picks the move for snake with the default configuration.
// remainingRounds is carried for callers but does not affect the result.
func Decide(boardSize int32, snake game.Body, rivals []game.Body, foods []game.Point, remainingRounds int32) game.Move {
	return defaultEngine.Decide(&game.Snapshot{
		BoardSize:       boardSize,
		You:             snake,
		Rivals:          rivals,
		Food:            foods,
		RemainingRounds: remainingRounds,
	})
}
