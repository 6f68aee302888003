package pathfind

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brensch/snekgreedy/game"
	"github.com/brensch/snekgreedy/rules"
)

// bruteShortest enumerates every move sequence up to limit turns and returns
// the shortest length that lands the head on target together with every
// first move that achieves it.
func bruteShortest(body game.Body, target game.Point, obstacles game.Obstacles, size int32, limit int) (int, map[game.Move]bool) {
	best := -1
	firsts := map[game.Move]bool{}

	var dfs func(b game.Body, depth int, first game.Move)
	dfs = func(b game.Body, depth int, first game.Move) {
		if depth == limit || (best != -1 && depth >= best) {
			return
		}
		for _, m := range game.Moves {
			next := b.Head().Add(m)
			if !rules.IsSafe(b, next, size, obstacles) {
				continue
			}
			f := first
			if f == game.MoveError {
				f = m
			}
			if next == target {
				if best == -1 || depth+1 < best {
					best = depth + 1
					firsts = map[game.Move]bool{}
				}
				firsts[f] = true
				continue
			}
			dfs(rules.Advance(b, m), depth+1, f)
		}
	}
	dfs(body, 0, game.MoveError)
	return best, firsts
}

func randomBody(rng *rand.Rand, size int32) game.Body {
	for {
		var b game.Body
		b[0] = game.Point{X: rng.Int31n(size) + 1, Y: rng.Int31n(size) + 1}
		ok := true
		for i := 1; i < game.BodyLen && ok; i++ {
			ok = false
			for _, k := range rng.Perm(4) {
				p := b[i-1].Add(game.Moves[k])
				if !game.InBounds(p, size) {
					continue
				}
				clash := false
				for _, q := range b[:i] {
					if q == p {
						clash = true
					}
				}
				if !clash {
					b[i] = p
					ok = true
					break
				}
			}
		}
		if ok {
			return b
		}
	}
}

func TestFind_StraightShot(t *testing.T) {
	body := game.Body{{X: 4, Y: 4}, {X: 3, Y: 4}, {X: 2, Y: 4}, {X: 1, Y: 4}}

	path, ok := Find(body, game.Point{X: 6, Y: 4}, nil, 8)
	require.True(t, ok)
	assert.Equal(t, game.MoveRight, path.First)
	assert.Equal(t, 2, path.Length)
}

func TestFind_TailCellIsEnterable(t *testing.T) {
	// Coiled snake whose tail sits right next to its head.
	body := game.Body{{X: 2, Y: 2}, {X: 2, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}}

	path, ok := Find(body, game.Point{X: 1, Y: 2}, nil, 5)
	require.True(t, ok)
	assert.Equal(t, game.MoveLeft, path.First)
	assert.Equal(t, 1, path.Length)
}

func TestFind_NeckIsNeverEnteredDirectly(t *testing.T) {
	body := game.Body{{X: 2, Y: 2}, {X: 2, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}}
	neck := game.Point{X: 2, Y: 1}

	path, ok := Find(body, neck, nil, 5)
	require.True(t, ok)
	assert.Greater(t, path.Length, 1)

	want, firsts := bruteShortest(body, neck, nil, 5, 10)
	assert.Equal(t, want, path.Length)
	assert.True(t, firsts[path.First])
}

func TestFind_Unreachable(t *testing.T) {
	body := game.Body{{X: 4, Y: 4}, {X: 3, Y: 4}, {X: 2, Y: 4}, {X: 1, Y: 4}}
	walls := game.NewObstacles(game.Point{X: 1, Y: 2}, game.Point{X: 2, Y: 1})

	path, ok := Find(body, game.Point{X: 1, Y: 1}, walls, 5)
	assert.False(t, ok)
	assert.Equal(t, game.MoveError, path.First)

	_, ok = Find(body, game.Point{X: 1, Y: 2}, walls, 5)
	assert.False(t, ok, "a target on an obstacle is unreachable")
}

func TestFinder_DepthCap(t *testing.T) {
	body := game.Body{{X: 4, Y: 4}, {X: 3, Y: 4}, {X: 2, Y: 4}, {X: 1, Y: 4}}
	food := game.Point{X: 6, Y: 4}

	_, ok := Finder{MaxDepth: 1}.Find(body, food, nil, 8)
	assert.False(t, ok)

	path, ok := Finder{MaxDepth: 2}.Find(body, food, nil, 8)
	require.True(t, ok)
	assert.Equal(t, 2, path.Length)
}

func TestFind_MatchesBruteForceOnSmallBoards(t *testing.T) {
	const size = 5
	const limit = 9
	rng := rand.New(rand.NewSource(7))

	compared := 0
	for i := 0; i < 300; i++ {
		body := randomBody(rng, size)
		obstacles := game.Obstacles{}
		for k := 0; k < 4; k++ {
			p := game.Point{X: rng.Int31n(size) + 1, Y: rng.Int31n(size) + 1}
			if p == body.Head() || body.Blocks(p) || p == body.Tail() {
				continue
			}
			obstacles[p] = struct{}{}
		}
		target := game.Point{X: rng.Int31n(size) + 1, Y: rng.Int31n(size) + 1}

		path, ok := Find(body, target, obstacles, size)
		want, firsts := bruteShortest(body, target, obstacles, size, limit)

		if want == -1 {
			// Nothing within the brute-force horizon; the search may still
			// find a longer path.
			if ok {
				assert.Greater(t, path.Length, limit, "case %d", i)
			}
			continue
		}
		compared++
		require.True(t, ok, "case %d: body=%v target=%v", i, body, target)
		assert.Equal(t, want, path.Length, "case %d: body=%v target=%v obstacles=%v", i, body, target, obstacles)
		assert.True(t, firsts[path.First], "case %d: first move %s is not on a shortest path", i, path.First)
	}
	assert.Greater(t, compared, 100)
}
