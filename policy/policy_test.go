package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brensch/snekgreedy/game"
)

var trapped = game.Body{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 2}}

func TestBuiltins(t *testing.T) {
	assert.Equal(t, game.MoveUp, Default.Choose(trapped, 3))
	assert.Equal(t, "fixed:up", Default.Name())
	assert.Equal(t, game.MoveError, NoMove{}.Choose(trapped, 3))
	assert.Equal(t, game.MoveLeft, Fixed{Move: game.MoveLeft}.Choose(trapped, 3))
}

func TestParse(t *testing.T) {
	for name, want := range map[string]LastResort{
		"up":    Fixed{Move: game.MoveUp},
		"right": Fixed{Move: game.MoveRight},
		"none":  NoMove{},
	} {
		got, err := Parse(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	for _, bad := range []string{"", "error", "north"} {
		_, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestScript_ReturnsNumberOrName(t *testing.T) {
	s, err := NewScript("num", `
		function last_resort(hx, hy, n, body)
			if hx == n then return 1 end
			return 3
		end`)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, game.MoveRight, s.Choose(trapped, 3))
	assert.Equal(t, game.MoveLeft, s.Choose(trapped, 1))
	assert.Equal(t, "script:num", s.Name())

	named, err := NewScript("named", `function last_resort() return "down" end`)
	require.NoError(t, err)
	defer named.Close()
	assert.Equal(t, game.MoveDown, named.Choose(trapped, 3))

	none, err := NewScript("none", `function last_resort() return -1 end`)
	require.NoError(t, err)
	defer none.Close()
	assert.Equal(t, game.MoveError, none.Choose(trapped, 3))
}

func TestScript_SeesBody(t *testing.T) {
	// Move toward the tail's column.
	s, err := NewScript("tail", `
		function last_resort(hx, hy, n, body)
			local tail = body[4]
			if tail.x > hx then return "right" end
			return "left"
		end`)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, game.MoveRight, s.Choose(trapped, 3))
}

func TestScript_FallsBackOnBadResult(t *testing.T) {
	cases := map[string]string{
		"runtime error": `function last_resort() error("boom") end`,
		"out of range":  `function last_resort() return 7 end`,
		"fraction":      `function last_resort() return 1.5 end`,
		"unknown name":  `function last_resort() return "north" end`,
		"wrong type":    `function last_resort() return {} end`,
	}
	for name, src := range cases {
		s, err := NewScript(name, src)
		require.NoError(t, err, name)

		assert.Equal(t, game.MoveUp, s.Choose(trapped, 3), name)

		s.Fallback = Fixed{Move: game.MoveDown}
		assert.Equal(t, game.MoveDown, s.Choose(trapped, 3), name)
		s.Close()
	}
}

func TestScript_LoadErrors(t *testing.T) {
	_, err := NewScript("syntax", `function last_resort(`)
	assert.Error(t, err)

	_, err = NewScript("missing", `function something_else() return 0 end`)
	assert.ErrorIs(t, err, ErrNoEntryPoint)

	_, err = LoadScript(filepath.Join(t.TempDir(), "absent.lua"))
	assert.Error(t, err)
}

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "left.lua")
	require.NoError(t, os.WriteFile(path, []byte(`function last_resort() return 1 end`), 0o644))

	s, err := LoadScript(path)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "script:left.lua", s.Name())
	assert.Equal(t, game.MoveLeft, s.Choose(trapped, 3))

	s.Close()
	assert.Equal(t, game.MoveUp, s.Choose(trapped, 3), "closed script falls back")
}
