package policy

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/brensch/snekgreedy/game"
)

// ScriptEntry is the global function a last-resort script must define:
//
//	function last_resort(head_x, head_y, board_size, body) ... end
//
// body is an array of {x=, y=} tables from head to tail. The function returns
// a direction number (0..3, or -1 for no move) or a direction name.
const ScriptEntry = "last_resort"

var ErrNoEntryPoint = errors.New("script does not define " + ScriptEntry)

// Script runs a Lua last-resort function. A single interpreter is shared
// and guarded by a mutex. When the script fails or returns something that
// is not a move, Fallback is used.
type Script struct {
	Fallback LastResort
	Logger   *log.Logger

	name  string
	mu    sync.Mutex
	state *lua.LState
}

func LoadScript(path string) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read last resort script: %w", err)
	}
	return NewScript(filepath.Base(path), string(src))
}

func NewScript(name, src string) (*Script, error) {
	L := lua.NewState()
	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, fmt.Errorf("load last resort script %s: %w", name, err)
	}
	if fn := L.GetGlobal(ScriptEntry); fn.Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("load last resort script %s: %w", name, ErrNoEntryPoint)
	}
	return &Script{name: name, state: L}, nil
}

func (s *Script) Name() string { return "script:" + s.name }

func (s *Script) Choose(body game.Body, boardSize int32) game.Move {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.call(body, boardSize)
	if err != nil {
		fb := s.fallback()
		s.logger().Warn("last resort script failed", "script", s.name, "err", err, "fallback", fb.Name())
		return fb.Choose(body, boardSize)
	}
	return m
}

func (s *Script) call(body game.Body, boardSize int32) (game.Move, error) {
	if s.state == nil {
		return game.MoveError, errors.New("script is closed")
	}
	L := s.state

	segments := L.NewTable()
	for i, p := range body {
		seg := L.NewTable()
		seg.RawSetString("x", lua.LNumber(p.X))
		seg.RawSetString("y", lua.LNumber(p.Y))
		segments.RawSetInt(i+1, seg)
	}

	head := body.Head()
	err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal(ScriptEntry),
		NRet:    1,
		Protect: true,
	}, lua.LNumber(head.X), lua.LNumber(head.Y), lua.LNumber(boardSize), segments)
	if err != nil {
		return game.MoveError, err
	}
	ret := L.Get(-1)
	L.Pop(1)

	switch v := ret.(type) {
	case lua.LNumber:
		f := float64(v)
		if f != math.Trunc(f) {
			return game.MoveError, fmt.Errorf("returned non-integer %v", f)
		}
		n := int(f)
		if n < int(game.MoveError) || n > int(game.MoveRight) {
			return game.MoveError, fmt.Errorf("returned out of range move %d", n)
		}
		return game.Move(n), nil
	case lua.LString:
		return game.ParseMove(string(v))
	default:
		return game.MoveError, fmt.Errorf("returned %s, expected number or string", ret.Type())
	}
}

func (s *Script) fallback() LastResort {
	if s.Fallback != nil {
		return s.Fallback
	}
	return Default
}

func (s *Script) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.New(io.Discard)
}

func (s *Script) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != nil {
		s.state.Close()
		s.state = nil
	}
}
