package solver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/wricardo/tile-merge-game/game/engine"
)

var ErrNoChooseFunction = errors.New("lua script does not define a choose function")

// DefaultLuaTimeout bounds a single call into a script
const DefaultLuaTimeout = time.Second

// LuaStrategy delegates move selection to a Lua script defining
//
//	function choose(board, score, moves) return "left" end
//
// board is a table of rows (1-based) of tile values, 0 for empty. moves lists
// the effective directions. When the script fails, returns something that is
// not an effective direction or runs past its timeout, the fallback strategy
// decides instead.
type LuaStrategy struct {
	name     string
	timeout  time.Duration
	fallback Strategy

	mu sync.Mutex
	L  *lua.LState
}

// NewLuaStrategy compiles source and checks that it defines choose.
func NewLuaStrategy(name, source string) (*LuaStrategy, error) {
	L := lua.NewState()
	if err := L.DoString(source); err != nil {
		L.Close()
		return nil, fmt.Errorf("failed to load lua strategy %s: %w", name, err)
	}
	if L.GetGlobal("choose").Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("%s: %w", name, ErrNoChooseFunction)
	}

	return &LuaStrategy{
		name:     name,
		timeout:  DefaultLuaTimeout,
		fallback: Greedy{},
		L:        L,
	}, nil
}

// LoadLuaStrategy reads a script from disk. The strategy is named after the
// file.
func LoadLuaStrategy(path string) (*LuaStrategy, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lua strategy: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return NewLuaStrategy("lua:"+name, string(source))
}

// SetTimeout changes the per-call limit
func (s *LuaStrategy) SetTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeout = d
}

func (s *LuaStrategy) Name() string { return s.name }

func (s *LuaStrategy) Choose(state engine.GameState) (engine.Direction, bool) {
	possible := engine.PossibleMoves(state)
	if len(possible) == 0 {
		return "", false
	}

	dir, err := s.call(state, possible)
	if err == nil && !slices.Contains(possible, dir) {
		err = fmt.Errorf("script chose %q, which does not change the board", dir)
	}
	if err != nil {
		log.Warn().Err(err).Str("strategy", s.name).Msg("lua strategy failed, using fallback")
		return s.fallback.Choose(state)
	}
	return dir, true
}

func (s *LuaStrategy) call(state engine.GameState, possible []engine.Direction) (engine.Direction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	L := s.L
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	L.SetContext(ctx)
	defer L.RemoveContext()

	board := L.NewTable()
	for r, row := range state.Grid.Rows() {
		cells := L.NewTable()
		for c, v := range row {
			cells.RawSetInt(c+1, lua.LNumber(v))
		}
		board.RawSetInt(r+1, cells)
	}

	moves := L.NewTable()
	for i, dir := range possible {
		moves.RawSetInt(i+1, lua.LString(dir))
	}

	err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal("choose"),
		NRet:    1,
		Protect: true,
	}, board, lua.LNumber(state.Score), moves)
	if err != nil {
		return "", err
	}

	ret := L.Get(-1)
	L.Pop(1)

	str, ok := ret.(lua.LString)
	if !ok {
		return "", fmt.Errorf("choose returned %s, want a direction string", ret.Type())
	}
	return engine.ParseDirection(string(str))
}

// Close releases the Lua state
func (s *LuaStrategy) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.L.Close()
}
