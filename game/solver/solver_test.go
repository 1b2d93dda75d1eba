package solver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/tile-merge-game/game/engine"
)

func stateFromRows(t *testing.T, rows [][]int) engine.GameState {
	t.Helper()
	config := engine.DefaultGameConfig()
	config.GridSize = len(rows)
	rules, err := engine.NewRules(config)
	require.NoError(t, err)
	g, err := engine.GridFromRows(rows)
	require.NoError(t, err)
	state, err := rules.FromGrid(g, 0)
	require.NoError(t, err)
	return state
}

func builtins(t *testing.T) []Strategy {
	t.Helper()
	var strategies []Strategy
	for _, name := range Names() {
		s, err := New(name, 1)
		require.NoError(t, err)
		strategies = append(strategies, s)
	}
	return strategies
}

func TestNew(t *testing.T) {
	s, err := New("", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultStrategy, s.Name())

	s, err = New(" Greedy ", 0)
	require.NoError(t, err)
	assert.Equal(t, GreedyName, s.Name())

	_, err = New("minimax", 0)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestStrategies_OnlyEffectiveMoves(t *testing.T) {
	// Only Right changes this board
	state := stateFromRows(t, [][]int{
		{2, 0, 0, 0},
		{4, 0, 0, 0},
		{8, 0, 0, 0},
		{16, 0, 0, 0},
	})

	for _, s := range builtins(t) {
		t.Run(s.Name(), func(t *testing.T) {
			dir, ok := s.Choose(state)
			require.True(t, ok)
			assert.Equal(t, engine.Right, dir)
		})
	}
}

func TestStrategies_NoMoves(t *testing.T) {
	state := stateFromRows(t, [][]int{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{4, 2, 4, 2},
	})
	require.Equal(t, engine.Lost, state.Status)

	for _, s := range builtins(t) {
		t.Run(s.Name(), func(t *testing.T) {
			_, ok := s.Choose(state)
			assert.False(t, ok)
		})
	}
}

func TestGreedy_PrefersMerge(t *testing.T) {
	state := stateFromRows(t, [][]int{
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 64, 64},
	})

	dir, ok := Greedy{}.Choose(state)
	require.True(t, ok)
	assert.Contains(t, []engine.Direction{engine.Left, engine.Right}, dir)
}

func TestExpectimax_DepthClamp(t *testing.T) {
	assert.Equal(t, 1, NewExpectimax(0).Depth)
	assert.Equal(t, MaxDepth, NewExpectimax(99).Depth)
	assert.Equal(t, 3, NewExpectimax(3).Depth)
}

func TestPlay(t *testing.T) {
	config := engine.DefaultGameConfig().WithSeed(3)
	config.WinThreshold = 64

	for _, s := range builtins(t) {
		t.Run(s.Name(), func(t *testing.T) {
			rules, err := engine.NewRules(config)
			require.NoError(t, err)

			result := Play(rules, s, 0)
			assert.True(t, result.Status.IsTerminal(), "game should run to completion")
			assert.Positive(t, result.Moves)
			assert.GreaterOrEqual(t, result.MaxTile, 8)
			if result.Status == engine.Won {
				assert.GreaterOrEqual(t, result.MaxTile, 64)
			}
		})
	}
}

func TestPlay_MaxMoves(t *testing.T) {
	rules, err := engine.NewRules(engine.DefaultGameConfig().WithSeed(9))
	require.NoError(t, err)

	result := Play(rules, NewRandom(9), 5)
	assert.Equal(t, 5, result.Moves)
	assert.Equal(t, engine.InProgress, result.Status)
}

func TestExpectimax_BeatsRandom(t *testing.T) {
	if testing.Short() {
		t.Skip("plays full games")
	}

	total := func(s Strategy) int {
		sum := 0
		for seed := int64(1); seed <= 3; seed++ {
			rules, err := engine.NewRules(engine.DefaultGameConfig().WithSeed(seed))
			require.NoError(t, err)
			sum += Play(rules, s, 0).Score
		}
		return sum
	}

	assert.Greater(t, total(NewExpectimax(DefaultDepth)), total(NewRandom(1)))
}

func TestLuaStrategy(t *testing.T) {
	state := stateFromRows(t, [][]int{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	t.Run("script choice", func(t *testing.T) {
		s, err := NewLuaStrategy("lua:down", `
function choose(board, score, moves)
  return "down"
end`)
		require.NoError(t, err)
		defer s.Close()

		dir, ok := s.Choose(state)
		require.True(t, ok)
		assert.Equal(t, engine.Down, dir)
		assert.Equal(t, "lua:down", s.Name())
	})

	t.Run("script reads board and moves", func(t *testing.T) {
		s, err := NewLuaStrategy("lua:first", `
function choose(board, score, moves)
  if board[1][1] ~= 2 or board[1][2] ~= 2 or #board ~= 4 then
    error("unexpected board")
  end
  return moves[#moves]
end`)
		require.NoError(t, err)
		defer s.Close()

		dir, ok := s.Choose(state)
		require.True(t, ok)
		possible := engine.PossibleMoves(state)
		assert.Equal(t, possible[len(possible)-1], dir)
	})

	t.Run("ineffective choice falls back", func(t *testing.T) {
		// Left is possible here; up is not.
		s, err := NewLuaStrategy("lua:up", `function choose() return "up" end`)
		require.NoError(t, err)
		defer s.Close()

		dir, ok := s.Choose(state)
		require.True(t, ok)
		assert.NotEqual(t, engine.Up, dir)
		assert.True(t, engine.CanMove(state, dir))
	})

	t.Run("runtime error falls back", func(t *testing.T) {
		s, err := NewLuaStrategy("lua:boom", `function choose() error("boom") end`)
		require.NoError(t, err)
		defer s.Close()

		dir, ok := s.Choose(state)
		require.True(t, ok)
		assert.True(t, engine.CanMove(state, dir))
	})

	t.Run("non string falls back", func(t *testing.T) {
		s, err := NewLuaStrategy("lua:number", `function choose() return 42 end`)
		require.NoError(t, err)
		defer s.Close()

		_, ok := s.Choose(state)
		assert.True(t, ok)
	})

	t.Run("timeout falls back", func(t *testing.T) {
		s, err := NewLuaStrategy("lua:loop", `function choose() while true do end end`)
		require.NoError(t, err)
		defer s.Close()
		s.SetTimeout(50 * time.Millisecond)

		dir, ok := s.Choose(state)
		require.True(t, ok)
		assert.True(t, engine.CanMove(state, dir))
	})

	t.Run("missing choose", func(t *testing.T) {
		_, err := NewLuaStrategy("lua:empty", `x = 1`)
		assert.ErrorIs(t, err, ErrNoChooseFunction)
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := NewLuaStrategy("lua:bad", `function choose(`)
		assert.Error(t, err)
	})
}
