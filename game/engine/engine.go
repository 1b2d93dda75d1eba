package engine

import (
	"fmt"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() GameState
	SetState(state GameState) error
	Reset() GameState
	IsGameOver() bool
	IsVictory() bool
	GetScore() int

	// Movement operations
	Move(direction Direction) MoveOutcome
	CanMove(direction Direction) bool
	GetPossibleMoves() []Direction

	// Configuration
	GetConfig() *GameConfig

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface by holding the current state of
// one game together with its rules.
type GameEngine struct {
	rules   *Rules
	config  *GameConfig
	state   GameState
	history []MoveHistoryEntry
	games   int
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	rules, err := NewRules(config)
	if err != nil {
		return nil, err
	}

	return &GameEngine{
		rules:  rules,
		config: config,
		state:  rules.NewGame(),
		games:  1,
	}, nil
}

// NewEngineWithDefaults creates a new game engine with the classic configuration
func NewEngineWithDefaults() *GameEngine {
	engine, err := NewEngine(DefaultGameConfig())
	if err != nil {
		// The default configuration always validates
		panic(err)
	}
	return engine
}

// GetState returns the current game state
func (e *GameEngine) GetState() GameState {
	return e.state
}

// SetState replaces the current state (used by tools and tests to load fixtures)
func (e *GameEngine) SetState(state GameState) error {
	if state.Grid.Size != e.config.GridSize {
		return fmt.Errorf("state grid size %d does not match config grid size %d", state.Grid.Size, e.config.GridSize)
	}
	if len(state.Grid.Cells) != state.Grid.Size*state.Grid.Size {
		return fmt.Errorf("state grid has %d cells, want %d", len(state.Grid.Cells), state.Grid.Size*state.Grid.Size)
	}
	for _, v := range state.Grid.Cells {
		if v != 0 && (v < 2 || !IsPowerOfTwo(v)) {
			return fmt.Errorf("state grid holds invalid tile %d", v)
		}
	}
	e.state = state.Clone()
	return nil
}

// Reset starts a new game with the same rules. The move history is cumulative
// across resets.
func (e *GameEngine) Reset() GameState {
	e.state = e.rules.NewGame()
	e.games++
	return e.state
}

// IsGameOver returns whether the game accepts no further moves
func (e *GameEngine) IsGameOver() bool {
	return e.state.IsGameOver()
}

// IsVictory returns whether the win threshold has been reached
func (e *GameEngine) IsVictory() bool {
	return e.state.Status == Won
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	return e.state.Score
}

// GamesPlayed returns how many games this engine has started, including the
// current one.
func (e *GameEngine) GamesPlayed() int {
	return e.games
}

// Move applies a direction to the current state and records it in history
func (e *GameEngine) Move(direction Direction) MoveOutcome {
	outcome := e.rules.Step(e.state, direction)
	e.state = outcome.State
	e.addMoveToHistory(outcome)
	return outcome
}

// CanMove checks whether the direction would change the grid
func (e *GameEngine) CanMove(direction Direction) bool {
	return CanMove(e.state, direction)
}

// GetPossibleMoves returns all directions that would change the grid
func (e *GameEngine) GetPossibleMoves() []Direction {
	return PossibleMoves(e.state)
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.history
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.history) == 0 {
		return nil
	}
	return &e.history[len(e.history)-1]
}

// BulkMove applies directions in order until the game is over, returning
// the outcome of every attempted move.
func (e *GameEngine) BulkMove(directions []Direction) []MoveOutcome {
	outcomes := make([]MoveOutcome, 0, len(directions))

	for _, direction := range directions {
		if e.IsGameOver() {
			break
		}
		outcomes = append(outcomes, e.Move(direction))
	}

	return outcomes
}

func (e *GameEngine) addMoveToHistory(outcome MoveOutcome) {
	e.history = append(e.history, MoveHistoryEntry{
		Direction:  outcome.Direction,
		Moved:      outcome.Moved,
		ScoreDelta: outcome.ScoreDelta,
		Score:      outcome.State.Score,
		Spawned:    outcome.Spawned,
		Status:     outcome.State.Status,
		Timestamp:  time.Now().Unix(),
		MoveNumber: len(e.history) + 1,
	})
}
