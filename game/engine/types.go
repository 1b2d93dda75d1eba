package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Direction is the side of the grid tiles slide toward.
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions lists every direction in a stable order.
var Directions = []Direction{Up, Down, Left, Right}

// Status is the terminal/non-terminal classification of a game
type Status string

const (
	InProgress Status = "in_progress"
	Won        Status = "won"
	Lost       Status = "lost"
)

const (
	// Validation constants
	DefaultGridSize             = 4
	MinGridSize                 = 2
	MaxGridSize                 = 8
	DefaultWinThreshold         = 2048
	MinWinThreshold             = 8
	DefaultSpawnFourProbability = 0.1
	MaxBulkMoves                = 50
	WebSocketBufferSize         = 256
)

var (
	ErrInvalidConfig    = errors.New("invalid game configuration")
	ErrInvalidDirection = errors.New("invalid direction")
)

// ParseDirection converts user input into a Direction. Besides the full names
// it accepts u/l/r and the w/a/s/d keys.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u", "w":
		return Up, nil
	case "down", "s":
		return Down, nil
	case "left", "l", "a":
		return Left, nil
	case "right", "r", "d":
		return Right, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// IsTerminal reports whether no further move is accepted by default.
func (s Status) IsTerminal() bool {
	return s == Won || s == Lost
}

// Position addresses a cell by row and column, row 0 at the top.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Spawn records a tile placed after an effective move
type Spawn struct {
	Position Position `json:"position"`
	Value    int      `json:"value"`
}

// TileTransition describes where a tile ended up during a move. Two
// transitions sharing a destination with Merged set are the merged pair.
type TileTransition struct {
	From   Position `json:"from"`
	To     Position `json:"to"`
	Value  int      `json:"value"`
	Merged bool     `json:"merged,omitempty"`
}

// GameState represents the complete state of one game.
type GameState struct {
	Grid   Grid   `json:"grid"`
	Score  int    `json:"score"`
	Status Status `json:"status"`
	Moves  int    `json:"moves"`

	// Rule parameters the state was created with
	WinThreshold         int     `json:"win_threshold"`
	SpawnFourProbability float64 `json:"spawn_four_probability"`
	ContinueAfterWin     bool    `json:"continue_after_win,omitempty"`

	// Computed helper views (not required for core game logic)
	MaxTile       int         `json:"max_tile,omitempty"`
	PossibleMoves []Direction `json:"possible_moves,omitempty"`
}

// IsGameOver reports whether the state accepts no further moves.
func (s GameState) IsGameOver() bool {
	if s.Status == Won && s.ContinueAfterWin {
		return !HasMoves(s.Grid)
	}
	return s.Status.IsTerminal()
}

// Clone returns a deep copy of the state.
func (s GameState) Clone() GameState {
	c := s
	c.Grid = s.Grid.Clone()
	if s.PossibleMoves != nil {
		c.PossibleMoves = append([]Direction(nil), s.PossibleMoves...)
	}
	return c
}

// MoveOutcome is the detailed result of applying one direction to a state.
type MoveOutcome struct {
	State          GameState        `json:"state"`
	Direction      Direction        `json:"direction"`
	Moved          bool             `json:"moved"`
	ScoreDelta     int              `json:"score_delta"`
	Merges         int              `json:"merges"`
	Spawned        *Spawn           `json:"spawned,omitempty"`
	Transitions    []TileTransition `json:"transitions,omitempty"`
	PreviousStatus Status           `json:"previous_status"`
}

// MoveHistoryEntry represents a single move in the game history
type MoveHistoryEntry struct {
	Direction  Direction `json:"direction"`
	Moved      bool      `json:"moved"`
	ScoreDelta int       `json:"score_delta"`
	Score      int       `json:"score"`
	Spawned    *Spawn    `json:"spawned,omitempty"`
	Status     Status    `json:"status"`
	Timestamp  int64     `json:"timestamp"`
	MoveNumber int       `json:"move_number"`
}
