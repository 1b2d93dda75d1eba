package service

import (
	"time"

	"github.com/wricardo/tile-merge-game/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GamesPlayed    int                `json:"games_played"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success     bool                    `json:"success"`
	Direction   engine.Direction        `json:"direction"`
	GameState   *engine.GameState       `json:"game_state"`
	Message     string                  `json:"message"`
	ScoreDelta  int                     `json:"score_delta"`
	Merges      int                     `json:"merges"`
	Spawned     *engine.Spawn           `json:"spawned,omitempty"`
	Transitions []engine.TileTransition `json:"transitions,omitempty"`
	Events      []GameEvent             `json:"events,omitempty"`
}

// Stop reason codes reported by BulkMove
const (
	StopNoEffect = "no_effect"
	StopGameOver = "game_over"
	StopWon      = "won"
	StopLost     = "lost"
)

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // no_effect|game_over|won|lost
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartScore   int `json:"start_score"`
	EndScore     int `json:"end_score"`
	ScoreDelta   int `json:"score_delta"`
	StartMaxTile int `json:"start_max_tile"`
	EndMaxTile   int `json:"end_max_tile"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Final status aids
	GameOver      bool               `json:"game_over"`
	GameOverCode  string             `json:"game_over_code,omitempty"`
	Message       string             `json:"message,omitempty"`
	PossibleMoves []engine.Direction `json:"possible_moves,omitempty"`
}

// StepInfo is a compact record for each executed move in the bulk call
type StepInfo struct {
	Idx        int              `json:"idx"`
	Dir        engine.Direction `json:"dir"`
	Moved      bool             `json:"moved"`
	ScoreDelta int              `json:"score_delta"`
	Merges     int              `json:"merges,omitempty"`
	ScoreAfter int              `json:"score_after"`
	MaxTile    int              `json:"max_tile"`
	Spawned    *engine.Spawn    `json:"spawned,omitempty"`
	Status     engine.Status    `json:"status"`
}

// Event types
const (
	EventMove     = "move"
	EventMerge    = "merge"
	EventSpawn    = "spawn"
	EventNoEffect = "no_effect"
	EventWon      = "won"
	EventLost     = "lost"
	EventReset    = "reset"
)

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string           `json:"type"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Position  *engine.Position `json:"position,omitempty"`
	Value     int              `json:"value,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// HintResult is a strategy's suggestion for the current state
type HintResult struct {
	Direction     engine.Direction   `json:"direction,omitempty"`
	Strategy      string             `json:"strategy"`
	Available     bool               `json:"available"`
	PossibleMoves []engine.Direction `json:"possible_moves"`
	Message       string             `json:"message"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename             string  `json:"filename"`
	ConfigID             string  `json:"config_id"` // The identifier to use for session creation
	Name                 string  `json:"name"`      // Display name
	Description          string  `json:"description"`
	GridSize             int     `json:"grid_size"`
	WinThreshold         int     `json:"win_threshold"`
	SpawnFourProbability float64 `json:"spawn_four_probability"`
	ContinueAfterWin     bool    `json:"continue_after_win,omitempty"`
}
