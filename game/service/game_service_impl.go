package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/tile-merge-game/game/engine"
	"github.com/wricardo/tile-merge-game/game/solver"
)

// Option customises a game service
type Option func(*gameServiceImpl)

// WithStrategy makes an extra strategy available to Hint under its name
func WithStrategy(s solver.Strategy) Option {
	return func(g *gameServiceImpl) {
		g.strategies[strings.ToLower(s.Name())] = s
	}
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions   SessionManager
	configs    ConfigManager
	strategies map[string]solver.Strategy
	mu         sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions:   sessions,
		configs:    configs,
		strategies: make(map[string]solver.Strategy),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(sess *Session) string {
	if sess.ConfigID != "" {
		return sess.ConfigID
	}
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == sess.Config.Name {
				return cfg.ConfigID
			}
		}
	}
	if sess.Config.Name == "" {
		return "default"
	}
	return sess.Config.Name
}

// CreateSession creates a new game session. A non-nil seed overrides the
// configuration's seed for this session only.
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string, seed *int64) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			return nil, s.configLoadError(configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	if seed != nil {
		config = config.WithSeed(*seed)
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	sess.ConfigID = configName
	if sess.ConfigID == "" {
		sess.ConfigID = s.getConfigID(sess)
	}

	return s.sessionInfo(sess), nil
}

// configLoadError lists the available configs when the requested one is
// missing, keeping the original error in the chain.
func (s *gameServiceImpl) configLoadError(configName string, err error) error {
	availableConfigs, listErr := s.configs.ListConfigs()
	if listErr != nil || len(availableConfigs) == 0 {
		return fmt.Errorf("failed to load config %s: %w", configName, err)
	}
	var configIDs []string
	for _, cfg := range availableConfigs {
		configIDs = append(configIDs, cfg.ConfigID)
	}
	return fmt.Errorf("failed to load config '%s' (available: %s): %w", configName, strings.Join(configIDs, ", "), err)
}

// GetSession retrieves session information
// Takes the write lock: touching LastAccessedAt mutates the session.
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}

	return result, nil
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GamesPlayed:    sess.Engine.GamesPlayed(),
		GameState:      enrich(sess.Engine.GetState()),
		GameConfig:     sess.Config,
	}
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session not found: %w", err)
	}
	return nil
}

// Move executes a single move for a session. An unknown direction is an
// error; a direction that changes nothing is a successful call with
// Success=false.
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, newEvent(EventReset, "Game reset to a new board"))
	}

	outcome := sess.Engine.Move(dir)
	events = append(events, outcomeEvents(outcome)...)

	return &MoveResult{
		Success:     outcome.Moved,
		Direction:   dir,
		GameState:   enrich(outcome.State),
		Message:     outcomeMessage(outcome),
		ScoreDelta:  outcome.ScoreDelta,
		Merges:      outcome.Merges,
		Spawned:     outcome.Spawned,
		Transitions: outcome.Transitions,
		Events:      events,
	}, nil
}

// BulkMove executes moves in order. It stops at the first move that changes
// nothing or when the game ends, and never runs more than MaxBulkMoves.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	// Validate every direction before touching the game
	dirs := make([]engine.Direction, 0, len(moves))
	for i, move := range moves {
		dir, err := engine.ParseDirection(move)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
		dirs = append(dirs, dir)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, newEvent(EventReset, "Game reset to a new board"))
	}

	start := sess.Engine.GetState()
	result.StartScore = start.Score
	result.StartMaxTile = start.Grid.MaxTile()

	// Limit moves to prevent abuse
	if len(dirs) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		dirs = dirs[:engine.MaxBulkMoves]
	}

	for i, dir := range dirs {
		if sess.Engine.IsGameOver() {
			result.StoppedReason = "game is already over"
			result.StopReasonCode = StopGameOver
			result.StoppedOnMove = i + 1
			break
		}

		outcome := sess.Engine.Move(dir)
		result.Events = append(result.Events, outcomeEvents(outcome)...)
		result.Steps = append(result.Steps, StepInfo{
			Idx:        i + 1,
			Dir:        dir,
			Moved:      outcome.Moved,
			ScoreDelta: outcome.ScoreDelta,
			Merges:     outcome.Merges,
			ScoreAfter: outcome.State.Score,
			MaxTile:    outcome.State.Grid.MaxTile(),
			Spawned:    outcome.Spawned,
			Status:     outcome.State.Status,
		})

		if !outcome.Moved {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d (%s) did not change the board", i+1, dir)
			result.StopReasonCode = StopNoEffect
			result.StoppedOnMove = i + 1
			break
		}
		result.MovesExecuted++

		// With continue_after_win a fresh win is only an event
		if outcome.State.IsGameOver() {
			result.StoppedOnMove = i + 1
			if outcome.State.Status == engine.Won && outcome.PreviousStatus != engine.Won {
				result.StopReasonCode = StopWon
				result.StoppedReason = fmt.Sprintf("reached %d on move %d", outcome.State.WinThreshold, i+1)
			} else {
				result.StopReasonCode = StopLost
				result.StoppedReason = fmt.Sprintf("no moves left after move %d", i+1)
			}
			break
		}
	}

	end := sess.Engine.GetState()
	result.GameState = enrich(end)
	result.EndScore = end.Score
	result.EndMaxTile = end.Grid.MaxTile()
	result.ScoreDelta = end.Score - start.Score
	result.GameOver = end.IsGameOver()
	if result.GameOver {
		result.GameOverCode = string(end.Status)
	}
	result.Message = stateMessage(end)
	result.PossibleMoves = sess.Engine.GetPossibleMoves()

	return result, nil
}

// Reset starts a new game in the session
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return enrich(sess.Engine.Reset()), nil
}

// Hint asks a strategy for the next move without applying it
func (s *gameServiceImpl) Hint(ctx context.Context, sessionID, strategy string) (*HintResult, error) {
	strat, err := s.strategy(strategy)
	if err != nil {
		return nil, err
	}

	// Strategies are not safe for concurrent use, so hints take the write lock
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	state := sess.Engine.GetState()
	result := &HintResult{
		Strategy:      strat.Name(),
		PossibleMoves: engine.PossibleMoves(state),
	}
	if result.PossibleMoves == nil {
		result.PossibleMoves = []engine.Direction{}
	}

	dir, ok := strat.Choose(state)
	if !ok {
		result.Message = "No move changes the board"
		return result, nil
	}
	result.Direction = dir
	result.Available = true
	result.Message = fmt.Sprintf("%s suggests %s", strat.Name(), dir)
	return result, nil
}

func (s *gameServiceImpl) strategy(name string) (solver.Strategy, error) {
	if strat, ok := s.strategies[strings.ToLower(strings.TrimSpace(name))]; ok {
		return strat, nil
	}
	return solver.New(name, uint64(time.Now().UnixNano()))
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return enrich(sess.Engine.GetState()), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if config == nil {
		return errors.New("config is required")
	}
	config.ApplyDefaults()
	return s.configs.SaveConfig(configName, config)
}

// enrich returns a copy of state with the computed helper views filled in
func enrich(state engine.GameState) *engine.GameState {
	st := state.Clone()
	st.MaxTile = st.Grid.MaxTile()
	st.PossibleMoves = engine.PossibleMoves(st)
	return &st
}

func newEvent(eventType, message string) GameEvent {
	return GameEvent{Type: eventType, Message: message, Timestamp: time.Now()}
}

// outcomeEvents describes one move as events
func outcomeEvents(outcome engine.MoveOutcome) []GameEvent {
	if !outcome.Moved {
		msg := fmt.Sprintf("Moving %s does not change the board", outcome.Direction)
		if outcome.State.IsGameOver() {
			msg = fmt.Sprintf("Game is over (%s), move %s ignored", outcome.State.Status, outcome.Direction)
		}
		return []GameEvent{newEvent(EventNoEffect, msg)}
	}

	events := []GameEvent{newEvent(EventMove, fmt.Sprintf("Moved %s, score %d", outcome.Direction, outcome.State.Score))}

	if outcome.Merges > 0 {
		ev := newEvent(EventMerge, fmt.Sprintf("%d merge(s) for +%d points", outcome.Merges, outcome.ScoreDelta))
		ev.Value = outcome.ScoreDelta
		events = append(events, ev)
	}

	if sp := outcome.Spawned; sp != nil {
		pos := sp.Position
		ev := newEvent(EventSpawn, fmt.Sprintf("New %d at (%d,%d)", sp.Value, pos.Row, pos.Col))
		ev.Position = &pos
		ev.Value = sp.Value
		events = append(events, ev)
	}

	if outcome.State.Status != outcome.PreviousStatus {
		switch outcome.State.Status {
		case engine.Won:
			ev := newEvent(EventWon, fmt.Sprintf("Reached the %d tile!", outcome.State.WinThreshold))
			ev.Value = outcome.State.Grid.MaxTile()
			events = append(events, ev)
		case engine.Lost:
			events = append(events, newEvent(EventLost, fmt.Sprintf("No moves left. Final score %d", outcome.State.Score)))
		}
	}

	return events
}

func outcomeMessage(outcome engine.MoveOutcome) string {
	if !outcome.Moved {
		if outcome.State.IsGameOver() {
			return fmt.Sprintf("Game over (%s)", outcome.State.Status)
		}
		return fmt.Sprintf("Can't move %s", outcome.Direction)
	}
	return stateMessage(outcome.State)
}

func stateMessage(state engine.GameState) string {
	switch state.Status {
	case engine.Won:
		if state.ContinueAfterWin && !state.IsGameOver() {
			return fmt.Sprintf("You won! Keep going. Score: %d", state.Score)
		}
		return fmt.Sprintf("You won! Final score: %d", state.Score)
	case engine.Lost:
		return fmt.Sprintf("Game over. Final score: %d", state.Score)
	}
	return fmt.Sprintf("Score: %d", state.Score)
}
