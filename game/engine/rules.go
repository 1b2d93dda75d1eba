package engine

import "fmt"

// Rules applies one game configuration. It owns the random source used for
// spawning and is otherwise stateless: game states are passed in and new
// states are returned.
//
// Rules is not safe for concurrent use because the random source is not.
type Rules struct {
	config GameConfig
	rng    RandomSource
}

// NewRules validates config and prepares a random source from its seed.
func NewRules(config *GameConfig) (*Rules, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	return &Rules{config: *config, rng: newRandomSource(config)}, nil
}

// NewRulesWithSource is like NewRules but uses src instead of the config seed.
func NewRulesWithSource(config *GameConfig, src RandomSource) (*Rules, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("random source cannot be nil")
	}
	return &Rules{config: *config, rng: src}, nil
}

// NewGame is the one-shot form of NewRules followed by Rules.NewGame.
func NewGame(config *GameConfig) (GameState, error) {
	rules, err := NewRules(config)
	if err != nil {
		return GameState{}, err
	}
	return rules.NewGame(), nil
}

// Config returns a copy of the rules' configuration.
func (r *Rules) Config() GameConfig {
	return r.config
}

// NewGame returns an empty grid with two spawned tiles, score 0, in progress.
func (r *Rules) NewGame() GameState {
	grid := NewGrid(r.config.GridSize)
	spawnTile(grid, r.rng, r.config.SpawnFourProbability)
	spawnTile(grid, r.rng, r.config.SpawnFourProbability)

	return GameState{
		Grid:                 grid,
		Status:               InProgress,
		WinThreshold:         r.config.WinThreshold,
		SpawnFourProbability: r.config.SpawnFourProbability,
		ContinueAfterWin:     r.config.ContinueAfterWin,
	}
}

// FromGrid wraps an existing grid into an in-progress state under these
// rules. The grid is copied.
func (r *Rules) FromGrid(grid Grid, score int) (GameState, error) {
	if grid.Size != r.config.GridSize {
		return GameState{}, fmt.Errorf("grid size %d does not match configured size %d", grid.Size, r.config.GridSize)
	}
	state := GameState{
		Grid:                 grid.Clone(),
		Score:                score,
		Status:               InProgress,
		WinThreshold:         r.config.WinThreshold,
		SpawnFourProbability: r.config.SpawnFourProbability,
		ContinueAfterWin:     r.config.ContinueAfterWin,
	}
	if grid.MaxTile() >= r.config.WinThreshold {
		state.Status = Won
	} else if !HasMoves(grid) {
		state.Status = Lost
	}
	return state, nil
}

// ApplyMove slides state in dir. When nothing changes, or the state is
// terminal, the input state is returned with moved=false.
func (r *Rules) ApplyMove(state GameState, dir Direction) (GameState, bool) {
	outcome := r.Step(state, dir)
	return outcome.State, outcome.Moved
}

// Step applies dir to state and reports everything that happened. The input
// state is never modified. A state without a win threshold takes its rule
// fields from the configuration.
func (r *Rules) Step(state GameState, dir Direction) MoveOutcome {
	state = r.withRuleFields(state)
	outcome := MoveOutcome{
		State:          state,
		Direction:      dir,
		PreviousStatus: state.Status,
	}
	if state.IsGameOver() {
		return outcome
	}

	slid, gained, merges := SlideGrid(state.Grid, dir)
	if slid.Equal(state.Grid) {
		return outcome
	}

	outcome.Transitions = TraceMove(state.Grid, dir)
	outcome.Spawned = spawnTile(slid, r.rng, state.SpawnFourProbability)

	next := state
	next.Grid = slid
	next.PossibleMoves = nil
	next.Score = state.Score + gained
	next.Moves = state.Moves + 1
	next.Status = evaluateStatus(slid, state.Status, state.WinThreshold)

	outcome.State = next
	outcome.Moved = true
	outcome.ScoreDelta = gained
	outcome.Merges = merges
	return outcome
}

// withRuleFields fills the rule fields of a hand-built state. A valid
// threshold is never zero, so zero marks a state not built by NewGame or
// FromGrid.
func (r *Rules) withRuleFields(state GameState) GameState {
	if state.WinThreshold != 0 {
		return state
	}
	state.WinThreshold = r.config.WinThreshold
	state.SpawnFourProbability = r.config.SpawnFourProbability
	state.ContinueAfterWin = r.config.ContinueAfterWin
	return state
}
