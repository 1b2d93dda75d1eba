package solver

import (
	"github.com/wricardo/tile-merge-game/game/engine"
)

// GameResult summarises one finished (or capped) game
type GameResult struct {
	Score   int           `json:"score"`
	MaxTile int           `json:"max_tile"`
	Moves   int           `json:"moves"`
	Status  engine.Status `json:"status"`
}

// Play runs strategy from a new game until it is over, the strategy gives up
// or maxMoves effective moves were made (0 means no cap). A strategy that
// returns an ineffective move ends the game.
func Play(rules *engine.Rules, strategy Strategy, maxMoves int) GameResult {
	state := rules.NewGame()
	for maxMoves <= 0 || state.Moves < maxMoves {
		dir, ok := strategy.Choose(state)
		if !ok {
			break
		}
		next, moved := rules.ApplyMove(state, dir)
		if !moved {
			break
		}
		state = next
	}

	return GameResult{
		Score:   state.Score,
		MaxTile: state.Grid.MaxTile(),
		Moves:   state.Moves,
		Status:  state.Status,
	}
}
