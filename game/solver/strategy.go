package solver

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/wricardo/tile-merge-game/game/engine"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

// Strategy picks the next direction for a game state. ok is false when the
// state has no effective move.
type Strategy interface {
	Name() string
	Choose(state engine.GameState) (dir engine.Direction, ok bool)
}

// Built-in strategy names
const (
	GreedyName     = "greedy"
	ExpectimaxName = "expectimax"
	RandomName     = "random"
)

// DefaultStrategy is used for hints when no strategy is named
const DefaultStrategy = ExpectimaxName

// Names lists the built-in strategies
func Names() []string {
	names := []string{GreedyName, ExpectimaxName, RandomName}
	sort.Strings(names)
	return names
}

// New returns a built-in strategy by name. seed only affects the random
// strategy.
func New(name string, seed uint64) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case GreedyName:
		return Greedy{}, nil
	case "", ExpectimaxName:
		return NewExpectimax(DefaultDepth), nil
	case RandomName:
		return NewRandom(seed), nil
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownStrategy, name, strings.Join(Names(), ", "))
}

// Greedy picks the move with the best immediate evaluation.
type Greedy struct{}

func (Greedy) Name() string { return GreedyName }

func (Greedy) Choose(state engine.GameState) (engine.Direction, bool) {
	if state.IsGameOver() {
		return "", false
	}

	var best engine.Direction
	bestScore := math.Inf(-1)
	for _, dir := range engine.Directions {
		slid, gained, _ := engine.SlideGrid(state.Grid, dir)
		if slid.Equal(state.Grid) {
			continue
		}
		score := float64(gained) + Evaluate(slid)
		if score > bestScore {
			best, bestScore = dir, score
		}
	}
	return best, best != ""
}

// Random picks uniformly among effective moves.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a random strategy seeded for reproducible runs
func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed+1))}
}

func (r *Random) Name() string { return RandomName }

func (r *Random) Choose(state engine.GameState) (engine.Direction, bool) {
	possible := engine.PossibleMoves(state)
	if len(possible) == 0 {
		return "", false
	}
	return possible[r.rng.IntN(len(possible))], true
}
