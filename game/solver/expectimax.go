package solver

import (
	"math"

	"github.com/wricardo/tile-merge-game/game/engine"
)

const (
	// DefaultDepth is the number of player moves searched
	DefaultDepth = 2
	// MaxDepth bounds the search; the tree grows with 8*empty*4 per level
	MaxDepth = 4

	// busyCells switches to a shallower search on open boards
	busyCells   = 6
	deadPenalty = 1000.0
)

// Expectimax searches player moves as max nodes and tile spawns as chance
// nodes, weighting 2s and 4s by the state's spawn probability.
type Expectimax struct {
	Depth int
}

// NewExpectimax returns an expectimax strategy clamped to [1, MaxDepth]
func NewExpectimax(depth int) *Expectimax {
	if depth < 1 {
		depth = 1
	}
	if depth > MaxDepth {
		depth = MaxDepth
	}
	return &Expectimax{Depth: depth}
}

func (e *Expectimax) Name() string { return ExpectimaxName }

func (e *Expectimax) Choose(state engine.GameState) (engine.Direction, bool) {
	if state.IsGameOver() {
		return "", false
	}

	depth := e.Depth
	if len(state.Grid.EmptyCells()) > busyCells && depth > 1 {
		depth--
	}

	var best engine.Direction
	bestScore := math.Inf(-1)
	for _, dir := range engine.Directions {
		slid, gained, _ := engine.SlideGrid(state.Grid, dir)
		if slid.Equal(state.Grid) {
			continue
		}
		score := float64(gained) + e.chance(slid, depth-1, state.SpawnFourProbability)
		if score > bestScore {
			best, bestScore = dir, score
		}
	}
	return best, best != ""
}

// chance averages over every spawn into g. g is restored before returning.
func (e *Expectimax) chance(g engine.Grid, depth int, fourProbability float64) float64 {
	if depth <= 0 {
		return Evaluate(g)
	}
	empty := g.EmptyCells()
	if len(empty) == 0 {
		return e.max(g, depth, fourProbability)
	}

	spawns := [2]struct {
		value int
		p     float64
	}{{2, 1 - fourProbability}, {4, fourProbability}}

	total := 0.0
	for _, pos := range empty {
		for _, s := range spawns {
			if s.p == 0 {
				continue
			}
			g.Set(pos.Row, pos.Col, s.value)
			total += s.p * e.max(g, depth, fourProbability)
			g.Set(pos.Row, pos.Col, 0)
		}
	}
	return total / float64(len(empty))
}

// max picks the best player move from g, penalising positions with none.
func (e *Expectimax) max(g engine.Grid, depth int, fourProbability float64) float64 {
	best := math.Inf(-1)
	for _, dir := range engine.Directions {
		slid, gained, _ := engine.SlideGrid(g, dir)
		if slid.Equal(g) {
			continue
		}
		if v := float64(gained) + e.chance(slid, depth-1, fourProbability); v > best {
			best = v
		}
	}
	if math.IsInf(best, -1) {
		return Evaluate(g) - deadPenalty
	}
	return best
}
