package solver

import (
	"math"

	"github.com/wricardo/tile-merge-game/game/engine"
)

// Heuristic weights
const (
	emptyWeight        = 2.7
	monotonicityWeight = 1.0
	mergeWeight        = 0.7
	cornerWeight       = 1.5
)

// Evaluate scores a grid position without lookahead. Higher is better.
func Evaluate(g engine.Grid) float64 {
	empty := float64(len(g.EmptyCells()))
	score := emptyWeight*math.Log2(empty+1)*float64(g.Size) +
		monotonicityWeight*float64(engine.Monotonicity(g)) +
		mergeWeight*float64(adjacentPairs(g))

	if maxTile := g.MaxTile(); maxTile > 0 && cornerValue(g) == maxTile {
		score += cornerWeight * float64(engine.TileExponent(maxTile))
	}
	return score
}

// adjacentPairs counts touching equal tiles, i.e. merges available next turn
func adjacentPairs(g engine.Grid) int {
	pairs := 0
	for r := 0; r < g.Size; r++ {
		for c := 0; c < g.Size; c++ {
			v := g.At(r, c)
			if v == 0 {
				continue
			}
			if c+1 < g.Size && g.At(r, c+1) == v {
				pairs++
			}
			if r+1 < g.Size && g.At(r+1, c) == v {
				pairs++
			}
		}
	}
	return pairs
}

func cornerValue(g engine.Grid) int {
	return g.At(0, 0)
}
