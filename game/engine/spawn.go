package engine

// RandomSource supplies the randomness used for spawning. *rand.Rand from
// math/rand/v2 satisfies it; tests can provide scripted sources.
type RandomSource interface {
	// IntN returns a value in [0, n).
	IntN(n int) int
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
}

// spawnTile places one tile into a uniformly chosen empty cell of g, which it
// mutates. It returns nil when the grid has no empty cell.
func spawnTile(g Grid, src RandomSource, fourProbability float64) *Spawn {
	empty := g.EmptyCells()
	if len(empty) == 0 {
		return nil
	}

	pos := empty[src.IntN(len(empty))]
	value := 2
	if src.Float64() < fourProbability {
		value = 4
	}
	g.Set(pos.Row, pos.Col, value)

	return &Spawn{Position: pos, Value: value}
}
