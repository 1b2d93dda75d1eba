package engine

import "math/bits"

// IsPowerOfTwo reports whether v is a positive power of two.
func IsPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// TileExponent returns log2(v) for a tile value, 0 for an empty cell.
func TileExponent(v int) int {
	if v <= 0 {
		return 0
	}
	return bits.Len(uint(v)) - 1
}

// CountTiles counts the non-empty cells of the grid
func CountTiles(g Grid) int {
	count := 0
	for _, v := range g.Cells {
		if v != 0 {
			count++
		}
	}
	return count
}

// Monotonicity scores how consistently values decrease away from the top-left
// corner along rows and columns. Higher is smoother; used by strategies.
func Monotonicity(g Grid) int {
	score := 0
	for r := 0; r < g.Size; r++ {
		for c := 0; c+1 < g.Size; c++ {
			a, b := TileExponent(g.At(r, c)), TileExponent(g.At(r, c+1))
			if a >= b {
				score += a - b
			} else {
				score -= b - a
			}
		}
	}
	for c := 0; c < g.Size; c++ {
		for r := 0; r+1 < g.Size; r++ {
			a, b := TileExponent(g.At(r, c)), TileExponent(g.At(r+1, c))
			if a >= b {
				score += a - b
			} else {
				score -= b - a
			}
		}
	}
	return score
}
