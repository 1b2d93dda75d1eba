package engine

// lineIndices returns the flat cell indices of line i for a move in dir,
// ordered from the destination edge toward the opposite edge. Lines are rows
// for Left/Right and columns for Up/Down.
func lineIndices(size int, dir Direction, i int) []int {
	idx := make([]int, size)
	for k := 0; k < size; k++ {
		switch dir {
		case Left:
			idx[k] = i*size + k
		case Right:
			idx[k] = i*size + (size - 1 - k)
		case Up:
			idx[k] = k*size + i
		case Down:
			idx[k] = (size-1-k)*size + i
		}
	}
	return idx
}

// mergeLine collapses the non-empty values of one line, given in order from
// the destination edge. A tile produced by a merge is not merged again in the
// same pass, so [2 2 2 2] becomes [4 4], never [8].
func mergeLine(values []int) (merged []int, gained int, merges int) {
	merged = make([]int, 0, len(values))
	fresh := false // merged[len-1] was produced in this pass
	for _, v := range values {
		if n := len(merged); n > 0 && !fresh && merged[n-1] == v {
			merged[n-1] = v * 2
			gained += v * 2
			merges++
			fresh = true
			continue
		}
		merged = append(merged, v)
		fresh = false
	}
	return merged, gained, merges
}

// SlideGrid applies the slide-and-merge step of a move without spawning. The
// input grid is not modified.
func SlideGrid(g Grid, dir Direction) (slid Grid, gained int, merges int) {
	slid = g.Clone()
	for i := 0; i < g.Size; i++ {
		idx := lineIndices(g.Size, dir, i)

		values := make([]int, 0, g.Size)
		for _, j := range idx {
			if v := g.Cells[j]; v != 0 {
				values = append(values, v)
			}
		}

		line, lineGain, lineMerges := mergeLine(values)
		gained += lineGain
		merges += lineMerges

		for k, j := range idx {
			if k < len(line) {
				slid.Cells[j] = line[k]
			} else {
				slid.Cells[j] = 0
			}
		}
	}
	return slid, gained, merges
}

// HasAdjacentEqual reports whether two equal tiles touch along a row or column.
func HasAdjacentEqual(g Grid) bool {
	for r := 0; r < g.Size; r++ {
		for c := 0; c < g.Size; c++ {
			v := g.At(r, c)
			if v == 0 {
				continue
			}
			if c+1 < g.Size && g.At(r, c+1) == v {
				return true
			}
			if r+1 < g.Size && g.At(r+1, c) == v {
				return true
			}
		}
	}
	return false
}

// HasMoves reports whether some direction would change the grid.
func HasMoves(g Grid) bool {
	for _, v := range g.Cells {
		if v == 0 {
			return true
		}
	}
	return HasAdjacentEqual(g)
}

// evaluateStatus classifies a grid produced by an effective move, after the
// spawn. previous is the status before the move so Won stays sticky.
func evaluateStatus(g Grid, previous Status, winThreshold int) Status {
	if previous == Won || g.MaxTile() >= winThreshold {
		return Won
	}
	if !HasMoves(g) {
		return Lost
	}
	return InProgress
}

// CanMove reports whether applying dir to state would be an effective move.
func CanMove(state GameState, dir Direction) bool {
	if state.IsGameOver() {
		return false
	}
	slid, _, _ := SlideGrid(state.Grid, dir)
	return !slid.Equal(state.Grid)
}

// PossibleMoves returns every direction that would change the state's grid.
func PossibleMoves(state GameState) []Direction {
	var possible []Direction
	for _, dir := range Directions {
		if CanMove(state, dir) {
			possible = append(possible, dir)
		}
	}
	return possible
}
