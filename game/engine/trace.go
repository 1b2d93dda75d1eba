package engine

// TraceMove reports where every tile of g travels when sliding in dir. It is
// kept apart from SlideGrid: renderers use it to animate, while the rules only
// need the resulting values. Tiles that stay in place are included with
// From == To.
func TraceMove(g Grid, dir Direction) []TileTransition {
	var transitions []TileTransition
	pos := func(j int) Position {
		return Position{Row: j / g.Size, Col: j % g.Size}
	}

	for i := 0; i < g.Size; i++ {
		idx := lineIndices(g.Size, dir, i)

		slot := 0      // next free slot on the line
		topValue := 0  // value currently in slot-1
		topIdx := -1   // transition index of the tile in slot-1
		fresh := false // slot-1 was produced by a merge this pass
		for _, j := range idx {
			v := g.Cells[j]
			if v == 0 {
				continue
			}
			if slot > 0 && !fresh && topValue == v {
				transitions[topIdx].Merged = true
				transitions = append(transitions, TileTransition{
					From:   pos(j),
					To:     pos(idx[slot-1]),
					Value:  v,
					Merged: true,
				})
				topValue = v * 2
				fresh = true
				continue
			}
			transitions = append(transitions, TileTransition{
				From:  pos(j),
				To:    pos(idx[slot]),
				Value: v,
			})
			topIdx = len(transitions) - 1
			topValue = v
			fresh = false
			slot++
		}
	}
	return transitions
}

// ApplyTransitions rebuilds the slid grid from a trace, merging tiles that
// share a destination.
func ApplyTransitions(size int, transitions []TileTransition) Grid {
	g := NewGrid(size)
	for _, t := range transitions {
		g.Set(t.To.Row, t.To.Col, g.At(t.To.Row, t.To.Col)+t.Value)
	}
	return g
}
