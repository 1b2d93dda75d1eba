package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Grid is a square board stored as a flat slice of Size*Size cells in
// row-major order. A zero cell is empty.
type Grid struct {
	Size  int   `json:"size"`
	Cells []int `json:"cells"`
}

// NewGrid creates an empty size x size grid.
func NewGrid(size int) Grid {
	return Grid{Size: size, Cells: make([]int, size*size)}
}

// GridFromRows builds a grid from a square matrix of tile values.
func GridFromRows(rows [][]int) (Grid, error) {
	size := len(rows)
	if size < MinGridSize {
		return Grid{}, fmt.Errorf("grid must have at least %d rows, got %d", MinGridSize, size)
	}
	g := NewGrid(size)
	for r, row := range rows {
		if len(row) != size {
			return Grid{}, fmt.Errorf("row %d has %d cells, want %d", r, len(row), size)
		}
		for c, v := range row {
			if v != 0 && (v < 2 || !IsPowerOfTwo(v)) {
				return Grid{}, fmt.Errorf("cell (%d,%d): %d is not a power of two >= 2", r, c, v)
			}
			g.Cells[r*size+c] = v
		}
	}
	return g, nil
}

func (g Grid) index(row, col int) int {
	return row*g.Size + col
}

// At returns the value at row, col (0 when empty).
func (g Grid) At(row, col int) int {
	return g.Cells[g.index(row, col)]
}

// Set stores value at row, col. Callers own the grid they mutate.
func (g Grid) Set(row, col, value int) {
	g.Cells[g.index(row, col)] = value
}

// Clone returns a copy that shares no storage with g.
func (g Grid) Clone() Grid {
	cells := make([]int, len(g.Cells))
	copy(cells, g.Cells)
	return Grid{Size: g.Size, Cells: cells}
}

// Equal reports whether both grids have the same size and values.
func (g Grid) Equal(other Grid) bool {
	if g.Size != other.Size || len(g.Cells) != len(other.Cells) {
		return false
	}
	for i := range g.Cells {
		if g.Cells[i] != other.Cells[i] {
			return false
		}
	}
	return true
}

// Rows returns the grid as a matrix, row 0 first.
func (g Grid) Rows() [][]int {
	rows := make([][]int, g.Size)
	for r := range rows {
		rows[r] = append([]int(nil), g.Cells[r*g.Size:(r+1)*g.Size]...)
	}
	return rows
}

// EmptyCells returns the positions of every empty cell in row-major order.
func (g Grid) EmptyCells() []Position {
	var empty []Position
	for i, v := range g.Cells {
		if v == 0 {
			empty = append(empty, Position{Row: i / g.Size, Col: i % g.Size})
		}
	}
	return empty
}

// MaxTile returns the largest tile value on the grid.
func (g Grid) MaxTile() int {
	maxTile := 0
	for _, v := range g.Cells {
		if v > maxTile {
			maxTile = v
		}
	}
	return maxTile
}

// Sum returns the total of all tile values.
func (g Grid) Sum() int {
	sum := 0
	for _, v := range g.Cells {
		sum += v
	}
	return sum
}

// String renders the grid as right-aligned columns, one row per line.
func (g Grid) String() string {
	width := len(strconv.Itoa(g.MaxTile()))
	if width < 1 {
		width = 1
	}
	var b strings.Builder
	for r := 0; r < g.Size; r++ {
		for c := 0; c < g.Size; c++ {
			if c > 0 {
				b.WriteByte(' ')
			}
			v := g.At(r, c)
			if v == 0 {
				fmt.Fprintf(&b, "%*s", width, ".")
				continue
			}
			fmt.Fprintf(&b, "%*d", width, v)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
