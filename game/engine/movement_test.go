package engine

import (
	"reflect"
	"testing"
)

func mustGrid(t *testing.T, rows [][]int) Grid {
	t.Helper()
	g, err := GridFromRows(rows)
	if err != nil {
		t.Fatalf("GridFromRows: %v", err)
	}
	return g
}

func TestMergeLine(t *testing.T) {
	tests := []struct {
		name     string
		input    []int
		expected []int
		gained   int
		merges   int
	}{
		{"empty line", []int{}, []int{}, 0, 0},
		{"single tile", []int{4}, []int{4}, 0, 0},
		{"simple merge", []int{2, 2}, []int{4}, 4, 1},
		{"no merge possible", []int{2, 4, 8, 16}, []int{2, 4, 8, 16}, 0, 0},
		{"three same values", []int{2, 2, 2}, []int{4, 2}, 4, 1},
		{"chain does not cascade", []int{2, 2, 2, 2}, []int{4, 4}, 8, 2},
		{"merged tile does not merge again", []int{4, 4, 8}, []int{8, 8}, 8, 1},
		{"two merges", []int{2, 2, 4, 4}, []int{4, 8}, 12, 2},
		{"merge after placed tile", []int{8, 2, 2}, []int{8, 4}, 4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, gained, merges := mergeLine(tt.input)
			if !reflect.DeepEqual(merged, tt.expected) {
				t.Errorf("mergeLine(%v) = %v, want %v", tt.input, merged, tt.expected)
			}
			if gained != tt.gained {
				t.Errorf("mergeLine(%v) gained = %d, want %d", tt.input, gained, tt.gained)
			}
			if merges != tt.merges {
				t.Errorf("mergeLine(%v) merges = %d, want %d", tt.input, merges, tt.merges)
			}
		})
	}
}

func TestSlideGrid_AllDirections(t *testing.T) {
	start := [][]int{
		{0, 2, 4, 4},
		{0, 2, 2, 4},
		{0, 0, 2, 2},
		{0, 0, 0, 2},
	}

	tests := []struct {
		dir      Direction
		expected [][]int
		gained   int
	}{
		{Up, [][]int{
			{0, 4, 4, 8},
			{0, 0, 4, 4},
			{0, 0, 0, 0},
			{0, 0, 0, 0},
		}, 20},
		{Down, [][]int{
			{0, 0, 0, 0},
			{0, 0, 0, 0},
			{0, 0, 4, 8},
			{0, 4, 4, 4},
		}, 20},
		{Left, [][]int{
			{2, 8, 0, 0},
			{4, 4, 0, 0},
			{4, 0, 0, 0},
			{2, 0, 0, 0},
		}, 16},
		{Right, [][]int{
			{0, 0, 2, 8},
			{0, 0, 4, 4},
			{0, 0, 0, 4},
			{0, 0, 0, 2},
		}, 16},
	}

	for _, tt := range tests {
		t.Run(string(tt.dir), func(t *testing.T) {
			g := mustGrid(t, start)
			slid, gained, _ := SlideGrid(g, tt.dir)
			if !reflect.DeepEqual(slid.Rows(), tt.expected) {
				t.Errorf("SlideGrid(%s) =\n%s\nwant\n%v", tt.dir, slid, tt.expected)
			}
			if gained != tt.gained {
				t.Errorf("SlideGrid(%s) gained = %d, want %d", tt.dir, gained, tt.gained)
			}
			if !reflect.DeepEqual(g.Rows(), start) {
				t.Error("SlideGrid modified its input grid")
			}
		})
	}
}

func TestSlideGrid_FourEqualTiles(t *testing.T) {
	g := mustGrid(t, [][]int{
		{2, 2, 2, 2},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	left, _, _ := SlideGrid(g, Left)
	if got := left.Rows()[0]; !reflect.DeepEqual(got, []int{4, 4, 0, 0}) {
		t.Errorf("left: expected [4 4 0 0], got %v", got)
	}

	right, _, _ := SlideGrid(g, Right)
	if got := right.Rows()[0]; !reflect.DeepEqual(got, []int{0, 0, 4, 4}) {
		t.Errorf("right: expected [0 0 4 4], got %v", got)
	}
}

func TestSlideGrid_PreservesTileSum(t *testing.T) {
	g := mustGrid(t, [][]int{
		{2, 2, 4, 8},
		{4, 4, 4, 4},
		{0, 16, 16, 2},
		{2, 0, 2, 0},
	})

	for _, dir := range Directions {
		slid, _, _ := SlideGrid(g, dir)
		if slid.Sum() != g.Sum() {
			t.Errorf("%s: sum changed from %d to %d", dir, g.Sum(), slid.Sum())
		}
	}
}

func TestHasMoves(t *testing.T) {
	tests := []struct {
		name     string
		rows     [][]int
		expected bool
	}{
		{"empty cell", [][]int{{2, 4}, {8, 0}}, true},
		{"horizontal pair", [][]int{{2, 2}, {4, 8}}, true},
		{"vertical pair", [][]int{{2, 4}, {2, 8}}, true},
		{"blocked", [][]int{{2, 4}, {4, 2}}, false},
		{"checkerboard", [][]int{
			{2, 4, 2, 4},
			{4, 2, 4, 2},
			{2, 4, 2, 4},
			{4, 2, 4, 2},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasMoves(mustGrid(t, tt.rows)); got != tt.expected {
				t.Errorf("HasMoves = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPossibleMoves(t *testing.T) {
	rules, err := NewRules(DefaultGameConfig())
	if err != nil {
		t.Fatalf("NewRules: %v", err)
	}
	state, err := rules.FromGrid(mustGrid(t, [][]int{
		{2, 0, 0, 0},
		{4, 0, 0, 0},
		{8, 0, 0, 0},
		{16, 0, 0, 0},
	}), 0)
	if err != nil {
		t.Fatalf("FromGrid: %v", err)
	}

	possible := PossibleMoves(state)
	if !reflect.DeepEqual(possible, []Direction{Right}) {
		t.Errorf("expected only right to be possible, got %v", possible)
	}
	if CanMove(state, Left) {
		t.Error("left should not be possible for a column flush left")
	}
}
