package universe

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/pkg/errors"
)

//glyphs maps the cell state to its text representation
var glyphs = [...]byte{Dead: '.', Live: '#'}

//Grid is the toroidal field where the cells live
//rows share one row-major buffer, every row is capped at width
type Grid struct {
	width  int
	height int
	cells  [][]Cell
}

//NewBlank creates the grid with all cells dead
func NewBlank(width int, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "%v x %v", width, height)
	}
	return &Grid{width: width, height: height, cells: createArea(width, height)}, nil
}

//NewRandom creates the grid where every cell is live with probability 1/2
func NewRandom(width int, height int) (*Grid, error) {
	return NewRandomSource(width, height, nil)
}

//NewRandomSource is NewRandom drawing from rnd, the global source is used when rnd is nil
func NewRandomSource(width int, height int, rnd *rand.Rand) (*Grid, error) {
	g, err := NewBlank(width, height)
	if err != nil {
		return nil, err
	}
	intn := rand.Intn
	if rnd != nil {
		intn = rnd.Intn
	}
	g.walk(func(row int, col int, _ Cell) {
		g.cells[row][col] = Cell(intn(2))
	})
	return g, nil
}

//Glyph returns the character Render uses for the cell state
func Glyph(c Cell) byte {
	return glyphs[c]
}

func (g *Grid) Width() int {
	return g.width
}

func (g *Grid) Height() int {
	return g.height
}

//Get returns the cell state at row, col
//panics when the position is outside the grid
func (g *Grid) Get(row int, col int) Cell {
	return g.cells[row][col]
}

//Set overwrites the cell state at row, col
//panics when the position is outside the grid or c is not Dead or Live
func (g *Grid) Set(row int, col int, c Cell) {
	if c > Live {
		panic(fmt.Sprintf("invalid cell state %v at %v,%v", c, row, col))
	}
	g.cells[row][col] = c
}

//LiveNeighbors counts the live cells around row, col
//the edges wrap: row 0 touches row height-1, col 0 touches col width-1
func (g *Grid) LiveNeighbors(row int, col int) int {
	n := 0
	for i := -1; i < 2; i++ {
		for j := -1; j < 2; j++ {
			//skip my position
			if i == 0 && j == 0 {
				continue
			}
			n += int(g.cells[wrap(row+i, g.height)][wrap(col+j, g.width)])
		}
	}
	return n
}

//Step moves the grid to the next generation
//all cells are calculated to the new buffer using the current generation only,
//then the buffer replaces the old one
func (g *Grid) Step() {
	next := createArea(g.width, g.height)
	g.walk(func(row int, col int, c Cell) {
		next[row][col] = nextState(c, g.LiveNeighbors(row, col))
	})
	g.cells = next
}

//LiveCells calculates the count of live cells
func (g *Grid) LiveCells() int {
	n := 0
	g.walk(func(_ int, _ int, c Cell) {
		n += int(c)
	})
	return n
}

//Equal reports whether both grids have the same size and cells
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.width != other.width || g.height != other.height {
		return false
	}
	for row := range g.cells {
		for col := range g.cells[row] {
			if g.cells[row][col] != other.cells[row][col] {
				return false
			}
		}
	}
	return true
}

//Render returns the grid as text, one line per row, cells separated by a space
func (g *Grid) Render() string {
	var b strings.Builder
	b.Grow(g.height * g.width * 2)
	for row, l := range g.cells {
		if row != 0 {
			b.WriteByte('\n')
		}
		for col, c := range l {
			if col != 0 {
				b.WriteByte(' ')
			}
			b.WriteByte(glyphs[c])
		}
	}
	return b.String()
}

func (g *Grid) String() string {
	return g.Render()
}

//walk walks the entire grid and calls the cb function for each cell
func (g *Grid) walk(cb func(row int, col int, c Cell)) {
	for row := range g.cells {
		for col := range g.cells[row] {
			cb(row, col, g.cells[row][col])
		}
	}
}

//nextState applies Conway's rules to a cell with n live neighbors
func nextState(c Cell, n int) Cell {
	switch {
	case n == 3:
		return Live
	case n == 2 && c == Live:
		return Live
	}
	return Dead
}

//wrap maps v onto [0, n) so that negative offsets land on the opposite edge
func wrap(v int, n int) int {
	return ((v % n) + n) % n
}

//createArea allocates the rows over one buffer
func createArea(width int, height int) [][]Cell {
	area := make([][]Cell, height)
	b := make([]Cell, width*height)
	for i := range area {
		start := width * i
		area[i] = b[start : start+width : start+width]
	}
	return area
}
