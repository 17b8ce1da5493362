// Package automaton implements a generic two-dimensional cellular automaton:
// a bounded or wrapping Board, cached Neighbourhood geometry, and a stepping
// engine that evaluates rules in parallel against a consistent snapshot and
// applies their Deltas sequentially.
//
// Nothing here knows about terminals, files or flags. Presentation layers
// consume a Board through ToRepresentation.
package automaton

import (
	"fmt"
	"slices"

	"github.com/vovakirdan/tui-automata/internal/core"
)

// State is the capability set every cell value satisfies. Values are copied on
// assignment and compared with ==, and any comparable value prints with %v.
// Pointer-free states are safe to read from many goroutines at once.
type State interface {
	comparable
}

// BoundaryKind selects how coordinates outside the grid are treated.
type BoundaryKind uint8

const (
	// Periodic wraps coordinates around both axes.
	Periodic BoundaryKind = iota
	// Fixed treats the outside as a constant default state and rejects writes there.
	Fixed
)

func (k BoundaryKind) String() string {
	switch k {
	case Periodic:
		return "periodic"
	case Fixed:
		return "fixed"
	default:
		return fmt.Sprintf("BoundaryKind(%d)", uint8(k))
	}
}

// BoundaryCondition is the edge policy of a Board.
// Default is only meaningful for Fixed boundaries.
type BoundaryCondition[S State] struct {
	Kind    BoundaryKind
	Default S
}

// PeriodicBoundary returns a wrapping boundary.
func PeriodicBoundary[S State]() BoundaryCondition[S] {
	return BoundaryCondition[S]{Kind: Periodic}
}

// FixedBoundary returns a boundary whose outside reads as def.
func FixedBoundary[S State](def S) BoundaryCondition[S] {
	return BoundaryCondition[S]{Kind: Fixed, Default: def}
}

func (bc BoundaryCondition[S]) String() string {
	if bc.Kind == Fixed {
		return fmt.Sprintf("fixed(%v)", bc.Default)
	}
	return bc.Kind.String()
}

// Board is a dense row-major grid of cell states with an immutable size and
// boundary condition. The zero value is not usable; build boards with NewBoard.
type Board[S State] struct {
	width    int
	height   int
	cells    []S
	boundary BoundaryCondition[S]
}

// NewBoard builds a board from a row-major matrix. rows[y][x] is the state at
// (x, y). The matrix must be non-empty and rectangular.
func NewBoard[S State](rows [][]S, bc BoundaryCondition[S]) (*Board[S], error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: no cells", ErrInvalidBoard)
	}
	width := len(rows[0])
	cells := make([]S, 0, width*len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrInvalidBoard, y, len(row), width)
		}
		cells = append(cells, row...)
	}
	return &Board[S]{
		width:    width,
		height:   len(rows),
		cells:    cells,
		boundary: bc,
	}, nil
}

// FilledBoard returns a width x height board with every cell set to s.
func FilledBoard[S State](width, height int, s S, bc BoundaryCondition[S]) (*Board[S], error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidBoard, width, height)
	}
	cells := make([]S, width*height)
	for i := range cells {
		cells[i] = s
	}
	return &Board[S]{width: width, height: height, cells: cells, boundary: bc}, nil
}

// MustBoard is like NewBoard but panics on an invalid matrix.
// It is meant for literals in tests and examples.
func MustBoard[S State](rows [][]S, bc BoundaryCondition[S]) *Board[S] {
	b, err := NewBoard(rows, bc)
	if err != nil {
		panic(err)
	}
	return b
}

// Width returns the number of columns.
func (b *Board[S]) Width() int { return b.width }

// Height returns the number of rows.
func (b *Board[S]) Height() int { return b.height }

// BoundaryCondition returns the board's edge policy.
func (b *Board[S]) BoundaryCondition() BoundaryCondition[S] { return b.boundary }

// Periodic reports whether the board wraps.
func (b *Board[S]) Periodic() bool { return b.boundary.Kind == Periodic }

// InBounds reports whether (x, y) lies inside the grid.
func (b *Board[S]) InBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Get returns the state at (x, y). The second result is false when the
// coordinate is outside the grid; Get never wraps.
func (b *Board[S]) Get(x, y int) (S, bool) {
	if !b.InBounds(x, y) {
		var zero S
		return zero, false
	}
	return b.cells[y*b.width+x], true
}

// At is Get for callers that have already resolved the coordinate.
func (b *Board[S]) At(c Coord) S {
	s, _ := b.Get(c.X, c.Y)
	return s
}

// Set writes s at (x, y). Periodic boards wrap the coordinate and always
// succeed. Fixed boards return an *OutOfBoundsError and leave the board
// unchanged when (x, y) is outside the grid.
func (b *Board[S]) Set(x, y int, s S) error {
	c, ok := b.Resolve(x, y)
	if !ok {
		return &OutOfBoundsError{X: x, Y: y, Width: b.width, Height: b.height}
	}
	b.cells[c.Y*b.width+c.X] = s
	return nil
}

// Resolve maps (x, y) to a cell of the grid according to the boundary
// condition. Periodic boards always resolve. Fixed boards resolve only
// in-range coordinates.
func (b *Board[S]) Resolve(x, y int) (Coord, bool) {
	if b.boundary.Kind == Periodic {
		return Coord{X: core.Mod(x, b.width), Y: core.Mod(y, b.height)}, true
	}
	if !b.InBounds(x, y) {
		return Coord{X: x, Y: y}, false
	}
	return Coord{X: x, Y: y}, true
}

// Lookup reads (x, y) through the boundary condition: Periodic wraps and
// Fixed returns the boundary default outside the grid.
func (b *Board[S]) Lookup(x, y int) S {
	c, ok := b.Resolve(x, y)
	if !ok {
		return b.boundary.Default
	}
	return b.cells[c.Y*b.width+c.X]
}

// Coords returns every coordinate in row-major order:
// (0,0), (1,0), ..., (width-1,0), (0,1), ...
func (b *Board[S]) Coords() []Coord {
	out := make([]Coord, 0, len(b.cells))
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			out = append(out, Coord{X: x, Y: y})
		}
	}
	return out
}

// Len returns width * height.
func (b *Board[S]) Len() int { return len(b.cells) }

// Clone returns an independent copy with the same geometry and boundary.
func (b *Board[S]) Clone() *Board[S] {
	return &Board[S]{
		width:    b.width,
		height:   b.height,
		cells:    slices.Clone(b.cells),
		boundary: b.boundary,
	}
}

// Equal reports whether both boards have the same size, boundary and cells.
func (b *Board[S]) Equal(other *Board[S]) bool {
	if other == nil {
		return false
	}
	return b.width == other.width &&
		b.height == other.height &&
		b.boundary == other.boundary &&
		slices.Equal(b.cells, other.cells)
}

// Rows returns a copy of the grid as a row-major matrix.
func (b *Board[S]) Rows() [][]S {
	rows := make([][]S, b.height)
	for y := range rows {
		rows[y] = slices.Clone(b.cells[y*b.width : (y+1)*b.width])
	}
	return rows
}

// Count returns the number of cells for which pred holds.
func (b *Board[S]) Count(pred func(S) bool) int {
	n := 0
	for _, s := range b.cells {
		if pred(s) {
			n++
		}
	}
	return n
}

// ToRepresentation projects every cell through project and returns a
// height x width matrix of colors indexed [y][x].
func (b *Board[S]) ToRepresentation(project func(S) core.Color) [][]core.Color {
	out := make([][]core.Color, b.height)
	for y := range out {
		row := make([]core.Color, b.width)
		for x := range row {
			row[x] = project(b.cells[y*b.width+x])
		}
		out[y] = row
	}
	return out
}

// String renders the board one row per line using %v for each state.
func (b *Board[S]) String() string {
	buf := make([]byte, 0, len(b.cells)*2)
	for y := 0; y < b.height; y++ {
		if y > 0 {
			buf = append(buf, '\n')
		}
		for x := 0; x < b.width; x++ {
			if x > 0 {
				buf = append(buf, ' ')
			}
			buf = fmt.Appendf(buf, "%v", b.cells[y*b.width+x])
		}
	}
	return string(buf)
}
