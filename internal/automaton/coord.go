package automaton

import (
	"fmt"

	"github.com/vovakirdan/tui-automata/internal/core"
)

// Coord is an absolute cell position. (0, 0) is the top-left cell.
type Coord struct {
	X, Y int
}

// C is shorthand for Coord{X: x, Y: y}.
func C(x, y int) Coord {
	return Coord{X: x, Y: y}
}

// Add returns the coordinate shifted by o.
func (c Coord) Add(o Offset) Coord {
	return Coord{X: c.X + o.DX, Y: c.Y + o.DY}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Offset is a relative displacement from a center cell.
type Offset struct {
	DX, DY int
}

// Manhattan returns |dx| + |dy|.
func (o Offset) Manhattan() int {
	return core.Abs(o.DX) + core.Abs(o.DY)
}
