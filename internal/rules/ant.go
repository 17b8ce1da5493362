package rules

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/tui-automata/internal/automaton"
	"github.com/vovakirdan/tui-automata/internal/core"
)

// Direction is the heading of an ant. Up decreases y.
type Direction uint8

const (
	Up Direction = iota
	Right
	Down
	Left
)

var directionNames = [...]string{"up", "right", "down", "left"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// ParseDirection accepts the names printed by Direction.String.
func ParseDirection(s string) (Direction, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range directionNames {
		if n == name {
			return Direction(i), nil
		}
	}
	return Up, fmt.Errorf("rules: unknown direction %q", s)
}

// Delta returns the unit step for the direction.
func (d Direction) Delta() automaton.Offset {
	switch d {
	case Up:
		return automaton.Offset{DX: 0, DY: -1}
	case Right:
		return automaton.Offset{DX: 1, DY: 0}
	case Down:
		return automaton.Offset{DX: 0, DY: 1}
	case Left:
		return automaton.Offset{DX: -1, DY: 0}
	}
	return automaton.Offset{}
}

// TurnRight rotates clockwise.
func (d Direction) TurnRight() Direction { return (d + 1) % 4 }

// TurnLeft rotates counter-clockwise.
func (d Direction) TurnLeft() Direction { return (d + 3) % 4 }

// Colour is the background of an ant cell.
type Colour uint8

const (
	White Colour = iota
	Black
)

// Flip swaps white and black.
func (c Colour) Flip() Colour {
	if c == White {
		return Black
	}
	return White
}

func (c Colour) String() string {
	if c == Black {
		return "black"
	}
	return "white"
}

// AntState is a background colour plus an optional ant.
type AntState struct {
	Colour  Colour
	HasAnt  bool
	Heading Direction // Meaningful only when HasAnt is set
}

// Background returns an ant-free cell of colour c.
func Background(c Colour) AntState { return AntState{Colour: c} }

// WithAnt returns a cell of colour c holding an ant facing d.
func WithAnt(c Colour, d Direction) AntState {
	return AntState{Colour: c, HasAnt: true, Heading: d}
}

func (s AntState) String() string {
	if s.HasAnt {
		return fmt.Sprintf("%v+%v", s.Colour, s.Heading)
	}
	return s.Colour.String()
}

// AntColor projects ant cells for rendering.
func AntColor(s AntState) core.Color {
	switch {
	case s.HasAnt:
		return core.ColorRed
	case s.Colour == Black:
		return core.ColorBlack
	default:
		return core.ColorBrightWhite
	}
}

// LangtonsAnt moves every ant one cell per step. On a white cell the ant turns
// right, on a black cell it turns left; the cell it leaves flips colour.
//
// Cells without an ant emit a single unchanged delta. A destination outside a
// Fixed board is reported as an *automaton.OutOfBoundsError.
type LangtonsAnt struct{}

// Apply emits the writes for the cell at c.
func (LangtonsAnt) Apply(c automaton.Coord, b *automaton.Board[AntState]) ([]automaton.Delta[AntState], error) {
	cur, ok := b.Get(c.X, c.Y)
	if !ok {
		return nil, &automaton.OutOfBoundsError{X: c.X, Y: c.Y, Width: b.Width(), Height: b.Height()}
	}
	if !cur.HasAnt {
		return []automaton.Delta[AntState]{automaton.NewDelta(c.X, c.Y, cur)}, nil
	}

	heading := cur.Heading.TurnLeft()
	if cur.Colour == White {
		heading = cur.Heading.TurnRight()
	}

	target := c.Add(heading.Delta())
	dest, ok := b.Resolve(target.X, target.Y)
	if !ok {
		return nil, &automaton.OutOfBoundsError{X: target.X, Y: target.Y, Width: b.Width(), Height: b.Height()}
	}
	next := b.At(dest)

	return []automaton.Delta[AntState]{
		automaton.NewDelta(c.X, c.Y, Background(cur.Colour.Flip())),
		automaton.NewDelta(dest.X, dest.Y, WithAnt(next.Colour, heading)),
	}, nil
}
