// Package rules holds the reference automaton rules and their cell states:
// Conway's Game of Life, Langton's ant, a stochastic forest fire and a
// breedable life-like B/S rule.
package rules

import (
	"github.com/vovakirdan/tui-automata/internal/automaton"
	"github.com/vovakirdan/tui-automata/internal/core"
)

// LifeState is the state of a two-state life cell.
type LifeState uint8

const (
	Dead LifeState = iota
	Alive
)

func (s LifeState) String() string {
	if s == Alive {
		return "A"
	}
	return "D"
}

// IsAlive reports whether s is Alive.
func IsAlive(s LifeState) bool { return s == Alive }

// LifeColor projects life cells for rendering.
func LifeColor(s LifeState) core.Color {
	if s == Alive {
		return core.ColorBrightGreen
	}
	return core.ColorBlack
}

// GameOfLife is Conway's rule: a dead cell with exactly three live Moore
// neighbours is born, a live cell with two or three survives, every other
// cell dies.
type GameOfLife struct {
	neighbourhood *automaton.Neighbourhood
}

// NewGameOfLife returns the rule with its own neighbourhood cache.
func NewGameOfLife() *GameOfLife {
	return &GameOfLife{neighbourhood: automaton.MustNeighbourhood(automaton.Moore, 1)}
}

// Apply emits the next state of c.
func (g *GameOfLife) Apply(c automaton.Coord, b *automaton.Board[LifeState]) ([]automaton.Delta[LifeState], error) {
	live := automaton.CountMatching(g.neighbourhood, b, c.X, c.Y, IsAlive)
	next := Dead
	if live == 3 || (b.At(c) == Alive && live == 2) {
		next = Alive
	}
	return []automaton.Delta[LifeState]{automaton.NewDelta(c.X, c.Y, next)}, nil
}

// ParseLifeBoard builds a board from rows of '.' (dead) and any other rune
// (alive). Rows must have equal length.
func ParseLifeBoard(bc automaton.BoundaryCondition[LifeState], rows ...string) (*automaton.Board[LifeState], error) {
	m := make([][]LifeState, len(rows))
	for y, row := range rows {
		for _, r := range row {
			s := Dead
			if r != '.' && r != ' ' {
				s = Alive
			}
			m[y] = append(m[y], s)
		}
	}
	return automaton.NewBoard(m, bc)
}
