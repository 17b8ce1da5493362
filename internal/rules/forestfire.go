package rules

import (
	"fmt"

	"github.com/vovakirdan/tui-automata/internal/automaton"
	"github.com/vovakirdan/tui-automata/internal/core"
)

// FireState is the state of a forest cell.
type FireState uint8

const (
	Empty FireState = iota
	Tree
	Burning
)

func (s FireState) String() string {
	switch s {
	case Tree:
		return "T"
	case Burning:
		return "B"
	default:
		return "."
	}
}

// FireColor projects forest cells for rendering.
func FireColor(s FireState) core.Color {
	switch s {
	case Tree:
		return core.ColorGreen
	case Burning:
		return core.ColorOrange
	default:
		return core.ColorGray
	}
}

// ForestFire is a stochastic rule: burning cells burn out, trees catch fire
// from a burning Von Neumann neighbour or spontaneously with BurnProbability,
// and empty cells grow a tree with GrowProbability.
//
// Draws come from a shared locked source, so runs are reproducible only with
// a single read-phase worker.
type ForestFire struct {
	GrowProbability float64
	BurnProbability float64

	rng           *core.LockedRand
	neighbourhood *automaton.Neighbourhood
}

// NewForestFire validates the probabilities and seeds the rule's source.
func NewForestFire(grow, burn float64, seed int64) (*ForestFire, error) {
	if grow < 0 || grow > 1 {
		return nil, fmt.Errorf("rules: grow probability %g outside [0, 1]", grow)
	}
	if burn < 0 || burn > 1 {
		return nil, fmt.Errorf("rules: burn probability %g outside [0, 1]", burn)
	}
	return &ForestFire{
		GrowProbability: grow,
		BurnProbability: burn,
		rng:             core.NewLockedRand(seed),
		neighbourhood:   automaton.MustNeighbourhood(automaton.VonNeumann, 1),
	}, nil
}

// Apply emits at most one delta for c.
func (f *ForestFire) Apply(c automaton.Coord, b *automaton.Board[FireState]) ([]automaton.Delta[FireState], error) {
	cur, ok := b.Get(c.X, c.Y)
	if !ok {
		return nil, &automaton.OutOfBoundsError{X: c.X, Y: c.Y, Width: b.Width(), Height: b.Height()}
	}

	next := cur
	switch cur {
	case Burning:
		next = Empty
	case Tree:
		burning := automaton.CountMatching(f.neighbourhood, b, c.X, c.Y, func(s FireState) bool { return s == Burning })
		if burning > 0 || f.rng.Float64() < f.BurnProbability {
			next = Burning
		}
	case Empty:
		if f.rng.Float64() < f.GrowProbability {
			next = Tree
		}
	}

	if next == cur {
		return nil, nil
	}
	return []automaton.Delta[FireState]{automaton.NewDelta(c.X, c.Y, next)}, nil
}
