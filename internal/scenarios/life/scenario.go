// Package life registers Conway's Game of Life on a random soup or a
// configured pattern.
package life

import (
	"github.com/vovakirdan/tui-automata/internal/automaton"
	"github.com/vovakirdan/tui-automata/internal/config"
	"github.com/vovakirdan/tui-automata/internal/core"
	"github.com/vovakirdan/tui-automata/internal/registry"
	"github.com/vovakirdan/tui-automata/internal/rules"
	"github.com/vovakirdan/tui-automata/internal/scenarios"
)

// ID is the command-line name of the scenario.
const ID = "life"

// Scenario runs Game of Life. The board settles when a step changes nothing.
type Scenario struct {
	scenarios.Engine[rules.LifeState]

	sim  config.Simulation
	auto *automaton.Automaton[rules.LifeState]
}

func init() {
	registry.Register(ID, func(sim config.Simulation) registry.Scenario {
		return New(sim)
	})
}

// New creates a scenario. Call Reset before stepping.
func New(sim config.Simulation) *Scenario {
	return &Scenario{sim: sim}
}

// ID returns the scenario identifier.
func (s *Scenario) ID() string { return ID }

// Title returns the display name.
func (s *Scenario) Title() string { return "Conway's Game of Life" }

// Reset seeds a soup with board.density live cells, or centers board.pattern
// on an empty board when one is configured.
func (s *Scenario) Reset(rc core.RuntimeConfig) error {
	w, h := scenarios.BoardSize(s.sim.Board, rc)
	var rows [][]rules.LifeState
	if len(s.sim.Board.Pattern) > 0 {
		rows = scenarios.Soup(w, h, 0, rules.Alive, rules.Dead, core.NewRand(1))
		scenarios.Stamp(rows, s.sim.Board.Pattern, rules.Alive)
	} else {
		rng := core.NewRand(scenarios.Seed(rc, s.sim.Run))
		rows = scenarios.Soup(w, h, s.sim.Board.Density, rules.Alive, rules.Dead, rng)
	}

	board, err := automaton.NewBoard(rows, scenarios.Boundary(s.sim.Board.Boundary, rules.Dead))
	if err != nil {
		return err
	}
	s.auto = automaton.New(board, []automaton.Rule[rules.LifeState]{rules.NewGameOfLife()},
		automaton.WithWorkers(scenarios.Workers(rc, s.sim.Run)))

	s.Board = board
	s.StepFn = s.auto.Step
	s.Glyph = glyph
	s.Live = rules.IsAlive
	s.Restart()
	return nil
}

// Automaton exposes the underlying automaton for headless runs.
func (s *Scenario) Automaton() *automaton.Automaton[rules.LifeState] { return s.auto }

func glyph(st rules.LifeState) core.Cell {
	if st == rules.Alive {
		return core.Cell{Rune: '█', Color: rules.LifeColor(st)}
	}
	return core.Cell{Rune: ' ', Color: rules.LifeColor(st)}
}
