// Package forestfire registers the stochastic forest fire model.
package forestfire

import (
	"fmt"

	"github.com/vovakirdan/tui-automata/internal/automaton"
	"github.com/vovakirdan/tui-automata/internal/config"
	"github.com/vovakirdan/tui-automata/internal/core"
	"github.com/vovakirdan/tui-automata/internal/registry"
	"github.com/vovakirdan/tui-automata/internal/rules"
	"github.com/vovakirdan/tui-automata/internal/scenarios"
)

// ID is the command-line name of the scenario.
const ID = "forestfire"

// Scenario runs a forest planted with forest_fire.tree_density trees.
type Scenario struct {
	scenarios.Engine[rules.FireState]

	sim  config.Simulation
	auto *automaton.Automaton[rules.FireState]
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
func (s *Scenario) Title() string { return "Forest Fire" }

// Reset plants a new forest. Planting and the rule draw from the same seed,
// so a seeded single-worker run replays exactly.
func (s *Scenario) Reset(rc core.RuntimeConfig) error {
	ff := s.sim.ForestFire
	seed := scenarios.Seed(rc, s.sim.Run)
	rule, err := rules.NewForestFire(ff.GrowProbability, ff.BurnProbability, seed)
	if err != nil {
		return err
	}

	w, h := scenarios.BoardSize(s.sim.Board, rc)
	rows := scenarios.Soup(w, h, ff.TreeDensity, rules.Tree, rules.Empty, core.NewRand(seed))
	board, err := automaton.NewBoard(rows, scenarios.Boundary(s.sim.Board.Boundary, rules.Empty))
	if err != nil {
		return err
	}
	s.auto = automaton.New(board, []automaton.Rule[rules.FireState]{rule},
		automaton.WithWorkers(scenarios.Workers(rc, s.sim.Run)))

	s.Board = board
	s.StepFn = s.auto.Step
	s.Glyph = glyph
	s.Live = func(st rules.FireState) bool { return st != rules.Empty }
	s.Summary = s.summary
	s.Done = s.burntOut
	s.Restart()
	return nil
}

// Automaton exposes the underlying automaton for headless runs.
func (s *Scenario) Automaton() *automaton.Automaton[rules.FireState] { return s.auto }

func (s *Scenario) summary() string {
	b := s.auto.Board()
	trees := b.Count(func(st rules.FireState) bool { return st == rules.Tree })
	burning := b.Count(func(st rules.FireState) bool { return st == rules.Burning })
	return fmt.Sprintf("trees=%d burning=%d", trees, burning)
}

// burntOut reports whether no tree or fire is left. A quiet step alone does
// not end the run since growth and lightning are random.
func (s *Scenario) burntOut() bool {
	return s.auto.Board().Count(s.Live) == 0
}

func glyph(st rules.FireState) core.Cell {
	switch st {
	case rules.Tree:
		return core.Cell{Rune: '♣', Color: rules.FireColor(st)}
	case rules.Burning:
		return core.Cell{Rune: '*', Color: rules.FireColor(st)}
	default:
		return core.Cell{Rune: ' ', Color: rules.FireColor(st)}
	}
}
