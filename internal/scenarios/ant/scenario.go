// Package ant registers Langton's ant on an all-white board.
package ant

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
const ID = "ant"

// Scenario runs a single ant placed at the board center, heading in the
// configured direction. On a fixed board the run ends when the ant walks
// off the edge.
type Scenario struct {
	scenarios.Engine[rules.AntState]

	sim  config.Simulation
	auto *automaton.Automaton[rules.AntState]
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
func (s *Scenario) Title() string { return "Langton's Ant" }

// Reset places the ant.
func (s *Scenario) Reset(rc core.RuntimeConfig) error {
	dir, err := rules.ParseDirection(s.sim.Ant.Direction)
	if err != nil {
		return err
	}
	w, h := scenarios.BoardSize(s.sim.Board, rc)
	bc := scenarios.Boundary(s.sim.Board.Boundary, rules.Background(rules.White))

	board, err := automaton.FilledBoard(w, h, rules.Background(rules.White), bc)
	if err != nil {
		return err
	}
	if err := board.Set(w/2, h/2, rules.WithAnt(rules.White, dir)); err != nil {
		return err
	}
	s.auto = automaton.New(board, []automaton.Rule[rules.AntState]{rules.LangtonsAnt{}},
		automaton.WithWorkers(scenarios.Workers(rc, s.sim.Run)))

	s.Board = board
	s.StepFn = s.step
	s.Glyph = glyph
	s.Live = func(st rules.AntState) bool { return st.Colour == rules.Black }
	s.Summary = s.summary
	s.Restart()
	return nil
}

// Automaton exposes the underlying automaton for headless runs.
func (s *Scenario) Automaton() *automaton.Automaton[rules.AntState] { return s.auto }

// step turns the ant's out-of-bounds rule error into a terminal error.
func (s *Scenario) step() (automaton.StepResult, error) {
	res, err := s.auto.Step()
	if err != nil {
		return res, err
	}
	if res.RuleErrors > 0 {
		return res, fmt.Errorf("ant reached the edge at t=%d: %w", res.Time, automaton.ErrOutOfBounds)
	}
	return res, nil
}

func (s *Scenario) summary() string {
	for _, c := range s.auto.Board().Coords() {
		if st := s.auto.Board().At(c); st.HasAnt {
			return fmt.Sprintf("ant %v heading %v", c, st.Heading)
		}
	}
	return "no ant"
}

var arrows = map[rules.Direction]rune{
	rules.Up:    '▲',
	rules.Right: '▶',
	rules.Down:  '▼',
	rules.Left:  '◀',
}

func glyph(st rules.AntState) core.Cell {
	if st.HasAnt {
		return core.Cell{Rune: arrows[st.Heading], Color: rules.AntColor(st)}
	}
	if st.Colour == rules.Black {
		return core.Cell{Rune: '█', Color: core.ColorGray}
	}
	return core.Cell{Rune: ' ', Color: rules.AntColor(st)}
}
