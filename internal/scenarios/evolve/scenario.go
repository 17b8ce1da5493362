// Package evolve registers the rule-evolution scenario: a population of
// life-like B/S rules drives a shared board while breeding toward a target
// live density.
package evolve

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-automata/internal/automaton"
	"github.com/vovakirdan/tui-automata/internal/config"
	"github.com/vovakirdan/tui-automata/internal/core"
	"github.com/vovakirdan/tui-automata/internal/genetic"
	"github.com/vovakirdan/tui-automata/internal/registry"
	"github.com/vovakirdan/tui-automata/internal/rules"
	"github.com/vovakirdan/tui-automata/internal/scenarios"
)

// ID is the command-line name of the scenario.
const ID = "evolve"

// Engine is the genetic automaton the scenario steps.
type Engine = genetic.GeneticAutomaton[rules.LifeState, *rules.LifeLike]

// Scenario steps an Engine and shows the leading rule in the status line.
type Scenario struct {
	scenarios.Engine[rules.LifeState]

	sim    config.Simulation
	engine *Engine
	last   genetic.GenerationResult
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
func (s *Scenario) Title() string { return "Rule Evolution" }

// Reset builds a new soup and a new population from the configured seeds.
func (s *Scenario) Reset(rc core.RuntimeConfig) error {
	w, h := scenarios.BoardSize(s.sim.Board, rc)
	engine, err := NewEngine(s.sim, w, h, scenarios.Seed(rc, s.sim.Run), scenarios.Workers(rc, s.sim.Run), nil)
	if err != nil {
		return err
	}
	s.engine = engine
	s.last = genetic.GenerationResult{}

	s.Board = engine.Board()
	s.StepFn = s.step
	s.Glyph = glyph
	s.Live = rules.IsAlive
	s.Summary = s.summary
	s.Restart()
	return nil
}

// Genetic exposes the engine for headless runs.
func (s *Scenario) Genetic() *Engine { return s.engine }

func (s *Scenario) step() (automaton.StepResult, error) {
	res, err := s.engine.Step()
	if err != nil {
		return res.StepResult, err
	}
	s.last = res
	if res.Err != nil {
		return res.StepResult, res.Err
	}
	return res.StepResult, nil
}

func (s *Scenario) summary() string {
	pop := s.engine.Population()
	if pop.Len() == 0 {
		return "population extinct"
	}
	best, score, err := pop.Best(s.engine.Board())
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("rules=%d best=%v (%.3f)", pop.Len(), best, score)
}

// NewEngine builds a w x h soup and a population from sim.Genetic. The
// configured seed rules are cycled, each copy after the first mutated, until
// the population reaches population_size.
func NewEngine(sim config.Simulation, w, h int, seed int64, workers int, logger *log.Logger) (*Engine, error) {
	g := sim.Genetic
	rng := core.NewRand(seed)

	strategy, err := Strategy(g.Selection)
	if err != nil {
		return nil, err
	}
	genes, err := Seeds(g, rng.Int64())
	if err != nil {
		return nil, err
	}
	pop, err := genetic.NewPopulation[rules.LifeState](genes, strategy, g.MutationRate,
		genetic.WithSeed(rng.Int64()), genetic.WithFitnessWorkers(workers))
	if err != nil {
		return nil, err
	}

	rows := scenarios.Soup(w, h, sim.Board.Density, rules.Alive, rules.Dead, rng)
	board, err := automaton.NewBoard(rows, scenarios.Boundary(sim.Board.Boundary, rules.Dead))
	if err != nil {
		return nil, err
	}

	opts := []automaton.Option{automaton.WithWorkers(workers)}
	if logger != nil {
		opts = append(opts, automaton.WithLogger(logger))
	}
	return genetic.NewGeneticAutomaton(board, pop, g.DeathFraction, g.GrowthFraction, opts...)
}

// Strategy converts the configured selection into a validated strategy.
func Strategy(sc config.SelectionConfig) (genetic.SelectionStrategy, error) {
	kind, err := genetic.ParseSelectionKind(sc.Kind)
	if err != nil {
		return genetic.SelectionStrategy{}, err
	}
	var st genetic.SelectionStrategy
	switch kind {
	case genetic.Tournament:
		st = genetic.TournamentSelection(sc.Size)
	case genetic.RouletteWheel:
		st = genetic.RouletteWheelSelection()
	case genetic.Rank:
		st = genetic.RankSelection(sc.Pressure)
	case genetic.Truncation:
		st = genetic.TruncationSelection(sc.Fraction)
	}
	return st, st.Validate()
}

// Seeds parses the seed rules and fills the population up to its size.
func Seeds(g config.GeneticConfig, seed int64) ([]*rules.LifeLike, error) {
	if len(g.Seeds) == 0 {
		return nil, fmt.Errorf("evolve: no seed rules configured")
	}
	parsed := make([]*rules.LifeLike, len(g.Seeds))
	for i, s := range g.Seeds {
		l, err := rules.ParseLifeLike(s)
		if err != nil {
			return nil, err
		}
		l.Target = g.TargetDensity
		l.Horizon = g.Horizon
		parsed[i] = l
	}

	rng := core.NewRand(seed)
	size := max(g.PopulationSize, len(parsed))
	genes := make([]*rules.LifeLike, 0, size)
	for i := 0; len(genes) < size; i++ {
		l := parsed[i%len(parsed)].Clone()
		if i >= len(parsed) {
			l.Mutate(g.MutationRate, rng)
		}
		genes = append(genes, l)
	}
	return genes, nil
}

func glyph(st rules.LifeState) core.Cell {
	if st == rules.Alive {
		return core.Cell{Rune: '█', Color: core.ColorBrightCyan}
	}
	return core.Cell{Rune: ' ', Color: rules.LifeColor(st)}
}
