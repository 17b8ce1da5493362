package genetic

import (
	"fmt"

	"github.com/vovakirdan/tui-automata/internal/automaton"
)

// GenerationResult describes one GeneticAutomaton step.
type GenerationResult struct {
	automaton.StepResult
	Population int   // Population size after the generation advanced
	Err        error // Population error, the board step still happened
}

// GeneticAutomaton steps a board with every genotype of a population as a
// rule, then advances the population one generation against the new board.
type GeneticAutomaton[S automaton.State, G Genotype[S, G]] struct {
	board          *automaton.Board[S]
	population     *Population[S, G]
	deathFraction  float64
	growthFraction float64
	time           int
	opts           automaton.Options
}

// NewGeneticAutomaton returns a genetic automaton at time 0. Both fractions
// must be within [0, 1].
func NewGeneticAutomaton[S automaton.State, G Genotype[S, G]](board *automaton.Board[S], population *Population[S, G], deathFraction, growthFraction float64, opts ...automaton.Option) (*GeneticAutomaton[S, G], error) {
	if !validFraction(deathFraction) {
		return nil, fmt.Errorf("%w: death %g", ErrInvalidFraction, deathFraction)
	}
	if !validFraction(growthFraction) {
		return nil, fmt.Errorf("%w: growth %g", ErrInvalidFraction, growthFraction)
	}
	return &GeneticAutomaton[S, G]{
		board:          board,
		population:     population,
		deathFraction:  deathFraction,
		growthFraction: growthFraction,
		opts:           automaton.NewOptions(opts...),
	}, nil
}

// Time returns the number of completed generations.
func (ga *GeneticAutomaton[S, G]) Time() int { return ga.time }

// Board returns the live board.
func (ga *GeneticAutomaton[S, G]) Board() *automaton.Board[S] { return ga.board }

// Population returns the evolving population.
func (ga *GeneticAutomaton[S, G]) Population() *Population[S, G] { return ga.population }

// Step applies the population's genotypes as rules in population order and
// then advances the population. A population error, such as the population
// dying out, is reported in the result and logged; it does not fail the step.
func (ga *GeneticAutomaton[S, G]) Step() (GenerationResult, error) {
	genotypes := ga.population.Genotypes()
	rules := make([]automaton.Rule[S], len(genotypes))
	for i, g := range genotypes {
		rules[i] = g
	}

	batch, err := automaton.Collect(ga.board, rules, ga.opts)
	if err != nil {
		return GenerationResult{StepResult: automaton.StepResult{Time: ga.time}}, err
	}
	applied, dropped := automaton.ApplyDeltas(ga.board, batch.Deltas, ga.opts.Logger)

	perr := ga.population.AdvanceGeneration(ga.deathFraction, ga.growthFraction, ga.board)
	if perr != nil {
		ga.opts.Logger.Warn("population did not advance", "generation", ga.time+1, "error", perr)
	}
	ga.time++

	return GenerationResult{
		StepResult: automaton.StepResult{
			Time:       ga.time,
			Deltas:     len(batch.Deltas),
			Applied:    applied,
			Dropped:    dropped,
			Elided:     batch.Elided,
			RuleErrors: batch.RuleErrors,
		},
		Population: ga.population.Len(),
		Err:        perr,
	}, nil
}

// Evolve runs n generations, stopping only on a step-level error.
func (ga *GeneticAutomaton[S, G]) Evolve(n int) error {
	for range n {
		if _, err := ga.Step(); err != nil {
			return fmt.Errorf("generation %d: %w", ga.time+1, err)
		}
	}
	return nil
}

// Stats scores the current population against the current board.
func (ga *GeneticAutomaton[S, G]) Stats() (Stats, error) {
	return ga.population.Stats(ga.board)
}
