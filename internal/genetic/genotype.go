// Package genetic breeds automaton rules. A Genotype is a Rule that can also be
// crossed, mutated and scored; a Population holds genotypes and reshapes itself
// between simulation steps through a SelectionStrategy.
package genetic

import (
	"errors"
	"math/rand/v2"

	"github.com/vovakirdan/tui-automata/internal/automaton"
)

var (
	// ErrEmptyPopulation is returned by operations that need at least one parent.
	ErrEmptyPopulation = errors.New("genetic: population is empty")

	// ErrInvalidFraction is returned for shrink or grow fractions outside [0, 1].
	ErrInvalidFraction = errors.New("genetic: fraction must be within [0, 1]")

	// ErrInvalidMutationRate is returned for mutation rates outside [0, 1].
	ErrInvalidMutationRate = errors.New("genetic: mutation rate must be within [0, 1]")

	// ErrInvalidStrategy is returned by SelectionStrategy.Validate.
	ErrInvalidStrategy = errors.New("genetic: invalid selection strategy")
)

// Genotype is a rule that takes part in evolution. G is the concrete genotype
// type itself, usually a pointer, so Crossover and Clone return values the
// population can store directly.
//
// Apply (from automaton.Rule) and Fitness run concurrently and must not modify
// the receiver. Mutate is only called from the sequential phases.
type Genotype[S automaton.State, G any] interface {
	automaton.Rule[S]

	// Crossover combines the receiver with other into a new child.
	// The result must depend only on the inputs and rng.
	Crossover(other G, rng *rand.Rand) G

	// Mutate perturbs each parameter in place with probability rate.
	Mutate(rate float64, rng *rand.Rand)

	// Fitness scores the genotype against board, higher is better.
	// board must only be read.
	Fitness(board *automaton.Board[S]) float64

	// Clone returns an independent copy.
	Clone() G
}
