package genetic

import (
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/tui-automata/internal/automaton"
	"github.com/vovakirdan/tui-automata/internal/core"
)

// Population is an ordered, resizable collection of genotypes together with
// the policy used to breed and cull them.
//
// A Population is not safe for concurrent use. Fitness evaluation fans out
// internally but every mutation of the collection is sequential.
type Population[S automaton.State, G Genotype[S, G]] struct {
	genotypes    []G
	strategy     SelectionStrategy
	mutationRate float64
	rng          *rand.Rand
	workers      int
}

// PopulationOption configures a Population.
type PopulationOption func(*populationOptions)

type populationOptions struct {
	rng     *rand.Rand
	workers int
}

// WithRand sets the randomness source used for selection and mutation.
func WithRand(r *rand.Rand) PopulationOption {
	return func(o *populationOptions) { o.rng = r }
}

// WithSeed seeds a private PCG source.
func WithSeed(seed int64) PopulationOption {
	return func(o *populationOptions) { o.rng = core.NewRand(seed) }
}

// WithFitnessWorkers limits concurrent fitness evaluations.
func WithFitnessWorkers(n int) PopulationOption {
	return func(o *populationOptions) { o.workers = n }
}

// NewPopulation returns a population holding genotypes in the given order.
// mutationRate must be within [0, 1] and strategy must validate.
func NewPopulation[S automaton.State, G Genotype[S, G]](genotypes []G, strategy SelectionStrategy, mutationRate float64, opts ...PopulationOption) (*Population[S, G], error) {
	if !validFraction(mutationRate) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidMutationRate, mutationRate)
	}
	if err := strategy.Validate(); err != nil {
		return nil, err
	}

	o := populationOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = core.NewRand(0)
	}
	if o.workers <= 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}

	return &Population[S, G]{
		genotypes:    append([]G(nil), genotypes...),
		strategy:     strategy,
		mutationRate: mutationRate,
		rng:          o.rng,
		workers:      o.workers,
	}, nil
}

// Len returns the current number of genotypes.
func (p *Population[S, G]) Len() int { return len(p.genotypes) }

// Genotypes returns the genotypes in population order. The slice is a copy;
// the genotypes are shared.
func (p *Population[S, G]) Genotypes() []G {
	return append([]G(nil), p.genotypes...)
}

// Strategy returns the selection strategy.
func (p *Population[S, G]) Strategy() SelectionStrategy { return p.strategy }

// MutationRate returns the per-parameter mutation probability.
func (p *Population[S, G]) MutationRate() float64 { return p.mutationRate }

// Add appends g.
func (p *Population[S, G]) Add(g G) {
	p.genotypes = append(p.genotypes, g)
}

// Remove deletes the genotype at index i, shifting later ones down.
func (p *Population[S, G]) Remove(i int) error {
	if i < 0 || i >= len(p.genotypes) {
		return fmt.Errorf("genetic: index %d out of range [0, %d)", i, len(p.genotypes))
	}
	p.genotypes = append(p.genotypes[:i], p.genotypes[i+1:]...)
	return nil
}

// FitnessScores evaluates every genotype against board concurrently.
// scores[i] belongs to Genotypes()[i]. A panicking Fitness is returned as an
// error instead of crashing the caller.
func (p *Population[S, G]) FitnessScores(board *automaton.Board[S]) ([]float64, error) {
	scores := make([]float64, len(p.genotypes))
	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, gt := range p.genotypes {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("genetic: fitness of genotype %d panicked: %v", i, r)
				}
			}()
			scores[i] = gt.Fitness(board)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

// Best returns the fittest genotype and its score. The first of equally fit
// genotypes wins.
func (p *Population[S, G]) Best(board *automaton.Board[S]) (G, float64, error) {
	var zero G
	if len(p.genotypes) == 0 {
		return zero, 0, ErrEmptyPopulation
	}
	scores, err := p.FitnessScores(board)
	if err != nil {
		return zero, 0, err
	}
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return p.genotypes[best], scores[best], nil
}

// AddChild breeds one child from two selected parents, mutates it and
// appends it.
func (p *Population[S, G]) AddChild(board *automaton.Board[S]) error {
	if len(p.genotypes) == 0 {
		return ErrEmptyPopulation
	}
	scores, err := p.FitnessScores(board)
	if err != nil {
		return err
	}
	i, j := p.strategy.SelectParents(scores, p.rng)
	child := p.genotypes[i].Crossover(p.genotypes[j], p.rng)
	child.Mutate(p.mutationRate, p.rng)
	p.genotypes = append(p.genotypes, child)
	return nil
}

// ShrinkPopulation culls the population so that round(n*survive) genotypes
// remain. survive must be within [0, 1]: 0 removes everyone and 1 removes
// no one.
func (p *Population[S, G]) ShrinkPopulation(survive float64, board *automaton.Board[S]) error {
	if !validFraction(survive) {
		return fmt.Errorf("%w: shrink %g", ErrInvalidFraction, survive)
	}
	if len(p.genotypes) == 0 {
		return ErrEmptyPopulation
	}
	scores, err := p.FitnessScores(board)
	if err != nil {
		return err
	}
	for _, i := range p.strategy.SelectDeaths(scores, survive, p.rng) {
		p.genotypes = append(p.genotypes[:i], p.genotypes[i+1:]...)
	}
	return nil
}

// GrowPopulation adds round(n*fraction) children, where n is the size before
// the first child is added.
func (p *Population[S, G]) GrowPopulation(fraction float64, board *automaton.Board[S]) error {
	if !validFraction(fraction) {
		return fmt.Errorf("%w: grow %g", ErrInvalidFraction, fraction)
	}
	children := int(math.Round(float64(len(p.genotypes)) * fraction))
	for range children {
		if err := p.AddChild(board); err != nil {
			return err
		}
	}
	return nil
}

// AdvanceGeneration removes deathFraction of the population and then grows
// the survivors by growthFraction. Culling happens first so children never
// compete with the generation being culled.
func (p *Population[S, G]) AdvanceGeneration(deathFraction, growthFraction float64, board *automaton.Board[S]) error {
	if !validFraction(deathFraction) {
		return fmt.Errorf("%w: death %g", ErrInvalidFraction, deathFraction)
	}
	if !validFraction(growthFraction) {
		return fmt.Errorf("%w: growth %g", ErrInvalidFraction, growthFraction)
	}
	if err := p.ShrinkPopulation(1-deathFraction, board); err != nil {
		return err
	}
	return p.GrowPopulation(growthFraction, board)
}

// Stats summarizes population fitness on one board.
type Stats struct {
	Size      int
	Best      float64
	Mean      float64
	BestIndex int
}

// Stats scores the population against board. An empty population reports
// BestIndex -1.
func (p *Population[S, G]) Stats(board *automaton.Board[S]) (Stats, error) {
	scores, err := p.FitnessScores(board)
	if err != nil {
		return Stats{BestIndex: -1}, err
	}
	st := Stats{Size: len(scores), BestIndex: -1}
	if len(scores) == 0 {
		return st, nil
	}
	total := 0.0
	st.BestIndex = 0
	for i, s := range scores {
		total += s
		if s > scores[st.BestIndex] {
			st.BestIndex = i
		}
	}
	st.Best = scores[st.BestIndex]
	st.Mean = total / float64(len(scores))
	return st, nil
}

func validFraction(f float64) bool {
	return f >= 0 && f <= 1
}
