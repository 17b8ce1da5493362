package genetic

import (
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/vovakirdan/tui-automata/internal/automaton"
)

type bit uint8

// gene paints every cell 1 when its value is at least 0.5. Its fitness is the
// value itself, which makes rankings easy to predict.
type gene struct {
	value  float64
	panics bool
}

func (g *gene) Apply(c automaton.Coord, _ *automaton.Board[bit]) ([]automaton.Delta[bit], error) {
	s := bit(0)
	if g.value >= 0.5 {
		s = 1
	}
	return []automaton.Delta[bit]{automaton.NewDelta(c.X, c.Y, s)}, nil
}

func (g *gene) Crossover(other *gene, _ *rand.Rand) *gene {
	return &gene{value: (g.value + other.value) / 2}
}

func (g *gene) Mutate(rate float64, rng *rand.Rand) {
	if rng.Float64() < rate {
		g.value = rng.Float64()
	}
}

func (g *gene) Fitness(*automaton.Board[bit]) float64 {
	if g.panics {
		panic("fitness exploded")
	}
	return g.value
}

func (g *gene) Clone() *gene {
	c := *g
	return &c
}

func genes(values ...float64) []*gene {
	out := make([]*gene, len(values))
	for i, v := range values {
		out[i] = &gene{value: v}
	}
	return out
}

func testBoard(t *testing.T) *automaton.Board[bit] {
	t.Helper()
	b, err := automaton.FilledBoard(3, 3, bit(0), automaton.PeriodicBoundary[bit]())
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func newPop(t *testing.T, strategy SelectionStrategy, values ...float64) *Population[bit, *gene] {
	t.Helper()
	p, err := NewPopulation[bit](genes(values...), strategy, 0.1, WithSeed(7), WithFitnessWorkers(2))
	if err != nil {
		t.Fatalf("NewPopulation: %v", err)
	}
	return p
}

func TestNewPopulationRejectsMutationRate(t *testing.T) {
	for _, rate := range []float64{-0.01, 1.01, math.NaN(), math.Inf(1)} {
		_, err := NewPopulation[bit](genes(0.5), TournamentSelection(2), rate)
		if !errors.Is(err, ErrInvalidMutationRate) {
			t.Errorf("rate %v: error = %v, expected ErrInvalidMutationRate", rate, err)
		}
	}
	for _, rate := range []float64{0, 0.5, 1} {
		if _, err := NewPopulation[bit](genes(0.5), TournamentSelection(2), rate); err != nil {
			t.Errorf("rate %v: unexpected error %v", rate, err)
		}
	}
}

func TestNewPopulationRejectsStrategy(t *testing.T) {
	_, err := NewPopulation[bit](genes(0.5), TruncationSelection(0), 0.1)
	if !errors.Is(err, ErrInvalidStrategy) {
		t.Errorf("error = %v, expected ErrInvalidStrategy", err)
	}
}

func TestFitnessScoresKeepOrder(t *testing.T) {
	values := []float64{0.3, 0.9, 0.1, 0.6, 0.2, 0.8}
	p := newPop(t, RouletteWheelSelection(), values...)

	got, err := p.FitnessScores(testBoard(t))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, values) {
		t.Errorf("FitnessScores() = %v, expected %v", got, values)
	}
}

func TestAddChild(t *testing.T) {
	b := testBoard(t)
	p := newPop(t, TournamentSelection(2), 0.2, 0.4)

	if err := p.AddChild(b); err != nil {
		t.Fatal(err)
	}
	if p.Len() != 3 {
		t.Errorf("Len() = %d, expected 3", p.Len())
	}

	empty := newPop(t, TournamentSelection(2))
	if err := empty.AddChild(b); !errors.Is(err, ErrEmptyPopulation) {
		t.Errorf("AddChild on empty population: %v", err)
	}
}

func TestShrinkPopulation(t *testing.T) {
	tests := []struct {
		name    string
		survive float64
		want    int
	}{
		{"zero empties", 0, 0},
		{"one keeps all", 1, 10},
		{"half", 0.5, 5},
		{"rounds", 0.34, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newPop(t, TruncationSelection(0.5), 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0)
			if err := p.ShrinkPopulation(tc.survive, testBoard(t)); err != nil {
				t.Fatal(err)
			}
			if p.Len() != tc.want {
				t.Errorf("Len() = %d, expected %d", p.Len(), tc.want)
			}
		})
	}
}

func TestPanickingFitnessIsReturned(t *testing.T) {
	b := testBoard(t)
	tests := []struct {
		name string
		call func(p *Population[bit, *gene]) error
	}{
		{"FitnessScores", func(p *Population[bit, *gene]) error {
			_, err := p.FitnessScores(b)
			return err
		}},
		{"Best", func(p *Population[bit, *gene]) error {
			_, _, err := p.Best(b)
			return err
		}},
		{"Stats", func(p *Population[bit, *gene]) error {
			_, err := p.Stats(b)
			return err
		}},
		{"AddChild", func(p *Population[bit, *gene]) error { return p.AddChild(b) }},
		{"ShrinkPopulation", func(p *Population[bit, *gene]) error { return p.ShrinkPopulation(0.5, b) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gs := genes(0.2, 0.4, 0.6)
			gs[1].panics = true
			p, err := NewPopulation[bit](gs, TournamentSelection(2), 0.1, WithSeed(3), WithFitnessWorkers(2))
			if err != nil {
				t.Fatal(err)
			}
			err = tc.call(p)
			if err == nil || !strings.Contains(err.Error(), "genotype 1 panicked") {
				t.Errorf("error = %v, expected the fitness panic of genotype 1", err)
			}
			if p.Len() != 3 {
				t.Errorf("Len() = %d, expected the population untouched", p.Len())
			}
		})
	}
}

func TestShrinkKeepsFittestUnderTruncation(t *testing.T) {
	p := newPop(t, TruncationSelection(0.5), 0.5, 0.9, 0.1, 0.7, 0.3)
	if err := p.ShrinkPopulation(0.4, testBoard(t)); err != nil {
		t.Fatal(err)
	}
	got, err := p.FitnessScores(testBoard(t))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []float64{0.9, 0.7}) {
		t.Errorf("survivors = %v, expected [0.9 0.7]", got)
	}
}

func TestShrinkPopulationErrors(t *testing.T) {
	b := testBoard(t)
	p := newPop(t, TournamentSelection(2), 0.5, 0.6)
	for _, f := range []float64{-0.1, 1.5} {
		if err := p.ShrinkPopulation(f, b); !errors.Is(err, ErrInvalidFraction) {
			t.Errorf("ShrinkPopulation(%v) error = %v", f, err)
		}
	}
	if p.Len() != 2 {
		t.Error("rejected shrink must not change the population")
	}

	empty := newPop(t, TournamentSelection(2))
	if err := empty.ShrinkPopulation(0.5, b); !errors.Is(err, ErrEmptyPopulation) {
		t.Errorf("shrink on empty population: %v", err)
	}
}

func TestGrowPopulation(t *testing.T) {
	b := testBoard(t)
	p := newPop(t, RankSelection(1.5), 0.1, 0.2, 0.3, 0.4)

	if err := p.GrowPopulation(0.5, b); err != nil {
		t.Fatal(err)
	}
	if p.Len() != 6 {
		t.Errorf("Len() = %d, expected 6", p.Len())
	}
	if err := p.GrowPopulation(2, b); !errors.Is(err, ErrInvalidFraction) {
		t.Errorf("GrowPopulation(2) error = %v", err)
	}

	empty := newPop(t, RankSelection(1.5))
	if err := empty.GrowPopulation(1, b); err != nil {
		t.Errorf("growing an empty population by zero children should be a no-op: %v", err)
	}
}

func TestAdvanceGenerationSizes(t *testing.T) {
	b := testBoard(t)
	p := newPop(t, TournamentSelection(3), 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0)

	if err := p.AdvanceGeneration(0.3, 0.5, b); err != nil {
		t.Fatal(err)
	}
	// 10 -> 7 survivors -> round(3.5) = 4 children.
	if p.Len() != 11 {
		t.Errorf("Len() = %d, expected 11", p.Len())
	}

	if err := p.AdvanceGeneration(1, 1, b); err != nil {
		t.Fatal(err)
	}
	if p.Len() != 0 {
		t.Errorf("Len() = %d after total death, expected 0", p.Len())
	}

	if err := p.AdvanceGeneration(0.5, 0.5, b); !errors.Is(err, ErrEmptyPopulation) {
		t.Errorf("advance on empty population: %v", err)
	}
	if p.Len() != 0 {
		t.Errorf("Len() = %d, expected 0", p.Len())
	}
}

func TestBestAndStats(t *testing.T) {
	b := testBoard(t)
	p := newPop(t, TournamentSelection(2), 0.2, 0.8, 0.5)

	g, score, err := p.Best(b)
	if err != nil {
		t.Fatal(err)
	}
	if g.value != 0.8 || score != 0.8 {
		t.Errorf("Best() = %v, %v", g.value, score)
	}

	st, err := p.Stats(b)
	if err != nil {
		t.Fatal(err)
	}
	if st.Size != 3 || st.BestIndex != 1 || st.Best != 0.8 || math.Abs(st.Mean-0.5) > 1e-9 {
		t.Errorf("Stats() = %+v", st)
	}

	empty := newPop(t, TournamentSelection(2))
	if _, _, err := empty.Best(b); !errors.Is(err, ErrEmptyPopulation) {
		t.Errorf("Best on empty population: %v", err)
	}
	if st, err := empty.Stats(b); err != nil || st.BestIndex != -1 {
		t.Errorf("empty Stats() = %+v", st)
	}
}

func TestAddAndRemove(t *testing.T) {
	p := newPop(t, TournamentSelection(2), 0.1, 0.2, 0.3)
	p.Add(&gene{value: 0.4})
	if err := p.Remove(0); err != nil {
		t.Fatal(err)
	}
	if err := p.Remove(5); err == nil {
		t.Error("expected out-of-range Remove to fail")
	}

	var got []float64
	for _, g := range p.Genotypes() {
		got = append(got, g.value)
	}
	if !slices.Equal(got, []float64{0.2, 0.3, 0.4}) {
		t.Errorf("genotypes = %v", got)
	}
}

func TestGeneticAutomatonStep(t *testing.T) {
	b := testBoard(t)
	p := newPop(t, TruncationSelection(0.5), 0.9, 0.2, 0.7)
	ga, err := NewGeneticAutomaton(b, p, 0, 0, automaton.WithWorkers(2))
	if err != nil {
		t.Fatal(err)
	}

	res, err := ga.Step()
	if err != nil {
		t.Fatal(err)
	}
	// The last genotype in population order wins every cell.
	if n := b.Count(func(s bit) bool { return s == 1 }); n != 9 {
		t.Errorf("live cells = %d, expected 9", n)
	}
	if res.Time != 1 || res.Population != 3 || res.Err != nil {
		t.Errorf("result = %+v", res)
	}
	if ga.Time() != 1 {
		t.Errorf("Time() = %d", ga.Time())
	}
}

func TestGeneticAutomatonSurvivesExtinction(t *testing.T) {
	b := testBoard(t)
	p := newPop(t, TournamentSelection(2), 0.9, 0.2)
	ga, err := NewGeneticAutomaton(b, p, 1, 0)
	if err != nil {
		t.Fatal(err)
	}

	if err := ga.Evolve(3); err != nil {
		t.Fatalf("population errors must not stop evolution: %v", err)
	}
	if ga.Time() != 3 || ga.Population().Len() != 0 {
		t.Errorf("Time/Len = %d/%d, expected 3/0", ga.Time(), ga.Population().Len())
	}

	res, err := ga.Step()
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(res.Err, ErrEmptyPopulation) {
		t.Errorf("res.Err = %v, expected ErrEmptyPopulation", res.Err)
	}
	if st, err := ga.Stats(); err != nil || st.Size != 0 {
		t.Errorf("Stats().Size = %d", st.Size)
	}
}

func TestNewGeneticAutomatonRejectsFractions(t *testing.T) {
	p := newPop(t, TournamentSelection(2), 0.5)
	if _, err := NewGeneticAutomaton(testBoard(t), p, 1.2, 0); !errors.Is(err, ErrInvalidFraction) {
		t.Errorf("error = %v, expected ErrInvalidFraction", err)
	}
}
