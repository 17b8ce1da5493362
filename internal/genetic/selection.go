package genetic

import (
	"cmp"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
)

// SelectionKind names a selection policy.
type SelectionKind uint8

const (
	// Tournament keeps the best of k random draws.
	Tournament SelectionKind = iota + 1
	// RouletteWheel draws proportionally to fitness.
	RouletteWheel
	// Rank draws proportionally to position in the fitness ranking.
	Rank
	// Truncation draws uniformly from the top fraction.
	Truncation
)

var kindNames = map[SelectionKind]string{
	Tournament:    "tournament",
	RouletteWheel: "roulette",
	Rank:          "rank",
	Truncation:    "truncation",
}

func (k SelectionKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("SelectionKind(%d)", uint8(k))
}

// ParseSelectionKind accepts the names printed by SelectionKind.String.
func ParseSelectionKind(s string) (SelectionKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "roulette-wheel" || name == "roulette_wheel" {
		name = "roulette"
	}
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidStrategy, s)
}

// SelectionStrategy picks parents and casualties from fitness scores.
// Only the parameter matching Kind is used.
type SelectionStrategy struct {
	Kind     SelectionKind
	Size     int     // Tournament size
	Pressure float64 // Rank selection pressure
	Fraction float64 // Truncation pool, as a fraction of the population
}

// TournamentSelection returns a tournament of size k.
func TournamentSelection(k int) SelectionStrategy {
	return SelectionStrategy{Kind: Tournament, Size: k}
}

// RouletteWheelSelection returns fitness-proportional selection.
func RouletteWheelSelection() SelectionStrategy {
	return SelectionStrategy{Kind: RouletteWheel}
}

// RankSelection returns rank-proportional selection.
func RankSelection(pressure float64) SelectionStrategy {
	return SelectionStrategy{Kind: Rank, Pressure: pressure}
}

// TruncationSelection returns selection from the top fraction f.
func TruncationSelection(f float64) SelectionStrategy {
	return SelectionStrategy{Kind: Truncation, Fraction: f}
}

func (s SelectionStrategy) String() string {
	switch s.Kind {
	case Tournament:
		return fmt.Sprintf("tournament(%d)", s.Size)
	case Rank:
		return fmt.Sprintf("rank(%g)", s.Pressure)
	case Truncation:
		return fmt.Sprintf("truncation(%g)", s.Fraction)
	default:
		return s.Kind.String()
	}
}

// Validate checks the parameter of the selected kind.
func (s SelectionStrategy) Validate() error {
	switch s.Kind {
	case Tournament:
		if s.Size < 1 {
			return fmt.Errorf("%w: tournament size %d", ErrInvalidStrategy, s.Size)
		}
	case RouletteWheel:
	case Rank:
		if !(s.Pressure > 0) || math.IsInf(s.Pressure, 0) {
			return fmt.Errorf("%w: rank pressure %g", ErrInvalidStrategy, s.Pressure)
		}
	case Truncation:
		if !(s.Fraction > 0 && s.Fraction <= 1) {
			return fmt.Errorf("%w: truncation fraction %g", ErrInvalidStrategy, s.Fraction)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidStrategy, uint8(s.Kind))
	}
	return nil
}

// SelectParents returns two parent indices into scores, which must not be
// empty. Tournament, RouletteWheel and Rank return distinct parents whenever
// there are at least two individuals; Truncation may return the same index
// twice.
func (s SelectionStrategy) SelectParents(scores []float64, rng *rand.Rand) (int, int) {
	n := len(scores)
	switch s.Kind {
	case Tournament:
		p1 := tournamentBest(scores, s.Size, -1, rng)
		return p1, tournamentBest(scores, s.Size, p1, rng)

	case RouletteWheel:
		// Uniform unless the raw total fitness is positive; negative scores
		// then weigh zero.
		if total(scores) <= 0 {
			return uniformPair(n, rng)
		}
		weights := make([]float64, n)
		for i, f := range scores {
			weights[i] = max(f, 0)
		}
		return weightedPair(weights, rng)

	case Rank:
		order := rankOrder(scores)
		ranks := float64(n*(n+1)) / 2
		weights := make([]float64, n)
		for r, i := range order {
			weights[i] = float64(n-r) * s.Pressure / ranks
		}
		return weightedPair(weights, rng)

	case Truncation:
		order := rankOrder(scores)
		pool := truncationPool(n, s.Fraction)
		return order[rng.IntN(pool)], order[rng.IntN(pool)]
	}
	return uniformPair(n, rng)
}

// SelectDeaths returns the indices to remove so that round(n*survive)
// individuals remain, sorted in descending order so they can be removed one
// by one without shifting the rest.
//
// Ties: rankings use a stable sort, so among equal scores the later index is
// considered worse. Tournament and RouletteWheel draws are random but favour
// low scores.
func (s SelectionStrategy) SelectDeaths(scores []float64, survive float64, rng *rand.Rand) []int {
	n := len(scores)
	deaths := n - int(math.Round(float64(n)*survive))
	deaths = min(max(deaths, 0), n)
	if deaths == 0 {
		return nil
	}

	var out []int
	switch s.Kind {
	case Tournament:
		out = tournamentDeaths(scores, max(s.Size, 1), deaths, rng)
	case RouletteWheel:
		best := slices.Max(scores)
		weights := make([]float64, n)
		for i, f := range scores {
			weights[i] = best - f
		}
		out = drawDistinct(weights, deaths, rng)
	default:
		order := rankOrder(scores)
		out = slices.Clone(order[n-deaths:])
	}

	slices.SortFunc(out, func(a, b int) int { return cmp.Compare(b, a) })
	return out
}

// rankOrder returns indices sorted by score, best first. Equal scores keep
// index order.
func rankOrder(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(scores[b], scores[a])
	})
	return order
}

func truncationPool(n int, fraction float64) int {
	pool := int(math.Round(float64(n) * fraction))
	return min(max(pool, 1), n)
}

// tournamentBest draws k indices and keeps the best; a later draw wins ties.
// When exclude is a valid index and n > 1 it is never drawn.
func tournamentBest(scores []float64, k, exclude int, rng *rand.Rand) int {
	n := len(scores)
	draw := func() int {
		if exclude < 0 || n == 1 {
			return rng.IntN(n)
		}
		i := rng.IntN(n - 1)
		if i >= exclude {
			i++
		}
		return i
	}

	best := draw()
	for j := 1; j < k; j++ {
		if i := draw(); scores[i] >= scores[best] {
			best = i
		}
	}
	return best
}

// tournamentDeaths runs count inverse tournaments over a shrinking pool.
func tournamentDeaths(scores []float64, k, count int, rng *rand.Rand) []int {
	pool := make([]int, len(scores))
	for i := range pool {
		pool[i] = i
	}

	out := make([]int, 0, count)
	for range count {
		worst := rng.IntN(len(pool))
		for j := 1; j < k; j++ {
			if p := rng.IntN(len(pool)); scores[pool[p]] <= scores[pool[worst]] {
				worst = p
			}
		}
		out = append(out, pool[worst])
		pool = slices.Delete(pool, worst, worst+1)
	}
	return out
}

// weightedPair draws two indices proportionally to weights, the second
// distinct from the first when len(weights) > 1. Non-positive totals fall
// back to uniform draws.
func weightedPair(weights []float64, rng *rand.Rand) (int, int) {
	n := len(weights)
	if sum(weights) <= 0 {
		return uniformPair(n, rng)
	}
	p1 := weightedIndex(weights, rng)
	if n == 1 {
		return p1, p1
	}

	rest := slices.Clone(weights)
	rest[p1] = 0
	if sum(rest) <= 0 {
		p2 := rng.IntN(n - 1)
		if p2 >= p1 {
			p2++
		}
		return p1, p2
	}
	return p1, weightedIndex(rest, rng)
}

// drawDistinct draws count distinct indices proportionally to weights.
// Once the remaining weight is exhausted the draw continues uniformly.
func drawDistinct(weights []float64, count int, rng *rand.Rand) []int {
	w := slices.Clone(weights)
	taken := make([]bool, len(w))
	out := make([]int, 0, count)

	for range count {
		var i int
		if sum(w) > 0 {
			i = weightedIndex(w, rng)
		} else {
			free := make([]int, 0, len(w))
			for j, t := range taken {
				if !t {
					free = append(free, j)
				}
			}
			i = free[rng.IntN(len(free))]
		}
		taken[i] = true
		w[i] = 0
		out = append(out, i)
	}
	return out
}

// weightedIndex performs one cumulative draw. weights must have a positive sum.
func weightedIndex(weights []float64, rng *rand.Rand) int {
	spin := rng.Float64() * sum(weights)
	acc := 0.0
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		acc += w
		last = i
		if spin < acc {
			return i
		}
	}
	return last
}

func uniformPair(n int, rng *rand.Rand) (int, int) {
	a := rng.IntN(n)
	if n == 1 {
		return a, a
	}
	b := rng.IntN(n - 1)
	if b >= a {
		b++
	}
	return a, b
}

// total sums values including negative ones.
func total(values []float64) float64 {
	t := 0.0
	for _, v := range values {
		t += v
	}
	return t
}

// sum adds the positive entries of values.
func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		if v > 0 {
			total += v
		}
	}
	return total
}
