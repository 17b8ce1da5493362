package genetic

import (
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"sort"
	"testing"
)

func randomScores(rng *rand.Rand, n int) []float64 {
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = rng.Float64()*10 - 2
	}
	return scores
}

// topIndices returns the indices of the k highest scores.
func topIndices(scores []float64, k int) map[int]bool {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })
	top := make(map[int]bool, k)
	for _, i := range idx[:k] {
		top[i] = true
	}
	return top
}

func TestTruncationStaysInTopFraction(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for _, n := range []int{1, 2, 5, 17, 40} {
		for _, f := range []float64{0.1, 0.25, 0.5, 0.9, 1} {
			k := int(math.Round(float64(n) * f))
			if k < 1 {
				continue
			}
			strategy := TruncationSelection(f)
			for trial := 0; trial < 50; trial++ {
				scores := randomScores(rng, n)
				top := topIndices(scores, k)
				p1, p2 := strategy.SelectParents(scores, rng)
				if !top[p1] || !top[p2] {
					t.Fatalf("n=%d f=%v: parents (%d,%d) outside top %d of %v", n, f, p1, p2, k, scores)
				}
			}
		}
	}
}

func TestParentsAreDistinct(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	strategies := []SelectionStrategy{
		TournamentSelection(1),
		TournamentSelection(4),
		RouletteWheelSelection(),
		RankSelection(1),
		RankSelection(2.5),
	}

	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			for trial := 0; trial < 200; trial++ {
				scores := randomScores(rng, 2+trial%7)
				p1, p2 := s.SelectParents(scores, rng)
				if p1 == p2 {
					t.Fatalf("parents coincide (%d) for %v", p1, scores)
				}
				if p1 < 0 || p1 >= len(scores) || p2 < 0 || p2 >= len(scores) {
					t.Fatalf("parents (%d,%d) out of range", p1, p2)
				}
			}
		})
	}
}

func TestSingleIndividualIsBothParents(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	for _, s := range []SelectionStrategy{TournamentSelection(3), RouletteWheelSelection(), RankSelection(1), TruncationSelection(0.5)} {
		p1, p2 := s.SelectParents([]float64{0.4}, rng)
		if p1 != 0 || p2 != 0 {
			t.Errorf("%v: parents = (%d,%d), expected (0,0)", s, p1, p2)
		}
	}
}

func TestRouletteWheelWeights(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	s := RouletteWheelSelection()

	// Only index 2 has positive fitness, so it is always the first parent.
	for trial := 0; trial < 100; trial++ {
		p1, p2 := s.SelectParents([]float64{0, -1, 3, 0}, rng)
		if p1 != 2 || p2 == 2 {
			t.Fatalf("parents = (%d,%d), expected first parent 2 and a distinct second", p1, p2)
		}
	}

	// Non-positive totals degrade to uniform draws over every index.
	seen := make(map[int]bool)
	for trial := 0; trial < 400; trial++ {
		p1, _ := s.SelectParents([]float64{0, 0, -3, 0}, rng)
		seen[p1] = true
	}
	if len(seen) != 4 {
		t.Errorf("uniform fallback reached %d of 4 indices", len(seen))
	}
}

func TestRouletteWheelNegativeTotalIsUniform(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	s := RouletteWheelSelection()

	tests := []struct {
		name   string
		scores []float64
	}{
		{"one positive, negative total", []float64{5, -10}},
		{"zero total", []float64{4, -4, 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			first := make(map[int]int)
			for trial := 0; trial < 600; trial++ {
				p1, p2 := s.SelectParents(tc.scores, rng)
				if p1 == p2 {
					t.Fatalf("parents (%d,%d) are not distinct", p1, p2)
				}
				first[p1]++
			}
			for i := range tc.scores {
				if first[i] == 0 {
					t.Errorf("index %d never drawn first: %v", i, first)
				}
			}
		})
	}
}

func TestTournamentPrefersFitter(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	scores := []float64{0.1, 0.2, 5, 0.3}
	s := TournamentSelection(64)

	wins := 0
	for trial := 0; trial < 100; trial++ {
		if p1, _ := s.SelectParents(scores, rng); p1 == 2 {
			wins++
		}
	}
	if wins < 95 {
		t.Errorf("best individual won %d of 100 large tournaments", wins)
	}
}

func TestSelectDeathsRanked(t *testing.T) {
	tests := []struct {
		name     string
		strategy SelectionStrategy
		scores   []float64
		survive  float64
		expected []int
	}{
		{
			name:     "truncation removes worst",
			strategy: TruncationSelection(0.5),
			scores:   []float64{0.5, 0.1, 0.9, 0.3},
			survive:  0.5,
			expected: []int{3, 1},
		},
		{
			name:     "rank removes worst",
			strategy: RankSelection(1),
			scores:   []float64{2, 8, 1, 5, 3},
			survive:  0.6,
			expected: []int{2, 0},
		},
		{
			name:     "ties remove later indices first",
			strategy: TruncationSelection(1),
			scores:   []float64{1, 1, 1, 1},
			survive:  0.5,
			expected: []int{3, 2},
		},
		{
			name:     "survive all",
			strategy: RankSelection(1),
			scores:   []float64{1, 2},
			survive:  1,
			expected: nil,
		},
		{
			name:     "survive none",
			strategy: TruncationSelection(0.3),
			scores:   []float64{1, 2, 3},
			survive:  0,
			expected: []int{2, 1, 0},
		},
	}

	rng := rand.New(rand.NewPCG(11, 12))
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.strategy.SelectDeaths(tc.scores, tc.survive, rng)
			if !slices.Equal(got, tc.expected) {
				t.Errorf("SelectDeaths() = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestSelectDeathsRandomized(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 14))

	for _, s := range []SelectionStrategy{TournamentSelection(3), RouletteWheelSelection()} {
		t.Run(s.String(), func(t *testing.T) {
			for trial := 0; trial < 100; trial++ {
				scores := randomScores(rng, 3+trial%9)
				deaths := s.SelectDeaths(scores, 0.5, rng)

				want := len(scores) - int(math.Round(float64(len(scores))*0.5))
				if len(deaths) != want {
					t.Fatalf("len(deaths) = %d, expected %d", len(deaths), want)
				}
				if !slices.IsSortedFunc(deaths, func(a, b int) int { return b - a }) {
					t.Fatalf("deaths not sorted descending: %v", deaths)
				}
				if len(slices.Compact(slices.Clone(deaths))) != len(deaths) {
					t.Fatalf("duplicate deaths: %v", deaths)
				}
			}
		})
	}
}

func TestRouletteDeathsSpareTheBest(t *testing.T) {
	rng := rand.New(rand.NewPCG(15, 16))
	s := RouletteWheelSelection()
	for trial := 0; trial < 200; trial++ {
		deaths := s.SelectDeaths([]float64{0.9, 0.1, 0.5}, 2.0/3.0, rng)
		if len(deaths) != 1 || deaths[0] == 0 {
			t.Fatalf("deaths = %v, the fittest must survive", deaths)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		strategy SelectionStrategy
		valid    bool
	}{
		{TournamentSelection(1), true},
		{TournamentSelection(0), false},
		{RouletteWheelSelection(), true},
		{RankSelection(1.2), true},
		{RankSelection(0), false},
		{RankSelection(math.NaN()), false},
		{TruncationSelection(1), true},
		{TruncationSelection(0), false},
		{TruncationSelection(1.1), false},
		{SelectionStrategy{}, false},
	}

	for _, tc := range tests {
		err := tc.strategy.Validate()
		if tc.valid && err != nil {
			t.Errorf("%v: unexpected error %v", tc.strategy, err)
		}
		if !tc.valid && !errors.Is(err, ErrInvalidStrategy) {
			t.Errorf("%v: error = %v, expected ErrInvalidStrategy", tc.strategy, err)
		}
	}
}

func TestParseSelectionKind(t *testing.T) {
	tests := map[string]SelectionKind{
		"tournament":     Tournament,
		"Roulette":       RouletteWheel,
		"roulette-wheel": RouletteWheel,
		" rank ":         Rank,
		"truncation":     Truncation,
	}
	for in, want := range tests {
		got, err := ParseSelectionKind(in)
		if err != nil || got != want {
			t.Errorf("ParseSelectionKind(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseSelectionKind("elitist"); !errors.Is(err, ErrInvalidStrategy) {
		t.Errorf("expected ErrInvalidStrategy, got %v", err)
	}
}
