package rules

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/vovakirdan/tui-automata/internal/automaton"
)

const lifeMask uint16 = 1<<9 - 1

var moore = automaton.MustNeighbourhood(automaton.Moore, 1)

// Default fitness parameters for LifeLike genotypes.
const (
	DefaultTargetDensity = 0.3
	DefaultHorizon       = 8
)

// LifeLike is an outer-totalistic rule over the Moore neighbourhood written
// in B/S notation: bit n of Birth means a dead cell with n live neighbours is
// born, bit n of Survive means a live cell with n live neighbours survives.
//
// LifeLike is also a genetic genotype. Its fitness is how close the live
// density gets to Target after Horizon steps on a copy of the board.
type LifeLike struct {
	Birth   uint16
	Survive uint16
	Target  float64
	Horizon int

	neighbourhood *automaton.Neighbourhood
}

// NewLifeLike returns a rule with the default fitness parameters.
func NewLifeLike(birth, survive uint16) *LifeLike {
	return &LifeLike{
		Birth:         birth & lifeMask,
		Survive:       survive & lifeMask,
		Target:        DefaultTargetDensity,
		Horizon:       DefaultHorizon,
		neighbourhood: moore,
	}
}

// ParseLifeLike parses notation such as "B3/S23" or "s23/b36".
func ParseLifeLike(s string) (*LifeLike, error) {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(s)), "/")
	if len(parts) != 2 {
		return nil, fmt.Errorf("rules: rule %q is not in B/S notation", s)
	}

	var birth, survive uint16
	var seenB, seenS bool
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("rules: rule %q has an empty part", s)
		}
		mask, err := parseCounts(part[1:])
		if err != nil {
			return nil, fmt.Errorf("rules: rule %q: %w", s, err)
		}
		switch part[0] {
		case 'B':
			birth, seenB = mask, true
		case 'S':
			survive, seenS = mask, true
		default:
			return nil, fmt.Errorf("rules: rule %q: unexpected prefix %q", s, part[0])
		}
	}
	if !seenB || !seenS {
		return nil, fmt.Errorf("rules: rule %q needs both B and S parts", s)
	}
	return NewLifeLike(birth, survive), nil
}

func parseCounts(digits string) (uint16, error) {
	var mask uint16
	for _, r := range digits {
		if r < '0' || r > '8' {
			return 0, fmt.Errorf("neighbour count %q outside 0-8", r)
		}
		mask |= 1 << (r - '0')
	}
	return mask, nil
}

// String returns the rule in B/S notation.
func (l *LifeLike) String() string {
	var sb strings.Builder
	sb.WriteByte('B')
	writeCounts(&sb, l.Birth)
	sb.WriteString("/S")
	writeCounts(&sb, l.Survive)
	return sb.String()
}

func writeCounts(sb *strings.Builder, mask uint16) {
	for n := 0; n <= 8; n++ {
		if mask&(1<<n) != 0 {
			sb.WriteByte(byte('0' + n))
		}
	}
}

// Apply emits the next state of c.
func (l *LifeLike) Apply(c automaton.Coord, b *automaton.Board[LifeState]) ([]automaton.Delta[LifeState], error) {
	n := l.neighbourhood
	if n == nil {
		n = moore
	}
	live := automaton.CountMatching(n, b, c.X, c.Y, IsAlive)
	mask := l.Birth
	if b.At(c) == Alive {
		mask = l.Survive
	}
	next := Dead
	if mask&(1<<live) != 0 {
		next = Alive
	}
	return []automaton.Delta[LifeState]{automaton.NewDelta(c.X, c.Y, next)}, nil
}

// Crossover takes every bit uniformly at random from either parent. The
// child inherits the receiver's fitness parameters.
func (l *LifeLike) Crossover(other *LifeLike, rng *rand.Rand) *LifeLike {
	child := l.Clone()
	bm := uint16(rng.Uint32()) & lifeMask
	sm := uint16(rng.Uint32()) & lifeMask
	child.Birth = (l.Birth & bm) | (other.Birth &^ bm)
	child.Survive = (l.Survive & sm) | (other.Survive &^ sm)
	return child
}

// Mutate flips each of the eighteen rule bits with probability rate.
func (l *LifeLike) Mutate(rate float64, rng *rand.Rand) {
	for n := 0; n <= 8; n++ {
		if rng.Float64() < rate {
			l.Birth ^= 1 << n
		}
		if rng.Float64() < rate {
			l.Survive ^= 1 << n
		}
	}
}

// Fitness runs the rule alone for Horizon steps on a copy of board and
// returns 1 - |density - Target|. board is not modified.
func (l *LifeLike) Fitness(board *automaton.Board[LifeState]) float64 {
	scratch := board.Clone()
	a := automaton.New(scratch, []automaton.Rule[LifeState]{l}, automaton.WithWorkers(1))
	if err := a.Evolve(l.Horizon); err != nil {
		return 0
	}
	density := float64(scratch.Count(IsAlive)) / float64(scratch.Len())
	return 1 - math.Abs(density-l.Target)
}

// Clone returns an independent copy sharing the neighbourhood cache.
func (l *LifeLike) Clone() *LifeLike {
	c := *l
	return &c
}
