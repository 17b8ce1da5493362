package automaton

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-automata/internal/core"
)

// life is a B3/S23 rule over a Moore neighbourhood.
func life(n *Neighbourhood) Rule[cell] {
	return RuleFunc[cell](func(c Coord, b *Board[cell]) ([]Delta[cell], error) {
		live := CountMatching(n, b, c.X, c.Y, func(s cell) bool { return s == alive })
		next := dead
		if live == 3 || (b.At(c) == alive && live == 2) {
			next = alive
		}
		return []Delta[cell]{NewDelta(c.X, c.Y, next)}, nil
	})
}

// constant writes s at (x, y) regardless of the target cell.
func constant(x, y int, s cell) Rule[cell] {
	return RuleFunc[cell](func(c Coord, _ *Board[cell]) ([]Delta[cell], error) {
		if c != C(0, 0) {
			return nil, nil
		}
		return []Delta[cell]{NewDelta(x, y, s)}, nil
	})
}

func TestStepReadsPreStepSnapshot(t *testing.T) {
	// Every cell copies its left neighbour. With writes visible to reads the
	// single live cell would smear across the row.
	n := MustNeighbourhood(VonNeumann, 1)
	shift := RuleFunc[cell](func(c Coord, b *Board[cell]) ([]Delta[cell], error) {
		for _, nb := range StatesWithOffsets(n, b, c.X, c.Y) {
			if nb.Offset == (Offset{DX: -1}) {
				return []Delta[cell]{NewDelta(c.X, c.Y, nb.State)}, nil
			}
		}
		return nil, nil
	})

	b := grid(t, PeriodicBoundary[cell](), "X...")
	a := New(b, []Rule[cell]{shift}, WithWorkers(4))

	for step, want := range []string{"D A D D", "D D A D", "D D D A", "A D D D"} {
		if _, err := a.Step(); err != nil {
			t.Fatal(err)
		}
		if got := a.Board().String(); got != want {
			t.Fatalf("step %d: board = %q, expected %q", step+1, got, want)
		}
	}
	if a.Time() != 4 {
		t.Errorf("Time() = %d, expected 4", a.Time())
	}
}

func TestSameCellConflictLastRuleWins(t *testing.T) {
	b, _ := FilledBoard(2, 2, dead, FixedBoundary(dead))
	a := New(b, []Rule[cell]{constant(1, 1, alive), constant(1, 1, cell(7))})

	res, err := a.Step()
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := b.Get(1, 1); got != cell(7) {
		t.Errorf("cell (1,1) = %v, expected the last rule's write", got)
	}
	if res.Applied != 2 {
		t.Errorf("Applied = %d, expected 2", res.Applied)
	}
}

func TestNoOpDeltasAreElided(t *testing.T) {
	// The second rule re-asserts the old value; it must not undo the first.
	b := grid(t, FixedBoundary(dead), "..", "..")
	a := New(b, []Rule[cell]{constant(1, 0, alive), constant(1, 0, dead)})

	res, err := a.Step()
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := b.Get(1, 0); got != alive {
		t.Errorf("cell (1,0) = %v, expected A", got)
	}
	if res.Elided != 1 || res.Deltas != 1 {
		t.Errorf("Elided/Deltas = %d/%d, expected 1/1", res.Elided, res.Deltas)
	}
}

func TestSameCellConflicts(t *testing.T) {
	tests := []struct {
		name    string
		writes  []cell
		want    cell
		applied int
		elided  int
	}{
		{"two changes, last wins", []cell{alive, cell(7)}, cell(7), 2, 0},
		{"write-back after change", []cell{alive, dead}, alive, 1, 1},
		{"write-back before change", []cell{dead, alive}, alive, 1, 1},
		{"only write-backs", []cell{dead, dead}, dead, 0, 2},
		{"change, write-back, change", []cell{alive, dead, cell(7)}, cell(7), 2, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, _ := FilledBoard(2, 2, dead, FixedBoundary(dead))
			rules := make([]Rule[cell], len(tc.writes))
			for i, s := range tc.writes {
				rules[i] = constant(1, 0, s)
			}
			res, err := New(b, rules).Step()
			if err != nil {
				t.Fatal(err)
			}
			if got, _ := b.Get(1, 0); got != tc.want {
				t.Errorf("cell (1,0) = %v, expected %v", got, tc.want)
			}
			if res.Applied != tc.applied || res.Elided != tc.elided {
				t.Errorf("Applied/Elided = %d/%d, expected %d/%d", res.Applied, res.Elided, tc.applied, tc.elided)
			}
		})
	}
}

func TestOutOfBoundsDeltasAreDropped(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	b, _ := FilledBoard(3, 3, dead, FixedBoundary(dead))
	before := b.Clone()
	escape := RuleFunc[cell](func(c Coord, _ *Board[cell]) ([]Delta[cell], error) {
		return []Delta[cell]{NewDelta(c.X+3, c.Y, alive)}, nil
	})
	a := New(b, []Rule[cell]{escape}, WithLogger(logger))

	res, err := a.Step()
	if err != nil {
		t.Fatalf("dropped deltas must not fail the step: %v", err)
	}
	if res.Dropped != 9 || res.Applied != 0 {
		t.Errorf("Dropped/Applied = %d/%d, expected 9/0", res.Dropped, res.Applied)
	}
	if !b.Equal(before) {
		t.Error("board changed although every delta was dropped")
	}
	if a.Time() != 1 {
		t.Errorf("Time() = %d, expected 1", a.Time())
	}
	if !strings.Contains(buf.String(), "delta dropped") {
		t.Errorf("expected debug log for dropped delta, got %q", buf.String())
	}
}

func TestRuleErrorsAreCounted(t *testing.T) {
	b, _ := FilledBoard(2, 2, dead, FixedBoundary(dead))
	failing := RuleFunc[cell](func(c Coord, b *Board[cell]) ([]Delta[cell], error) {
		if c.X == 1 {
			return nil, &OutOfBoundsError{X: c.X + 1, Y: c.Y, Width: b.Width(), Height: b.Height()}
		}
		return []Delta[cell]{NewDelta(c.X, c.Y, alive)}, nil
	})

	res, err := New(b, []Rule[cell]{failing}).Step()
	if err != nil {
		t.Fatal(err)
	}
	if res.RuleErrors != 2 || res.Applied != 2 {
		t.Errorf("RuleErrors/Applied = %d/%d, expected 2/2", res.RuleErrors, res.Applied)
	}
	if b.String() != "A D\nA D" {
		t.Errorf("board = %q", b.String())
	}
}

func TestPanickingRuleAbortsStep(t *testing.T) {
	b, _ := FilledBoard(3, 3, dead, PeriodicBoundary[cell]())
	before := b.Clone()
	boom := RuleFunc[cell](func(c Coord, _ *Board[cell]) ([]Delta[cell], error) {
		if c == C(2, 2) {
			panic("boom")
		}
		return []Delta[cell]{NewDelta(c.X, c.Y, alive)}, nil
	})
	a := New(b, []Rule[cell]{boom}, WithWorkers(2))

	if _, err := a.Step(); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("Step() error = %v, expected panic report", err)
	}
	if a.Time() != 0 || !b.Equal(before) {
		t.Error("aborted step must not advance time or touch the board")
	}
	if err := a.Evolve(5); err == nil {
		t.Error("Evolve should stop at the failing step")
	}
}

func TestEvolveIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 0))
	rows := make([][]cell, 16)
	for y := range rows {
		rows[y] = make([]cell, 20)
		for x := range rows[y] {
			if rng.Float64() < 0.35 {
				rows[y][x] = alive
			}
		}
	}

	run := func(workers int) *Board[cell] {
		b := MustBoard(rows, PeriodicBoundary[cell]())
		a := New(b, []Rule[cell]{life(MustNeighbourhood(Moore, 1))}, WithWorkers(workers))
		if err := a.Evolve(25); err != nil {
			t.Fatalf("Evolve: %v", err)
		}
		if a.Time() != 25 {
			t.Fatalf("Time() = %d, expected 25", a.Time())
		}
		return b
	}

	reference := run(1)
	for _, workers := range []int{1, 3, 8} {
		if got := run(workers); !got.Equal(reference) {
			t.Errorf("workers=%d diverged from reference run", workers)
		}
	}
}

func TestEvolveWithObserver(t *testing.T) {
	b := grid(t, PeriodicBoundary[cell](), ".....", "..X..", "..X..", "..X..", ".....")
	a := New(b, []Rule[cell]{life(MustNeighbourhood(Moore, 1))})

	var times []int
	err := a.EvolveWithObserver(3, 0, func(res StepResult) {
		times = append(times, res.Time)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(times) != 3 || times[0] != 1 || times[2] != 3 {
		t.Errorf("observer saw times %v, expected [1 2 3]", times)
	}
}

func TestFrames(t *testing.T) {
	b := grid(t, PeriodicBoundary[cell](), ".....", "..X..", "..X..", "..X..", ".....")
	initial := b.Clone()
	a := New(b, []Rule[cell]{life(MustNeighbourhood(Moore, 1))})

	project := func(s cell) core.Color {
		if s == alive {
			return core.ColorWhite
		}
		return core.ColorBlack
	}
	frames, err := a.Frames(3, project)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 3 {
		t.Fatalf("len(frames) = %d, expected 3", len(frames))
	}
	if frames[0][1][2] != core.ColorWhite || frames[1][1][2] != core.ColorBlack || frames[2][1][2] != core.ColorWhite {
		t.Error("blinker frames do not alternate")
	}
	if !a.Board().Equal(initial) {
		t.Error("a blinker returns to its start after two steps")
	}
	if a.Time() != 2 {
		t.Errorf("Time() = %d, expected 2", a.Time())
	}
}

func TestAddRule(t *testing.T) {
	b, _ := FilledBoard(2, 1, dead, FixedBoundary(dead))
	a := New(b, nil)
	if res, _ := a.Step(); res.Deltas != 0 {
		t.Errorf("rule-less step produced %d deltas", res.Deltas)
	}

	a.AddRule(constant(0, 0, alive))
	if len(a.Rules()) != 1 {
		t.Fatalf("Rules() = %d, expected 1", len(a.Rules()))
	}
	if _, err := a.Step(); err != nil {
		t.Fatal(err)
	}
	if got, _ := b.Get(0, 0); got != alive {
		t.Error("added rule was not applied")
	}
}

func TestErrOutOfBoundsMatching(t *testing.T) {
	var err error = &OutOfBoundsError{X: 1, Y: 2, Width: 1, Height: 1}
	if !errors.Is(err, ErrOutOfBounds) {
		t.Error("errors.Is should match ErrOutOfBounds")
	}
}
