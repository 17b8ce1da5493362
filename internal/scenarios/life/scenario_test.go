package life

import (
	"testing"

	"github.com/vovakirdan/tui-automata/internal/config"
	"github.com/vovakirdan/tui-automata/internal/core"
	"github.com/vovakirdan/tui-automata/internal/registry"
	"github.com/vovakirdan/tui-automata/internal/rules"
)

func testSim() config.Simulation {
	sim := config.Default()
	sim.Board.Width = 16
	sim.Board.Height = 10
	return sim
}

func TestRegistered(t *testing.T) {
	s, err := registry.Create(ID, testSim())
	if err != nil {
		t.Fatal(err)
	}
	if s.ID() != ID || s.Title() == "" {
		t.Errorf("scenario = %q %q", s.ID(), s.Title())
	}
}

func TestResetSizesBoard(t *testing.T) {
	s := New(testSim())
	if err := s.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, Seed: 3}); err != nil {
		t.Fatal(err)
	}
	if w, h := s.Size(); w != 16 || h != 11 {
		t.Errorf("Size() = %dx%d, expected 16x11", w, h)
	}
	if s.State().Population == 0 {
		t.Error("soup has no live cells")
	}

	fit := config.Default()
	if err := New(fit).Reset(core.RuntimeConfig{ScreenW: 30, ScreenH: 12, Seed: 3}); err != nil {
		t.Fatal(err)
	}
}

func TestDeterminism(t *testing.T) {
	rc := core.RuntimeConfig{Seed: 12345, Workers: 3}
	s1, s2 := New(testSim()), New(testSim())
	if err := s1.Reset(rc); err != nil {
		t.Fatal(err)
	}
	if err := s2.Reset(rc); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		r1, r2 := s1.Step(), s2.Step()
		if r1.Err != nil || r2.Err != nil {
			t.Fatalf("step %d: %v %v", i, r1.Err, r2.Err)
		}
	}
	if !s1.Automaton().Board().Equal(s2.Automaton().Board()) {
		t.Error("boards diverged for the same seed")
	}
	if s1.State() != s2.State() {
		t.Errorf("states differ: %+v vs %+v", s1.State(), s2.State())
	}
	if s1.State().Time != 20 {
		t.Errorf("time = %d", s1.State().Time)
	}
}

func TestResetRestarts(t *testing.T) {
	s := New(testSim())
	rc := core.RuntimeConfig{Seed: 1}
	if err := s.Reset(rc); err != nil {
		t.Fatal(err)
	}
	s.Step()
	if err := s.Reset(rc); err != nil {
		t.Fatal(err)
	}
	if s.State().Time != 0 {
		t.Errorf("time after reset = %d", s.State().Time)
	}
}

func TestResetStampsPattern(t *testing.T) {
	sim := config.Default()
	sim.Board.Width = 5
	sim.Board.Height = 5
	sim.Board.Pattern = []string{"###"}

	s := New(sim)
	if err := s.Reset(core.RuntimeConfig{Seed: 7}); err != nil {
		t.Fatal(err)
	}
	if s.State().Population != 3 {
		t.Fatalf("population = %d, expected the blinker only", s.State().Population)
	}

	res := s.Step()
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	b := s.Automaton().Board()
	for _, y := range []int{1, 2, 3} {
		if st, _ := b.Get(2, y); st != rules.Alive {
			t.Errorf("(2,%d) should be alive after one step", y)
		}
	}
	if res.State.Population != 3 {
		t.Errorf("population after step = %d", res.State.Population)
	}
}
