// Package scenarios holds the pieces shared by the registered scenarios:
// board sizing from config and terminal, random soups, and an Engine that
// turns an automaton step function into the registry.Scenario surface.
package scenarios

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"github.com/vovakirdan/tui-automata/internal/automaton"
	"github.com/vovakirdan/tui-automata/internal/config"
	"github.com/vovakirdan/tui-automata/internal/core"
)

// StatusLines is the number of screen rows below the board.
const StatusLines = 1

// Engine adapts a stepping function over a board to the scenario contract.
// Scenarios embed it and fill the fields in Reset.
type Engine[S automaton.State] struct {
	Board   *automaton.Board[S]
	StepFn  func() (automaton.StepResult, error)
	Glyph   func(S) core.Cell
	Live    func(S) bool
	Summary func() string // Optional extra status text
	Done    func() bool   // Optional end condition, nil means a step that changes nothing

	time int
	last automaton.StepResult
	done bool
}

// Step advances the board once. The scenario is done when Done reports so,
// or, without Done, after a step that changes nothing.
func (e *Engine[S]) Step() core.StepResult {
	if e.StepFn == nil {
		return core.StepResult{Err: fmt.Errorf("scenario has not been reset")}
	}
	res, err := e.StepFn()
	if err != nil {
		e.time = max(e.time, res.Time)
		e.done = true
		return core.StepResult{State: e.State(), Err: err}
	}
	e.time = res.Time
	e.last = res
	if e.Done != nil {
		e.done = e.Done()
	} else {
		e.done = res.Applied == 0
	}
	return core.StepResult{
		State:   e.State(),
		Changed: res.Applied,
		Dropped: res.Dropped,
	}
}

// State summarizes the board.
func (e *Engine[S]) State() core.SimState {
	st := core.SimState{Time: e.time, Done: e.done}
	if e.Board != nil && e.Live != nil {
		st.Population = e.Board.Count(e.Live)
	}
	st.Summary = fmt.Sprintf("t=%d  live=%d  changed=%d", st.Time, st.Population, e.last.Applied)
	if e.Summary != nil {
		st.Summary += "  " + e.Summary()
	}
	return st
}

// Render draws one character per cell and the status line below the board.
func (e *Engine[S]) Render(dst *core.Screen) {
	if e.Board == nil {
		return
	}
	DrawBoard(dst, e.Board, e.Glyph)
	DrawStatus(dst, e.Board.Height(), e.State().Summary)
}

// Size returns the screen area Render draws into.
func (e *Engine[S]) Size() (int, int) {
	if e.Board == nil {
		return 0, 0
	}
	return e.Board.Width(), e.Board.Height() + StatusLines
}

// Restart clears the step counters after a Reset.
func (e *Engine[S]) Restart() {
	e.time = 0
	e.last = automaton.StepResult{}
	e.done = false
}

// DrawBoard renders b at the top-left of dst.
func DrawBoard[S automaton.State](dst *core.Screen, b *automaton.Board[S], glyph func(S) core.Cell) {
	for _, c := range b.Coords() {
		dst.SetCell(c.X, c.Y, glyph(b.At(c)))
	}
}

// DrawStatus writes text on row y, clipped to the screen width.
func DrawStatus(dst *core.Screen, y int, text string) {
	if runes := []rune(text); len(runes) > dst.Width() {
		text = string(runes[:dst.Width()])
	}
	dst.DrawTextColored(0, y, text, core.ColorGray)
}

// BoardSize picks the board dimensions: configured values win, zero values
// fit the screen with room for the status line.
func BoardSize(bc config.BoardConfig, rc core.RuntimeConfig) (int, int) {
	w, h := bc.Width, bc.Height
	if w <= 0 {
		w = rc.ScreenW
	}
	if h <= 0 {
		h = rc.ScreenH - StatusLines
	}
	return max(w, 1), max(h, 1)
}

// Boundary converts the configured boundary name. Anything but "fixed" wraps.
func Boundary[S automaton.State](name string, def S) automaton.BoundaryCondition[S] {
	if strings.EqualFold(name, "fixed") {
		return automaton.FixedBoundary(def)
	}
	return automaton.PeriodicBoundary[S]()
}

// Workers prefers the runtime override over the configured worker count.
func Workers(rc core.RuntimeConfig, run config.RunConfig) int {
	if rc.Workers > 0 {
		return rc.Workers
	}
	return run.Workers
}

// Seed prefers the runtime seed over the configured one.
func Seed(rc core.RuntimeConfig, run config.RunConfig) int64 {
	if rc.Seed != 0 {
		return rc.Seed
	}
	return run.Seed
}

// Soup returns a w x h matrix where each cell is on with probability density.
func Soup[S automaton.State](w, h int, density float64, on, off S, rng *rand.Rand) [][]S {
	rows := make([][]S, h)
	for y := range rows {
		row := make([]S, w)
		for x := range row {
			row[x] = off
			if rng.Float64() < density {
				row[x] = on
			}
		}
		rows[y] = row
	}
	return rows
}

// Stamp copies pattern onto the center of rows. Runes other than '.' and
// space become on; cells falling outside rows are cut off.
func Stamp[S automaton.State](rows [][]S, pattern []string, on S) {
	if len(rows) == 0 || len(pattern) == 0 {
		return
	}
	oy := (len(rows) - len(pattern)) / 2
	ox := (len(rows[0]) - utf8.RuneCountInString(pattern[0])) / 2
	for py, line := range pattern {
		y := oy + py
		if y < 0 || y >= len(rows) {
			continue
		}
		px := 0
		for _, r := range line {
			if x := ox + px; x >= 0 && x < len(rows[y]) && r != '.' && r != ' ' {
				rows[y][x] = on
			}
			px++
		}
	}
}
