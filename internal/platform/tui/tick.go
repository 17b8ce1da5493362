// Package tui provides the Bubble Tea presenter for the automata platform.
// It paces scenario steps with ticks, renders frames with lipgloss colours
// and serves the same models over SSH through Wish.
package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a simulation step. Loop identifies the tick
// loop that scheduled it, so a model ignores ticks left over from a model it
// replaced.
type TickMsg struct {
	Time time.Time
	Loop uint64
}

var tickLoops atomic.Uint64

// newTickLoop returns a fresh tick loop identifier.
func newTickLoop() uint64 {
	return tickLoops.Add(1)
}

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(loop uint64, tickRate int) tea.Cmd {
	interval := time.Second / time.Duration(max(tickRate, 1))
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t, Loop: loop}
	})
}
