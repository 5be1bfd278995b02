// Package eventloop provides the cooperative scheduler stage clocks tick on.
//
// Loop bridges scheduled callbacks onto the Bubble Tea event loop: callbacks
// queued with Schedule are turned into tea.Tick commands by Drain and run
// back inside Update by Handle, so they never overlap user-driven updates.
// Manual is a virtual-time loop for tests.
package eventloop

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FireMsg carries a due callback back into the program's Update.
type FireMsg struct {
	fire func()
}

type timer struct {
	delay time.Duration
	fire  func()
}

type Loop struct {
	pending []timer
}

func New() *Loop {
	return &Loop{}
}

// Schedule queues fire to run once after delay. It must be called from the
// event loop goroutine.
func (l *Loop) Schedule(delay time.Duration, fire func()) {
	l.pending = append(l.pending, timer{delay: delay, fire: fire})
}

// Drain converts every timer queued since the previous call into commands.
func (l *Loop) Drain() tea.Cmd {
	if len(l.pending) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(l.pending))
	for _, t := range l.pending {
		fire := t.fire
		cmds = append(cmds, tea.Tick(t.delay, func(time.Time) tea.Msg {
			return FireMsg{fire: fire}
		}))
	}
	l.pending = nil
	if len(cmds) == 1 {
		return cmds[0]
	}
	return tea.Batch(cmds...)
}

// Handle runs msg's callback if msg is a FireMsg.
func (l *Loop) Handle(msg tea.Msg) bool {
	f, ok := msg.(FireMsg)
	if !ok {
		return false
	}
	if f.fire != nil {
		f.fire()
	}
	return true
}
