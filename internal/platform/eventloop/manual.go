package eventloop

import (
	"sort"
	"time"
)

type manualTimer struct {
	due  time.Time
	seq  int
	fire func()
}

// Manual is a deterministic loop with its own clock. Callbacks only run
// inside Advance, in due order, with Now set to their due time.
type Manual struct {
	now    time.Time
	seq    int
	timers []manualTimer
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	return m.now
}

func (m *Manual) Schedule(delay time.Duration, fire func()) {
	m.seq++
	m.timers = append(m.timers, manualTimer{due: m.now.Add(delay), seq: m.seq, fire: fire})
}

// Pending reports how many callbacks are waiting.
func (m *Manual) Pending() int {
	return len(m.timers)
}

// Advance moves the clock forward by d, running every callback that comes
// due on the way, including ones scheduled by earlier callbacks. Callbacks
// that were already overdue run at the current time.
func (m *Manual) Advance(d time.Duration) {
	target := m.now.Add(d)
	for {
		idx := m.nextDue(target)
		if idx < 0 {
			break
		}
		t := m.timers[idx]
		m.timers = append(m.timers[:idx], m.timers[idx+1:]...)
		if t.due.After(m.now) {
			m.now = t.due
		}
		t.fire()
	}
	m.now = target
}

// Skip moves the clock without running anything, simulating a stalled loop.
func (m *Manual) Skip(d time.Duration) {
	m.now = m.now.Add(d)
}

func (m *Manual) nextDue(target time.Time) int {
	if len(m.timers) == 0 {
		return -1
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].due.Equal(m.timers[j].due) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].due.Before(m.timers[j].due)
	})
	if m.timers[0].due.After(target) {
		return -1
	}
	return 0
}
