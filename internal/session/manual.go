package session

import (
	"sync"
	"time"
)

// ManualScheduler is a Scheduler driven by Advance instead of wall time.
// Used in tests and by callers that own their own tick loop.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	pending []*manualTimer
}

type manualTimer struct {
	m       *ManualScheduler
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) Stopper {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{m: m, at: m.now + d, f: f}
	m.pending = append(m.pending, t)
	return t
}

// Advance moves the scheduler clock forward by d and runs every callback
// that has come due, in schedule order.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	var due []*manualTimer
	keep := m.pending[:0]
	for _, t := range m.pending {
		switch {
		case t.stopped:
		case t.at <= m.now:
			t.fired = true
			due = append(due, t)
		default:
			keep = append(keep, t)
		}
	}
	m.pending = keep
	m.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

// Pending returns the number of scheduled callbacks not yet run or stopped.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.pending {
		if !t.stopped {
			n++
		}
	}
	return n
}
