package session

import (
	"sync"
	"time"
)

// Stopper cancels a scheduled callback.
type Stopper interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Stopper
}

// RealScheduler schedules with time.AfterFunc.
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// Countdown is the per-question timer. Each Start cancels the previous
// countdown; the expiry callback runs at most once per Start and never
// after Stop.
type Countdown struct {
	sched Scheduler
	clock func() time.Time

	mu       sync.Mutex
	gen      uint64
	timer    Stopper
	deadline time.Time
	budget   time.Duration
	running  bool
}

// NewCountdown creates a Countdown. A nil scheduler uses RealScheduler and
// a nil clock uses time.Now.
func NewCountdown(sched Scheduler, clock func() time.Time) *Countdown {
	if sched == nil {
		sched = RealScheduler{}
	}
	if clock == nil {
		clock = time.Now
	}
	return &Countdown{sched: sched, clock: clock}
}

// Start begins a countdown of budget and calls onExpire when it runs out.
func (c *Countdown) Start(budget time.Duration, onExpire func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.gen++
	gen := c.gen
	c.budget = budget
	c.deadline = c.clock().Add(budget)
	c.running = true
	c.timer = c.sched.AfterFunc(budget, func() {
		c.mu.Lock()
		if !c.running || c.gen != gen {
			c.mu.Unlock()
			return
		}
		c.running = false
		c.timer = nil
		c.mu.Unlock()
		onExpire()
	})
}

// Stop cancels the running countdown, if any.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Countdown) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.running = false
	c.gen++
}

// Running reports whether a countdown is active.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Remaining returns the time left, or zero when stopped or expired.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return 0
	}
	left := c.deadline.Sub(c.clock())
	if left < 0 {
		return 0
	}
	return left
}

// Budget returns the duration of the most recent countdown.
func (c *Countdown) Budget() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.budget
}
