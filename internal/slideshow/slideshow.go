// Package slideshow implements the timed auto-advance state machine:
// idle, a short countdown, then periodic random advance until the
// session is interrupted.
//
// The controller never reads the wall clock itself. The engine passes
// the current time into every transition, which keeps the machine
// deterministic under test.
package slideshow

import (
	"math/rand"
	"time"
)

// Phase is the controller state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCountdown
	PhaseActive
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCountdown:
		return "countdown"
	case PhaseActive:
		return "active"
	}
	return "unknown"
}

const (
	countdownDuration = 5 * time.Second
	inactivityDelay   = 10 * time.Second
)

// Intervals is the fixed cycle of advance intervals. Zero means off.
var Intervals = []time.Duration{
	5 * time.Second,
	10 * time.Second,
	30 * time.Second,
	60 * time.Second,
	600 * time.Second,
	0,
}

// Controller owns the slideshow state. Not safe for concurrent use;
// the engine goroutine is the single caller.
type Controller struct {
	phase        Phase
	interval     time.Duration
	current      int
	deadline     time.Time // countdown end or next advance
	lastActivity time.Time

	// swapped in tests for deterministic advance
	randIntn func(n int) int
}

// New returns an idle controller with the interval off.
func New() *Controller {
	return &Controller{randIntn: rand.Intn}
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase { return c.phase }

// Interval returns the configured advance interval (0 = off).
func (c *Controller) Interval() time.Duration { return c.interval }

// Current returns the index being shown while active.
func (c *Controller) Current() int { return c.current }

// CycleInterval advances the configured interval through the fixed
// sequence and returns the new value. Any non-off choice starts the
// countdown; cycling to off returns the controller to idle.
func (c *Controller) CycleInterval(now time.Time) time.Duration {
	c.interval = nextInterval(c.interval)
	if c.interval == 0 {
		c.phase = PhaseIdle
		return 0
	}
	c.phase = PhaseCountdown
	c.deadline = now.Add(countdownDuration)
	return c.interval
}

func nextInterval(cur time.Duration) time.Duration {
	for i, v := range Intervals {
		if v == cur {
			return Intervals[(i+1)%len(Intervals)]
		}
	}
	return Intervals[0]
}

// NoteActivity records pointer or keyboard activity for the inactivity
// auto-start. A click while active is an interruption and goes through
// Interrupt instead.
func (c *Controller) NoteActivity(now time.Time) {
	c.lastActivity = now
}

// Step drives the machine forward. It returns the index to scroll to
// and true when the shown item changed this step.
func (c *Controller) Step(now time.Time, itemCount int) (int, bool) {
	switch c.phase {
	case PhaseIdle:
		// Auto-start: a configured interval plus sustained inactivity
		// begins the countdown without user input.
		if c.interval > 0 && !c.lastActivity.IsZero() && now.Sub(c.lastActivity) >= inactivityDelay {
			c.phase = PhaseCountdown
			c.deadline = now.Add(countdownDuration)
		}
		return 0, false

	case PhaseCountdown:
		if now.Before(c.deadline) || itemCount == 0 {
			return 0, false
		}
		c.phase = PhaseActive
		c.current = 0
		c.deadline = now.Add(c.interval)
		return 0, true

	case PhaseActive:
		if now.Before(c.deadline) || itemCount == 0 {
			return c.current, false
		}
		c.current = c.pickNext(itemCount)
		c.deadline = now.Add(c.interval)
		return c.current, true
	}
	return 0, false
}

// pickNext returns a random index different from the current one when
// more than one item exists.
func (c *Controller) pickNext(itemCount int) int {
	if itemCount <= 1 {
		return 0
	}
	n := c.randIntn(itemCount - 1)
	if n >= c.current {
		n++
	}
	return n
}

// ArrowNext steps sequentially forward without ending the session.
func (c *Controller) ArrowNext(now time.Time, itemCount int) int {
	return c.arrowStep(now, itemCount, 1)
}

// ArrowPrev steps sequentially backward without ending the session.
func (c *Controller) ArrowPrev(now time.Time, itemCount int) int {
	return c.arrowStep(now, itemCount, -1)
}

func (c *Controller) arrowStep(now time.Time, itemCount, delta int) int {
	if c.phase != PhaseActive || itemCount == 0 {
		return c.current
	}
	c.current = ((c.current+delta)%itemCount + itemCount) % itemCount
	c.deadline = now.Add(c.interval)
	return c.current
}

// Interrupt stops a running or pending session and resets the interval
// to off. Resuming requires selecting a duration again.
func (c *Controller) Interrupt() {
	c.phase = PhaseIdle
	c.interval = 0
}
