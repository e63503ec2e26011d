// Package realtime anchors simulated time to the wall clock.
//
// A [Clock] is built for one speed factor and is never reused across factor
// changes: replacing the factor means building a fresh clock. The factor is
// the ratio of simulated seconds to wall-clock seconds, so a factor of 2.0
// runs the simulation twice as fast as real time and a wait of d simulated
// seconds costs d/factor wall seconds.
package realtime

import (
	"errors"
	"sync"
	"time"
)

// ErrStopped is returned from a suspended wait when the clock is stopped.
// Callers must treat it as a request to halt, not as a recoverable fault.
var ErrStopped = errors.New("realtime: clock stopped")

// Clock converts simulated durations into wall-clock waits at a fixed speed
// factor. Simulated time starts at zero at construction and advances
// monotonically until Stop.
//
// Sleep targets absolute wall deadlines derived from the accumulated
// simulated time, so timer overshoot never compounds across ticks: a caller
// that falls behind real time catches up by returning from Sleep without
// blocking until its deadlines are ahead of the wall clock again.
type Clock struct {
	factor float64
	epoch  time.Time

	mu     sync.Mutex
	cursor float64 // simulated seconds consumed by Sleep so far

	stopOnce sync.Once
	stop     chan struct{}
}

// New creates a clock running at the given speed factor. The factor must be
// positive; the control surfaces clamp user input before it reaches here.
func New(factor float64) *Clock {
	return &Clock{
		factor: factor,
		epoch:  time.Now(),
		stop:   make(chan struct{}),
	}
}

// Factor returns the speed factor the clock was built with.
func (c *Clock) Factor() float64 { return c.factor }

// Now returns the simulated seconds elapsed since the clock was created.
func (c *Clock) Now() float64 {
	return time.Since(c.epoch).Seconds() * c.factor
}

// Sleep suspends the caller for d simulated seconds. The wait ends at the
// absolute wall instant where the caller's accumulated simulated time maps
// to, i.e. d/factor wall seconds after the previous deadline. Returns
// ErrStopped if the clock is stopped before the wait completes. Negative
// durations behave like zero.
func (c *Clock) Sleep(d float64) error {
	select {
	case <-c.stop:
		return ErrStopped
	default:
	}

	if d < 0 {
		d = 0
	}

	c.mu.Lock()
	c.cursor += d
	target := c.cursor
	c.mu.Unlock()

	return c.waitUntil(target)
}

// RunUntil blocks until simulated time reaches t. It is the supervision
// primitive: the caller runs the clock in short bounded slices and polls for
// control changes between them. It does not consume simulated time from the
// Sleep cursor, so a supervisor and a sleeping process can share one clock.
// Returns ErrStopped if the clock is stopped first.
func (c *Clock) RunUntil(t float64) error {
	select {
	case <-c.stop:
		return ErrStopped
	default:
	}
	return c.waitUntil(t)
}

func (c *Clock) waitUntil(simTarget float64) error {
	deadline := c.epoch.Add(time.Duration(simTarget / c.factor * float64(time.Second)))
	wall := time.Until(deadline)
	if wall <= 0 {
		// Behind real time; catch up without blocking.
		return nil
	}

	timer := time.NewTimer(wall)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-c.stop:
		return ErrStopped
	}
}

// Stop cancels the clock. Any wait in flight, and every wait issued
// afterwards, returns ErrStopped. Stop is idempotent.
func (c *Clock) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Stopped reports whether Stop has been called.
func (c *Clock) Stopped() bool {
	select {
	case <-c.stop:
		return true
	default:
		return false
	}
}
