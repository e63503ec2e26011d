// Package sim runs one simulated process under a replaceable real-time clock.
//
// A [Process] is the long-lived behavior loop of the entity being simulated.
// The [Supervisor] owns the simulation side: it runs the clock in short
// slices, watches the consumer-controlled speed factor, and on a change
// rebuilds the clock and reseeds a fresh process from the last published
// snapshot.
package sim

import (
	"github.com/simlab/simviz/internal/realtime"
	"github.com/simlab/simviz/internal/simstate"
)

// Process is one unit of simulation logic: an indefinite loop of compute
// steps separated by clock waits. Run returns realtime.ErrStopped when the
// clock is stopped under it, and any other error on a computation fault.
// A Process never runs concurrently with itself.
type Process interface {
	Run(c *realtime.Clock, s *simstate.State) error
}

// Factory builds a process. A nil resume means a cold start; otherwise the
// process continues from the captured snapshot (position, in-flight target,
// volume, simulated time). Only the published snapshot crosses a restart
// boundary.
type Factory func(resume *simstate.Snapshot) Process
