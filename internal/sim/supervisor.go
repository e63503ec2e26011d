package sim

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/simlab/simviz/internal/realtime"
	"github.com/simlab/simviz/internal/simstate"
)

// DefaultSlice is the simulated seconds the supervisor lets the clock run
// between control polls. The slice exists purely to create a polling point
// for factor changes, not to enforce a deadline.
const DefaultSlice = 0.1

// phase is the supervisor's explicit state. Restarting carries the captured
// continuation snapshot rather than threading it through an error.
type phase int

const (
	phaseRunning phase = iota
	phaseRestarting
)

// Supervisor owns the simulation side of the system. It runs one process
// under one clock at a time, polls the consumer-controlled speed factor
// every slice, and on a change tears the clock down and reseeds a fresh
// process from the last published snapshot. It exits when the liveness flag
// goes false or the process faults.
type Supervisor struct {
	state   *simstate.State
	factory Factory
	slice   float64
	log     *logrus.Entry
}

// NewSupervisor creates a supervisor for the given shared state and process
// factory.
func NewSupervisor(state *simstate.State, factory Factory) *Supervisor {
	return &Supervisor{
		state:   state,
		factory: factory,
		slice:   DefaultSlice,
		log:     logrus.WithField("component", "supervisor"),
	}
}

// Run blocks until shutdown. It returns nil on orderly shutdown (liveness
// flag false or context canceled) and the process error on a computation
// fault, after flipping the liveness flag.
func (sv *Supervisor) Run(ctx context.Context) error {
	factor := sv.state.Controls().Factor
	clock, done := sv.launch(factor, nil)
	sv.log.WithField("factor", factor).Info("simulation started")

	ph := phaseRunning
	newFactor := factor

	for {
		switch ph {
		case phaseRunning:
			// One bounded slice of simulated time, then poll.
			if err := clock.RunUntil(clock.Now() + sv.slice); err != nil {
				// Only Stop makes RunUntil fail, and only this loop stops
				// the clock, so this is unreachable; be safe anyway.
				return sv.join(clock, done)
			}

			select {
			case <-ctx.Done():
				sv.state.Shutdown()
				return sv.join(clock, done)
			case err := <-done:
				return sv.exit(err)
			default:
			}

			if !sv.state.Running() {
				return sv.join(clock, done)
			}

			if f := sv.state.Controls().Factor; f != factor {
				newFactor = f
				ph = phaseRestarting
			}

		case phaseRestarting:
			clock.Stop()
			if err := <-done; err != nil && !errors.Is(err, realtime.ErrStopped) {
				return sv.exit(err)
			}

			snap := sv.state.Snapshot()
			sv.log.WithFields(logrus.Fields{
				"from": factor,
				"to":   newFactor,
				"time": snap.Time,
			}).Info("changing simulation speed")

			factor = newFactor
			clock, done = sv.launch(factor, &snap)
			ph = phaseRunning
		}
	}
}

// launch builds a clock at the given factor and starts a fresh process
// seeded from resume (nil for a cold start). The previous runner, if any,
// must have been joined first: a process never runs concurrently with
// itself.
func (sv *Supervisor) launch(factor float64, resume *simstate.Snapshot) (*realtime.Clock, <-chan error) {
	clock := realtime.New(factor)
	proc := sv.factory(resume)

	done := make(chan error, 1)
	go func() {
		done <- proc.Run(clock, sv.state)
	}()
	return clock, done
}

// join stops the clock and waits for the runner, mapping interruption to a
// clean exit.
func (sv *Supervisor) join(clock *realtime.Clock, done <-chan error) error {
	clock.Stop()
	return sv.exit(<-done)
}

// exit translates a runner result into the supervisor's own. Interruption
// and a voluntary return are orderly; anything else is a computation fault
// that takes the simulation down.
func (sv *Supervisor) exit(err error) error {
	sv.state.Shutdown()
	if err == nil || errors.Is(err, realtime.ErrStopped) {
		sv.log.Info("simulation stopped")
		return nil
	}
	sv.log.WithError(err).Error("simulation fault")
	return err
}
