package sim_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"github.com/simlab/simviz/internal/realtime"
	"github.com/simlab/simviz/internal/sim"
	"github.com/simlab/simviz/internal/simstate"
)

// stubProcess publishes its generation number as the volume every tick, so
// tests can observe which runner instance is live.
type stubProcess struct {
	generation int
	fail       error
}

func (p *stubProcess) Run(c *realtime.Clock, s *simstate.State) error {
	for s.Running() {
		if p.fail != nil {
			return p.fail
		}
		s.Publish(simstate.Telemetry{
			Time:        c.Now(),
			TargetIndex: -1,
			Volume:      float64(p.generation),
		})
		if err := c.Sleep(0.01); err != nil {
			return err
		}
	}
	return nil
}

// recordingFactory counts spawns and keeps the resume snapshots it was
// handed.
type recordingFactory struct {
	mu      sync.Mutex
	resumes []*simstate.Snapshot
	fail    error
}

func (f *recordingFactory) build(resume *simstate.Snapshot) sim.Process {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumes = append(f.resumes, resume)
	return &stubProcess{generation: len(f.resumes), fail: f.fail}
}

func (f *recordingFactory) snapshot() []*simstate.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*simstate.Snapshot(nil), f.resumes...)
}

func startSupervisor(state *simstate.State, factory *recordingFactory) (<-chan error, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- sim.NewSupervisor(state, factory.build).Run(ctx)
	}()
	return errCh, cancel
}

func TestFactorChangeRestartsFromSnapshot(t *testing.T) {
	g := NewWithT(t)

	state := simstate.New(simstate.Telemetry{}, simstate.Controls{Factor: 50})
	factory := &recordingFactory{}
	errCh, cancel := startSupervisor(state, factory)
	defer cancel()

	// First runner comes up cold.
	g.Eventually(func() float64 {
		return state.Telemetry().Volume
	}).WithTimeout(5 * time.Second).WithPolling(time.Millisecond).Should(Equal(1.0))

	state.SetFactor(100)

	// Supervisor notices within a slice and reseeds a second runner.
	g.Eventually(func() float64 {
		return state.Telemetry().Volume
	}).WithTimeout(5 * time.Second).WithPolling(time.Millisecond).Should(Equal(2.0))

	resumes := factory.snapshot()
	g.Expect(resumes).To(HaveLen(2))
	g.Expect(resumes[0]).To(BeNil(), "cold start carries no snapshot")
	g.Expect(resumes[1]).NotTo(BeNil(), "restart carries the captured snapshot")
	g.Expect(resumes[1].Volume).To(Equal(1.0), "snapshot holds the last published state")
	g.Expect(resumes[1].Controls.Factor).To(Equal(100.0))

	state.Shutdown()
	g.Eventually(errCh).WithTimeout(5 * time.Second).Should(Receive(BeNil()))
}

func TestShutdownExitsCleanly(t *testing.T) {
	g := NewWithT(t)

	state := simstate.New(simstate.Telemetry{}, simstate.Controls{Factor: 50})
	factory := &recordingFactory{}
	errCh, cancel := startSupervisor(state, factory)
	defer cancel()

	g.Eventually(func() float64 {
		return state.Telemetry().Volume
	}).WithTimeout(5 * time.Second).WithPolling(time.Millisecond).Should(Equal(1.0))

	state.Shutdown()

	g.Eventually(errCh).WithTimeout(5 * time.Second).Should(Receive(BeNil()))
	g.Expect(state.Running()).To(BeFalse())
	g.Expect(factory.snapshot()).To(HaveLen(1), "no restart on shutdown")
}

func TestContextCancelStopsSimulation(t *testing.T) {
	g := NewWithT(t)

	state := simstate.New(simstate.Telemetry{}, simstate.Controls{Factor: 50})
	factory := &recordingFactory{}
	errCh, cancel := startSupervisor(state, factory)

	g.Eventually(func() float64 {
		return state.Telemetry().Volume
	}).WithTimeout(5 * time.Second).WithPolling(time.Millisecond).Should(Equal(1.0))

	cancel()

	g.Eventually(errCh).WithTimeout(5 * time.Second).Should(Receive(BeNil()))
	g.Expect(state.Running()).To(BeFalse())
}

func TestComputationFaultFlipsLiveness(t *testing.T) {
	g := NewWithT(t)

	boom := errors.New("step diverged")
	state := simstate.New(simstate.Telemetry{}, simstate.Controls{Factor: 50})
	factory := &recordingFactory{fail: boom}
	errCh, cancel := startSupervisor(state, factory)
	defer cancel()

	var err error
	g.Eventually(errCh).WithTimeout(5 * time.Second).Should(Receive(&err))
	g.Expect(err).To(MatchError(boom))
	g.Expect(state.Running()).To(BeFalse(), "fault must flip the liveness flag")
}
