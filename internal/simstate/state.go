// Package simstate is the bridge between the simulation side and its
// consumers.
//
// The simulation goroutine publishes immutable [Telemetry] snapshots through
// an atomic pointer swap; consumers always read a value that was fully
// written by one publish call, never a torn mid-update view. Control inputs
// flow the other way behind a small mutex, since several consumer goroutines
// (key handlers, HTTP handlers) may write them. A bounded ring buffer keeps
// the recent (time, value) history for charting.
package simstate

import (
	"sync"
	"sync/atomic"

	"github.com/simlab/simviz/internal/geom"
)

// Telemetry is one published simulation snapshot. It is written as a whole
// by the process runner and never mutated after publishing.
type Telemetry struct {
	// Time is the simulated seconds since the process started. It keeps
	// counting across clock rebuilds.
	Time float64 `json:"time"`

	Position geom.Point `json:"position"`
	Target   geom.Point `json:"target"`

	// TargetIndex is the waypoint index Target corresponds to, carried so a
	// restarted runner resumes the cycle without inferring it from geometry.
	// -1 when the running process has no waypoint cycle.
	TargetIndex int `json:"targetIndex"`

	Volume  float64 `json:"volume"`
	Message string  `json:"message"`
}

// Controls are the consumer-owned inputs read by the simulation side.
// Values arriving here are already clamped by the control surface.
type Controls struct {
	Factor  float64 `json:"factor"`
	Inflow  float64 `json:"inflow"`
	Outflow float64 `json:"outflow"`
}

// Snapshot is a consistent read-only copy of everything a consumer frame
// needs.
type Snapshot struct {
	Telemetry
	Controls Controls `json:"controls"`
	Running  bool     `json:"running"`
}

// State is the single cross-goroutine simulation state. Create one per run
// with New; the liveness flag flips true to false exactly once and is never
// reset.
type State struct {
	telemetry atomic.Pointer[Telemetry]
	running   atomic.Bool

	mu       sync.Mutex
	controls Controls
	history  ring
}

// New creates a live State with the given initial telemetry and controls.
func New(initial Telemetry, controls Controls) *State {
	s := &State{controls: controls}
	s.telemetry.Store(&initial)
	s.running.Store(true)
	return s
}

// Publish replaces the visible telemetry. Only the simulation goroutine
// calls this. Publishing after shutdown is dropped so the last pre-shutdown
// values stay observable.
func (s *State) Publish(t Telemetry) {
	if !s.running.Load() {
		return
	}
	s.telemetry.Store(&t)
}

// Telemetry returns the latest published telemetry.
func (s *State) Telemetry() Telemetry {
	return *s.telemetry.Load()
}

// Controls returns a copy of the current control inputs.
func (s *State) Controls() Controls {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controls
}

// SetFactor stores a new speed factor. The rescheduling supervisor picks it
// up at its next supervision slice.
func (s *State) SetFactor(f float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controls.Factor = f
}

// SetInflow stores a new inflow rate.
func (s *State) SetInflow(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controls.Inflow = rate
}

// SetOutflow stores a new outflow rate.
func (s *State) SetOutflow(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controls.Outflow = rate
}

// Snapshot returns a consistent copy for one consumer frame.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Telemetry: s.Telemetry(),
		Controls:  s.Controls(),
		Running:   s.Running(),
	}
}

// RecordSample appends a (time, value) sample to the bounded history,
// evicting the oldest once the capacity is reached.
func (s *State) RecordSample(t, value float64) {
	if !s.running.Load() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.push(Sample{Time: t, Value: value})
}

// History returns the recorded samples in chronological order.
func (s *State) History() []Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.slice()
}

// Running reports the liveness flag.
func (s *State) Running() bool {
	return s.running.Load()
}

// Shutdown flips the liveness flag false. It is used both for orderly
// shutdown and on a fatal simulation fault, and is idempotent.
func (s *State) Shutdown() {
	s.running.Store(false)
}
