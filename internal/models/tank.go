package models

import (
	"fmt"
	"math"

	"github.com/simlab/simviz/internal/config"
	"github.com/simlab/simviz/internal/realtime"
	"github.com/simlab/simviz/internal/sim"
	"github.com/simlab/simviz/internal/simstate"
)

// Tank accumulates volume from consumer-controlled inflow and outflow rates.
// The volume advances by explicit Euler with a fixed simulated-time tick and
// stays clamped to [0, MaxVolume] at every step.
type Tank struct {
	maxVolume float64
	tick      float64

	volume float64
	base   float64 // simulated time already elapsed before this runner started
}

// NewTank creates an empty tank.
func NewTank(cfg config.TankConfig) *Tank {
	return &Tank{
		maxVolume: cfg.MaxVolume,
		tick:      cfg.Tick,
	}
}

// ResumeTank creates a tank continuing from a captured snapshot.
func ResumeTank(cfg config.TankConfig, snap simstate.Snapshot) *Tank {
	t := NewTank(cfg)
	t.volume = snap.Volume
	t.base = snap.Time
	return t
}

// TankFactory adapts the tank constructors to the supervisor.
func TankFactory(cfg config.TankConfig) sim.Factory {
	return func(resume *simstate.Snapshot) sim.Process {
		if resume == nil {
			return NewTank(cfg)
		}
		return ResumeTank(cfg, *resume)
	}
}

// Run drives the flow integration loop until the clock is stopped or the
// state is shut down. Flow rates are read fresh from the controls on every
// tick, so slider input takes effect within one tick.
func (t *Tank) Run(c *realtime.Clock, s *simstate.State) error {
	for s.Running() {
		ctl := s.Controls()
		net := ctl.Inflow - ctl.Outflow
		t.volume = math.Max(0, math.Min(t.maxVolume, t.volume+net*t.tick))

		now := t.base + c.Now()
		s.Publish(simstate.Telemetry{
			Time:        now,
			TargetIndex: -1,
			Volume:      t.volume,
			Message:     flowMessage(net),
		})
		s.RecordSample(now, t.volume)

		if err := c.Sleep(t.tick); err != nil {
			return err
		}
	}
	return nil
}

func flowMessage(net float64) string {
	switch {
	case net > 0:
		return fmt.Sprintf("Tank filling at %.1f L/s", net)
	case net < 0:
		return fmt.Sprintf("Tank emptying at %.1f L/s", -net)
	default:
		return "Tank level stable"
	}
}
