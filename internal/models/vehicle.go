// Package models implements the two demo process runners: a vehicle
// patrolling a waypoint cycle and a tank integrating flow rates.
package models

import (
	"fmt"

	"github.com/simlab/simviz/internal/config"
	"github.com/simlab/simviz/internal/geom"
	"github.com/simlab/simviz/internal/realtime"
	"github.com/simlab/simviz/internal/sim"
	"github.com/simlab/simviz/internal/simstate"
)

// Vehicle moves through a fixed closed waypoint cycle at constant speed,
// dwelling at each waypoint before heading to the next. Positions are
// recomputed every tick of simulated time, so the consumer frame rate has no
// bearing on the motion.
type Vehicle struct {
	waypoints []geom.Point
	speed     float64 // pixels per simulated second
	dwell     float64 // simulated seconds at each waypoint
	tick      float64 // simulated seconds between position updates

	pos  geom.Point
	idx  int     // waypoint index of the current target
	base float64 // simulated time already elapsed before this runner started
}

// NewVehicle creates a vehicle at the first waypoint, heading to the second.
// The waypoint cycle must be non-empty with distinct consecutive entries
// (enforced by config validation).
func NewVehicle(cfg config.VehicleConfig) *Vehicle {
	return &Vehicle{
		waypoints: cfg.Waypoints,
		speed:     cfg.Speed,
		dwell:     cfg.Dwell,
		tick:      cfg.Tick,
		pos:       cfg.Waypoints[0],
		idx:       1 % len(cfg.Waypoints),
	}
}

// ResumeVehicle creates a vehicle continuing from a captured snapshot: it
// keeps heading to the in-flight target rather than restarting the cycle.
// The snapshot's waypoint index is used directly; if it is out of range the
// nearest waypoint to the captured target is used instead.
func ResumeVehicle(cfg config.VehicleConfig, snap simstate.Snapshot) *Vehicle {
	v := NewVehicle(cfg)
	v.pos = snap.Position
	v.base = snap.Time

	if snap.TargetIndex >= 0 && snap.TargetIndex < len(v.waypoints) {
		v.idx = snap.TargetIndex
	} else {
		v.idx = NearestWaypoint(v.waypoints, snap.Target)
	}
	return v
}

// VehicleFactory adapts the vehicle constructors to the supervisor.
func VehicleFactory(cfg config.VehicleConfig) sim.Factory {
	return func(resume *simstate.Snapshot) sim.Process {
		if resume == nil {
			return NewVehicle(cfg)
		}
		return ResumeVehicle(cfg, *resume)
	}
}

// Run drives the patrol loop until the clock is stopped or the state is shut
// down.
func (v *Vehicle) Run(c *realtime.Clock, s *simstate.State) error {
	for s.Running() {
		target := v.waypoints[v.idx]
		start := v.pos
		duration := start.DistanceTo(target) / v.speed

		for elapsed := 0.0; elapsed < duration; elapsed += v.tick {
			v.pos = geom.Lerp(start, target, elapsed/duration)
			v.publish(c, s, target, fmt.Sprintf("Moving to (%.0f, %.0f)", target.X, target.Y))
			if err := c.Sleep(v.tick); err != nil {
				return err
			}
		}

		v.pos = target
		v.publish(c, s, target, fmt.Sprintf("Arrived, holding for %.1fs", v.dwell))
		if err := c.Sleep(v.dwell); err != nil {
			return err
		}

		v.idx = (v.idx + 1) % len(v.waypoints)
	}
	return nil
}

func (v *Vehicle) publish(c *realtime.Clock, s *simstate.State, target geom.Point, msg string) {
	now := v.base + c.Now()
	s.Publish(simstate.Telemetry{
		Time:        now,
		Position:    v.pos,
		Target:      target,
		TargetIndex: v.idx,
		Message:     msg,
	})
	s.RecordSample(now, v.pos.X)
}

// NearestWaypoint returns the index of the waypoint closest to p. It is the
// fallback for seeding a resumed cycle when no explicit index is available;
// ties resolve to the lowest index.
func NearestWaypoint(waypoints []geom.Point, p geom.Point) int {
	best := 0
	bestDist := waypoints[0].DistanceTo(p)
	for i, w := range waypoints[1:] {
		if d := w.DistanceTo(p); d < bestDist {
			best = i + 1
			bestDist = d
		}
	}
	return best
}
