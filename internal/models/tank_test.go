package models

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/simlab/simviz/internal/config"
	"github.com/simlab/simviz/internal/realtime"
	"github.com/simlab/simviz/internal/simstate"
)

// runTank drives a tank runner at high speed until the simulated time passes
// simSeconds, then stops the clock and returns the joined error.
func runTank(t *testing.T, tank *Tank, s *simstate.State, factor, simSeconds float64) error {
	t.Helper()

	c := realtime.New(factor)
	done := make(chan error, 1)
	go func() { done <- tank.Run(c, s) }()

	deadline := time.After(10 * time.Second)
	for s.Telemetry().Time < simSeconds {
		select {
		case <-deadline:
			t.Fatal("tank did not reach target simulated time")
		case err := <-done:
			t.Fatalf("tank exited early: %v", err)
		case <-time.After(time.Millisecond):
		}
	}
	c.Stop()
	return <-done
}

func TestTankFillsAtNetRate(t *testing.T) {
	cfg := config.TankConfig{Inflow: 50, Outflow: 30, MaxVolume: 1000, Tick: 0.1}
	s := simstate.New(simstate.Telemetry{}, simstate.Controls{
		Factor: 1, Inflow: cfg.Inflow, Outflow: cfg.Outflow,
	})

	err := runTank(t, NewTank(cfg), s, 500, 10)
	if !errors.Is(err, realtime.ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}

	// 10 simulated seconds at net +20 L/s is 200 L, within a few ticks.
	got := s.Telemetry().Volume
	if math.Abs(got-200) > 20*cfg.Tick*10 {
		t.Errorf("volume = %f, want ~200", got)
	}
}

func TestTankHistoryMonotonicWhileFilling(t *testing.T) {
	cfg := config.TankConfig{Inflow: 50, Outflow: 30, MaxVolume: 1000, Tick: 0.1}
	s := simstate.New(simstate.Telemetry{}, simstate.Controls{
		Factor: 1, Inflow: cfg.Inflow, Outflow: cfg.Outflow,
	})

	runTank(t, NewTank(cfg), s, 500, 5)

	h := s.History()
	if len(h) < 2 {
		t.Fatalf("expected history samples, got %d", len(h))
	}
	for i := 1; i < len(h); i++ {
		if h[i].Value < h[i-1].Value {
			t.Fatalf("volume decreased at sample %d: %f -> %f", i, h[i-1].Value, h[i].Value)
		}
		if h[i].Time < h[i-1].Time {
			t.Fatalf("time went backwards at sample %d", i)
		}
	}
}

func TestTankClampsAtBounds(t *testing.T) {
	tests := []struct {
		name            string
		inflow, outflow float64
		start, want     float64
	}{
		{"never above max", 100, 0, 990, 1000},
		{"never below zero", 0, 100, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.TankConfig{Inflow: tt.inflow, Outflow: tt.outflow, MaxVolume: 1000, Tick: 0.1}
			s := simstate.New(simstate.Telemetry{Volume: tt.start}, simstate.Controls{
				Factor: 1, Inflow: tt.inflow, Outflow: tt.outflow,
			})

			tank := ResumeTank(cfg, s.Snapshot())
			runTank(t, tank, s, 500, 3)

			for _, sample := range s.History() {
				if sample.Value < 0 || sample.Value > cfg.MaxVolume {
					t.Fatalf("volume %f left [0, %f]", sample.Value, cfg.MaxVolume)
				}
			}
			if got := s.Telemetry().Volume; math.Abs(got-tt.want) > 1 {
				t.Errorf("final volume = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestTankResumeKeepsVolumeAndTime(t *testing.T) {
	cfg := config.TankConfig{MaxVolume: 1000, Tick: 0.1}
	s := simstate.New(simstate.Telemetry{Time: 42, Volume: 300}, simstate.Controls{Factor: 1})

	tank := ResumeTank(cfg, s.Snapshot())
	if tank.volume != 300 {
		t.Errorf("resumed volume = %f, want 300", tank.volume)
	}
	if tank.base != 42 {
		t.Errorf("resumed base time = %f, want 42", tank.base)
	}
}

func TestFlowMessage(t *testing.T) {
	tests := []struct {
		net  float64
		want string
	}{
		{20, "Tank filling at 20.0 L/s"},
		{-5, "Tank emptying at 5.0 L/s"},
		{0, "Tank level stable"},
	}
	for _, tt := range tests {
		if got := flowMessage(tt.net); got != tt.want {
			t.Errorf("flowMessage(%f) = %q, want %q", tt.net, got, tt.want)
		}
	}
}
