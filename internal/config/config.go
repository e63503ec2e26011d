// Package config holds the runtime configuration for the visualizer.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/simlab/simviz/internal/geom"
)

const (
	DefaultFactor    = 1.0
	DefaultFrameRate = 30

	DefaultSceneWidth  = 800
	DefaultSceneHeight = 600

	DefaultVehicleSpeed = 150.0 // pixels per simulated second
	DefaultVehicleDwell = 2.0   // simulated seconds at each waypoint
	DefaultVehicleTick  = 1.0 / 360

	DefaultInflow    = 50.0
	DefaultOutflow   = 30.0
	DefaultMaxVolume = 1000.0 // liters
	DefaultTankTick  = 1.0 / 60

	DefaultDashPort     = 8050
	DefaultDashInterval = 100 // milliseconds between dashboard refreshes

	MinFactor = 0.1
	MaxFactor = 5.0
	MinFlow   = 0.0
	MaxFlow   = 100.0
)

type Config struct {
	Factor    float64       `yaml:"factor"`
	FrameRate int           `yaml:"frame_rate"`
	Scene     SceneConfig   `yaml:"scene"`
	Vehicle   VehicleConfig `yaml:"vehicle"`
	Tank      TankConfig    `yaml:"tank"`
	Dash      DashConfig    `yaml:"dash"`
}

type SceneConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type VehicleConfig struct {
	Speed     float64      `yaml:"speed"`
	Dwell     float64      `yaml:"dwell"`
	Tick      float64      `yaml:"tick"`
	Waypoints []geom.Point `yaml:"waypoints"`
}

type TankConfig struct {
	Inflow    float64 `yaml:"inflow"`
	Outflow   float64 `yaml:"outflow"`
	MaxVolume float64 `yaml:"max_volume"`
	Tick      float64 `yaml:"tick"`
}

type DashConfig struct {
	Port        int  `yaml:"port"`
	IntervalMS  int  `yaml:"interval_ms"`
	OpenBrowser bool `yaml:"open_browser"`
}

// Default returns the built-in demo configuration: the six-waypoint patrol
// loop from the motion demo and the 1000 L tank.
func Default() *Config {
	return &Config{
		Factor:    DefaultFactor,
		FrameRate: DefaultFrameRate,
		Scene: SceneConfig{
			Width:  DefaultSceneWidth,
			Height: DefaultSceneHeight,
		},
		Vehicle: VehicleConfig{
			Speed: DefaultVehicleSpeed,
			Dwell: DefaultVehicleDwell,
			Tick:  DefaultVehicleTick,
			Waypoints: []geom.Point{
				{X: 50, Y: 300},
				{X: 750, Y: 300},
				{X: 750, Y: 50},
				{X: 50, Y: 50},
				{X: 50, Y: 550},
				{X: 750, Y: 550},
			},
		},
		Tank: TankConfig{
			Inflow:    DefaultInflow,
			Outflow:   DefaultOutflow,
			MaxVolume: DefaultMaxVolume,
			Tick:      DefaultTankTick,
		},
		Dash: DashConfig{
			Port:        DefaultDashPort,
			IntervalMS:  DefaultDashInterval,
			OpenBrowser: false,
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants the simulation assumes.
func (c *Config) Validate() error {
	if c.Factor <= 0 {
		return fmt.Errorf("factor must be positive, got %f", c.Factor)
	}
	if c.FrameRate <= 0 {
		return fmt.Errorf("frame_rate must be positive, got %d", c.FrameRate)
	}
	if c.Vehicle.Speed <= 0 {
		return fmt.Errorf("vehicle speed must be positive, got %f", c.Vehicle.Speed)
	}
	if c.Vehicle.Tick <= 0 || c.Tank.Tick <= 0 {
		return fmt.Errorf("ticks must be positive")
	}
	if c.Tank.MaxVolume <= 0 {
		return fmt.Errorf("max_volume must be positive, got %f", c.Tank.MaxVolume)
	}
	if len(c.Vehicle.Waypoints) == 0 {
		return fmt.Errorf("waypoint cycle must not be empty")
	}
	// Consecutive waypoints must be distinct, wrap-around included.
	n := len(c.Vehicle.Waypoints)
	if n > 1 {
		for i, w := range c.Vehicle.Waypoints {
			next := c.Vehicle.Waypoints[(i+1)%n]
			if w == next {
				return fmt.Errorf("waypoints %d and %d are identical: %v", i, (i+1)%n, w)
			}
		}
	}
	return nil
}

// ClampFactor bounds a requested speed factor to the slider range. Control
// surfaces clamp before writing to shared state; the simulation core never
// validates.
func ClampFactor(f float64) float64 {
	return clamp(f, MinFactor, MaxFactor)
}

// ClampFlow bounds a requested flow rate to the slider range.
func ClampFlow(rate float64) float64 {
	return clamp(rate, MinFlow, MaxFlow)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
