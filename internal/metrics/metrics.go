// Package metrics exposes the latest simulation snapshot as Prometheus
// gauges, served from the dashboard's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/simlab/simviz/internal/simstate"
)

var (
	simTimeGauge   = prometheus.NewGauge(prometheus.GaugeOpts{Name: "simviz_sim_time_seconds"})
	factorGauge    = prometheus.NewGauge(prometheus.GaugeOpts{Name: "simviz_speed_factor"})
	volumeGauge    = prometheus.NewGauge(prometheus.GaugeOpts{Name: "simviz_tank_volume_liters"})
	inflowGauge    = prometheus.NewGauge(prometheus.GaugeOpts{Name: "simviz_tank_inflow_lps"})
	outflowGauge   = prometheus.NewGauge(prometheus.GaugeOpts{Name: "simviz_tank_outflow_lps"})
	positionXGauge = prometheus.NewGauge(prometheus.GaugeOpts{Name: "simviz_position_x"})
	positionYGauge = prometheus.NewGauge(prometheus.GaugeOpts{Name: "simviz_position_y"})
	livenessGauge  = prometheus.NewGauge(prometheus.GaugeOpts{Name: "simviz_running"})
)

func init() {
	prometheus.MustRegister(
		simTimeGauge, factorGauge,
		volumeGauge, inflowGauge, outflowGauge,
		positionXGauge, positionYGauge,
		livenessGauge,
	)
}

// Observe updates the gauges from one consumer-side snapshot.
func Observe(snap simstate.Snapshot) {
	simTimeGauge.Set(snap.Time)
	factorGauge.Set(snap.Controls.Factor)
	volumeGauge.Set(snap.Volume)
	inflowGauge.Set(snap.Controls.Inflow)
	outflowGauge.Set(snap.Controls.Outflow)
	positionXGauge.Set(snap.Position.X)
	positionYGauge.Set(snap.Position.Y)
	if snap.Running {
		livenessGauge.Set(1)
	} else {
		livenessGauge.Set(0)
	}
}
