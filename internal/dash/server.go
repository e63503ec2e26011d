// Package dash serves the web dashboard: a periodically refreshed frame of
// the tank, the volume history as chart data, and slider-style control
// endpoints. It is a pure consumer of the shared simulation state.
package dash

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/simlab/simviz/internal/config"
	"github.com/simlab/simviz/internal/metrics"
	"github.com/simlab/simviz/internal/simstate"
)

// Server exposes one running simulation over HTTP.
type Server struct {
	cfg    *config.Config
	state  *simstate.State
	router *mux.Router
	log    *logrus.Entry
}

// NewServer builds the dashboard routes over the given state.
func NewServer(cfg *config.Config, state *simstate.State) *Server {
	s := &Server{
		cfg:   cfg,
		state: state,
		log:   logrus.WithField("component", "dash"),
	}

	r := mux.NewRouter()
	r.HandleFunc("/", s.index)
	r.HandleFunc("/api/frame", s.frame)
	r.HandleFunc("/api/history", s.history)
	r.HandleFunc("/api/snapshot", s.snapshot)
	r.HandleFunc("/api/control", s.control).Methods(http.MethodPost, http.MethodGet)
	r.HandleFunc("/chart", s.chart)
	r.Handle("/metrics", promhttp.Handler())
	s.router = r

	return s
}

// Router returns the handler, mainly for tests.
func (s *Server) Router() http.Handler { return s.router }

// Serve listens on the configured port and blocks until ctx is canceled or
// the listener fails. A background ticker feeds the Prometheus gauges at the
// dashboard refresh interval, acting as the periodic consumer.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Dash.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("dash listen: %w", err)
	}

	url := fmt.Sprintf("http://localhost:%d", listener.Addr().(*net.TCPAddr).Port)
	s.log.WithField("url", url).Info("dashboard up")
	if s.cfg.Dash.OpenBrowser {
		if err := browser.OpenURL(url); err != nil {
			s.log.WithError(err).Warn("could not open browser")
		}
	}

	go s.observeLoop(ctx)

	srv := &http.Server{Handler: s.router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) observeLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(s.cfg.Dash.IntervalMS) * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.Observe(s.state.Snapshot())
		}
	}
}

func (s *Server) snapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.state.Snapshot())
}

// historyResponse is the chart data series contract: samples plus the axis
// ranges the chart should show.
type historyResponse struct {
	Times       []float64  `json:"times"`
	Values      []float64  `json:"values"`
	TimeRange   [2]float64 `json:"timeRange"`
	VolumeRange [2]float64 `json:"volumeRange"`
}

func (s *Server) history(w http.ResponseWriter, _ *http.Request) {
	samples := s.state.History()

	resp := historyResponse{
		Times:       make([]float64, len(samples)),
		Values:      make([]float64, len(samples)),
		TimeRange:   [2]float64{0, 10},
		VolumeRange: [2]float64{0, s.cfg.Tank.MaxVolume},
	}
	for i, sample := range samples {
		resp.Times[i] = sample.Time
		resp.Values[i] = sample.Value
	}
	if n := len(samples); n > 0 {
		last := samples[n-1].Time
		lo := last - 30
		if lo < 0 {
			lo = 0
		}
		resp.TimeRange = [2]float64{lo, last + 1}
	}

	writeJSON(w, resp)
}

// control is the dashboard's slider surface. Values are clamped here, before
// they reach shared state; the simulation core assumes pre-clamped input.
func (s *Server) control(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if v, ok := parseParam(q.Get("factor")); ok {
		s.state.SetFactor(config.ClampFactor(v))
	}
	if v, ok := parseParam(q.Get("inflow")); ok {
		s.state.SetInflow(config.ClampFlow(v))
	}
	if v, ok := parseParam(q.Get("outflow")); ok {
		s.state.SetOutflow(config.ClampFlow(v))
	}

	writeJSON(w, s.state.Controls())
}

func parseParam(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
