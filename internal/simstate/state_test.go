package simstate

import (
	"sync"
	"testing"

	"github.com/simlab/simviz/internal/geom"
)

func TestPublishSnapshot(t *testing.T) {
	s := New(Telemetry{Message: "init"}, Controls{Factor: 1.0})

	s.Publish(Telemetry{
		Time:        1.5,
		Position:    geom.Point{X: 400, Y: 300},
		Target:      geom.Point{X: 750, Y: 300},
		TargetIndex: 1,
		Message:     "moving",
	})

	snap := s.Snapshot()
	if snap.Position.X != 400 || snap.Target.X != 750 {
		t.Errorf("snapshot position/target torn: %+v", snap)
	}
	if snap.TargetIndex != 1 {
		t.Errorf("target index = %d, want 1", snap.TargetIndex)
	}
	if !snap.Running {
		t.Error("fresh state should be running")
	}
	if snap.Controls.Factor != 1.0 {
		t.Errorf("factor = %f, want 1.0", snap.Controls.Factor)
	}
}

func TestSnapshotNeverTorn(t *testing.T) {
	s := New(Telemetry{}, Controls{Factor: 1.0})

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			v := float64(i)
			// Position and target always published with equal coordinates;
			// a torn read would see them differ.
			s.Publish(Telemetry{
				Position: geom.Point{X: v, Y: v},
				Target:   geom.Point{X: v, Y: v},
			})
		}
	}()

	for i := 0; i < 10000; i++ {
		tel := s.Telemetry()
		if tel.Position != tel.Target {
			t.Fatalf("torn snapshot: pos %v target %v", tel.Position, tel.Target)
		}
	}
	close(stop)
	wg.Wait()
}

func TestControls(t *testing.T) {
	s := New(Telemetry{}, Controls{Factor: 1.0, Inflow: 50, Outflow: 30})

	s.SetFactor(2.5)
	s.SetInflow(80)
	s.SetOutflow(10)

	ctl := s.Controls()
	if ctl.Factor != 2.5 || ctl.Inflow != 80 || ctl.Outflow != 10 {
		t.Errorf("controls = %+v", ctl)
	}
}

func TestShutdownIsFinal(t *testing.T) {
	s := New(Telemetry{Message: "last"}, Controls{})

	s.Shutdown()
	if s.Running() {
		t.Fatal("state should not be running after shutdown")
	}
	s.Shutdown() // idempotent
	if s.Running() {
		t.Fatal("shutdown must never revert")
	}

	// Writes after shutdown are dropped; the final values stay visible.
	s.Publish(Telemetry{Message: "after"})
	if got := s.Telemetry().Message; got != "last" {
		t.Errorf("post-shutdown publish visible: %q", got)
	}
	s.RecordSample(1, 1)
	if n := len(s.History()); n != 0 {
		t.Errorf("post-shutdown sample recorded, history len %d", n)
	}
}

func TestHistoryEvictsOldest(t *testing.T) {
	s := New(Telemetry{}, Controls{})

	const total = 250
	for i := 0; i < total; i++ {
		s.RecordSample(float64(i), float64(i)*2)
	}

	h := s.History()
	if len(h) != HistoryCapacity {
		t.Fatalf("history len = %d, want %d", len(h), HistoryCapacity)
	}
	for i, sample := range h {
		wantTime := float64(total - HistoryCapacity + i)
		if sample.Time != wantTime {
			t.Fatalf("sample %d time = %f, want %f", i, sample.Time, wantTime)
		}
		if sample.Value != wantTime*2 {
			t.Fatalf("sample %d value = %f, want %f", i, sample.Value, wantTime*2)
		}
	}
}

func TestHistoryPartialFill(t *testing.T) {
	s := New(Telemetry{}, Controls{})
	for i := 0; i < 7; i++ {
		s.RecordSample(float64(i), 0)
	}
	h := s.History()
	if len(h) != 7 {
		t.Fatalf("history len = %d, want 7", len(h))
	}
	for i := range h {
		if h[i].Time != float64(i) {
			t.Fatalf("sample %d out of order: %f", i, h[i].Time)
		}
	}
}
