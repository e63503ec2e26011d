package dash

import (
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// chart renders the volume history ring buffer as a standalone line chart
// page.
func (s *Server) chart(w http.ResponseWriter, _ *http.Request) {
	samples := s.state.History()

	times := make([]string, len(samples))
	values := make([]opts.LineData, len(samples))
	for i, sample := range samples {
		times[i] = fmt.Sprintf("%.1f", sample.Time)
		values[i] = opts.LineData{Value: sample.Value}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Tank Volume History"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "time (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "volume (L)"}),
	)
	line.SetXAxis(times).AddSeries("volume", values)

	if err := line.Render(w); err != nil {
		s.log.WithError(err).Error("chart render failed")
	}
}
