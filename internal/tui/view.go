package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/simlab/simviz/internal/geom"
)

const (
	canvasW = 70
	canvasH = 20
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	waterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	targetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	entityStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

func (m Model) View() string {
	var b strings.Builder

	switch m.mode {
	case ModeVehicle:
		b.WriteString(headerStyle.Render("simviz · vehicle"))
		b.WriteString("\n\n")
		b.WriteString(m.vehicleCanvas())
		b.WriteString("\n")
		b.WriteString(m.statusLine())
		b.WriteString(helpStyle.Render("+/- speed · 0 reset speed · q quit"))
	case ModeTank:
		b.WriteString(headerStyle.Render("simviz · tank"))
		b.WriteString("\n\n")
		b.WriteString(m.tankView())
		b.WriteString("\n")
		b.WriteString(m.statusLine())
		b.WriteString(helpStyle.Render("+/- speed · i/I inflow · o/O outflow · q quit"))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) statusLine() string {
	var parts []string
	parts = append(parts,
		fmt.Sprintf("t %s", valueStyle.Render(fmt.Sprintf("%.1fs", m.snap.Time))),
		fmt.Sprintf("speed %s", valueStyle.Render(fmt.Sprintf("%.1fx", m.snap.Controls.Factor))),
	)
	if m.mode == ModeTank {
		parts = append(parts,
			fmt.Sprintf("in %s", valueStyle.Render(fmt.Sprintf("%.0f L/s", m.snap.Controls.Inflow))),
			fmt.Sprintf("out %s", valueStyle.Render(fmt.Sprintf("%.0f L/s", m.snap.Controls.Outflow))),
		)
	}
	parts = append(parts, dimStyle.Render(fmt.Sprintf("%.0f fps", m.fps)))

	return strings.Join(parts, dimStyle.Render("  ·  ")) + "\n" +
		dimStyle.Render(m.snap.Message) + "\n"
}

// vehicleCanvas projects the scene onto a rune grid: trail dots, the target
// cross and the entity marker.
func (m Model) vehicleCanvas() string {
	grid := make([][]rune, canvasH)
	for i := range grid {
		grid[i] = make([]rune, canvasW)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	set := func(p geom.Point, c rune) {
		x := int(p.X / float64(m.cfg.Scene.Width) * float64(canvasW-1))
		y := int(p.Y / float64(m.cfg.Scene.Height) * float64(canvasH-1))
		if x >= 0 && x < canvasW && y >= 0 && y < canvasH {
			grid[y][x] = c
		}
	}

	for _, p := range m.trail {
		set(p, '·')
	}
	set(m.snap.Target, 'x')
	set(m.snap.Position, '@')

	var b strings.Builder
	for _, row := range grid {
		for _, c := range row {
			switch c {
			case 'x':
				b.WriteString(targetStyle.Render(string(c)))
			case '@':
				b.WriteString(entityStyle.Render(string(c)))
			default:
				b.WriteString(dimStyle.Render(string(c)))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// tankView draws the fill gauge beside the volume history graph.
func (m Model) tankView() string {
	const rows = 12

	maxVol := m.cfg.Tank.MaxVolume
	fill := int(m.snap.Volume / maxVol * rows)
	if fill > rows {
		fill = rows
	}

	var gauge strings.Builder
	gauge.WriteString(dimStyle.Render("┌────────┐") + "\n")
	for r := rows; r > 0; r-- {
		if r <= fill {
			gauge.WriteString(dimStyle.Render("│") + waterStyle.Render("████████") + dimStyle.Render("│") + "\n")
		} else {
			gauge.WriteString(dimStyle.Render("│        │") + "\n")
		}
	}
	gauge.WriteString(dimStyle.Render("└────────┘") + "\n")
	gauge.WriteString(valueStyle.Render(fmt.Sprintf("%7.1f L", m.snap.Volume)))

	graph := ""
	if history := m.state.History(); len(history) >= 2 {
		data := make([]float64, len(history))
		for i, s := range history {
			data[i] = s.Value
		}
		graph = asciigraph.Plot(data,
			asciigraph.Height(rows),
			asciigraph.Width(44),
			asciigraph.Caption("volume history (L)"),
		)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, gauge.String(), "   ", graph)
}
