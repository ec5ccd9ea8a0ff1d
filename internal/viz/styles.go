package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/aerolattice/internal/vortex"
)

// styles are derived from the current theme on every render so that theme
// switches apply immediately.
type styles struct {
	header lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	active lipgloss.Style
	muted  lipgloss.Style
	graph  lipgloss.Style
	panel  lipgloss.Style
	errMsg lipgloss.Style
}

func themeStyles(t Theme) styles {
	return styles{
		header: lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1),
		label:  lipgloss.NewStyle().Foreground(t.Muted).Width(10),
		value:  lipgloss.NewStyle().Foreground(t.Text),
		active: lipgloss.NewStyle().Foreground(t.Secondary).Bold(true),
		muted:  lipgloss.NewStyle().Foreground(t.Muted),
		graph:  lipgloss.NewStyle().Foreground(t.Accent).Padding(1, 0),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 2),
		errMsg: lipgloss.NewStyle().Foreground(t.Negative).Bold(true),
	}
}

// SparklineChart renders a mini sparkline from values
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	n := min(width, len(values))
	var result strings.Builder
	for i := 0; i < n; i++ {
		v := values[i*len(values)/n]
		idx := int((v - lo) / rng * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))
		result.WriteRune(chars[idx])
	}
	return result.String()
}

// coefficientRows lists the scalar outputs in display order.
func coefficientRows(res *vortex.Results) [][2]string {
	return [][2]string{
		{"CL", fmt.Sprintf("%.5f", res.CL)},
		{"CDi", fmt.Sprintf("%.6f", res.CDi)},
		{"Cm", fmt.Sprintf("%.5f", res.Cm)},
		{"e", fmt.Sprintf("%.4f", res.SpanEfficiency)},
		{"L/D", fmt.Sprintf("%.2f", res.LiftToDrag())},
		{"CY", fmt.Sprintf("%.5f", res.CY)},
		{"Cl", fmt.Sprintf("%.5f", res.Croll)},
		{"Cn", fmt.Sprintf("%.5f", res.Cyaw)},
		{"AR", fmt.Sprintf("%.3f", res.AspectRatio)},
		{"MAC", fmt.Sprintf("%.4f", res.MAC)},
	}
}

// DistributionChart renders one section field against span position with
// asciigraph. Values are taken in section order.
func DistributionChart(values []float64, width, height int, caption string) string {
	if len(values) < 2 {
		return ""
	}
	return asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption))
}

// Summary renders the coefficients of a solve and its spanwise lift.
func Summary(name string, res *vortex.Results) string {
	st := themeStyles(CurrentTheme)

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(name)) + "\n")
	s.WriteString(st.label.Render("alpha") + st.value.Render(fmt.Sprintf("%.2f°", res.Flow.Alpha*180/math.Pi)) + "\n")
	s.WriteString(st.label.Render("beta") + st.value.Render(fmt.Sprintf("%.2f°", res.Flow.Beta*180/math.Pi)) + "\n")
	s.WriteString(st.label.Render("V") + st.value.Render(fmt.Sprintf("%.2f m/s", res.Flow.Airspeed)) + "\n\n")
	for _, row := range coefficientRows(res) {
		s.WriteString(st.label.Render(row[0]) + st.value.Render(row[1]) + "\n")
	}

	lift := make([]float64, len(res.Sections))
	for i, sec := range res.Sections {
		lift[i] = sec.Lift
	}
	if chart := DistributionChart(lift, 48, 6, "lift per span (N/m)"); chart != "" {
		s.WriteString(st.graph.Render(chart))
	}
	return st.panel.Render(s.String())
}
