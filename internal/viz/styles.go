package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/nbody/internal/prefs"
	"github.com/san-kum/nbody/internal/storage"
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	StatusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	StatusError = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899")).
			Width(14)

	ActiveParam = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#444466"))

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// KeyValue renders one aligned label/value line.
func KeyValue(label string, value any) string {
	return MetricLabel.Render(label) + MetricValue.Render(fmt.Sprint(value))
}

// PrefsPanel renders the record's fields together with its encoded bytes.
func PrefsPanel(p prefs.Prefs) string {
	raw, _ := p.MarshalBinary()

	var s strings.Builder
	s.WriteString(Title.Render("Simulation parameters") + "\n")
	s.WriteString(KeyValue("timestep", p.Timestep) + "\n")
	s.WriteString(KeyValue("damping", p.Damping) + "\n")
	s.WriteString(KeyValue("softeningSqr", p.SofteningSqr) + "\n")
	s.WriteString(KeyValue("particles", p.Particles) + "\n")
	s.WriteString(KeyValue("bytes", fmt.Sprintf("% x", raw)))
	return Panel.Render(s.String())
}

// MetricsPanel renders metric values sorted by name.
func MetricsPanel(metrics map[string]float64) string {
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var s strings.Builder
	s.WriteString(Title.Render("Metrics"))
	for _, k := range keys {
		s.WriteString("\n" + KeyValue(k, fmt.Sprintf("%.6g", metrics[k])))
	}
	return Panel.Render(s.String())
}

// RunTable renders one line per stored run.
func RunTable(runs []storage.RunMetadata) string {
	if len(runs) == 0 {
		return Subtle.Render("no runs")
	}

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(fmt.Sprintf("%-20s %-10s %-7s %9s %7s %19s",
		"ID", "NAME", "BACKEND", "PARTICLES", "STEPS", "TIMESTAMP")) + "\n")
	for _, r := range runs {
		fmt.Fprintf(&s, "%-20s %-10s %-7s %9d %7d %19s\n",
			r.ID, r.Name, r.Backend, r.Particles, r.Steps, r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return s.String()
}

// ProgressBar renders a bar filled to percent of width.
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	filled = max(0, min(filled, width))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	if percent > 0.8 {
		return SparkHigh.Render(bar)
	} else if percent > 0.4 {
		return SparkMid.Render(bar)
	}
	return SparkLow.Render(bar)
}

// Sparkline renders values as a row of block characters.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := max(1, len(values)/width)

	var result strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		idx := int((values[i*step] - lo) / rng * float64(len(chars)-1))
		result.WriteRune(chars[max(0, min(idx, len(chars)-1))])
	}
	return result.String()
}
