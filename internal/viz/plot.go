package viz

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/nbody/internal/sim"
)

// Series extracts one metric from a history, skipping samples without it.
func Series(history []sim.Sample, metric string) []float64 {
	out := make([]float64, 0, len(history))
	for _, s := range history {
		if v, ok := s.Metrics[metric]; ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// EnergyPlot draws metric over the history as an asciigraph line plot.
func EnergyPlot(history []sim.Sample, metric string, width, height int) (string, error) {
	data := Series(history, metric)
	if len(data) < 2 {
		return "", fmt.Errorf("metric %q has %d samples, need at least 2", metric, len(data))
	}
	return asciigraph.Plot(data,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(metric),
	), nil
}
