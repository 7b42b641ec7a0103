package viz

import (
	"github.com/guptarohit/asciigraph"
)

const (
	DefaultPlotWidth  = 80
	DefaultPlotHeight = 10
)

// Plot draws a single recorded series.
func Plot(data []float64, caption string, width, height int) string {
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// PlotMany overlays several series of equal meaning, such as one velocity
// component for a handful of particles.
func PlotMany(series [][]float64, caption string, width, height int) string {
	var nonEmpty [][]float64
	for _, s := range series {
		if len(s) > 0 {
			nonEmpty = append(nonEmpty, s)
		}
	}
	if len(nonEmpty) == 0 {
		return ""
	}
	colors := []asciigraph.AnsiColor{asciigraph.Cyan, asciigraph.Magenta, asciigraph.Yellow, asciigraph.Green, asciigraph.Red}
	series = nonEmpty
	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	}
	if len(series) <= len(colors) {
		opts = append(opts, asciigraph.SeriesColors(colors[:len(series)]...))
	}
	return asciigraph.PlotMany(series, opts...)
}
