package analysis

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D pairs a trace with its rate.
type PhasePortrait2D struct {
	Points []Point
}

// NewPhasePortrait pairs xs[i] with ys[i] up to the shorter length.
func NewPhasePortrait(xs, ys []float64) *PhasePortrait2D {
	n := min(len(xs), len(ys))
	portrait := &PhasePortrait2D{Points: make([]Point, n)}
	for i := 0; i < n; i++ {
		portrait.Points[i] = Point{X: xs[i], Y: ys[i]}
	}
	return portrait
}

// ToASCII renders the portrait on a width × height character grid.
func (portrait *PhasePortrait2D) ToASCII(width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	// 10% padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// Crossings returns the interpolated times at which trace crosses level
// going upward.
func Crossings(trace, times []float64, level float64) []float64 {
	var out []float64
	n := min(len(trace), len(times))
	for i := 1; i < n; i++ {
		prev, curr := trace[i-1], trace[i]
		if prev < level && curr >= level {
			frac := (level - prev) / (curr - prev)
			if math.IsNaN(frac) || math.IsInf(frac, 0) {
				frac = 0.5
			}
			out = append(out, times[i-1]+frac*(times[i]-times[i-1]))
		}
	}
	return out
}

// Period is the mean spacing of upward crossings of the trace mean.
func Period(trace, times []float64) (float64, error) {
	if len(trace) < 4 {
		return 0, ErrShortTrace
	}
	c := Crossings(trace, times, stat.Mean(trace, nil))
	if len(c) < 2 {
		return 0, ErrShortTrace
	}
	gaps := make([]float64, len(c)-1)
	for i := range gaps {
		gaps[i] = c[i+1] - c[i]
	}
	return stat.Mean(gaps, nil), nil
}
