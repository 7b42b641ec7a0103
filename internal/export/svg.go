// Package export writes mesh snapshots and particle trajectories as SVG.
package export

import (
	"fmt"
	"io"
	"math"

	"github.com/san-kum/mpmsim/internal/mpm"
)

const (
	background = "#0a0a0a"
	gridColor  = "#444466"
	pathColor  = "#00ffff"
)

type bounds struct{ minX, maxX, minY, maxY float64 }

func (b *bounds) grow(x, y float64) {
	b.minX, b.maxX = math.Min(b.minX, x), math.Max(b.maxX, x)
	b.minY, b.maxY = math.Min(b.minY, y), math.Max(b.maxY, y)
}

// pad widens b by 10% and gives degenerate axes unit extent.
func (b *bounds) pad() {
	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.1
	b.maxX += rangeX * 0.1
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
}

func newBounds() bounds {
	return bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
}

type frame struct {
	b             bounds
	width, height float64
}

// xy maps a physical point to SVG pixels, y up.
func (f frame) xy(x, y float64) (float64, float64) {
	px := (x - f.b.minX) / (f.b.maxX - f.b.minX) * f.width
	py := f.height - (y-f.b.minY)/(f.b.maxY-f.b.minY)*f.height
	return px, py
}

func header(w io.Writer, width, height int) error {
	_, err := fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
	return err
}

// point2 returns node or particle coordinates as (x, y); one-dimensional
// meshes sit on y = 0.
func point2(loc []float64, i, dim int) (float64, float64) {
	if dim == 1 {
		return loc[i], 0
	}
	return loc[i*dim], loc[i*dim+1]
}

// WriteMesh draws the element edges of m and its particles, coloured by
// speed from blue (slowest) to red (fastest).
func WriteMesh(w io.Writer, m *mpm.Mesh, width, height int) error {
	el := m.Elements
	dim := el.Dim()

	b := newBounds()
	for i := 0; i < el.Nodes.Len(); i++ {
		b.grow(point2(el.Nodes.Loc, i, dim))
	}
	b.pad()
	f := frame{b: b, width: float64(width), height: float64(height)}

	if err := header(w, width, height); err != nil {
		return err
	}
	fmt.Fprintf(w, "<g stroke=\"%s\" stroke-width=\"1\">\n", gridColor)
	ids := make([]int, el.NodesPerElement())
	for e := 0; e < el.NumElements(); e++ {
		el.NodeIDs(e, ids)
		n := len(ids)
		if dim == 1 {
			n = 1
		}
		for k := 0; k < n; k++ {
			x0, y0 := f.xy(point2(el.Nodes.Loc, ids[k], dim))
			x1, y1 := f.xy(point2(el.Nodes.Loc, ids[(k+1)%len(ids)], dim))
			fmt.Fprintf(w, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n", x0, y0, x1, y1)
		}
	}
	fmt.Fprintln(w, "</g>")

	vmax := 0.0
	for _, p := range m.Particles {
		for i := 0; i < p.Len(); i++ {
			vmax = math.Max(vmax, speed(p, i))
		}
	}

	fmt.Fprintln(w, "<g>")
	for _, p := range m.Particles {
		for i := 0; i < p.Len(); i++ {
			cx, cy := f.xy(point2(p.Loc, i, dim))
			fmt.Fprintf(w, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\" fill=\"%s\"/>\n", cx, cy, heat(speed(p, i), vmax))
		}
	}
	_, err := fmt.Fprint(w, "</g>\n</svg>\n")
	return err
}

func speed(p *mpm.Particles, i int) float64 {
	s := 0.0
	for _, v := range p.VelocityAt(i) {
		s += v * v
	}
	return math.Sqrt(s)
}

// heat interpolates blue to red over [0, max].
func heat(v, max float64) string {
	t := 0.0
	if max > 0 {
		t = v / max
	}
	r := int(math.Round(255 * t))
	return fmt.Sprintf("#%02x40%02x", r, 255-r)
}

// WriteTrajectory draws the path (xs[k], ys[k]) as a polyline. Fewer than
// two points is an error.
func WriteTrajectory(w io.Writer, xs, ys []float64, width, height int) error {
	n := min(len(xs), len(ys))
	if n < 2 {
		return fmt.Errorf("export: need at least two points, got %d", n)
	}

	b := newBounds()
	for i := 0; i < n; i++ {
		b.grow(xs[i], ys[i])
	}
	b.pad()
	f := frame{b: b, width: float64(width), height: float64(height)}

	if err := header(w, width, height); err != nil {
		return err
	}
	fmt.Fprintf(w, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, pathColor)
	for i := 0; i < n; i++ {
		x, y := f.xy(xs[i], ys[i])
		if i == 0 {
			fmt.Fprintf(w, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(w, " L%.1f,%.1f", x, y)
		}
	}
	_, err := fmt.Fprint(w, "\"/>\n</svg>\n")
	return err
}
