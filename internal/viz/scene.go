package viz

import (
	"math"

	"github.com/san-kum/mpmsim/internal/mpm"
)

// Viewport maps physical coordinates onto canvas sub-pixels, y up.
type Viewport struct {
	MinX, MaxX, MinY, MaxY float64
	c                      *Canvas
}

func NewViewport(c *Canvas, minX, maxX, minY, maxY float64) *Viewport {
	if maxX <= minX {
		maxX = minX + 1
	}
	if maxY <= minY {
		maxY = minY + 1
	}
	return &Viewport{MinX: minX, MaxX: maxX, MinY: minY, MaxY: maxY, c: c}
}

func (v *Viewport) Project(x, y float64) (int, int) {
	px := (x - v.MinX) / (v.MaxX - v.MinX) * float64(v.c.PixelWidth()-1)
	py := (v.MaxY - y) / (v.MaxY - v.MinY) * float64(v.c.PixelHeight()-1)
	return int(math.Round(px)), int(math.Round(py))
}

func (v *Viewport) Point(x, y float64) {
	v.c.Set(v.Project(x, y))
}

func (v *Viewport) Line(x0, y0, x1, y1 float64) {
	a, b := v.Project(x0, y0)
	c, d := v.Project(x1, y1)
	v.c.DrawLine(a, b, c, d)
}

// meshBounds returns the node bounding box, with y pinned to [0, 1] for
// one-dimensional meshes.
func meshBounds(el *mpm.Elements) (minX, maxX, minY, maxY float64) {
	n := el.Nodes
	dim := n.Dim()
	minX, maxX = math.Inf(1), math.Inf(-1)
	minY, maxY = 0, 1
	if dim > 1 {
		minY, maxY = math.Inf(1), math.Inf(-1)
	}
	for i := 0; i < n.Len(); i++ {
		x := n.Loc[i*dim]
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		if dim > 1 {
			y := n.Loc[i*dim+1]
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
	}
	return minX, maxX, minY, maxY
}

// RenderMesh draws the element edges and every particle of m on a canvas of
// width × height cells. One-dimensional meshes are drawn as a line with
// ticks at the nodes and particles on the midline.
func RenderMesh(m *mpm.Mesh, width, height int) *Canvas {
	c := NewCanvas(width, height)
	el := m.Elements
	minX, maxX, minY, maxY := meshBounds(el)
	v := NewViewport(c, minX, maxX, minY, maxY)
	dim := el.Dim()

	ids := make([]int, el.NodesPerElement())
	for e := 0; e < el.NumElements(); e++ {
		el.NodeIDs(e, ids)
		for k := range ids {
			a, b := ids[k], ids[(k+1)%len(ids)]
			if dim == 1 {
				x := el.Nodes.Loc[a]
				v.Line(x, 0.25, x, 0.75)
				v.Line(x, 0.5, el.Nodes.Loc[b], 0.5)
				continue
			}
			v.Line(el.Nodes.Loc[a*2], el.Nodes.Loc[a*2+1], el.Nodes.Loc[b*2], el.Nodes.Loc[b*2+1])
		}
	}

	for _, p := range m.Particles {
		for i := 0; i < p.Len(); i++ {
			pos := p.Position(i)
			if dim == 1 {
				v.Point(pos[0], 0.6)
				v.Point(pos[0], 0.65)
				continue
			}
			v.Point(pos[0], pos[1])
		}
	}
	return c
}
