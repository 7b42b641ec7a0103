package mpm

import (
	"math"
	"sort"

	"github.com/san-kum/mpmsim/internal/nodes"
)

// Line2 is the 2-node linear line element.
//
//	Element ID:            0     1     2     3
//	Mesh:               +-----+-----+-----+-----+
//	Node IDs:           0     1     2     3     4
type Line2 struct {
	nelements int
}

func NewLine2(nelements int) *Line2 {
	return &Line2{nelements: nelements}
}

func (l *Line2) Name() string         { return "line2" }
func (l *Line2) Dim() int             { return 1 }
func (l *Line2) NodesPerElement() int { return 2 }
func (l *Line2) NumElements() int     { return l.nelements }
func (l *Line2) NumNodes() int        { return l.nelements + 1 }

func (l *Line2) NodeIDs(id int, dst []int) {
	dst[0], dst[1] = id, id+1
}

func (l *Line2) ShapeFn(xi []float64, dst []float64) {
	dst[0] = 0.5 * (1 - xi[0])
	dst[1] = 0.5 * (1 + xi[0])
}

func (l *Line2) ShapeFnNaturalGrad(xi []float64, dst [][]float64) {
	dst[0][0] = -0.5
	dst[1][0] = 0.5
}

// NaturalCoords uses the closed form ξ = (2x − (x₁+x₂)) / (x₂−x₁).
func (l *Line2) NaturalCoords(coords [][]float64, x []float64, dst []float64) error {
	x1, x2 := coords[0][0], coords[1][0]
	h := x2 - x1
	if math.Abs(h) < MinDet {
		return ErrSingularJacobian
	}
	dst[0] = (2*x[0] - (x1 + x2)) / h
	return nil
}

// Locate requires strictly increasing node positions, checked by Validate.
func (l *Line2) Locate(n *nodes.Nodes, x []float64) (int, Locality) {
	return locateAxis(n.Loc, x[0])
}

func (l *Line2) Validate(n *nodes.Nodes) error {
	if n.Dim() != 1 {
		return configErrorf("line2 needs 1D nodes, got dim %d", n.Dim())
	}
	if n.Len() != l.NumNodes() {
		return configErrorf("line2 with %d elements needs %d nodes, got %d", l.nelements, l.NumNodes(), n.Len())
	}
	if !strictlyIncreasing(n.Loc) {
		return configErrorf("line2 node positions must be strictly increasing")
	}
	return nil
}

func strictlyIncreasing(v []float64) bool {
	for i := 1; i < len(v); i++ {
		if !(v[i] > v[i-1]) {
			return false
		}
	}
	return true
}

// locateAxis brackets x between sorted grid coordinates. A point on an
// interior grid line belongs to the lower cell and is flagged OnBoundary;
// the two outer lines are closed.
func locateAxis(coords []float64, x float64) (int, Locality) {
	last := len(coords) - 1
	if last < 1 || math.IsNaN(x) || x < coords[0] || x > coords[last] {
		return -1, Outside
	}

	k := sort.SearchFloat64s(coords, x)
	if coords[k] == x {
		switch k {
		case 0:
			return 0, Inside
		case last:
			return last - 1, Inside
		default:
			return k - 1, OnBoundary
		}
	}
	return k - 1, Inside
}
