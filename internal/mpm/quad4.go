package mpm

import (
	"fmt"
	"math"

	"github.com/san-kum/mpmsim/internal/nodes"
	"gonum.org/v1/gonum/mat"
)

const (
	invMapTol = 1.0e-10 // tolerance of the inverse isoparametric map
	invMapNit = 25      // maximum number of Newton iterations
)

// quad4Corners are the natural coordinates of the nodes, counter-clockwise
// from the lower-left corner.
var quad4Corners = [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

// Quad4 is the 4-node bilinear quadrilateral on a structured nx × ny grid.
//
//	15 0---0---0---0---0 19
//	   | 8 | 9 | 10| 11|
//	10 0---0---0---0---0 14
//	   | 4 | 5 | 6 | 7 |
//	 5 0---0---0---0---0 9
//	   | 0 | 1 | 2 | 3 |
//	   0---0---0---0---0
//	   0   1   2   3   4
//
// Element nodes are ordered 3---2 over 0---1.
type Quad4 struct {
	nx, ny int
	// grid lines; nil when the nodes are not rectilinear
	xs, ys []float64
}

// NewQuad4 returns the topology for nx × ny elements. Grid lines are taken
// from the node collection in Validate.
func NewQuad4(nx, ny int) *Quad4 {
	return &Quad4{nx: nx, ny: ny}
}

func (q *Quad4) Name() string         { return "quad4" }
func (q *Quad4) Dim() int             { return 2 }
func (q *Quad4) NodesPerElement() int { return 4 }
func (q *Quad4) NumElements() int     { return q.nx * q.ny }
func (q *Quad4) NumNodes() int        { return (q.nx + 1) * (q.ny + 1) }

func (q *Quad4) NodeIDs(id int, dst []int) {
	ll := (id/q.nx)*(q.nx+1) + id%q.nx
	dst[0] = ll
	dst[1] = ll + 1
	dst[2] = ll + q.nx + 2
	dst[3] = ll + q.nx + 1
}

func (q *Quad4) ShapeFn(xi []float64, dst []float64) {
	for i, c := range quad4Corners {
		dst[i] = 0.25 * (1 + xi[0]*c[0]) * (1 + xi[1]*c[1])
	}
}

func (q *Quad4) ShapeFnNaturalGrad(xi []float64, dst [][]float64) {
	for i, c := range quad4Corners {
		dst[i][0] = 0.25 * c[0] * (1 + xi[1]*c[1])
		dst[i][1] = 0.25 * c[1] * (1 + xi[0]*c[0])
	}
}

// NaturalCoords inverts the bilinear map with Newton iterations starting at
// the element centre. Rectangles converge in a single step.
func (q *Quad4) NaturalCoords(coords [][]float64, x []float64, dst []float64) error {
	var (
		s   [4]float64
		dN  = [][]float64{make([]float64, 2), make([]float64, 2), make([]float64, 2), make([]float64, 2)}
		res = mat.NewVecDense(2, nil)
		dr  mat.VecDense
	)
	r := []float64{0, 0}

	for it := 0; it < invMapNit; it++ {
		q.ShapeFn(r, s[:])
		q.ShapeFnNaturalGrad(r, dN)

		// residual: e = x - Σ N_i x_i
		for b := 0; b < 2; b++ {
			e := x[b]
			for i := range s {
				e -= s[i] * coords[i][b]
			}
			res.SetVec(b, e)
		}

		jac := jacobian(dN, coords, 2)
		if _, _, err := invertJacobian(jac); err != nil {
			return err
		}
		// dx = Jᵀ·dξ
		if err := dr.SolveVec(jac.T(), res); err != nil {
			return fmt.Errorf("%w: %v", ErrSingularJacobian, err)
		}

		norm := 0.0
		for a := 0; a < 2; a++ {
			r[a] += dr.AtVec(a)
			norm += dr.AtVec(a) * dr.AtVec(a)
			if math.Abs(r[a]-1) < invMapTol {
				r[a] = 1
			}
			if math.Abs(r[a]+1) < invMapTol {
				r[a] = -1
			}
		}
		if math.Sqrt(norm) < invMapTol {
			copy(dst, r)
			return nil
		}
	}
	return fmt.Errorf("%w: point %v after %d iterations", ErrNoConvergence, x, invMapNit)
}

// Locate uses per-axis searches when the grid is rectilinear and falls back
// to testing every element through the inverse map otherwise.
func (q *Quad4) Locate(n *nodes.Nodes, x []float64) (int, Locality) {
	if q.xs != nil {
		ix, lx := locateAxis(q.xs, x[0])
		iy, ly := locateAxis(q.ys, x[1])
		if lx == Outside || ly == Outside {
			return -1, Outside
		}
		loc := Inside
		if lx == OnBoundary || ly == OnBoundary {
			loc = OnBoundary
		}
		return iy*q.nx + ix, loc
	}
	return q.locateGeneral(n, x)
}

func (q *Quad4) locateGeneral(n *nodes.Nodes, x []float64) (int, Locality) {
	var (
		ids    [4]int
		coords = make([][]float64, 4)
		xi     = make([]float64, 2)
		found  = -1
	)
	const tol = 1e-12

	for id := 0; id < q.NumElements(); id++ {
		q.NodeIDs(id, ids[:])
		for i, nid := range ids {
			coords[i] = n.Position(nid)
		}
		if err := q.NaturalCoords(coords, x, xi); err != nil {
			continue
		}
		if math.Abs(xi[0]) > 1+tol || math.Abs(xi[1]) > 1+tol {
			continue
		}
		if found >= 0 {
			return found, OnBoundary
		}
		found = id
	}
	if found < 0 {
		return -1, Outside
	}
	return found, Inside
}

// Validate checks the node count and records grid lines when every node
// sits on the rectilinear grid implied by the first row and column.
func (q *Quad4) Validate(n *nodes.Nodes) error {
	if n.Dim() != 2 {
		return configErrorf("quad4 needs 2D nodes, got dim %d", n.Dim())
	}
	if q.nx < 1 || q.ny < 1 {
		return configErrorf("quad4 needs at least one element per axis, got %dx%d", q.nx, q.ny)
	}
	if n.Len() != q.NumNodes() {
		return configErrorf("quad4 %dx%d needs %d nodes, got %d", q.nx, q.ny, q.NumNodes(), n.Len())
	}

	xs := make([]float64, q.nx+1)
	ys := make([]float64, q.ny+1)
	for ix := range xs {
		xs[ix] = n.Position(ix)[0]
	}
	for iy := range ys {
		ys[iy] = n.Position(iy * (q.nx + 1))[1]
	}

	q.xs, q.ys = nil, nil
	if !strictlyIncreasing(xs) || !strictlyIncreasing(ys) {
		return nil
	}
	for iy := range ys {
		for ix := range xs {
			p := n.Position(iy*(q.nx+1) + ix)
			if p[0] != xs[ix] || p[1] != ys[iy] {
				return nil
			}
		}
	}
	q.xs, q.ys = xs, ys
	return nil
}
