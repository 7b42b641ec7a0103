package mpm

import "github.com/san-kum/mpmsim/internal/nodes"

const (
	// MinDet is the smallest |det J| accepted before an element is treated
	// as degenerate.
	MinDet = 1.0e-14

	// MassTolerance is the nodal mass at or below which a node is
	// considered empty; its velocity and acceleration are zero.
	MassTolerance = 1.0e-12
)

// Locality classifies the result of locating a particle in the mesh.
type Locality uint8

const (
	Outside    Locality = iota // not in any element; element id is -1
	Inside                     // strictly inside one element, or on the mesh's outer face
	OnBoundary                 // on a face shared by several elements; lowest id wins
)

func (l Locality) String() string {
	switch l {
	case Inside:
		return "inside"
	case OnBoundary:
		return "on_boundary"
	default:
		return "outside"
	}
}

// Topology is the per-element-type contract. Shape-function values are
// indexed in NodeIDs order.
type Topology interface {
	Name() string
	Dim() int
	NodesPerElement() int
	NumElements() int
	NumNodes() int

	// NodeIDs writes element id's node ids into dst (len NodesPerElement).
	NodeIDs(id int, dst []int)

	// ShapeFn writes N_i(xi) into dst.
	ShapeFn(xi []float64, dst []float64)
	// ShapeFnNaturalGrad writes dN_i/dxi_a into dst[i][a].
	ShapeFnNaturalGrad(xi []float64, dst [][]float64)

	// NaturalCoords maps physical point x into the natural coordinates of
	// the element whose node positions are coords (NodeIDs order).
	NaturalCoords(coords [][]float64, x []float64, dst []float64) error

	// Locate finds the element containing x.
	Locate(n *nodes.Nodes, x []float64) (int, Locality)

	// Validate checks that a node collection fits this topology.
	Validate(n *nodes.Nodes) error
}
