// Package nodes holds the per-node state of the background grid.
//
// All vector fields are stored flat with stride Dim(): component c of node
// i lives at index i*Dim()+c. Positions are fixed after construction; every
// other field is rebuilt each step, starting from ResetValues.
package nodes

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ErrShape reports a malformed node position array.
var ErrShape = errors.New("nodes: malformed position array")

type Nodes struct {
	n   int
	dim int

	Loc          []float64
	Velocity     []float64
	Acceleration []float64
	Momentum     []float64
	Mass         []float64
	FInt         []float64
	FExt         []float64
	FDamp        []float64
}

// New builds a node collection from one position row per node. Every row
// must have the same, non-zero length.
func New(loc [][]float64) (*Nodes, error) {
	if len(loc) == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrShape)
	}
	dim := len(loc[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: zero spatial dimension", ErrShape)
	}

	flat := make([]float64, 0, len(loc)*dim)
	for i, row := range loc {
		if len(row) != dim {
			return nil, fmt.Errorf("%w: node %d has %d components, expected %d", ErrShape, i, len(row), dim)
		}
		flat = append(flat, row...)
	}

	n := len(loc)
	return &Nodes{
		n:            n,
		dim:          dim,
		Loc:          flat,
		Velocity:     make([]float64, n*dim),
		Acceleration: make([]float64, n*dim),
		Momentum:     make([]float64, n*dim),
		Mass:         make([]float64, n),
		FInt:         make([]float64, n*dim),
		FExt:         make([]float64, n*dim),
		FDamp:        make([]float64, n*dim),
	}, nil
}

func (n *Nodes) Len() int { return n.n }
func (n *Nodes) Dim() int { return n.dim }

func (n *Nodes) String() string {
	return fmt.Sprintf("Nodes(n=%d, dim=%d)", n.n, n.dim)
}

// ResetValues zeroes everything except the positions.
func (n *Nodes) ResetValues() {
	clear(n.Velocity)
	clear(n.Acceleration)
	clear(n.Momentum)
	clear(n.Mass)
	clear(n.FInt)
	clear(n.FExt)
	clear(n.FDamp)
}

// TotalForce returns f_int + f_ext + f_damp as a new flat array.
func (n *Nodes) TotalForce() []float64 {
	total := make([]float64, len(n.FInt))
	floats.AddTo(total, n.FInt, n.FExt)
	floats.Add(total, n.FDamp)
	return total
}

// TotalMass is the sum of all nodal masses.
func (n *Nodes) TotalMass() float64 {
	return floats.Sum(n.Mass)
}

// Position returns a view of node i's coordinates.
func (n *Nodes) Position(i int) []float64 {
	return n.Loc[i*n.dim : (i+1)*n.dim]
}

// VelocityAt returns a view of node i's velocity.
func (n *Nodes) VelocityAt(i int) []float64 {
	return n.Velocity[i*n.dim : (i+1)*n.dim]
}

// MomentumAt returns a view of node i's momentum.
func (n *Nodes) MomentumAt(i int) []float64 {
	return n.Momentum[i*n.dim : (i+1)*n.dim]
}

// AccelerationAt returns a view of node i's acceleration.
func (n *Nodes) AccelerationAt(i int) []float64 {
	return n.Acceleration[i*n.dim : (i+1)*n.dim]
}
