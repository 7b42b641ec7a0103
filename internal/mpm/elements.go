package mpm

import (
	"fmt"

	"github.com/san-kum/mpmsim/internal/compute"
	"github.com/san-kum/mpmsim/internal/nodes"
)

// Elements is the background mesh: a topology, the nodes it owns, the set of
// fixed boundary nodes and the backend its batched operations run on.
//
// Elements is not safe for concurrent use; operations on one node set must
// be issued one at a time.
type Elements struct {
	Topology

	Nodes         *nodes.Nodes
	BoundaryNodes []int

	backend compute.Backend
}

type Option func(*Elements)

// WithBackend selects the backend used for batched transfers.
func WithBackend(b compute.Backend) Option {
	return func(e *Elements) {
		if b != nil {
			e.backend = b
		}
	}
}

// NewElements pairs a topology with an existing node collection.
func NewElements(topo Topology, n *nodes.Nodes, boundary []int, opts ...Option) (*Elements, error) {
	if topo == nil || n == nil {
		return nil, configErrorf("topology and nodes are required")
	}
	if err := topo.Validate(n); err != nil {
		return nil, err
	}
	for _, id := range boundary {
		if id < 0 || id >= n.Len() {
			return nil, configErrorf("boundary node %d out of range [0, %d)", id, n.Len())
		}
	}

	e := &Elements{
		Topology:      topo,
		Nodes:         n,
		BoundaryNodes: append([]int(nil), boundary...),
		backend:       compute.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// NewLinear1D builds nelements uniform line elements of length elLen
// starting at x = 0.
func NewLinear1D(nelements int, elLen float64, boundary []int, opts ...Option) (*Elements, error) {
	if nelements < 1 {
		return nil, configErrorf("need at least one element, got %d", nelements)
	}
	if !(elLen > 0) {
		return nil, configErrorf("element length must be positive, got %g", elLen)
	}

	loc := make([][]float64, nelements+1)
	for i := range loc {
		loc[i] = []float64{float64(i) * elLen}
	}
	n, err := nodes.New(loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return NewElements(NewLine2(nelements), n, boundary, opts...)
}

// NewQuadrilateral4Node builds an nx × ny grid of lx × ly rectangles with
// the lower-left node at the origin. Node (ix, iy) has id iy*(nx+1)+ix.
func NewQuadrilateral4Node(nx, ny int, lx, ly float64, boundary []int, opts ...Option) (*Elements, error) {
	if nx < 1 || ny < 1 {
		return nil, configErrorf("need at least one element per axis, got %dx%d", nx, ny)
	}
	if !(lx > 0) || !(ly > 0) {
		return nil, configErrorf("element size must be positive, got %gx%g", lx, ly)
	}

	loc := make([][]float64, 0, (nx+1)*(ny+1))
	for iy := 0; iy <= ny; iy++ {
		for ix := 0; ix <= nx; ix++ {
			loc = append(loc, []float64{float64(ix) * lx, float64(iy) * ly})
		}
	}
	n, err := nodes.New(loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return NewElements(NewQuad4(nx, ny), n, boundary, opts...)
}

func (e *Elements) Backend() compute.Backend { return e.backend }

func (e *Elements) String() string {
	return fmt.Sprintf("Elements(%s, nelements=%d, nnodes=%d)", e.Name(), e.NumElements(), e.Nodes.Len())
}

// IDToNodeIDs returns the node ids of element id in topology order.
func (e *Elements) IDToNodeIDs(id int) []int {
	ids := make([]int, e.NodesPerElement())
	e.NodeIDs(id, ids)
	return ids
}

// IDToNodeLoc returns views of the node positions of element id.
func (e *Elements) IDToNodeLoc(id int) [][]float64 {
	ids := e.IDToNodeIDs(id)
	out := make([][]float64, len(ids))
	for i, nid := range ids {
		out[i] = e.Nodes.Position(nid)
	}
	return out
}

// IDToNodeVel returns views of the node velocities of element id.
func (e *Elements) IDToNodeVel(id int) [][]float64 {
	ids := e.IDToNodeIDs(id)
	out := make([][]float64, len(ids))
	for i, nid := range ids {
		out[i] = e.Nodes.VelocityAt(nid)
	}
	return out
}

// ShapeFn evaluates the shape functions at a batch of natural coordinates.
func (e *Elements) ShapeFn(xi [][]float64) ([][]float64, error) {
	dim, npe := e.Dim(), e.NodesPerElement()
	out := make([][]float64, len(xi))
	for p, x := range xi {
		if len(x) != dim {
			return nil, configErrorf("natural coordinate %d has %d components, expected %d", p, len(x), dim)
		}
		out[p] = make([]float64, npe)
		e.Topology.ShapeFn(x, out[p])
	}
	return out, nil
}

// ShapeFnGrad returns ∂N_i/∂x at xi for an element with node positions
// coords.
func (e *Elements) ShapeFnGrad(xi []float64, coords [][]float64) ([][]float64, error) {
	return physicalGrad(e.Topology, xi, coords)
}

// particleMap holds, per located particle, the host node ids, shape values
// and optionally physical gradients, laid out with stride NodesPerElement.
type particleMap struct {
	npe, dim int
	ids      []int
	shape    []float64
	grad     []float64 // npe*dim per particle
}

// mapParticles evaluates the interpolation data of every particle of p in
// parallel. Unlocated particles keep zero rows. When several particles fail
// the error of the lowest index is returned.
func (e *Elements) mapParticles(p *Particles, withGrad bool) (*particleMap, error) {
	npe, dim, n := e.NodesPerElement(), e.Dim(), p.Len()
	pm := &particleMap{
		npe:   npe,
		dim:   dim,
		ids:   make([]int, n*npe),
		shape: make([]float64, n*npe),
	}
	if withGrad {
		pm.grad = make([]float64, n*npe*dim)
	}

	var errs []error
	if withGrad {
		errs = make([]error, n)
	}

	e.backend.ParallelFor(n, func(start, end int) {
		coords := make([][]float64, npe)
		for i := start; i < end; i++ {
			id := p.ElementIDs[i]
			if id < 0 {
				continue
			}
			ids := pm.ids[i*npe : (i+1)*npe]
			e.NodeIDs(id, ids)
			xi := p.XiAt(i)
			e.Topology.ShapeFn(xi, pm.shape[i*npe:(i+1)*npe])

			if !withGrad {
				continue
			}
			for k, nid := range ids {
				coords[k] = e.Nodes.Position(nid)
			}
			g, err := physicalGrad(e.Topology, xi, coords)
			if err != nil {
				errs[i] = fmt.Errorf("particle %d in element %d: %w", i, id, err)
				continue
			}
			for k := range g {
				copy(pm.grad[(i*npe+k)*dim:], g[k])
			}
		}
	})

	if err := firstError(errs); err != nil {
		return nil, err
	}
	return pm, nil
}

// shapeMap is mapParticles without gradients, which cannot fail.
func (e *Elements) shapeMap(p *Particles) *particleMap {
	pm, _ := e.mapParticles(p, false)
	return pm
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
