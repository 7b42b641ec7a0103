package mpm

import (
	"fmt"

	"github.com/san-kum/mpmsim/internal/compute"
)

// UpdateParticleNaturalCoords maps every located particle into the natural
// coordinates of its host element. Unlocated particles get ξ = 0.
func (e *Elements) UpdateParticleNaturalCoords(p *Particles) error {
	npe, dim, n := e.NodesPerElement(), e.Dim(), p.Len()
	errs := make([]error, n)

	e.backend.ParallelFor(n, func(start, end int) {
		ids := make([]int, npe)
		coords := make([][]float64, npe)
		for i := start; i < end; i++ {
			xi := p.XiAt(i)
			id := p.ElementIDs[i]
			if id < 0 {
				clear(xi)
				continue
			}
			e.NodeIDs(id, ids)
			for k, nid := range ids {
				coords[k] = e.Nodes.Position(nid)
			}
			if err := e.NaturalCoords(coords, p.Loc[i*dim:(i+1)*dim], xi); err != nil {
				errs[i] = fmt.Errorf("particle %d in element %d: %w", i, id, err)
			}
		}
	})
	return firstError(errs)
}

// scatter runs a P2G reduction of width-wide values keyed by node id.
// contrib receives the particle index and writes the per-particle value
// that is then weighted by each host node's shape function.
func (e *Elements) scatter(dst []float64, width int, p *Particles, pm *particleMap, contrib func(i int, v []float64)) {
	npe := pm.npe
	e.backend.ScatterAdd(dst, width, p.Len(), func(i int, acc *compute.Accumulator) {
		if p.ElementIDs[i] < 0 {
			return
		}
		v := make([]float64, width)
		contrib(i, v)
		for k := 0; k < npe; k++ {
			nid := pm.ids[i*npe+k]
			w := pm.shape[i*npe+k]
			for c := 0; c < width; c++ {
				acc.Add(nid, c, w*v[c])
			}
		}
	})
}

// ComputeNodalMass accumulates m_i += Σ_p N_i(ξ_p) m_p.
func (e *Elements) ComputeNodalMass(p *Particles) {
	pm := e.shapeMap(p)
	e.scatter(e.Nodes.Mass, 1, p, pm, func(i int, v []float64) {
		v[0] = p.Mass[i]
	})
}

// ComputeNodalMomentum accumulates (mv)_i += Σ_p N_i m_p v_p and derives the
// nodal velocity from the accumulated momentum and mass.
func (e *Elements) ComputeNodalMomentum(p *Particles) {
	pm := e.shapeMap(p)
	dim := e.Dim()
	e.scatter(e.Nodes.Momentum, dim, p, pm, func(i int, v []float64) {
		m := p.Mass[i]
		for c, vc := range p.VelocityAt(i) {
			v[c] = m * vc
		}
	})
	e.deriveNodalVelocity()
}

func (e *Elements) deriveNodalVelocity() {
	n := e.Nodes
	e.backend.ParallelFor(n.Len(), func(start, end int) {
		for i := start; i < end; i++ {
			m := n.Mass[i]
			vel, mom := n.VelocityAt(i), n.MomentumAt(i)
			if m <= MassTolerance {
				clear(vel)
				continue
			}
			for c := range vel {
				vel[c] = mom[c] / m
			}
		}
	})
}

// ComputeExternalForce accumulates f_ext,i += Σ_p N_i f_ext,p.
func (e *Elements) ComputeExternalForce(p *Particles) {
	pm := e.shapeMap(p)
	e.scatter(e.Nodes.FExt, e.Dim(), p, pm, func(i int, v []float64) {
		copy(v, p.FExtAt(i))
	})
}

// ComputeBodyForce accumulates f_ext,i += Σ_p N_i m_p g.
func (e *Elements) ComputeBodyForce(p *Particles, gravity []float64) error {
	if len(gravity) != e.Dim() {
		return configErrorf("gravity has %d components, expected %d", len(gravity), e.Dim())
	}
	pm := e.shapeMap(p)
	e.scatter(e.Nodes.FExt, e.Dim(), p, pm, func(i int, v []float64) {
		for c, g := range gravity {
			v[c] = p.Mass[i] * g
		}
	})
	return nil
}

// ComputeInternalForce accumulates f_int,i[a] -= Σ_p V_p Σ_b σ_p[a][b] ∂N_i/∂x_b.
func (e *Elements) ComputeInternalForce(p *Particles) error {
	pm, err := e.mapParticles(p, true)
	if err != nil {
		return err
	}

	npe, dim := pm.npe, pm.dim
	e.backend.ScatterAdd(e.Nodes.FInt, dim, p.Len(), func(i int, acc *compute.Accumulator) {
		if p.ElementIDs[i] < 0 {
			return
		}
		vol := p.Volume[i]
		sigma := p.StressAt(i)
		for k := 0; k < npe; k++ {
			nid := pm.ids[i*npe+k]
			g := pm.grad[(i*npe+k)*dim : (i*npe+k+1)*dim]
			for a := 0; a < dim; a++ {
				s := 0.0
				for b := 0; b < dim; b++ {
					s += sigma[a*dim+b] * g[b]
				}
				acc.Add(nid, a, -vol*s)
			}
		}
	})
	return nil
}

// ComputeDampingForce applies local non-viscous damping,
// f_damp = -α |f_int + f_ext| sign(v), per component.
func (e *Elements) ComputeDampingForce(alpha float64) {
	if alpha == 0 {
		return
	}
	n := e.Nodes
	e.backend.ParallelFor(n.Len()*n.Dim(), func(start, end int) {
		for k := start; k < end; k++ {
			f := n.FInt[k] + n.FExt[k]
			if f < 0 {
				f = -f
			}
			n.FDamp[k] -= alpha * f * sign(n.Velocity[k])
		}
	})
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// ComputeAccelerationVelocity integrates the nodes explicitly:
//
//	a_i = F_i / m_i, v_i += a_i dt, (mv)_i += F_i dt
//
// Nodes at or below MassTolerance get zero acceleration and velocity.
func (e *Elements) ComputeAccelerationVelocity(dt float64) {
	n := e.Nodes
	total := n.TotalForce()
	dim := n.Dim()
	e.backend.ParallelFor(n.Len(), func(start, end int) {
		for i := start; i < end; i++ {
			acc, vel, mom := n.AccelerationAt(i), n.VelocityAt(i), n.MomentumAt(i)
			f := total[i*dim : (i+1)*dim]
			m := n.Mass[i]
			if m <= MassTolerance {
				clear(acc)
				clear(vel)
				continue
			}
			for c := range f {
				acc[c] = f[c] / m
				vel[c] += acc[c] * dt
				mom[c] += f[c] * dt
			}
		}
	})
}

// ApplyBoundaryConstraints pins velocity, momentum and acceleration of the
// boundary nodes to zero.
func (e *Elements) ApplyBoundaryConstraints() {
	for _, id := range e.BoundaryNodes {
		clear(e.Nodes.VelocityAt(id))
		clear(e.Nodes.MomentumAt(id))
		clear(e.Nodes.AccelerationAt(id))
	}
}

// ApplyForceBoundaryConstraints zeroes every force on the boundary nodes.
func (e *Elements) ApplyForceBoundaryConstraints() {
	dim := e.Dim()
	for _, id := range e.BoundaryNodes {
		clear(e.Nodes.FInt[id*dim : (id+1)*dim])
		clear(e.Nodes.FExt[id*dim : (id+1)*dim])
		clear(e.Nodes.FDamp[id*dim : (id+1)*dim])
	}
}
