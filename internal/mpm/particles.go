package mpm

import (
	"fmt"

	"github.com/san-kum/mpmsim/internal/material"
)

// Particles is one particle set sharing a material. Vectors are flat with
// stride Dim(); tensors are Dim()×Dim() row-major, flat with stride Dim()².
type Particles struct {
	n, dim int

	Loc          []float64
	Xi           []float64
	Velocity     []float64
	Momentum     []float64
	Acceleration []float64
	FExt         []float64

	Mass    []float64
	Volume  []float64
	Density []float64

	Stress     []float64
	Strain     []float64
	StrainRate []float64
	DStrain    []float64

	ElementIDs []int
	Locality   []Locality

	Material material.Material
}

// NewParticles builds a particle set at loc. elementIDs may be nil, in which
// case every particle starts unlocated (-1).
func NewParticles(loc [][]float64, mat material.Material, elementIDs []int) (*Particles, error) {
	if len(loc) == 0 {
		return nil, configErrorf("particle set is empty")
	}
	if mat == nil {
		return nil, configErrorf("particle set needs a material")
	}
	dim := len(loc[0])
	if dim != 1 && dim != 2 {
		return nil, configErrorf("particle dimension must be 1 or 2, got %d", dim)
	}
	if elementIDs != nil && len(elementIDs) != len(loc) {
		return nil, configErrorf("got %d element ids for %d particles", len(elementIDs), len(loc))
	}

	n := len(loc)
	p := &Particles{
		n:            n,
		dim:          dim,
		Loc:          make([]float64, 0, n*dim),
		Xi:           make([]float64, n*dim),
		Velocity:     make([]float64, n*dim),
		Momentum:     make([]float64, n*dim),
		Acceleration: make([]float64, n*dim),
		FExt:         make([]float64, n*dim),
		Mass:         make([]float64, n),
		Volume:       make([]float64, n),
		Density:      make([]float64, n),
		Stress:       make([]float64, n*dim*dim),
		Strain:       make([]float64, n*dim*dim),
		StrainRate:   make([]float64, n*dim*dim),
		DStrain:      make([]float64, n*dim*dim),
		ElementIDs:   make([]int, n),
		Locality:     make([]Locality, n),
		Material:     mat,
	}
	for i, row := range loc {
		if len(row) != dim {
			return nil, configErrorf("particle %d has %d components, expected %d", i, len(row), dim)
		}
		p.Loc = append(p.Loc, row...)
	}
	for i := range p.ElementIDs {
		p.ElementIDs[i] = -1
		p.Density[i] = mat.Density()
	}
	for i, id := range elementIDs {
		if id < -1 {
			return nil, configErrorf("particle %d has invalid element id %d", i, id)
		}
		p.ElementIDs[i] = id
		if id >= 0 {
			p.Locality[i] = Inside
		}
	}
	return p, nil
}

func (p *Particles) Len() int { return p.n }
func (p *Particles) Dim() int { return p.dim }

func (p *Particles) String() string {
	return fmt.Sprintf("Particles(nparticles=%d, material=%s)", p.n, p.Material.Name())
}

func (p *Particles) Position(i int) []float64   { return p.Loc[i*p.dim : (i+1)*p.dim] }
func (p *Particles) XiAt(i int) []float64       { return p.Xi[i*p.dim : (i+1)*p.dim] }
func (p *Particles) VelocityAt(i int) []float64 { return p.Velocity[i*p.dim : (i+1)*p.dim] }
func (p *Particles) FExtAt(i int) []float64     { return p.FExt[i*p.dim : (i+1)*p.dim] }
func (p *Particles) StressAt(i int) []float64   { return p.tensor(p.Stress, i) }
func (p *Particles) tensor(t []float64, i int) []float64 {
	d2 := p.dim * p.dim
	return t[i*d2 : (i+1)*d2]
}

// SetMass sets every particle's mass to m.
func (p *Particles) SetMass(m float64) error {
	if !(m >= 0) {
		return configErrorf("particle mass must be non-negative, got %g", m)
	}
	for i := range p.Mass {
		p.Mass[i] = m
	}
	p.refreshMomentum()
	return nil
}

// SetMassArray sets per-particle masses.
func (p *Particles) SetMassArray(m []float64) error {
	if len(m) != p.n {
		return configErrorf("incompatible shapes: expected %d masses, got %d", p.n, len(m))
	}
	for i, v := range m {
		if !(v >= 0) {
			return configErrorf("particle %d mass must be non-negative, got %g", i, v)
		}
	}
	copy(p.Mass, m)
	p.refreshMomentum()
	return nil
}

// SetVolume sets every particle's volume to v.
func (p *Particles) SetVolume(v float64) {
	for i := range p.Volume {
		p.Volume[i] = v
	}
}

func (p *Particles) SetVolumeArray(v []float64) error {
	if len(v) != p.n {
		return configErrorf("incompatible shapes: expected %d volumes, got %d", p.n, len(v))
	}
	copy(p.Volume, v)
	return nil
}

// SetMassVolume sets the mass to m and derives the volume from the
// material density.
func (p *Particles) SetMassVolume(m float64) error {
	rho := p.Material.Density()
	if !(rho > 0) {
		return configErrorf("material %s has non-positive density %g", p.Material.Name(), rho)
	}
	if err := p.SetMass(m); err != nil {
		return err
	}
	p.SetVolume(m / rho)
	return nil
}

// SetVelocity gives every particle velocity v.
func (p *Particles) SetVelocity(v []float64) error {
	if len(v) != p.dim {
		return configErrorf("velocity has %d components, expected %d", len(v), p.dim)
	}
	for i := 0; i < p.n; i++ {
		copy(p.VelocityAt(i), v)
	}
	p.refreshMomentum()
	return nil
}

func (p *Particles) refreshMomentum() {
	for i := 0; i < p.n; i++ {
		for c := 0; c < p.dim; c++ {
			p.Momentum[i*p.dim+c] = p.Mass[i] * p.Velocity[i*p.dim+c]
		}
	}
}

// SetParticleElementIDs locates every particle in el. A particle on a face
// shared by several elements goes to the lowest element id; a particle
// outside the mesh gets -1.
func (p *Particles) SetParticleElementIDs(el *Elements) {
	el.backend.ParallelFor(p.n, func(start, end int) {
		for i := start; i < end; i++ {
			p.ElementIDs[i], p.Locality[i] = el.Locate(el.Nodes, p.Position(i))
		}
	})
}

// nodalAcceleration returns F_i/m_i per node, zero on empty nodes.
func nodalAcceleration(el *Elements) []float64 {
	n := el.Nodes
	total := n.TotalForce()
	dim := n.Dim()
	for i := 0; i < n.Len(); i++ {
		m := n.Mass[i]
		for c := 0; c < dim; c++ {
			if m <= MassTolerance {
				total[i*dim+c] = 0
			} else {
				total[i*dim+c] /= m
			}
		}
	}
	return total
}

// UpdateVelocity transfers the nodal acceleration back to the particles:
// v_p += Σ_i N_i(ξ_p) F_i/m_i dt.
func (p *Particles) UpdateVelocity(el *Elements, dt float64) {
	pm := el.shapeMap(p)
	acc := nodalAcceleration(el)
	npe, dim := pm.npe, p.dim

	el.backend.ParallelFor(p.n, func(start, end int) {
		for i := start; i < end; i++ {
			if p.ElementIDs[i] < 0 {
				continue
			}
			a := p.Acceleration[i*dim : (i+1)*dim]
			clear(a)
			for k := 0; k < npe; k++ {
				nid := pm.ids[i*npe+k]
				w := pm.shape[i*npe+k]
				for c := 0; c < dim; c++ {
					a[c] += w * acc[nid*dim+c]
				}
			}
			v := p.VelocityAt(i)
			for c := range v {
				v[c] += a[c] * dt
			}
		}
	})
}

// UpdatePosition advects every particle, located or not, and refreshes its
// momentum.
func (p *Particles) UpdatePosition(dt float64) {
	for k := range p.Loc {
		p.Loc[k] += p.Velocity[k] * dt
	}
	p.refreshMomentum()
}

// ComputeGradientVelocity returns L_p[a][b] = Σ_i v_i[a] ∂N_i/∂x_b, flat
// with stride Dim()². Unlocated particles get a zero tensor.
func (p *Particles) ComputeGradientVelocity(el *Elements) ([]float64, error) {
	pm, err := el.mapParticles(p, true)
	if err != nil {
		return nil, err
	}
	npe, dim := pm.npe, p.dim
	d2 := dim * dim
	L := make([]float64, p.n*d2)

	el.backend.ParallelFor(p.n, func(start, end int) {
		for i := start; i < end; i++ {
			if p.ElementIDs[i] < 0 {
				continue
			}
			lp := L[i*d2 : (i+1)*d2]
			for k := 0; k < npe; k++ {
				v := el.Nodes.VelocityAt(pm.ids[i*npe+k])
				g := pm.grad[(i*npe+k)*dim : (i*npe+k+1)*dim]
				for a := 0; a < dim; a++ {
					for b := 0; b < dim; b++ {
						lp[a*dim+b] += v[a] * g[b]
					}
				}
			}
		}
	})
	return L, nil
}

// ComputeStrain updates strain rate, strain increment, strain and volume
// from the nodal velocity field, then calls the material for stress and
// density.
func (p *Particles) ComputeStrain(el *Elements, dt float64) error {
	L, err := p.ComputeGradientVelocity(el)
	if err != nil {
		return err
	}
	dim := p.dim
	d2 := dim * dim
	errs := make([]error, p.n)

	el.backend.ParallelFor(p.n, func(start, end int) {
		for i := start; i < end; i++ {
			if p.ElementIDs[i] < 0 {
				continue
			}
			lp := L[i*d2 : (i+1)*d2]
			rate := p.tensor(p.StrainRate, i)
			de := p.tensor(p.DStrain, i)
			eps := p.tensor(p.Strain, i)
			for a := 0; a < dim; a++ {
				for b := 0; b < dim; b++ {
					rate[a*dim+b] = 0.5 * (lp[a*dim+b] + lp[b*dim+a])
					de[a*dim+b] = rate[a*dim+b] * dt
					eps[a*dim+b] += de[a*dim+b]
				}
			}
			p.Volume[i] *= 1 + material.Trace(de, dim)

			st := material.State{
				Dim:     dim,
				Strain:  eps,
				DStrain: de,
				Stress:  p.tensor(p.Stress, i),
				Density: p.Density[i],
			}
			if err := p.Material.ComputeStress(&st); err != nil {
				errs[i] = fmt.Errorf("particle %d: %w", i, err)
				continue
			}
			p.Density[i] = st.Density
		}
	})
	return firstError(errs)
}

// KineticEnergy returns ½ m_p |v_p|² per particle.
func (p *Particles) KineticEnergy() []float64 {
	ke := make([]float64, p.n)
	for i := range ke {
		v2 := 0.0
		for _, v := range p.VelocityAt(i) {
			v2 += v * v
		}
		ke[i] = 0.5 * p.Mass[i] * v2
	}
	return ke
}
