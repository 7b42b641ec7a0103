package mpm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Mesh is the explicit simulation state: the background elements (which
// own the nodes) and every particle set living on them.
type Mesh struct {
	Elements  *Elements
	Particles []*Particles
}

// NewMesh checks that every particle set matches the element dimension and
// carries element ids the mesh can resolve.
func NewMesh(el *Elements, particles ...*Particles) (*Mesh, error) {
	if el == nil {
		return nil, configErrorf("mesh needs elements")
	}
	if len(particles) == 0 {
		return nil, configErrorf("mesh needs at least one particle set")
	}
	for s, p := range particles {
		if p == nil {
			return nil, configErrorf("particle set %d is nil", s)
		}
		if p.Dim() != el.Dim() {
			return nil, configErrorf("particle set %d has dim %d, elements have dim %d", s, p.Dim(), el.Dim())
		}
		for i, id := range p.ElementIDs {
			if id >= el.NumElements() {
				return nil, configErrorf("particle set %d: particle %d references element %d of %d", s, i, id, el.NumElements())
			}
		}
	}
	return &Mesh{Elements: el, Particles: particles}, nil
}

func (m *Mesh) Dim() int { return m.Elements.Dim() }

func (m *Mesh) String() string {
	return fmt.Sprintf("Mesh(%s, sets=%d, particles=%d)", m.Elements, len(m.Particles), m.NumParticles())
}

// NumParticles counts particles over every set.
func (m *Mesh) NumParticles() int {
	n := 0
	for _, p := range m.Particles {
		n += p.Len()
	}
	return n
}

// Relocate re-localizes every particle and refreshes its natural
// coordinates in the new host element.
func (m *Mesh) Relocate() error {
	for s, p := range m.Particles {
		p.SetParticleElementIDs(m.Elements)
		if err := m.Elements.UpdateParticleNaturalCoords(p); err != nil {
			return fmt.Errorf("particle set %d: %w", s, err)
		}
	}
	return nil
}

// TotalParticleMass sums particle mass over every set.
func (m *Mesh) TotalParticleMass() float64 {
	total := 0.0
	for _, p := range m.Particles {
		total += floats.Sum(p.Mass)
	}
	return total
}

// ParticleMomentum sums m_p v_p over every set.
func (m *Mesh) ParticleMomentum() []float64 {
	dim := m.Dim()
	total := make([]float64, dim)
	for _, p := range m.Particles {
		for i := 0; i < p.Len(); i++ {
			for c, v := range p.VelocityAt(i) {
				total[c] += p.Mass[i] * v
			}
		}
	}
	return total
}

// CheckFinite reports ErrUnstable if any particle position, velocity or
// stress is NaN or Inf.
func (m *Mesh) CheckFinite() error {
	for s, p := range m.Particles {
		for _, field := range [][]float64{p.Loc, p.Velocity, p.Stress} {
			for _, v := range field {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return fmt.Errorf("%w: particle set %d", ErrUnstable, s)
				}
			}
		}
	}
	return nil
}
