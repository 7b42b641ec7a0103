// Package scheme sequences the kernel operations of one explicit MPM step.
package scheme

import (
	"fmt"
	"sort"

	"github.com/san-kum/mpmsim/internal/mpm"
)

// Scheme advances a mesh by one time step.
type Scheme interface {
	Name() string
	Step(m *mpm.Mesh, dt float64, gravity []float64) error
}

var registry = map[string]func(damping float64) Scheme{
	"usl": func(d float64) Scheme { return NewUSL(d) },
	"usf": func(d float64) Scheme { return NewUSF(d) },
}

// New returns the scheme registered under name with local damping alpha.
func New(name string, damping float64) (Scheme, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown scheme: %s (available: %v)", name, Names())
	}
	return f(damping), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func p2g(m *mpm.Mesh) {
	el := m.Elements
	el.Nodes.ResetValues()
	for _, p := range m.Particles {
		el.ComputeNodalMass(p)
	}
	for _, p := range m.Particles {
		el.ComputeNodalMomentum(p)
	}
	el.ApplyBoundaryConstraints()
}

func computeForces(m *mpm.Mesh, gravity []float64, damping float64) error {
	el := m.Elements
	for i, p := range m.Particles {
		el.ComputeExternalForce(p)
		if err := el.ComputeBodyForce(p, gravity); err != nil {
			return fmt.Errorf("particle set %d: body force: %w", i, err)
		}
		if err := el.ComputeInternalForce(p); err != nil {
			return fmt.Errorf("particle set %d: internal force: %w", i, err)
		}
	}
	el.ComputeDampingForce(damping)
	el.ApplyForceBoundaryConstraints()
	return nil
}

func g2p(m *mpm.Mesh, dt float64) error {
	el := m.Elements
	el.ComputeAccelerationVelocity(dt)
	for _, p := range m.Particles {
		p.UpdateVelocity(el, dt)
		p.UpdatePosition(dt)
	}
	for i, p := range m.Particles {
		if err := el.UpdateParticleNaturalCoords(p); err != nil {
			return fmt.Errorf("particle set %d: natural coordinates: %w", i, err)
		}
	}
	return nil
}

func updateStress(m *mpm.Mesh, dt float64) error {
	for i, p := range m.Particles {
		if err := p.ComputeStrain(m.Elements, dt); err != nil {
			return fmt.Errorf("particle set %d: stress update: %w", i, err)
		}
	}
	return nil
}
