package metrics

import (
	"math"

	"github.com/san-kum/mpmsim/internal/mpm"
	"gonum.org/v1/gonum/floats"
)

// MassError tracks the largest relative mismatch between the mass mapped
// to the nodes and the particle mass. Unlocated particles count as lost.
type MassError struct {
	name   string
	maxErr float64
}

func NewMassError() *MassError {
	return &MassError{name: "mass_error"}
}

func (e *MassError) Name() string { return e.name }

func (e *MassError) Observe(m *mpm.Mesh, t float64) {
	particle := m.TotalParticleMass()
	if particle == 0 {
		return
	}
	nodal := m.Elements.Nodes.TotalMass()
	e.maxErr = math.Max(e.maxErr, math.Abs(nodal-particle)/particle)
}

func (e *MassError) Value() float64 { return e.maxErr }
func (e *MassError) Reset()         { e.maxErr = 0 }

// MomentumDrift is the largest distance of total particle momentum from its
// value at the first observed step.
type MomentumDrift struct {
	name     string
	initial  []float64
	maxDrift float64
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (d *MomentumDrift) Name() string { return d.name }

func (d *MomentumDrift) Observe(m *mpm.Mesh, t float64) {
	p := m.ParticleMomentum()
	if d.initial == nil {
		d.initial = p
		return
	}
	d.maxDrift = math.Max(d.maxDrift, floats.Distance(p, d.initial, 2))
}

func (d *MomentumDrift) Value() float64 { return d.maxDrift }

func (d *MomentumDrift) Reset() {
	d.initial = nil
	d.maxDrift = 0
}
