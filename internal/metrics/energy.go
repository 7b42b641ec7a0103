package metrics

import (
	"math"

	"github.com/san-kum/mpmsim/internal/mpm"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// KineticEnergy is the mean over observed steps of the total particle
// kinetic energy.
type KineticEnergy struct {
	name    string
	samples []float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(m *mpm.Mesh, t float64) {
	k.samples = append(k.samples, totalKinetic(m))
}

func (k *KineticEnergy) Value() float64 {
	if len(k.samples) == 0 {
		return 0
	}
	return stat.Mean(k.samples, nil)
}

func (k *KineticEnergy) Reset() {
	k.samples = k.samples[:0]
}

func totalKinetic(m *mpm.Mesh) float64 {
	total := 0.0
	for _, p := range m.Particles {
		total += floats.Sum(p.KineticEnergy())
	}
	return total
}

// EnergyDrift is the largest relative change of total kinetic energy from
// the first observed step. It is only meaningful for runs without
// boundaries or strain energy, where kinetic energy should be constant.
type EnergyDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(m *mpm.Mesh, t float64) {
	energy := totalKinetic(m)
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}
