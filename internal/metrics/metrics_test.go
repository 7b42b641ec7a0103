package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/mpmsim/internal/material"
	"github.com/san-kum/mpmsim/internal/mpm"
)

func testMesh(t *testing.T) *mpm.Mesh {
	t.Helper()
	el, err := mpm.NewLinear1D(2, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	p, err := mpm.NewParticles([][]float64{{0.5}, {1.5}}, material.NewNull(1), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SetMassArray([]float64{1, 2}); err != nil {
		t.Fatal(err)
	}
	copy(p.Velocity, []float64{2, 1})
	m, err := mpm.NewMesh(el, p)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Relocate(); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestKineticEnergy(t *testing.T) {
	m := testMesh(t)
	k := NewKineticEnergy()

	k.Observe(m, 0)
	if math.Abs(k.Value()-3) > 1e-12 {
		t.Errorf("expected kinetic energy 3, got %f", k.Value())
	}

	m.Particles[0].Velocity[0] = 0
	k.Observe(m, 0.1)
	if math.Abs(k.Value()-2) > 1e-12 {
		t.Errorf("expected mean kinetic energy 2, got %f", k.Value())
	}

	k.Reset()
	if k.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	m := testMesh(t)
	d := NewEnergyDrift()

	d.Observe(m, 0)
	m.Particles[0].Velocity[0] = 0
	d.Observe(m, 0.1)

	if math.Abs(d.Value()-2.0/3.0) > 1e-12 {
		t.Errorf("expected drift 2/3, got %f", d.Value())
	}
}

func TestMassError(t *testing.T) {
	m := testMesh(t)
	e := NewMassError()

	m.Elements.Nodes.ResetValues()
	for _, p := range m.Particles {
		m.Elements.ComputeNodalMass(p)
	}
	e.Observe(m, 0)
	if e.Value() > 1e-14 {
		t.Errorf("expected conserved mass, got error %g", e.Value())
	}

	m.Elements.Nodes.Mass[0] += 0.3
	e.Observe(m, 0)
	if math.Abs(e.Value()-0.1) > 1e-12 {
		t.Errorf("expected relative error 0.1, got %g", e.Value())
	}
}

func TestMomentumDrift(t *testing.T) {
	m := testMesh(t)
	d := NewMomentumDrift()

	d.Observe(m, 0)
	d.Observe(m, 0.1)
	if d.Value() != 0 {
		t.Errorf("expected no drift, got %g", d.Value())
	}

	m.Particles[0].Velocity[1] = 2.5
	d.Observe(m, 0.2)
	if math.Abs(d.Value()-3) > 1e-12 {
		t.Errorf("expected drift 3, got %g", d.Value())
	}
}

func TestStability(t *testing.T) {
	m := testMesh(t)
	s := NewStability(1.5)

	if s.Value() != 1 {
		t.Error("expected a run without samples to be stable")
	}

	s.Observe(m, 0)
	m.Particles[0].Velocity[0] = 1
	s.Observe(m, 0.1)

	if math.Abs(s.Value()-0.5) > 1e-12 {
		t.Errorf("expected stability 0.5, got %f", s.Value())
	}
}

func TestPeakStress(t *testing.T) {
	m := testMesh(t)
	s := NewPeakStress()

	copy(m.Particles[0].Stress, []float64{3, -5})
	s.Observe(m, 0)
	if s.Value() != 5 {
		t.Errorf("expected peak stress 5, got %f", s.Value())
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range Names() {
		m, err := New(name)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if m.Name() != name {
			t.Errorf("metric registered as %q reports name %q", name, m.Name())
		}
	}
	if _, err := New("entropy"); err == nil {
		t.Error("expected an error for an unknown metric")
	}
}
