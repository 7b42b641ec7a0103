package mpm

import (
	"testing"

	"github.com/san-kum/mpmsim/internal/compute"
	"github.com/san-kum/mpmsim/internal/material"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parallel forces real chunking even for a handful of particles.
func parallel() Option {
	return WithBackend(compute.NewCPUBackend(4).WithMinChunk(1))
}

func newLocated(t *testing.T, el *Elements, loc [][]float64, m material.Material) *Particles {
	t.Helper()
	p, err := NewParticles(loc, m, nil)
	require.NoError(t, err)
	p.SetParticleElementIDs(el)
	require.NoError(t, el.UpdateParticleNaturalCoords(p))
	return p
}

func TestNodalMassConservation(t *testing.T) {
	el, err := NewQuadrilateral4Node(3, 2, 0.5, 1, nil, parallel())
	require.NoError(t, err)

	loc := [][]float64{
		{0.1, 0.2}, {0.4, 1.7}, {1.2, 0.9}, {0.5, 1}, {1.49, 0.01},
		{0.75, 0.25}, {1, 1}, {0.05, 1.95}, {1.3, 1.3},
	}
	p := newLocated(t, el, loc, material.NewNull(1))
	require.NoError(t, p.SetMassArray([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9}))

	el.Nodes.ResetValues()
	el.ComputeNodalMass(p)

	assert.InDelta(t, 45.0, el.Nodes.TotalMass(), 1e-12)
	for _, m := range el.Nodes.Mass {
		assert.GreaterOrEqual(t, m, 0.0)
	}
}

func TestSharedNodeMass(t *testing.T) {
	el, err := NewLinear1D(2, 1, nil)
	require.NoError(t, err)
	p := newLocated(t, el, [][]float64{{0.5}, {1.5}}, material.NewNull(1))
	require.NoError(t, p.SetMass(1))

	el.Nodes.ResetValues()
	el.ComputeNodalMass(p)

	assert.InDeltaSlice(t, []float64{0.5, 1, 0.5}, el.Nodes.Mass, 1e-15)
}

func TestMultipleParticleSetsAccumulate(t *testing.T) {
	el, err := NewLinear1D(2, 1, nil)
	require.NoError(t, err)
	a := newLocated(t, el, [][]float64{{0.5}}, material.NewNull(1))
	b := newLocated(t, el, [][]float64{{1.5}}, material.NewNull(1))
	require.NoError(t, a.SetMass(2))
	require.NoError(t, b.SetMass(4))

	el.Nodes.ResetValues()
	el.ComputeNodalMass(a)
	el.ComputeNodalMass(b)

	assert.InDeltaSlice(t, []float64{1, 3, 2}, el.Nodes.Mass, 1e-15)
}

func TestNodalMomentumPermutationInvariant(t *testing.T) {
	loc := [][]float64{{0.1, 0.2}, {0.4, 0.7}, {1.2, 0.9}, {0.5, 0.5}, {1.9, 0.1}, {0.75, 0.25}}
	vel := [][]float64{{1, 0}, {-2, 1}, {0.5, 3}, {4, -1}, {0, 0.25}, {-1, -1}}
	mass := []float64{1, 0.5, 2, 1.5, 3, 0.25}

	momentum := func(order []int) ([]float64, []float64) {
		el, err := NewQuadrilateral4Node(2, 1, 1, 1, nil, parallel())
		require.NoError(t, err)

		l := make([][]float64, len(order))
		m := make([]float64, len(order))
		for k, i := range order {
			l[k], m[k] = loc[i], mass[i]
		}
		p := newLocated(t, el, l, material.NewNull(1))
		require.NoError(t, p.SetMassArray(m))
		for k, i := range order {
			copy(p.VelocityAt(k), vel[i])
		}

		el.Nodes.ResetValues()
		el.ComputeNodalMass(p)
		el.ComputeNodalMomentum(p)
		return el.Nodes.Momentum, el.Nodes.Velocity
	}

	mom1, vel1 := momentum([]int{0, 1, 2, 3, 4, 5})
	mom2, vel2 := momentum([]int{5, 3, 1, 4, 0, 2})
	assert.InDeltaSlice(t, mom1, mom2, 1e-12)
	assert.InDeltaSlice(t, vel1, vel2, 1e-12)
}

func TestNodalVelocityFromMomentum(t *testing.T) {
	el, err := NewLinear1D(1, 1, nil)
	require.NoError(t, err)
	p := newLocated(t, el, [][]float64{{0.25}, {0.75}}, material.NewNull(1))
	require.NoError(t, p.SetMass(1))
	require.NoError(t, p.SetVelocity([]float64{2}))

	el.Nodes.ResetValues()
	el.ComputeNodalMass(p)
	el.ComputeNodalMomentum(p)

	assert.InDeltaSlice(t, []float64{1, 1}, el.Nodes.Mass, 1e-15)
	assert.InDeltaSlice(t, []float64{2, 2}, el.Nodes.Momentum, 1e-15)
	assert.InDeltaSlice(t, []float64{2, 2}, el.Nodes.Velocity, 1e-15)
}

func TestZeroMassNodesHaveZeroVelocity(t *testing.T) {
	el, err := NewLinear1D(3, 1, nil)
	require.NoError(t, err)
	p := newLocated(t, el, [][]float64{{0.5}}, material.NewNull(1))
	require.NoError(t, p.SetMass(1))
	require.NoError(t, p.SetVelocity([]float64{3}))

	el.Nodes.ResetValues()
	el.ComputeNodalMass(p)
	el.ComputeNodalMomentum(p)
	require.NoError(t, el.ComputeBodyForce(p, []float64{-10}))
	el.ComputeAccelerationVelocity(0.1)

	assert.Equal(t, 0.0, el.Nodes.Velocity[2])
	assert.Equal(t, 0.0, el.Nodes.Velocity[3])
	assert.Equal(t, 0.0, el.Nodes.Acceleration[3])

	// below the tolerance the momentum is ignored
	require.NoError(t, p.SetMass(1e-13))
	el.Nodes.ResetValues()
	el.ComputeNodalMass(p)
	el.ComputeNodalMomentum(p)
	assert.NotZero(t, el.Nodes.Momentum[0])
	assert.Equal(t, []float64{0, 0, 0, 0}, el.Nodes.Velocity)
}

func TestBoundaryConstraints(t *testing.T) {
	el, err := NewQuadrilateral4Node(2, 1, 1, 1, []int{0, 3}, parallel())
	require.NoError(t, err)
	p := newLocated(t, el, [][]float64{{0.2, 0.3}, {1.4, 0.6}}, material.NewNull(1))
	require.NoError(t, p.SetMass(2))
	require.NoError(t, p.SetVelocity([]float64{1, -1}))

	for step := 0; step < 3; step++ {
		el.Nodes.ResetValues()
		el.ComputeNodalMass(p)
		el.ComputeNodalMomentum(p)
		el.ApplyBoundaryConstraints()
		require.NoError(t, el.ComputeBodyForce(p, []float64{0, -9.81}))
		el.ApplyForceBoundaryConstraints()
		el.ComputeAccelerationVelocity(0.01)

		for _, id := range el.BoundaryNodes {
			assert.Equal(t, []float64{0, 0}, el.Nodes.VelocityAt(id), "step %d node %d", step, id)
			assert.Equal(t, []float64{0, 0}, el.Nodes.MomentumAt(id))
			assert.Equal(t, []float64{0, 0}, el.Nodes.AccelerationAt(id))
		}
		assert.NotZero(t, el.Nodes.VelocityAt(1)[0])

		p.UpdateVelocity(el, 0.01)
		p.UpdatePosition(0.01)
		require.NoError(t, el.UpdateParticleNaturalCoords(p))
	}
}

func TestInternalForce(t *testing.T) {
	el, err := NewLinear1D(1, 1, nil)
	require.NoError(t, err)
	p := newLocated(t, el, [][]float64{{0.5}}, material.NewNull(1))
	p.SetVolume(1)
	p.Stress[0] = 2

	el.Nodes.ResetValues()
	require.NoError(t, el.ComputeInternalForce(p))
	assert.InDeltaSlice(t, []float64{2, -2}, el.Nodes.FInt, 1e-14)
}

func TestInternalForceBalancesIn2D(t *testing.T) {
	el, err := NewQuadrilateral4Node(2, 2, 1, 1, nil, parallel())
	require.NoError(t, err)
	p := newLocated(t, el, [][]float64{{0.3, 0.6}, {1.2, 1.7}, {1.5, 0.5}}, material.NewNull(1))
	p.SetVolume(0.25)
	for i := 0; i < p.Len(); i++ {
		copy(p.StressAt(i), []float64{1, 0.5, 0.5, -2})
	}

	el.Nodes.ResetValues()
	require.NoError(t, el.ComputeInternalForce(p))

	// Σ_i ∇N_i = 0, so internal forces are self-equilibrated
	var sum [2]float64
	for i := 0; i < el.Nodes.Len(); i++ {
		sum[0] += el.Nodes.FInt[2*i]
		sum[1] += el.Nodes.FInt[2*i+1]
	}
	assert.InDelta(t, 0, sum[0], 1e-12)
	assert.InDelta(t, 0, sum[1], 1e-12)
}

func TestExternalAndBodyForce(t *testing.T) {
	el, err := NewLinear1D(1, 1, nil)
	require.NoError(t, err)
	p := newLocated(t, el, [][]float64{{0.25}}, material.NewNull(1))
	require.NoError(t, p.SetMass(2))
	p.FExt[0] = 4

	el.Nodes.ResetValues()
	el.ComputeExternalForce(p)
	assert.InDeltaSlice(t, []float64{3, 1}, el.Nodes.FExt, 1e-15)

	require.NoError(t, el.ComputeBodyForce(p, []float64{-1}))
	assert.InDeltaSlice(t, []float64{1.5, 0.5}, el.Nodes.FExt, 1e-15)

	err = el.ComputeBodyForce(p, []float64{0, -1})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestDampingForce(t *testing.T) {
	el, err := NewLinear1D(1, 1, nil)
	require.NoError(t, err)
	n := el.Nodes
	copy(n.FInt, []float64{-3, 1})
	copy(n.FExt, []float64{1, 1})
	copy(n.Velocity, []float64{2, -1})

	el.ComputeDampingForce(0)
	assert.Equal(t, []float64{0, 0}, n.FDamp)

	el.ComputeDampingForce(0.5)
	assert.InDeltaSlice(t, []float64{-1, 1}, n.FDamp, 1e-15)
}

func TestAccelerationVelocityUpdate(t *testing.T) {
	el, err := NewLinear1D(1, 1, nil)
	require.NoError(t, err)
	n := el.Nodes
	copy(n.Mass, []float64{2, 0})
	copy(n.Velocity, []float64{1, 0})
	copy(n.Momentum, []float64{2, 0})
	copy(n.FExt, []float64{4, 5})

	el.ComputeAccelerationVelocity(0.5)

	assert.InDeltaSlice(t, []float64{2, 0}, n.Acceleration, 1e-15)
	assert.InDeltaSlice(t, []float64{2, 0}, n.Velocity, 1e-15)
	assert.InDeltaSlice(t, []float64{4, 0}, n.Momentum, 1e-15)
}

func TestUnlocatedParticlesAreExcluded(t *testing.T) {
	el, err := NewLinear1D(2, 1, nil)
	require.NoError(t, err)
	p := newLocated(t, el, [][]float64{{0.5}, {5}}, material.NewNull(1))
	require.NoError(t, p.SetMass(1))

	assert.Equal(t, []int{0, -1}, p.ElementIDs)
	assert.Equal(t, []Locality{Inside, Outside}, p.Locality)
	assert.Equal(t, 0.0, p.XiAt(1)[0])

	el.Nodes.ResetValues()
	el.ComputeNodalMass(p)
	assert.InDelta(t, 1.0, el.Nodes.TotalMass(), 1e-15)
}

func TestInternalForceOnCollapsedElement(t *testing.T) {
	el, err := NewQuadrilateral4Node(2, 1, 1, 1, nil)
	require.NoError(t, err)
	p := newLocated(t, el, [][]float64{{0.5, 0.5}}, material.NewLinearElastic(100, 0, 1))
	require.NoError(t, p.SetMassVolume(1))

	// fold element 0 onto its left edge
	copy(el.Nodes.Position(1), el.Nodes.Position(0))
	copy(el.Nodes.Position(4), el.Nodes.Position(3))

	el.Nodes.ResetValues()
	assert.ErrorIs(t, el.ComputeInternalForce(p), ErrSingularJacobian)
	assert.Equal(t, make([]float64, len(el.Nodes.FInt)), el.Nodes.FInt)
}
