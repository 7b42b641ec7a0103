package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearElastic1D(t *testing.T) {
	m := NewLinearElastic(100, 0, 1)
	s := &State{
		Dim:     1,
		Strain:  []float64{0.01},
		DStrain: []float64{0.01},
		Stress:  []float64{2},
		Density: 1,
	}

	require.NoError(t, m.ComputeStress(s))
	assert.InDelta(t, 3.0, s.Stress[0], 1e-12)
	assert.InDelta(t, 1/1.01, s.Density, 1e-12)
}

func TestLinearElasticPlaneStrain(t *testing.T) {
	e, nu := 1000.0, 0.25
	m := NewLinearElastic(e, nu, 2)
	s := &State{
		Dim:     2,
		Strain:  make([]float64, 4),
		DStrain: []float64{1e-3, 0, 0, 0},
		Stress:  make([]float64, 4),
		Density: 2,
	}

	require.NoError(t, m.ComputeStress(s))

	lambda := e * nu / ((1 + nu) * (1 - 2*nu))
	mu := e / (2 * (1 + nu))
	assert.InDelta(t, (lambda+2*mu)*1e-3, s.Stress[0], 1e-12)
	assert.InDelta(t, lambda*1e-3, s.Stress[3], 1e-12)
	assert.Zero(t, s.Stress[1])
	assert.Zero(t, s.Stress[2])
}

func TestNullClearsStress(t *testing.T) {
	m := NewNull(1)
	s := &State{Dim: 1, Strain: []float64{0}, DStrain: []float64{0}, Stress: []float64{5}, Density: 1}

	require.NoError(t, m.ComputeStress(s))
	assert.Zero(t, s.Stress[0])
	assert.Equal(t, 1.0, s.Density)
}

func TestNew(t *testing.T) {
	m, err := New("linear_elastic", map[string]float64{"E": 100, "density": 1})
	require.NoError(t, err)
	assert.Equal(t, "linear_elastic", m.Name())
	assert.Equal(t, 1.0, m.Density())

	_, err = New("linear_elastic", map[string]float64{"E": -1, "density": 1})
	assert.ErrorIs(t, err, ErrInvalidParam)

	_, err = New("plasticine", nil)
	assert.Error(t, err)
}

func TestSetParam(t *testing.T) {
	m := NewLinearElastic(100, 0.2, 1)

	require.NoError(t, m.SetParam("E", 95))
	assert.Equal(t, 95.0, m.GetParams()["E"])

	assert.ErrorIs(t, m.SetParam("yield", 1), ErrUnknownParam)
	assert.ErrorIs(t, m.SetParam("nu", 0.5), ErrInvalidParam)
}
