package material

import "fmt"

// LinearElastic is small-strain isotropic elasticity. In 1D it reduces to
// σ += E·dε; in 2D it is plane strain.
type LinearElastic struct {
	E       float64
	Nu      float64
	density float64
}

func NewLinearElastic(e, nu, density float64) *LinearElastic {
	return &LinearElastic{E: e, Nu: nu, density: density}
}

func (m *LinearElastic) Name() string     { return "linear_elastic" }
func (m *LinearElastic) Density() float64 { return m.density }

func (m *LinearElastic) validate() error {
	if m.E <= 0 {
		return fmt.Errorf("%w: E must be positive, got %g", ErrInvalidParam, m.E)
	}
	if m.Nu < 0 || m.Nu >= 0.5 {
		return fmt.Errorf("%w: nu must be in [0, 0.5), got %g", ErrInvalidParam, m.Nu)
	}
	if m.density <= 0 {
		return fmt.Errorf("%w: density must be positive, got %g", ErrInvalidParam, m.density)
	}
	return nil
}

func (m *LinearElastic) ComputeStress(s *State) error {
	dim := s.Dim
	if dim == 1 {
		s.Stress[0] += m.E * s.DStrain[0]
		updateDensity(s)
		return nil
	}

	lambda := m.E * m.Nu / ((1 + m.Nu) * (1 - 2*m.Nu))
	mu := m.E / (2 * (1 + m.Nu))
	tr := Trace(s.DStrain, dim)
	for a := 0; a < dim; a++ {
		for b := 0; b < dim; b++ {
			k := a*dim + b
			s.Stress[k] += 2 * mu * s.DStrain[k]
			if a == b {
				s.Stress[k] += lambda * tr
			}
		}
	}
	updateDensity(s)
	return nil
}

func (m *LinearElastic) GetParams() map[string]float64 {
	return map[string]float64{"E": m.E, "nu": m.Nu, "density": m.density}
}

func (m *LinearElastic) SetParam(name string, value float64) error {
	prev := *m
	switch name {
	case "E":
		m.E = value
	case "nu":
		m.Nu = value
	case "density":
		m.density = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	if err := m.validate(); err != nil {
		*m = prev
		return err
	}
	return nil
}
