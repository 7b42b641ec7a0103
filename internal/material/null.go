package material

import "fmt"

// Null carries no stress. Particles still track density changes.
type Null struct {
	density float64
}

func NewNull(density float64) *Null {
	return &Null{density: density}
}

func (m *Null) Name() string     { return "null" }
func (m *Null) Density() float64 { return m.density }

func (m *Null) ComputeStress(s *State) error {
	clear(s.Stress)
	updateDensity(s)
	return nil
}

func (m *Null) GetParams() map[string]float64 {
	return map[string]float64{"density": m.density}
}

func (m *Null) SetParam(name string, value float64) error {
	if name != "density" {
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	m.density = value
	return nil
}
