// Package material provides constitutive models for particle sets.
//
// A model is called once per particle per step with views into the
// particle's tensors. Tensors are dim×dim, row-major.
package material

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownParam = errors.New("material: unknown parameter")
	ErrInvalidParam = errors.New("material: parameter out of valid bounds")
)

// State is the per-particle input/output of a constitutive update. Stress
// and Density are updated in place.
type State struct {
	Dim     int
	Strain  []float64
	DStrain []float64
	Stress  []float64
	Density float64
}

type Material interface {
	Name() string
	// Density is the reference density used to derive particle volumes.
	Density() float64
	ComputeStress(s *State) error
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Trace returns the trace of a dim×dim row-major tensor.
func Trace(t []float64, dim int) float64 {
	tr := 0.0
	for a := 0; a < dim; a++ {
		tr += t[a*dim+a]
	}
	return tr
}

// updateDensity applies mass conservation for a volumetric strain increment.
func updateDensity(s *State) {
	s.Density /= 1 + Trace(s.DStrain, s.Dim)
}

// New builds a material by type name from a parameter map.
func New(kind string, params map[string]float64) (Material, error) {
	switch kind {
	case "linear_elastic", "simple":
		m := NewLinearElastic(params["E"], params["nu"], params["density"])
		if err := m.validate(); err != nil {
			return nil, err
		}
		return m, nil
	case "null", "none":
		return NewNull(params["density"]), nil
	default:
		return nil, fmt.Errorf("unknown material: %s (available: %v)", kind, Kinds())
	}
}

// Kinds lists the names accepted by New.
func Kinds() []string {
	k := []string{"linear_elastic", "null"}
	sort.Strings(k)
	return k
}
