package solver

import (
	"fmt"

	"github.com/san-kum/mpmsim/internal/mpm"
)

var fieldGetters = map[string]func(p *mpm.Particles) []float64{
	"loc":      func(p *mpm.Particles) []float64 { return p.Loc },
	"velocity": func(p *mpm.Particles) []float64 { return p.Velocity },
	"stress":   func(p *mpm.Particles) []float64 { return p.Stress },
	"strain":   func(p *mpm.Particles) []float64 { return p.Strain },
	"mass":     func(p *mpm.Particles) []float64 { return p.Mass },
	"volume":   func(p *mpm.Particles) []float64 { return p.Volume },
	"density":  func(p *mpm.Particles) []float64 { return p.Density },
	"element_ids": func(p *mpm.Particles) []float64 {
		out := make([]float64, len(p.ElementIDs))
		for i, id := range p.ElementIDs {
			out[i] = float64(id)
		}
		return out
	},
}

// FieldNames lists every recordable field in a stable order.
func FieldNames() []string {
	return []string{"loc", "velocity", "stress", "strain", "mass", "volume", "density", "element_ids"}
}

// DefaultFields are recorded when no selection is given.
var DefaultFields = []string{"loc", "velocity", "stress", "strain"}

func checkFields(fields []string) error {
	for _, f := range fields {
		if _, ok := fieldGetters[f]; !ok {
			return fmt.Errorf("unknown field: %s (available: %v)", f, FieldNames())
		}
	}
	return nil
}

// Collect copies field out of every particle set of m.
func Collect(m *mpm.Mesh, field string) ([]float64, error) {
	get, ok := fieldGetters[field]
	if !ok {
		return nil, fmt.Errorf("unknown field: %s (available: %v)", field, FieldNames())
	}
	var out []float64
	for _, p := range m.Particles {
		out = append(out, get(p)...)
	}
	return out, nil
}
