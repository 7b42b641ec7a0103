package metrics

import (
	"math"

	"github.com/san-kum/mpmsim/internal/mpm"
)

// Stability is the fraction of steps in which every particle speed stays
// at or below threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(m *mpm.Mesh, t float64) {
	s.samples++
	if maxSpeed(m) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

func maxSpeed(m *mpm.Mesh) float64 {
	vmax := 0.0
	for _, p := range m.Particles {
		for i := 0; i < p.Len(); i++ {
			v2 := 0.0
			for _, v := range p.VelocityAt(i) {
				v2 += v * v
			}
			vmax = math.Max(vmax, math.Sqrt(v2))
		}
	}
	return vmax
}
