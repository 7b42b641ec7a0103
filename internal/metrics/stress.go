package metrics

import (
	"math"

	"github.com/san-kum/mpmsim/internal/mpm"
	"gonum.org/v1/gonum/floats"
)

// PeakStress is the mean over observed steps of the largest absolute
// stress component of any particle.
type PeakStress struct {
	name    string
	sum     float64
	samples int
}

func NewPeakStress() *PeakStress {
	return &PeakStress{name: "peak_stress"}
}

func (s *PeakStress) Name() string {
	return s.name
}

func (s *PeakStress) Observe(m *mpm.Mesh, t float64) {
	peak := 0.0
	for _, p := range m.Particles {
		if len(p.Stress) == 0 {
			continue
		}
		peak = math.Max(peak, math.Max(floats.Max(p.Stress), -floats.Min(p.Stress)))
	}
	s.sum += peak
	s.samples++
}

func (s *PeakStress) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.sum / float64(s.samples)
}

func (s *PeakStress) Reset() {
	s.sum = 0
	s.samples = 0
}
