package scheme

import "github.com/san-kum/mpmsim/internal/mpm"

// USF updates stress first, from the nodal velocity mapped from the
// particles, before any force is assembled.
type USF struct {
	Damping float64
}

func NewUSF(damping float64) *USF {
	return &USF{Damping: damping}
}

func (s *USF) Name() string { return "usf" }

func (s *USF) Step(m *mpm.Mesh, dt float64, gravity []float64) error {
	p2g(m)
	if err := updateStress(m, dt); err != nil {
		return err
	}
	if err := computeForces(m, gravity, s.Damping); err != nil {
		return err
	}
	if err := g2p(m, dt); err != nil {
		return err
	}
	return m.Relocate()
}
