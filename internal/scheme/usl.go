package scheme

import "github.com/san-kum/mpmsim/internal/mpm"

// USL updates stress last, from the nodal velocity after the momentum
// update. The order of operations is load bearing: nodal mass and momentum
// must both precede the boundary constraints, and forces must be pinned
// before the nodes are integrated.
type USL struct {
	Damping float64
}

func NewUSL(damping float64) *USL {
	return &USL{Damping: damping}
}

func (s *USL) Name() string { return "usl" }

func (s *USL) Step(m *mpm.Mesh, dt float64, gravity []float64) error {
	p2g(m)
	if err := computeForces(m, gravity, s.Damping); err != nil {
		return err
	}
	if err := g2p(m, dt); err != nil {
		return err
	}
	if err := updateStress(m, dt); err != nil {
		return err
	}
	return m.Relocate()
}
