package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/mpmsim/internal/config"
	"github.com/san-kum/mpmsim/internal/mpm"
	"github.com/san-kum/mpmsim/internal/solver"
)

type Experiment struct {
	cfg      *config.Config
	registry *Registry
	mesh     *mpm.Mesh
	solver   *solver.MPMExplicit
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
	}
}

// Setup builds the mesh, particle sets, scheme and solver from the config.
func (e *Experiment) Setup() error {
	cfg := e.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}

	backend := e.registry.GetBackend(cfg.Workers)
	el, err := e.registry.GetMesh(cfg.Mesh, mpm.WithBackend(backend))
	if err != nil {
		return fmt.Errorf("mesh: %w", err)
	}

	sets := make([]*mpm.Particles, 0, len(cfg.ParticleSets))
	for i, ps := range cfg.ParticleSets {
		mat, err := e.registry.GetMaterial(ps.Material)
		if err != nil {
			return fmt.Errorf("particle set %d: %w", i, err)
		}
		p, err := buildParticles(ps, cfg.Mesh, mat)
		if err != nil {
			return fmt.Errorf("particle set %d: %w", i, err)
		}
		sets = append(sets, p)
	}

	mesh, err := mpm.NewMesh(el, sets...)
	if err != nil {
		return err
	}

	sch, err := e.registry.GetScheme(cfg.Scheme, cfg.Damping)
	if err != nil {
		return err
	}

	opts := []solver.Option{solver.WithRecordEvery(cfg.RecordEvery)}
	if len(cfg.Record) > 0 {
		opts = append(opts, solver.WithFields(cfg.Record...))
	}
	s, err := solver.New(mesh, cfg.Dt, sch, opts...)
	if err != nil {
		return err
	}

	if len(cfg.Metrics) == 0 {
		for _, m := range e.registry.DefaultMetrics() {
			s.AddMetric(m)
		}
	}
	for _, name := range cfg.Metrics {
		m, err := e.registry.GetMetric(name)
		if err != nil {
			return err
		}
		s.AddMetric(m)
	}

	e.mesh = mesh
	e.solver = s
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*solver.Result, error) {
	if e.solver == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.solver.Run(ctx, e.cfg.Steps, e.cfg.Gravity)
}

func (e *Experiment) Config() *config.Config { return e.cfg }
func (e *Experiment) Mesh() *mpm.Mesh        { return e.mesh }

// Solver returns the underlying solver for adding observers.
func (e *Experiment) Solver() *solver.MPMExplicit {
	return e.solver
}
