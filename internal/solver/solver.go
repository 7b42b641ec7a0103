// Package solver drives an MPM mesh through a time-stepping scheme and
// records what happened.
package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/mpmsim/internal/mpm"
	"github.com/san-kum/mpmsim/internal/scheme"
)

// MPMExplicit runs a fixed-dt explicit MPM simulation.
type MPMExplicit struct {
	mesh   *mpm.Mesh
	scheme scheme.Scheme
	dt     float64

	fields      []string
	recordEvery int
	validate    bool

	metrics   []Metric
	observers []Observer
}

type Option func(*MPMExplicit)

// WithFields selects the particle fields recorded in each snapshot.
func WithFields(fields ...string) Option {
	return func(s *MPMExplicit) { s.fields = fields }
}

// WithRecordEvery records a snapshot every n steps instead of every step.
func WithRecordEvery(n int) Option {
	return func(s *MPMExplicit) {
		if n > 0 {
			s.recordEvery = n
		}
	}
}

// WithValidation toggles the NaN/Inf check after each step.
func WithValidation(on bool) Option {
	return func(s *MPMExplicit) { s.validate = on }
}

func New(mesh *mpm.Mesh, dt float64, sch scheme.Scheme, opts ...Option) (*MPMExplicit, error) {
	if mesh == nil {
		return nil, errors.New("solver: mesh is required")
	}
	if sch == nil {
		return nil, errors.New("solver: scheme is required")
	}
	if !(dt > 0) {
		return nil, fmt.Errorf("dt must be positive, got %g", dt)
	}

	s := &MPMExplicit{
		mesh:        mesh,
		scheme:      sch,
		dt:          dt,
		fields:      DefaultFields,
		recordEvery: 1,
		validate:    true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := checkFields(s.fields); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MPMExplicit) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *MPMExplicit) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *MPMExplicit) Mesh() *mpm.Mesh       { return s.mesh }
func (s *MPMExplicit) Scheme() scheme.Scheme { return s.scheme }
func (s *MPMExplicit) Dt() float64           { return s.dt }

// Run advances the mesh nsteps times under gravity (nil means none). The
// context is checked between steps; a step is never left half applied.
// On failure the partial result is returned with the error.
func (s *MPMExplicit) Run(ctx context.Context, nsteps int, gravity []float64) (*Result, error) {
	if nsteps <= 0 {
		return nil, fmt.Errorf("steps must be positive, got %d", nsteps)
	}
	dim := s.mesh.Dim()
	if gravity == nil {
		gravity = make([]float64, dim)
	}
	if len(gravity) != dim {
		return nil, fmt.Errorf("gravity has %d components, mesh has dim %d", len(gravity), dim)
	}
	if err := s.mesh.Relocate(); err != nil {
		return nil, fmt.Errorf("initial localization: %w", err)
	}

	result := &Result{
		Snapshots: make([]Snapshot, 0, nsteps/s.recordEvery),
		Metrics:   make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}
	defer func() {
		for _, m := range s.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
	}()

	t := 0.0
	for i := 0; i < nsteps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := s.scheme.Step(s.mesh, s.dt, gravity); err != nil {
			return result, &mpm.SimulationError{Step: i, Time: t, Wrapped: err}
		}
		if s.validate {
			if err := s.mesh.CheckFinite(); err != nil {
				return result, &mpm.SimulationError{Step: i, Time: t, Wrapped: err}
			}
		}

		t = float64(i+1) * s.dt
		result.StepsTaken++

		for _, m := range s.metrics {
			m.Observe(s.mesh, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(i+1, t, s.mesh)
		}
		if (i+1)%s.recordEvery == 0 {
			result.Snapshots = append(result.Snapshots, s.snapshot(i+1, t))
		}
	}
	return result, nil
}

func (s *MPMExplicit) snapshot(step int, t float64) Snapshot {
	snap := Snapshot{Step: step, Time: t, Fields: make(map[string][]float64, len(s.fields))}
	for _, f := range s.fields {
		// fields were checked in New
		snap.Fields[f], _ = Collect(s.mesh, f)
	}
	return snap
}
