package optim

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/mpmsim/internal/config"
	"github.com/san-kum/mpmsim/internal/experiment"
	"github.com/san-kum/mpmsim/internal/solver"
)

// VelocityLoss is the L2 norm of target − got.
func VelocityLoss(target, got []float64) (float64, error) {
	if len(target) != len(got) {
		return 0, fmt.Errorf("optim: trace lengths differ (%d vs %d)", len(target), len(got))
	}
	if len(target) == 0 {
		return 0, fmt.Errorf("optim: empty trace")
	}
	return floats.Distance(target, got, 2), nil
}

// Score reduces a finished run to a loss.
type Score func(*solver.Result) (float64, error)

// ApplyMaterial sets E, nu and density on every particle set. Other keys
// are rejected.
func ApplyMaterial(cfg *config.Config, params map[string]float64) error {
	for name, v := range params {
		for i := range cfg.ParticleSets {
			m := &cfg.ParticleSets[i].Material
			switch name {
			case "E":
				m.E = v
			case "nu":
				m.Nu = v
			case "density":
				m.Density = v
			default:
				return fmt.Errorf("optim: unknown parameter %q", name)
			}
		}
	}
	return nil
}

// ExperimentObjective builds an Objective that clones base, applies the
// grid point with ApplyMaterial, runs it and scores the result.
func ExperimentObjective(base *config.Config, score Score) Objective {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		cfg := base.Clone()
		if err := ApplyMaterial(cfg, params); err != nil {
			return 0, err
		}
		exp := experiment.New(cfg)
		if err := exp.Setup(); err != nil {
			return 0, err
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return 0, err
		}
		return score(result)
	}
}

// VelocityTraceScore compares the recorded velocity entry at flat index
// (particle*dim + component) with target.
func VelocityTraceScore(target []float64, index int) Score {
	return func(r *solver.Result) (float64, error) {
		if len(r.Snapshots) == 0 {
			return 0, fmt.Errorf("optim: nothing recorded")
		}
		v, ok := r.Snapshots[0].Fields["velocity"]
		if !ok {
			return 0, fmt.Errorf("optim: velocity not recorded")
		}
		if index < 0 || index >= len(v) {
			return 0, fmt.Errorf("optim: velocity index %d out of range", index)
		}
		return VelocityLoss(target, r.Series("velocity", index))
	}
}
