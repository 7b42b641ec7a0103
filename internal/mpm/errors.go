package mpm

import (
	"errors"
	"fmt"
)

// Domain errors for kernel operations.
var (
	// ErrConfiguration indicates a malformed construction-time input.
	ErrConfiguration = errors.New("mpm: invalid configuration")

	// ErrSingularJacobian indicates a degenerate element: the mapping from
	// natural to physical coordinates cannot be inverted.
	ErrSingularJacobian = errors.New("mpm: singular element jacobian")

	// ErrNoConvergence indicates the inverse isoparametric map did not
	// converge.
	ErrNoConvergence = errors.New("mpm: natural coordinate iteration did not converge")

	// ErrUnstable indicates NaN or Inf in particle state after a step.
	ErrUnstable = errors.New("mpm: simulation unstable (state diverged)")
)

// SimulationError wraps a per-step failure with its position in the run.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

func configErrorf(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, a...))
}
