package metrics

import (
	"fmt"
	"sort"

	"github.com/san-kum/mpmsim/internal/solver"
)

// DefaultSpeedLimit is the particle speed above which Stability counts a
// step as unstable when no threshold is configured.
const DefaultSpeedLimit = 1e3

var registry = map[string]func() solver.Metric{
	"kinetic_energy": func() solver.Metric { return NewKineticEnergy() },
	"energy_drift":   func() solver.Metric { return NewEnergyDrift() },
	"mass_error":     func() solver.Metric { return NewMassError() },
	"momentum_drift": func() solver.Metric { return NewMomentumDrift() },
	"peak_stress":    func() solver.Metric { return NewPeakStress() },
	"stability":      func() solver.Metric { return NewStability(DefaultSpeedLimit) },
}

// New returns the metric registered under name.
func New(name string) (solver.Metric, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s (available: %v)", name, Names())
	}
	return f(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
