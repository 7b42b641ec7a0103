package solver

import "github.com/san-kum/mpmsim/internal/mpm"

// Metric accumulates a diagnostic over a run. Observe is called after every
// completed step.
type Metric interface {
	Name() string
	Observe(m *mpm.Mesh, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every completed step.
type Observer interface {
	OnStep(step int, t float64, m *mpm.Mesh)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(step int, t float64, m *mpm.Mesh)

func (f ObserverFunc) OnStep(step int, t float64, m *mpm.Mesh) { f(step, t, m) }

// Snapshot is the recorded particle state after a step. Each field is the
// concatenation over particle sets of the per-particle values, flat.
type Snapshot struct {
	Step   int                  `json:"step"`
	Time   float64              `json:"time"`
	Fields map[string][]float64 `json:"fields"`
}

type Result struct {
	Snapshots  []Snapshot         `json:"snapshots"`
	Metrics    map[string]float64 `json:"metrics"`
	StepsTaken int                `json:"steps_taken"`
}

// Series returns component k of field over the recorded snapshots.
func (r *Result) Series(field string, k int) []float64 {
	out := make([]float64, 0, len(r.Snapshots))
	for _, s := range r.Snapshots {
		v, ok := s.Fields[field]
		if !ok || k < 0 || k >= len(v) {
			continue
		}
		out = append(out, v[k])
	}
	return out
}

// Times returns the time of every recorded snapshot.
func (r *Result) Times() []float64 {
	out := make([]float64, len(r.Snapshots))
	for i, s := range r.Snapshots {
		out[i] = s.Time
	}
	return out
}
