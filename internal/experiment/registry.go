package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/mpmsim/internal/compute"
	"github.com/san-kum/mpmsim/internal/config"
	"github.com/san-kum/mpmsim/internal/material"
	"github.com/san-kum/mpmsim/internal/metrics"
	"github.com/san-kum/mpmsim/internal/mpm"
	"github.com/san-kum/mpmsim/internal/scheme"
	"github.com/san-kum/mpmsim/internal/solver"
)

type Registry struct {
	meshes map[string]func(mc config.MeshConfig, opts ...mpm.Option) (*mpm.Elements, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		meshes: make(map[string]func(config.MeshConfig, ...mpm.Option) (*mpm.Elements, error)),
	}

	r.meshes["line2"] = func(mc config.MeshConfig, opts ...mpm.Option) (*mpm.Elements, error) {
		return mpm.NewLinear1D(mc.Elements[0], mc.Size[0], mc.Boundary, opts...)
	}
	r.meshes["quad4"] = func(mc config.MeshConfig, opts ...mpm.Option) (*mpm.Elements, error) {
		return mpm.NewQuadrilateral4Node(mc.Elements[0], mc.Elements[1], mc.Size[0], mc.Size[1], mc.Boundary, opts...)
	}

	return r
}

func (r *Registry) GetMesh(mc config.MeshConfig, opts ...mpm.Option) (*mpm.Elements, error) {
	fn, ok := r.meshes[mc.Type]
	if !ok {
		return nil, fmt.Errorf("unknown mesh: %s", mc.Type)
	}
	return fn(mc, opts...)
}

func (r *Registry) GetMaterial(mc config.MaterialConfig) (material.Material, error) {
	return material.New(mc.Type, mc.Params())
}

func (r *Registry) GetScheme(name string, damping float64) (scheme.Scheme, error) {
	return scheme.New(name, damping)
}

func (r *Registry) GetMetric(name string) (solver.Metric, error) {
	return metrics.New(name)
}

// GetBackend maps a worker count to a backend: 1 runs serially, 0 uses
// every CPU.
func (r *Registry) GetBackend(workers int) compute.Backend {
	if workers == 1 {
		return compute.NewSerialBackend()
	}
	return compute.NewCPUBackend(workers)
}

func (r *Registry) ListMeshes() []string {
	names := make([]string, 0, len(r.meshes))
	for name := range r.meshes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListSchemes() []string   { return scheme.Names() }
func (r *Registry) ListMaterials() []string { return material.Kinds() }
func (r *Registry) ListMetrics() []string   { return metrics.Names() }

// DefaultMetrics are attached when a config names none.
func (r *Registry) DefaultMetrics() []solver.Metric {
	return []solver.Metric{
		metrics.NewKineticEnergy(),
		metrics.NewMassError(),
		metrics.NewMomentumDrift(),
		metrics.NewStability(metrics.DefaultSpeedLimit),
	}
}
