package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt      = 0.001
	DefaultSteps   = 2000
	DefaultScheme  = "usl"
	DefaultE       = 100.0
	DefaultDensity = 1.0
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	Name         string              `yaml:"name"`
	Scheme       string              `yaml:"scheme"`
	Dt           float64             `yaml:"dt"`
	Steps        int                 `yaml:"steps"`
	Gravity      []float64           `yaml:"gravity,omitempty"`
	Damping      float64             `yaml:"damping,omitempty"`
	Workers      int                 `yaml:"workers,omitempty"`
	Record       []string            `yaml:"record,omitempty"`
	RecordEvery  int                 `yaml:"record_every,omitempty"`
	Metrics      []string            `yaml:"metrics,omitempty"`
	Mesh         MeshConfig          `yaml:"mesh"`
	ParticleSets []ParticleSetConfig `yaml:"particle_sets"`
}

// MeshConfig describes a uniform background grid. Elements and Size have
// one entry per axis.
type MeshConfig struct {
	Type     string    `yaml:"type"`
	Elements []int     `yaml:"elements"`
	Size     []float64 `yaml:"size"`
	Boundary []int     `yaml:"boundary,omitempty"`
}

type MaterialConfig struct {
	Type    string  `yaml:"type"`
	E       float64 `yaml:"E,omitempty"`
	Nu      float64 `yaml:"nu,omitempty"`
	Density float64 `yaml:"density"`
}

// ParticleSetConfig places particles either at explicit Locations or,
// with PerElement > 0, PerElement per axis in every element whose centre
// lies in Region ([xmin, xmax] or [xmin, xmax, ymin, ymax]).
//
// Mass is per particle. When zero, generated particles take density times
// their share of the element volume. When Volume is zero it is derived
// from the mass and the material density.
type ParticleSetConfig struct {
	Material   MaterialConfig `yaml:"material"`
	Locations  [][]float64    `yaml:"locations,omitempty"`
	PerElement int            `yaml:"per_element,omitempty"`
	Region     []float64      `yaml:"region,omitempty"`
	Velocity   []float64      `yaml:"velocity,omitempty"`
	Mass       float64        `yaml:"mass,omitempty"`
	Volume     float64        `yaml:"volume,omitempty"`
}

// Params returns the material parameters in the form material.New takes.
func (m MaterialConfig) Params() map[string]float64 {
	return map[string]float64{"E": m.E, "nu": m.Nu, "density": m.Density}
}

func DefaultConfig() *Config {
	return &Config{
		Name:   "bar",
		Scheme: DefaultScheme,
		Dt:     DefaultDt,
		Steps:  DefaultSteps,
		Record: []string{"loc", "velocity", "stress", "strain"},
		Mesh: MeshConfig{
			Type:     "line2",
			Elements: []int{1},
			Size:     []float64{1},
			Boundary: []int{0},
		},
		ParticleSets: []ParticleSetConfig{{
			Material:  MaterialConfig{Type: "linear_elastic", E: DefaultE, Density: DefaultDensity},
			Locations: [][]float64{{0.5}},
			Velocity:  []float64{0.1},
			Mass:      1,
		}},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var keys map[string]yaml.Node
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	// a mesh in the file replaces the default as a whole
	if _, ok := keys["mesh"]; ok {
		cfg.Mesh = MeshConfig{}
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Gravity = slices.Clone(c.Gravity)
	out.Record = slices.Clone(c.Record)
	out.Metrics = slices.Clone(c.Metrics)
	out.Mesh.Elements = slices.Clone(c.Mesh.Elements)
	out.Mesh.Size = slices.Clone(c.Mesh.Size)
	out.Mesh.Boundary = slices.Clone(c.Mesh.Boundary)
	out.ParticleSets = make([]ParticleSetConfig, len(c.ParticleSets))
	for i, ps := range c.ParticleSets {
		if rows := c.ParticleSets[i].Locations; rows != nil {
			ps.Locations = make([][]float64, len(rows))
			for k, row := range rows {
				ps.Locations[k] = slices.Clone(row)
			}
		}
		ps.Region = slices.Clone(ps.Region)
		ps.Velocity = slices.Clone(ps.Velocity)
		out.ParticleSets[i] = ps
	}
	return &out
}

// Dim is the spatial dimension implied by the mesh type.
func (c *Config) Dim() int {
	if c.Mesh.Type == "quad4" {
		return 2
	}
	return 1
}

func invalidf(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, a...))
}

// Validate checks shapes and ranges that do not need the kernel.
func (c *Config) Validate() error {
	if !(c.Dt > 0) {
		return invalidf("dt must be positive, got %g", c.Dt)
	}
	if c.Steps <= 0 {
		return invalidf("steps must be positive, got %d", c.Steps)
	}
	if c.Damping < 0 {
		return invalidf("damping must be non-negative, got %g", c.Damping)
	}

	switch c.Mesh.Type {
	case "line2", "quad4":
	default:
		return invalidf("unknown mesh type %q (available: line2, quad4)", c.Mesh.Type)
	}
	dim := c.Dim()
	if len(c.Mesh.Elements) != dim || len(c.Mesh.Size) != dim {
		return invalidf("mesh %s needs %d element counts and sizes, got %d and %d",
			c.Mesh.Type, dim, len(c.Mesh.Elements), len(c.Mesh.Size))
	}
	for a := 0; a < dim; a++ {
		if c.Mesh.Elements[a] < 1 || !(c.Mesh.Size[a] > 0) {
			return invalidf("mesh axis %d: need positive element count and size", a)
		}
	}
	if len(c.Gravity) != 0 && len(c.Gravity) != dim {
		return invalidf("gravity has %d components, mesh has dim %d", len(c.Gravity), dim)
	}

	if len(c.ParticleSets) == 0 {
		return invalidf("at least one particle set is required")
	}
	for i, ps := range c.ParticleSets {
		if err := ps.validate(dim); err != nil {
			return fmt.Errorf("particle set %d: %w", i, err)
		}
	}
	return nil
}

func (ps *ParticleSetConfig) validate(dim int) error {
	if ps.Material.Type == "" {
		return invalidf("material type is required")
	}
	switch {
	case len(ps.Locations) > 0:
		for i, row := range ps.Locations {
			if len(row) != dim {
				return invalidf("location %d has %d components, expected %d", i, len(row), dim)
			}
		}
		if !(ps.Mass > 0) {
			return invalidf("explicit locations need a positive mass")
		}
	case ps.PerElement > 0:
		if len(ps.Region) != 2*dim {
			return invalidf("region needs %d values, got %d", 2*dim, len(ps.Region))
		}
	default:
		return invalidf("either locations or per_element is required")
	}
	if len(ps.Velocity) != 0 && len(ps.Velocity) != dim {
		return invalidf("velocity has %d components, expected %d", len(ps.Velocity), dim)
	}
	if ps.Mass < 0 || ps.Volume < 0 {
		return invalidf("mass and volume must be non-negative")
	}
	return nil
}
