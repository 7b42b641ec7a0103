package config

import "sort"

var Presets = map[string]map[string]*Config{
	"bar1d": {
		"single": {
			Name: "bar1d-single", Scheme: "usl", Dt: 0.001, Steps: 2000,
			Record: []string{"loc", "velocity", "stress", "strain"},
			Mesh:   MeshConfig{Type: "line2", Elements: []int{1}, Size: []float64{1}, Boundary: []int{0}},
			ParticleSets: []ParticleSetConfig{{
				Material:  MaterialConfig{Type: "linear_elastic", E: 100, Density: 1},
				Locations: [][]float64{{0.5}},
				Velocity:  []float64{0.1},
				Mass:      1,
			}},
		},
		"vibration": {
			Name: "bar1d-vibration", Scheme: "usf", Dt: 0.0005, Steps: 4000,
			Record: []string{"loc", "velocity", "stress"},
			Mesh:   MeshConfig{Type: "line2", Elements: []int{20}, Size: []float64{0.05}, Boundary: []int{0}},
			ParticleSets: []ParticleSetConfig{{
				Material:   MaterialConfig{Type: "linear_elastic", E: 100, Density: 1},
				PerElement: 2,
				Region:     []float64{0, 1},
				Velocity:   []float64{0.1},
			}},
		},
	},
	"block2d": {
		"drop": {
			Name: "block2d-drop", Scheme: "usl", Dt: 0.0001, Steps: 3000,
			Gravity: []float64{0, -9.81}, Damping: 0.05, RecordEvery: 10,
			Record:  []string{"loc", "velocity", "stress"},
			Metrics: []string{"kinetic_energy", "mass_error", "stability"},
			Mesh: MeshConfig{
				Type: "quad4", Elements: []int{8, 8}, Size: []float64{0.125, 0.125},
				Boundary: []int{0, 1, 2, 3, 4, 5, 6, 7, 8},
			},
			ParticleSets: []ParticleSetConfig{{
				Material:   MaterialConfig{Type: "linear_elastic", E: 1e4, Nu: 0.3, Density: 1},
				PerElement: 2,
				Region:     []float64{0.25, 0.75, 0.25, 0.75},
			}},
		},
	},
}

// GetPreset returns a copy of a preset, or nil when it does not exist.
func GetPreset(group, preset string) *Config {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	cfg, ok := groupPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(group string) []string {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(groupPresets))
	for name := range groupPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Groups lists preset groups.
func Groups() []string {
	groups := make([]string, 0, len(Presets))
	for g := range Presets {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}
