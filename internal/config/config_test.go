package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scheme != "usl" {
		t.Errorf("expected scheme usl, got %s", cfg.Scheme)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Steps <= 0 {
		t.Error("steps should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("bar1d", "single")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.ParticleSets[0].Material.E != 100 {
		t.Errorf("expected E 100, got %f", cfg.ParticleSets[0].Material.E)
	}

	// presets hand out copies
	cfg.ParticleSets[0].Material.E = 1
	cfg.Mesh.Boundary[0] = 7
	again := GetPreset("bar1d", "single")
	if again.ParticleSets[0].Material.E != 100 || again.Mesh.Boundary[0] != 0 {
		t.Error("modifying a preset copy changed the preset")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	cfg := GetPreset("bar1d", "nonexistent")
	if cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}

	cfg = GetPreset("nonexistent", "single")
	if cfg != nil {
		t.Error("expected nil for nonexistent group")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("bar1d")
	if !reflect.DeepEqual(presets, []string{"single", "vibration"}) {
		t.Errorf("unexpected bar1d presets %v", presets)
	}

	presets = ListPresets("nonexistent")
	if presets != nil {
		t.Error("expected nil for nonexistent group")
	}

	if !reflect.DeepEqual(Groups(), []string{"bar1d", "block2d"}) {
		t.Errorf("unexpected groups %v", Groups())
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, group := range Groups() {
		for _, name := range ListPresets(group) {
			if err := GetPreset(group, name).Validate(); err != nil {
				t.Errorf("%s/%s: %v", group, name, err)
			}
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drop.yaml")
	want := GetPreset("block2d", "drop")

	if err := Save(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("name: partial\nsteps: 10\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Steps != 10 || cfg.Name != "partial" {
		t.Errorf("explicit values not applied: %+v", cfg)
	}
	if cfg.Dt != DefaultDt || cfg.Mesh.Type != "line2" || len(cfg.ParticleSets) != 1 {
		t.Errorf("defaults not kept: %+v", cfg)
	}
}

func TestLoadMeshReplacesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.yaml")
	data := []byte("mesh:\n  type: quad4\n  elements: [2, 2]\n  size: [1, 1]\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mesh.Type != "quad4" || len(cfg.Mesh.Elements) != 2 {
		t.Errorf("mesh not applied: %+v", cfg.Mesh)
	}
	if len(cfg.Mesh.Boundary) != 0 {
		t.Errorf("expected no boundary nodes, got %v", cfg.Mesh.Boundary)
	}
	if cfg.Dt != DefaultDt {
		t.Errorf("expected default dt, got %v", cfg.Dt)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"zero steps", func(c *Config) { c.Steps = 0 }},
		{"negative damping", func(c *Config) { c.Damping = -1 }},
		{"mesh type", func(c *Config) { c.Mesh.Type = "hex8" }},
		{"mesh axes", func(c *Config) { c.Mesh.Elements = []int{1, 1} }},
		{"mesh size", func(c *Config) { c.Mesh.Size = []float64{0} }},
		{"gravity", func(c *Config) { c.Gravity = []float64{0, -9.81} }},
		{"no sets", func(c *Config) { c.ParticleSets = nil }},
		{"no material", func(c *Config) { c.ParticleSets[0].Material.Type = "" }},
		{"location rank", func(c *Config) { c.ParticleSets[0].Locations = [][]float64{{0.5, 0.5}} }},
		{"no mass", func(c *Config) { c.ParticleSets[0].Mass = 0 }},
		{"no placement", func(c *Config) { c.ParticleSets[0].Locations = nil }},
		{"region", func(c *Config) {
			c.ParticleSets[0].Locations = nil
			c.ParticleSets[0].PerElement = 2
			c.ParticleSets[0].Region = []float64{0}
		}},
		{"velocity", func(c *Config) { c.ParticleSets[0].Velocity = []float64{1, 1} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}
