package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/mpmsim/internal/config"
	"github.com/san-kum/mpmsim/internal/experiment"
)

func barConfig(e float64) *config.Config {
	cfg := config.GetPreset("bar1d", "single")
	cfg.Steps = 300
	cfg.Workers = 1
	cfg.Record = []string{"velocity"}
	cfg.ParticleSets[0].Material.E = e
	return cfg
}

func TestGridSearchRecoversYoungsModulus(t *testing.T) {
	exp := experiment.New(barConfig(100))
	if err := exp.Setup(); err != nil {
		t.Fatal(err)
	}
	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	target := result.Series("velocity", 0)

	gs, err := NewGridSearch([]string{"E"}, [][]float64{{25, 50, 100, 200, 400}})
	if err != nil {
		t.Fatal(err)
	}
	best, loss, err := gs.Search(context.Background(), ExperimentObjective(barConfig(1), VelocityTraceScore(target, 0)))
	if err != nil {
		t.Fatal(err)
	}
	if best["E"] != 100 {
		t.Errorf("expected E = 100, got %v", best["E"])
	}
	if loss > 1e-12 {
		t.Errorf("expected zero loss, got %g", loss)
	}
}

func TestGridSearchVisitsEveryPoint(t *testing.T) {
	gs, err := NewGridSearch([]string{"a", "b"}, [][]float64{{1, 2, 3}, {-1, 1}})
	if err != nil {
		t.Fatal(err)
	}
	if gs.Points() != 6 {
		t.Fatalf("expected 6 points, got %d", gs.Points())
	}

	calls := 0
	best, val, err := gs.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		calls++
		return (p["a"]-2)*(p["a"]-2) + (p["b"]+1)*(p["b"]+1), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 6 {
		t.Errorf("expected 6 evaluations, got %d", calls)
	}
	if best["a"] != 2 || best["b"] != -1 || val != 0 {
		t.Errorf("unexpected optimum %v (%f)", best, val)
	}
}

func TestGridSearchFailures(t *testing.T) {
	if _, err := NewGridSearch([]string{"a"}, nil); err == nil {
		t.Error("expected a length mismatch error")
	}
	if _, err := NewGridSearch([]string{"a"}, [][]float64{{}}); err == nil {
		t.Error("expected an empty range error")
	}

	gs, _ := NewGridSearch([]string{"a"}, [][]float64{{1, 2}})
	boom := errors.New("boom")
	_, _, err := gs.Search(context.Background(), func(context.Context, map[string]float64) (float64, error) {
		return 0, boom
	})
	if !errors.Is(err, ErrNoResult) || !errors.Is(err, boom) {
		t.Errorf("expected ErrNoResult wrapping boom, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := gs.Search(ctx, func(context.Context, map[string]float64) (float64, error) { return 0, nil }); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestVelocityLoss(t *testing.T) {
	loss, err := VelocityLoss([]float64{0, 0}, []float64{3, 4})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(loss-5) > 1e-12 {
		t.Errorf("expected 5, got %f", loss)
	}
	if _, err := VelocityLoss([]float64{1}, []float64{1, 2}); err == nil {
		t.Error("expected a length error")
	}
}

func TestApplyMaterialRejectsUnknown(t *testing.T) {
	cfg := barConfig(100)
	if err := ApplyMaterial(cfg, map[string]float64{"E": 7, "nu": 0.2}); err != nil {
		t.Fatal(err)
	}
	if cfg.ParticleSets[0].Material.E != 7 || cfg.ParticleSets[0].Material.Nu != 0.2 {
		t.Errorf("parameters not applied: %+v", cfg.ParticleSets[0].Material)
	}
	if err := ApplyMaterial(cfg, map[string]float64{"yield": 1}); err == nil {
		t.Error("expected an error for an unknown parameter")
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-15 {
			t.Errorf("index %d: expected %f, got %f", i, want[i], got[i])
		}
	}
	if Linspace(0, 1, 0) != nil {
		t.Error("expected nil for n = 0")
	}
}
