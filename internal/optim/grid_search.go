package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrNoResult is returned when no grid point could be evaluated.
var ErrNoResult = errors.New("optim: no grid point evaluated")

// Objective scores one parameter assignment; lower is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("optim: no parameters")
	}
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("optim: empty range for %q", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Points is the number of grid points Search evaluates.
func (g *GridSearch) Points() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search evaluates every grid point and returns the one with the lowest
// score. Points whose objective fails are skipped; if all fail the last
// failure is wrapped in ErrNoResult.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (map[string]float64, float64, error) {
	s := &search{objective: objective, best: math.Inf(1)}
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), s); err != nil {
		return nil, 0, err
	}
	if s.bestParams == nil {
		if s.lastErr != nil {
			return nil, 0, fmt.Errorf("%w: %w", ErrNoResult, s.lastErr)
		}
		return nil, 0, ErrNoResult
	}
	return s.bestParams, s.best, nil
}

type search struct {
	objective  Objective
	best       float64
	bestParams map[string]float64
	lastErr    error
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, s *search) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		val, err := s.objective(ctx, current)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.lastErr = err
			return nil
		}
		if val < s.best || s.bestParams == nil {
			s.best = val
			s.bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				s.bestParams[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, s); err != nil {
			return err
		}
	}
	return nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
