package experiment

import (
	"fmt"

	"github.com/san-kum/mpmsim/internal/config"
	"github.com/san-kum/mpmsim/internal/material"
	"github.com/san-kum/mpmsim/internal/mpm"
)

// buildParticles places one configured particle set and assigns its mass,
// volume and velocity.
func buildParticles(ps config.ParticleSetConfig, mc config.MeshConfig, mat material.Material) (*mpm.Particles, error) {
	loc := ps.Locations
	cellVolume := 0.0
	if ps.PerElement > 0 && len(loc) == 0 {
		loc, cellVolume = fillRegion(mc, ps.PerElement, ps.Region)
		if len(loc) == 0 {
			return nil, fmt.Errorf("region %v contains no element centres", ps.Region)
		}
	}

	p, err := mpm.NewParticles(loc, mat, nil)
	if err != nil {
		return nil, err
	}

	switch {
	case ps.Mass > 0 && ps.Volume > 0:
		if err := p.SetMass(ps.Mass); err != nil {
			return nil, err
		}
		p.SetVolume(ps.Volume)
	case ps.Mass > 0:
		if err := p.SetMassVolume(ps.Mass); err != nil {
			return nil, err
		}
	default:
		vol := cellVolume
		if ps.Volume > 0 {
			vol = ps.Volume
		}
		p.SetVolume(vol)
		if err := p.SetMass(mat.Density() * vol); err != nil {
			return nil, err
		}
	}

	if len(ps.Velocity) > 0 {
		if err := p.SetVelocity(ps.Velocity); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// fillRegion puts n particles per axis, evenly spaced, in every element
// whose centre lies in region. It returns the locations and the volume
// each particle represents.
func fillRegion(mc config.MeshConfig, n int, region []float64) ([][]float64, float64) {
	dim := len(mc.Elements)
	axes := make([][]float64, dim)
	vol := 1.0
	for a := 0; a < dim; a++ {
		h := mc.Size[a]
		lo, hi := region[2*a], region[2*a+1]
		vol *= h / float64(n)
		for e := 0; e < mc.Elements[a]; e++ {
			c := (float64(e) + 0.5) * h
			if c < lo || c > hi {
				continue
			}
			for k := 0; k < n; k++ {
				axes[a] = append(axes[a], float64(e)*h+(float64(k)+0.5)*h/float64(n))
			}
		}
	}

	var loc [][]float64
	switch dim {
	case 1:
		for _, x := range axes[0] {
			loc = append(loc, []float64{x})
		}
	case 2:
		for _, y := range axes[1] {
			for _, x := range axes[0] {
				loc = append(loc, []float64{x, y})
			}
		}
	}
	return loc, vol
}
