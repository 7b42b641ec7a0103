// Package mpm implements the explicit Material Point Method transfer
// kernel: element topologies and their shape functions, the particle
// collection, and the particle-to-grid / grid-to-particle operators.
//
// The main types are:
//
//   - [Topology]: per-element-type contract (node ordering, shape functions,
//     natural coordinates, localization). Implemented by [Line2] and [Quad4].
//   - [Elements]: a topology bound to its node collection, boundary node set
//     and compute backend. Owns the nodes.
//   - [Particles]: per-particle state and its constitutive model.
//   - [Mesh]: elements plus every particle set simulated on them.
//
// # Accumulation
//
// Every particle-to-grid operator adds into the nodes through
// [compute.Backend.ScatterAdd]. Several particles may hit the same node in a
// batch; their contributions are summed, never overwritten.
//
// # Example
//
//	el, _ := mpm.NewLinear1D(1, 1.0, []int{0})
//	p, _ := mpm.NewParticles([][]float64{{0.5}}, material.NewNull(1), nil)
//	_ = p.SetMass(1)
//	p.SetParticleElementIDs(el)
//	_ = el.UpdateParticleNaturalCoords(p)
//	el.Nodes.ResetValues()
//	el.ComputeNodalMass(p)
//
// # Thread Safety
//
// Operations parallelise internally but are barriers: each returns only
// after every node or particle it touches is updated. Elements, Particles
// and Mesh values are NOT safe for concurrent use.
package mpm
