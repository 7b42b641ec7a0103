// Package compute provides the execution backends used by the MPM transfer
// kernels.
//
// Two kinds of batch work are supported:
//
//   - ParallelFor: gather-style loops where item i only writes its own slots
//     (grid-to-particle updates, natural coordinates, velocity gradients).
//   - ScatterAdd: particle-to-grid loops where many items add into the same
//     node. Every worker accumulates into a private buffer and the buffers
//     are summed into the destination after all workers finish.
//
// # Example
//
//	b := compute.NewCPUBackend(0)
//	b.ScatterAdd(nodalMass, 1, len(particles), func(p int, acc *compute.Accumulator) {
//	    acc.Add(nodeOf(p), 0, mass[p])
//	})
//
// A backend is stateless between calls apart from scratch buffers and must
// not be shared by goroutines that call it concurrently.
package compute
