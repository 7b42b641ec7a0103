// Package tui shows a running simulation in the terminal: a progress bar,
// a kinetic energy sparkline and a Braille view of the mesh and particles.
// The solver reports through an [Observer] that forwards throttled
// snapshots to a Bubble Tea program.
package tui
