// Package viz renders simulation state and recorded traces in the terminal.
//
//   - [Canvas]: Braille-based pixel canvas for high-fidelity rendering
//   - [RenderMesh]: background grid and particle positions on a Canvas
//   - [Plot]: line charts of recorded series via asciigraph
//   - lipgloss styles and themes shared with the live progress view
package viz
