// Package viz provides terminal views of vortex lattice solutions.
//
// The interactive explorer is built on Bubble Tea:
//
//   - [App]: case menu over the built-in presets
//   - [Model]: alpha/beta explorer that re-solves against the cached
//     factorization on every key press
//   - [Canvas]: Braille-based pixel canvas for the lattice wireframe
//   - [Summary]: static coefficient table and lift chart for CLI output
//
// # Key Bindings
//
//	Up/Down    - angle of attack
//	Left/Right - sideslip
//	[ ]        - halve/double the angle step
//	Tab        - cycle the distribution field
//	V          - toggle top and iso view
//	T          - cycle color themes
//	Esc        - back to the case menu
package viz
