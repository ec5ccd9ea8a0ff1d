// Package vortex provides the core primitives of the vortex lattice solver.
//
// The package defines the value types shared by every stage of a solve:
//
//   - [Vec3]: immutable 3D vector used for points and directions
//   - [Panel]: one lattice element carrying a horseshoe vortex
//   - [Surface]: ordered panels of one lifting surface
//   - [Lattice]: all surfaces flattened into one stable panel ordering
//   - [FlowCondition]: freestream and reference quantities
//   - [Results]: coefficients and spanwise distributions of one solve
//
// # Axes
//
// Body axes are x aft, y to the right and z up. Angle of attack rotates the
// freestream towards +z, sideslip towards -y.
//
// # Example
//
//	surf, _ := mesh.Discretize(spec)
//	lat := vortex.NewLattice(surf)
//	res, _ := solver.Solve(lat, fc)
//	fmt.Println(res.CL, res.CDi)
//
// # Thread Safety
//
// Lattices and Results are never mutated after construction and may be
// shared between goroutines without locking.
package vortex
