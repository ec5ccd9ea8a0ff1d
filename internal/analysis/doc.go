// Package analysis derives stability and polar quantities from a series of
// solves at different angles of attack.
//
// The fits are ordinary least squares over the sweep:
//
//   - [Fit]: lift-curve slope, moment slope, zero-lift angle and the
//     neutral point x_np = x_ref - (Cm_alpha/CL_alpha)*c_ref
//   - the induced-drag polar CDi = k*CL^2 is fitted through the origin and
//     reported as a span efficiency e = 1/(pi*AR*k)
//
// # Static Stability
//
// A negative moment slope about the reference point means the airframe is
// statically stable in pitch:
//
//	d, err := analysis.Fit(analysis.PolarFromResults(sweep))
//	if err == nil && d.StaticMargin > 0 {
//	    // neutral point aft of the reference point
//	}
package analysis
