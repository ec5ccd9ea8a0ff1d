// Package influence evaluates induced velocities of straight vortex
// filaments and assembles the normalwash influence system of a lattice.
package influence

import (
	"math"

	"github.com/san-kum/aerolattice/internal/vortex"
)

const fourPi = 4 * math.Pi

// Segment returns the velocity induced at p by a unit-strength straight
// vortex filament running from a to b. Points closer than eps to the
// filament line, or to either end point, receive no contribution.
func Segment(p, a, b vortex.Vec3, eps float64) vortex.Vec3 {
	r0 := b.Sub(a)
	r1 := p.Sub(a)
	r2 := p.Sub(b)

	n1, n2 := r1.Norm(), r2.Norm()
	if n1 < eps || n2 < eps {
		return vortex.Vec3{}
	}
	c := r1.Cross(r2)
	c2 := c.Norm2()
	if c2 <= eps*eps*r0.Norm2() || c2 == 0 {
		return vortex.Vec3{}
	}
	k := r0.Dot(r1.Scale(1/n1).Sub(r2.Scale(1/n2))) / (fourPi * c2)
	return c.Scale(k)
}

// SemiInfinite returns the velocity induced at p by a unit-strength
// filament starting at a and extending to infinity along the unit vector u.
func SemiInfinite(p, a, u vortex.Vec3, eps float64) vortex.Vec3 {
	r := p.Sub(a)
	n := r.Norm()
	if n < eps {
		return vortex.Vec3{}
	}
	c := u.Cross(r)
	c2 := c.Norm2()
	if c2 <= eps*eps || c2 == 0 {
		return vortex.Vec3{}
	}
	return c.Scale((1 + u.Dot(r)/n) / (fourPi * c2))
}

// Horseshoe is a bound segment A→B with trailing legs leaving A and B.
// Each leg follows the chord to the trailing edge (TA, TB) and then runs
// to infinity along Wake. Circulation enters along the leg at A and leaves
// along the leg at B.
type Horseshoe struct {
	A, B   vortex.Vec3
	TA, TB vortex.Vec3 // trailing-edge ends of the chordwise legs
	Wake   vortex.Vec3 // unit trailing direction
}

// NewHorseshoe builds the horseshoe of a panel. A zero wake selects +x.
// Panels without trailing-edge points shed their legs from the bound
// endpoints.
func NewHorseshoe(p vortex.Panel, wake vortex.Vec3) Horseshoe {
	if wake == (vortex.Vec3{}) {
		wake = vortex.UnitX
	}
	h := Horseshoe{A: p.BoundA, B: p.BoundB, TA: p.TrailA, TB: p.TrailB, Wake: wake.Normalize()}
	if p.TrailA == (vortex.Vec3{}) && p.TrailB == (vortex.Vec3{}) {
		h.TA, h.TB = h.A, h.B
	}
	return h
}

// Velocity is the unit-strength velocity of all filaments at p.
func (h Horseshoe) Velocity(p vortex.Vec3, eps float64) vortex.Vec3 {
	return h.TrailingVelocity(p, eps).Add(Segment(p, h.A, h.B, eps))
}

// TrailingVelocity is the unit-strength velocity of the two trailing legs
// only, chordwise parts included.
func (h Horseshoe) TrailingVelocity(p vortex.Vec3, eps float64) vortex.Vec3 {
	in := Segment(p, h.A, h.TA, eps).Add(SemiInfinite(p, h.TA, h.Wake, eps))
	out := Segment(p, h.B, h.TB, eps).Add(SemiInfinite(p, h.TB, h.Wake, eps))
	return out.Sub(in)
}

// Cutoff is the singular core radius used for the horseshoe: tol relative
// to its bound length.
func (h Horseshoe) Cutoff(tol float64) float64 {
	return tol * h.B.Sub(h.A).Norm()
}
