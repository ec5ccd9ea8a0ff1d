package mesh

import (
	"math"

	"github.com/san-kum/aerolattice/internal/vortex"
)

// Station is one chordwise cut of a planform.
type Station struct {
	Leading vortex.Vec3
	Chord   float64
	Twist   float64 // rad, positive nose up
}

// Planform describes a lifting surface as a continuous family of stations.
// It exposes only what the discretizer needs; surface kinds implement it
// instead of sharing a base type.
type Planform interface {
	// Station returns the chord station at spanwise parameter s in [0, 1].
	Station(s float64) Station
	// Validate reports malformed dimensions.
	Validate() error
}

// Trapezoid is a straight-tapered panel with linear twist.
type Trapezoid struct {
	Origin    vortex.Vec3 // root leading edge
	RootChord float64
	TipChord  float64
	Span      float64 // root to tip, along the dihedral line
	Sweep     float64 // leading-edge sweep, rad
	Dihedral  float64 // rad
	RootTwist float64 // rad
	TipTwist  float64 // rad
}

func (t Trapezoid) Station(s float64) Station {
	sd, cd := math.Sincos(t.Dihedral)
	d := s * t.Span
	le := t.Origin.Add(vortex.Vec3{X: d * math.Tan(t.Sweep), Y: d * cd, Z: d * sd})
	return Station{
		Leading: le,
		Chord:   t.RootChord + (t.TipChord-t.RootChord)*s,
		Twist:   t.RootTwist + (t.TipTwist-t.RootTwist)*s,
	}
}

func (t Trapezoid) Validate() error {
	switch {
	case !(t.Span > 0):
		return geometryError("span", t.Span)
	case !(t.RootChord > 0):
		return geometryError("root_chord", t.RootChord)
	case !(t.TipChord > 0):
		return geometryError("tip_chord", t.TipChord)
	case math.Abs(t.Sweep) >= math.Pi/2:
		return geometryError("sweep", t.Sweep)
	}
	return nil
}

// Rib fixes the leading edge, chord and incidence at one spanwise location.
type Rib struct {
	Leading   vortex.Vec3
	Chord     float64
	Incidence float64 // rad
}

// Ribs interpolates linearly between consecutive ribs. The spanwise
// parameter is the cumulative leading-edge distance in the y-z plane.
type Ribs struct {
	ribs []Rib
	cum  []float64
}

// NewRibs precomputes the spanwise parameterization.
func NewRibs(ribs ...Rib) *Ribs {
	r := &Ribs{ribs: ribs, cum: make([]float64, len(ribs))}
	for i := 1; i < len(ribs); i++ {
		d := ribs[i].Leading.Sub(ribs[i-1].Leading)
		r.cum[i] = r.cum[i-1] + math.Hypot(d.Y, d.Z)
	}
	if n := len(r.cum); n > 1 && r.cum[n-1] > 0 {
		total := r.cum[n-1]
		for i := range r.cum {
			r.cum[i] /= total
		}
	}
	return r
}

// Len returns the number of ribs.
func (r *Ribs) Len() int { return len(r.ribs) }

func (r *Ribs) Station(s float64) Station {
	n := len(r.ribs)
	k := 0
	for k < n-2 && s > r.cum[k+1] {
		k++
	}
	a, b := r.ribs[k], r.ribs[k+1]
	t := 0.0
	if w := r.cum[k+1] - r.cum[k]; w > 0 {
		t = (s - r.cum[k]) / w
	}
	return Station{
		Leading: a.Leading.Lerp(b.Leading, t),
		Chord:   a.Chord + (b.Chord-a.Chord)*t,
		Twist:   a.Incidence + (b.Incidence-a.Incidence)*t,
	}
}

func (r *Ribs) Validate() error {
	if len(r.ribs) < 2 {
		return geometryError("rib_count", float64(len(r.ribs)))
	}
	for i, rib := range r.ribs {
		if !(rib.Chord > 0) {
			return geometryError("rib_chord", rib.Chord)
		}
		if i > 0 && !(r.cum[i] > r.cum[i-1]) {
			return geometryError("rib_spacing", float64(i))
		}
	}
	return nil
}

// Elliptical is a half wing with elliptical chord distribution and a
// straight quarter-chord line. Span runs from root to tip.
type Elliptical struct {
	Origin    vortex.Vec3 // root leading edge
	RootChord float64
	Span      float64
	Dihedral  float64
	Twist     float64
}

func (e Elliptical) Station(s float64) Station {
	sd, cd := math.Sincos(e.Dihedral)
	d := s * e.Span
	c := e.RootChord * math.Sqrt(math.Max(0, 1-s*s))
	le := e.Origin.Add(vortex.Vec3{X: (e.RootChord - c) / 4, Y: d * cd, Z: d * sd})
	return Station{Leading: le, Chord: c, Twist: e.Twist}
}

func (e Elliptical) Validate() error {
	switch {
	case !(e.Span > 0):
		return geometryError("span", e.Span)
	case !(e.RootChord > 0):
		return geometryError("root_chord", e.RootChord)
	}
	return nil
}

func geometryError(field string, value float64) error {
	return &vortex.GeometryError{Field: field, Value: value, Wrapped: vortex.ErrInvalidGeometry}
}
