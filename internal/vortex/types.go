package vortex

import (
	"math"
)

// Panel is one lattice element. Corners are ordered leading-left,
// leading-right, trailing-right, trailing-left, where left/right follow the
// bound vortex orientation. The bound vortex runs from BoundA to BoundB;
// its trailing legs follow the strip edges to TrailA and TrailB on the
// surface trailing edge before leaving into the wake.
type Panel struct {
	Corners [4]Vec3
	BoundA  Vec3
	BoundB  Vec3
	TrailA  Vec3
	TrailB  Vec3
	Control Vec3 // three-quarter chord, collocation station
	Load    Vec3 // on the bound segment, collocation station
	Normal  Vec3
	Area    float64
	Chord   float64 // local panel chord at the collocation station

	Surface int // index of the parent surface in the lattice
	Strip   int // spanwise strip within the surface
	Row     int // chordwise row within the strip
}

// Bound returns the bound vortex segment vector.
func (p Panel) Bound() Vec3 { return p.BoundB.Sub(p.BoundA) }

// Strip is one spanwise column of panels.
type Strip struct {
	Station Vec3    // leading-row load point
	Chord   float64 // full local chord at the collocation station
	Width   float64 // bound length projected on the y-z plane
	First   int     // index of the first panel within Surface.Panels
	Count   int
}

// Surface is an ordered panel set for one lifting surface. Panels are
// ordered strip by strip, leading row first.
type Surface struct {
	Name       string
	Panels     []Panel
	Strips     []Strip
	SpanCount  int
	ChordCount int
	RootChord  float64
	TipChord   float64
	Area       float64
	Symmetric  bool
}

// MeanAerodynamicChord returns the area-weighted mean chord of the surface.
func (s *Surface) MeanAerodynamicChord() float64 {
	var num, den float64
	for _, st := range s.Strips {
		num += st.Chord * st.Chord * st.Width
		den += st.Chord * st.Width
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// Lattice is the flattened, index-stable panel set of an airframe.
// Row and column i of the influence system always refer to Panels()[i].
type Lattice struct {
	surfaces []*Surface
	panels   []Panel
	offsets  []int
}

// NewLattice flattens surfaces in the given order.
func NewLattice(surfaces ...*Surface) *Lattice {
	l := &Lattice{
		surfaces: make([]*Surface, 0, len(surfaces)),
		offsets:  make([]int, 0, len(surfaces)),
	}
	for _, s := range surfaces {
		if s == nil {
			continue
		}
		si := len(l.surfaces)
		l.surfaces = append(l.surfaces, s)
		l.offsets = append(l.offsets, len(l.panels))
		for _, p := range s.Panels {
			p.Surface = si
			l.panels = append(l.panels, p)
		}
	}
	return l
}

// Len returns the number of panels.
func (l *Lattice) Len() int { return len(l.panels) }

// Panels returns the flattened panels. The slice must not be modified.
func (l *Lattice) Panels() []Panel { return l.panels }

// Surfaces returns the surfaces in lattice order.
func (l *Lattice) Surfaces() []*Surface { return l.surfaces }

// Offset returns the flattened index of the first panel of surface i.
func (l *Lattice) Offset(i int) int { return l.offsets[i] }

// Span returns the spanwise (y) extent of all panel corners.
func (l *Lattice) Span() float64 {
	if len(l.panels) == 0 {
		return 0
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range l.panels {
		for _, c := range p.Corners {
			lo = math.Min(lo, c.Y)
			hi = math.Max(hi, c.Y)
		}
	}
	return hi - lo
}

// PlanformArea returns the panel area projected on the x-y plane.
func (l *Lattice) PlanformArea() float64 {
	a := 0.0
	for _, p := range l.panels {
		a += p.Area * math.Abs(p.Normal.Z)
	}
	return a
}

// Reference holds the normalization quantities for coefficients.
type Reference struct {
	Area  float64
	Span  float64
	Chord float64
	Point Vec3 // moment reference point
}

// AspectRatio returns Span²/Area.
func (r Reference) AspectRatio() float64 {
	if r.Area <= 0 {
		return 0
	}
	return r.Span * r.Span / r.Area
}

// FlowCondition is a steady freestream. Angles are in radians.
type FlowCondition struct {
	Airspeed  float64
	Alpha     float64
	Beta      float64
	Density   float64
	Reference Reference
}

// Freestream returns the freestream velocity vector.
func (fc FlowCondition) Freestream() Vec3 {
	sa, ca := math.Sincos(fc.Alpha)
	sb, cb := math.Sincos(fc.Beta)
	return Vec3{cb * ca, -sb * ca, sa}.Scale(fc.Airspeed)
}

// DynamicPressure returns ½ρV².
func (fc FlowCondition) DynamicPressure() float64 {
	return 0.5 * fc.Density * fc.Airspeed * fc.Airspeed
}

// LiftAxis is perpendicular to the freestream in the plane of symmetry.
func (fc FlowCondition) LiftAxis() Vec3 {
	sa, ca := math.Sincos(fc.Alpha)
	return Vec3{-sa, 0, ca}
}

// DragAxis is the freestream direction.
func (fc FlowCondition) DragAxis() Vec3 {
	return fc.Freestream().Normalize()
}

// SideAxis completes the wind frame.
func (fc FlowCondition) SideAxis() Vec3 {
	return fc.LiftAxis().Cross(fc.DragAxis()).Normalize()
}

// WithAlpha returns a copy at a different angle of attack.
func (fc FlowCondition) WithAlpha(alpha float64) FlowCondition {
	fc.Alpha = alpha
	return fc
}

// Section is the aggregated load of one spanwise strip.
type Section struct {
	Surface      string
	Strip        int
	Y, Z         float64
	Chord        float64
	Width        float64
	Circulation  float64 // strip total, m²/s
	Lift         float64 // N per unit span
	Cl           float64 // sectional lift coefficient
	InducedAngle float64 // rad, positive for downwash
}

// Results is the outcome of one solve. It holds no reference to solver state.
type Results struct {
	Flow FlowCondition

	CL             float64
	CDi            float64
	Cm             float64
	SpanEfficiency float64
	CY             float64
	Croll          float64
	Cyaw           float64
	Force          Vec3 // body-axis force coefficients CX, CY, CZ

	Lift        float64 // N
	InducedDrag float64 // N
	AspectRatio float64
	MAC         float64

	Sections []Section

	circulation []float64
}

// NewResults returns results owning a copy of the per-panel circulation.
func NewResults(fc FlowCondition, circulation []float64) *Results {
	g := make([]float64, len(circulation))
	copy(g, circulation)
	return &Results{Flow: fc, circulation: g}
}

// Circulation returns a copy of the per-panel circulation in lattice order.
func (r *Results) Circulation() []float64 {
	g := make([]float64, len(r.circulation))
	copy(g, r.circulation)
	return g
}

// Coefficients returns the scalar outputs keyed by name.
func (r *Results) Coefficients() map[string]float64 {
	return map[string]float64{
		"CL":  r.CL,
		"CDi": r.CDi,
		"Cm":  r.Cm,
		"e":   r.SpanEfficiency,
		"CY":  r.CY,
		"Cl":  r.Croll,
		"Cn":  r.Cyaw,
		"CX":  r.Force.X,
		"CZ":  r.Force.Z,
		"L/D": r.LiftToDrag(),
	}
}

// LiftToDrag returns CL/CDi, or 0 when there is no induced drag.
func (r *Results) LiftToDrag() float64 {
	if r.CDi <= 0 {
		return 0
	}
	return r.CL / r.CDi
}
