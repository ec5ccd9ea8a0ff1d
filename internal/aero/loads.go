// Package aero integrates a solved circulation distribution into forces,
// moments and spanwise load distributions.
//
// Panel forces follow the vector Kutta-Joukowski relation F = ρΓ(V × l)
// evaluated at each bound segment's load point. Induced drag uses the
// near-field velocity of the trailing legs alone; the bound vortices of a
// planar lattice induce no drag and are excluded.
package aero

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/aerolattice/internal/influence"
	"github.com/san-kum/aerolattice/internal/vortex"
)

// Options controls the trailing-wash evaluation. Wake must match the
// direction used to assemble the influence matrix.
type Options struct {
	Influence influence.Options
}

// Validate reports reference and flow quantities that cannot normalize
// coefficients.
func Validate(fc vortex.FlowCondition) error {
	ref := fc.Reference
	switch {
	case !(ref.Area > 0):
		return incompatible("s_ref", ref.Area)
	case !(ref.Span > 0):
		return incompatible("b_ref", ref.Span)
	case !(ref.Chord > 0):
		return incompatible("c_ref", ref.Chord)
	case !(fc.Airspeed > 0):
		return incompatible("airspeed", fc.Airspeed)
	case !(fc.Density > 0):
		return incompatible("density", fc.Density)
	case !ref.Point.IsFinite():
		return incompatible("moment_ref", math.NaN())
	}
	return nil
}

func incompatible(field string, v float64) error {
	return &vortex.GeometryError{Field: field, Value: v, Wrapped: vortex.ErrIncompatibleGeometry}
}

// Process converts the circulation of every panel into results.
func Process(lat *vortex.Lattice, fc vortex.FlowCondition, gamma []float64, opts Options) (*vortex.Results, error) {
	if lat == nil || lat.Len() == 0 {
		return nil, vortex.ErrEmptyLattice
	}
	if err := Validate(fc); err != nil {
		return nil, err
	}
	if len(gamma) != lat.Len() {
		return nil, fmt.Errorf("aero: %d circulation values for %d panels", len(gamma), lat.Len())
	}

	ref := fc.Reference
	rho := fc.Density
	q := fc.DynamicPressure()
	qS := q * ref.Area
	v := fc.Freestream()
	liftAxis, dragAxis, sideAxis := fc.LiftAxis(), fc.DragAxis(), fc.SideAxis()

	wash := influence.TrailingWash(lat, gamma, opts.Influence)
	panels := lat.Panels()

	lift := make([]float64, len(panels))
	drag := make([]float64, len(panels))
	var total, moment, pitch vortex.Vec3
	for i, p := range panels {
		l := p.Bound()
		f := v.Cross(l).Scale(rho * gamma[i])
		fi := wash[i].Cross(l).Scale(rho * gamma[i])
		ft := f.Add(fi)

		r := p.Load.Sub(ref.Point)
		lift[i] = f.Dot(liftAxis)
		drag[i] = fi.Dot(dragAxis)
		total = total.Add(ft)
		moment = moment.Add(r.Cross(ft))
		pitch = pitch.Add(r.Cross(f))
	}

	res := vortex.NewResults(fc, gamma)
	res.CL = floats.Sum(lift) / qS
	res.CDi = floats.Sum(drag) / qS
	res.Cm = pitch.Y / (qS * ref.Chord)
	res.CY = total.Dot(sideAxis) / qS
	res.Croll = -moment.X / (qS * ref.Span)
	res.Cyaw = -moment.Z / (qS * ref.Span)
	res.Force = total.Scale(1 / qS)
	res.Lift = res.CL * qS
	res.InducedDrag = res.CDi * qS
	res.AspectRatio = ref.AspectRatio()
	res.SpanEfficiency = SpanEfficiency(res.CL, res.CDi, res.AspectRatio)
	res.Sections = sections(lat, gamma, wash, lift, q, v.Norm())
	res.MAC = meanChord(lat)
	return res, nil
}

// SpanEfficiency returns CL²/(π·AR·CDi), or 0 without induced drag.
func SpanEfficiency(cl, cdi, ar float64) float64 {
	if !(cdi > 0) || !(ar > 0) {
		return 0
	}
	return cl * cl / (math.Pi * ar * cdi)
}

func sections(lat *vortex.Lattice, gamma []float64, wash []vortex.Vec3, lift []float64, q, speed float64) []vortex.Section {
	panels := lat.Panels()
	var out []vortex.Section
	for si, surf := range lat.Surfaces() {
		off := lat.Offset(si)
		for k, st := range surf.Strips {
			sec := vortex.Section{
				Surface: surf.Name,
				Strip:   k,
				Y:       st.Station.Y,
				Z:       st.Station.Z,
				Chord:   st.Chord,
				Width:   st.Width,
			}
			var downwash float64
			for i := off + st.First; i < off+st.First+st.Count; i++ {
				sec.Circulation += gamma[i]
				sec.Lift += lift[i]
				downwash -= wash[i].Dot(panels[i].Normal)
			}
			if st.Width > 0 {
				sec.Lift /= st.Width
			}
			if st.Chord > 0 {
				sec.Cl = sec.Lift / (q * st.Chord)
			}
			if st.Count > 0 {
				sec.InducedAngle = math.Atan2(downwash/float64(st.Count), speed)
			}
			out = append(out, sec)
		}
	}
	return out
}

func meanChord(lat *vortex.Lattice) float64 {
	var num, den float64
	for _, s := range lat.Surfaces() {
		for _, st := range s.Strips {
			num += st.Chord * st.Chord * st.Width
			den += st.Chord * st.Width
		}
	}
	if den == 0 {
		return 0
	}
	return num / den
}
