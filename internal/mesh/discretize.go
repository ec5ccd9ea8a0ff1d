package mesh

import (
	"math"

	"github.com/san-kum/aerolattice/internal/vortex"
)

const (
	boundFraction   = 0.25
	controlFraction = 0.75
	// symmetryTolerance is how far a mirrored planform may cross y = 0.
	symmetryTolerance = 1e-9
	minPanelArea      = 1e-14
)

// SurfaceSpec is a validated request to discretize one lifting surface.
type SurfaceSpec struct {
	Name       string
	Planform   Planform
	SpanCount  int // strips on the defined planform; doubled when Symmetric
	ChordCount int
	Spacing    Spacing
	Symmetric  bool // mirror about y = 0
}

// Validate checks counts and the planform dimensions.
func (s SurfaceSpec) Validate() error {
	if s.Planform == nil {
		return s.wrap(geometryError("planform", 0))
	}
	if s.SpanCount <= 0 {
		return s.wrap(geometryError("span_count", float64(s.SpanCount)))
	}
	if s.ChordCount <= 0 {
		return s.wrap(geometryError("chord_count", float64(s.ChordCount)))
	}
	if err := s.Planform.Validate(); err != nil {
		return s.wrap(err)
	}
	return nil
}

func (s SurfaceSpec) wrap(err error) error {
	if ge, ok := err.(*vortex.GeometryError); ok && ge.Surface == "" {
		ge.Surface = s.Name
	}
	return err
}

type edge struct {
	leading vortex.Vec3
	chord   vortex.Vec3 // leading to trailing edge
}

type strip struct {
	left, right edge
	at          float64 // collocation fraction from left to right
}

// Discretize converts a surface spec into SpanCount×ChordCount panels
// (twice that when Symmetric). Bound vortices sit on the local quarter-chord
// line and control points on the three-quarter-chord line of each panel.
// Mirrored panels precede the defined half so strips run from -y to +y.
// A planform defined toward -y is walked backwards, so normals do not
// depend on the order its stations are listed in.
func Discretize(spec SurfaceSpec) (*vortex.Surface, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	edges, mids := spec.Spacing.stations(spec.SpanCount, spec.Symmetric)
	flip := descending(spec.Planform)
	stations := make([]Station, len(edges))
	for i, s := range edges {
		if flip {
			s = 1 - s
		}
		stations[i] = spec.Planform.Station(s)
		if spec.Symmetric && stations[i].Leading.Y < -symmetryTolerance {
			return nil, spec.wrap(geometryError("mirrored_y", stations[i].Leading.Y))
		}
	}

	chordEdges := make([]edge, len(stations))
	for i := range stations {
		axis := spanAxis(stations, i)
		chordEdges[i] = edge{leading: stations[i].Leading, chord: chordVector(stations[i], axis)}
	}

	strips := make([]strip, 0, 2*spec.SpanCount)
	if spec.Symmetric {
		for i := spec.SpanCount - 1; i >= 0; i-- {
			l, r := chordEdges[i], chordEdges[i+1]
			strips = append(strips, strip{
				left:  mirror(r),
				right: mirror(l),
				at:    1 - (mids[i]-edges[i])/(edges[i+1]-edges[i]),
			})
		}
	}
	for i := 0; i < spec.SpanCount; i++ {
		strips = append(strips, strip{
			left:  chordEdges[i],
			right: chordEdges[i+1],
			at:    (mids[i] - edges[i]) / (edges[i+1] - edges[i]),
		})
	}

	surf := &vortex.Surface{
		Name:       spec.Name,
		Panels:     make([]vortex.Panel, 0, len(strips)*spec.ChordCount),
		Strips:     make([]vortex.Strip, 0, len(strips)),
		SpanCount:  len(strips),
		ChordCount: spec.ChordCount,
		RootChord:  stations[0].Chord,
		TipChord:   stations[len(stations)-1].Chord,
		Symmetric:  spec.Symmetric,
	}

	for si, st := range strips {
		first := len(surf.Panels)
		for row := 0; row < spec.ChordCount; row++ {
			p, err := buildPanel(st, row, spec.ChordCount)
			if err != nil {
				return nil, spec.wrap(err)
			}
			p.Strip = si
			surf.Panels = append(surf.Panels, p)
			surf.Area += p.Area
		}

		lead := surf.Panels[first]
		b := lead.Bound()
		surf.Strips = append(surf.Strips, vortex.Strip{
			Station: lead.Load,
			Chord:   st.left.chord.Lerp(st.right.chord, st.at).Norm(),
			Width:   math.Hypot(b.Y, b.Z),
			First:   first,
			Count:   spec.ChordCount,
		})
	}

	return surf, nil
}

func buildPanel(st strip, row, rows int) (vortex.Panel, error) {
	f0 := float64(row) / float64(rows)
	f1 := float64(row+1) / float64(rows)

	ll := st.left.leading.Add(st.left.chord.Scale(f0))
	lr := st.right.leading.Add(st.right.chord.Scale(f0))
	tr := st.right.leading.Add(st.right.chord.Scale(f1))
	tl := st.left.leading.Add(st.left.chord.Scale(f1))

	boundA := ll.Lerp(tl, boundFraction)
	boundB := lr.Lerp(tr, boundFraction)
	ctrlA := ll.Lerp(tl, controlFraction)
	ctrlB := lr.Lerp(tr, controlFraction)

	n := tr.Sub(ll).Cross(lr.Sub(tl))
	area := 0.5 * n.Norm()
	if !(area > minPanelArea) {
		return vortex.Panel{}, geometryError("panel_area", area)
	}

	front := ll.Lerp(lr, st.at)
	back := tl.Lerp(tr, st.at)

	return vortex.Panel{
		Corners: [4]vortex.Vec3{ll, lr, tr, tl},
		BoundA:  boundA,
		BoundB:  boundB,
		TrailA:  st.left.leading.Add(st.left.chord),
		TrailB:  st.right.leading.Add(st.right.chord),
		Control: ctrlA.Lerp(ctrlB, st.at),
		Load:    boundA.Lerp(boundB, st.at),
		Normal:  n.Normalize(),
		Area:    area,
		Chord:   back.Sub(front).Norm(),
		Row:     row,
	}, nil
}

// descending reports whether the planform runs toward -y, or toward -z
// when it has no spanwise y extent.
func descending(pf Planform) bool {
	d := pf.Station(1).Leading.Sub(pf.Station(0).Leading)
	if math.Abs(d.Y) > symmetryTolerance {
		return d.Y < 0
	}
	return d.Z < 0
}

// spanAxis is the unit spanwise direction at station i in the y-z plane,
// from the neighbouring stations.
func spanAxis(stations []Station, i int) vortex.Vec3 {
	lo, hi := i-1, i+1
	if lo < 0 {
		lo = 0
	}
	if hi >= len(stations) {
		hi = len(stations) - 1
	}
	d := stations[hi].Leading.Sub(stations[lo].Leading)
	axis := vortex.Vec3{Y: d.Y, Z: d.Z}.Normalize()
	if axis == (vortex.Vec3{}) {
		return vortex.UnitY
	}
	return axis
}

// chordVector rotates the chord about the spanwise axis by the twist so
// that positive twist lowers the trailing edge.
func chordVector(st Station, axis vortex.Vec3) vortex.Vec3 {
	s, c := math.Sincos(st.Twist)
	return vortex.UnitX.Scale(c).Add(axis.Cross(vortex.UnitX).Scale(s)).Scale(st.Chord)
}

func mirror(e edge) edge {
	return edge{leading: e.leading.MirrorY(), chord: e.chord.MirrorY()}
}
