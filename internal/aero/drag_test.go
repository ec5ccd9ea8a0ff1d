package aero_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/aerolattice/internal/aero"
	"github.com/san-kum/aerolattice/internal/influence"
	"github.com/san-kum/aerolattice/internal/mesh"
	"github.com/san-kum/aerolattice/internal/solver"
	"github.com/san-kum/aerolattice/internal/vortex"
)

// dragFrom integrates ρΓ(w×l)·V̂ with w evaluated by wash at each load point.
func dragFrom(lat *vortex.Lattice, fc vortex.FlowCondition, gamma []float64, wash func(p vortex.Panel) vortex.Vec3) float64 {
	d := fc.DragAxis()
	sum := 0.0
	for i, p := range lat.Panels() {
		sum += fc.Density * gamma[i] * wash(p).Cross(p.Bound()).Dot(d)
	}
	return sum / (fc.DynamicPressure() * fc.Reference.Area)
}

func TestProcess_InducedDragUsesTrailingLegsOnly(t *testing.T) {
	surf, err := mesh.Discretize(mesh.SurfaceSpec{
		Name:       "wing",
		Planform:   mesh.Trapezoid{RootChord: 1, TipChord: 1, Span: 5},
		SpanCount:  4,
		ChordCount: 4,
		Spacing:    mesh.Cosine,
		Symmetric:  true,
	})
	require.NoError(t, err)
	lat := vortex.NewLattice(surf)
	fc := vortex.FlowCondition{
		Airspeed:  50,
		Alpha:     8 * math.Pi / 180,
		Density:   1.225,
		Reference: vortex.Reference{Area: 10, Span: 10, Chord: 1},
	}

	solved, err := solver.Solve(lat, fc)
	require.NoError(t, err)
	gamma := solved.Circulation()

	res, err := aero.Process(lat, fc, gamma, aero.Options{})
	require.NoError(t, err)
	require.Greater(t, res.CDi, 0.0)

	panels := lat.Panels()
	trailing := dragFrom(lat, fc, gamma, func(p vortex.Panel) vortex.Vec3 {
		var w vortex.Vec3
		for j, q := range panels {
			h := influence.NewHorseshoe(q, vortex.UnitX)
			w = w.Add(h.TrailingVelocity(p.Load, h.Cutoff(influence.DefaultTolerance)).Scale(gamma[j]))
		}
		return w
	})
	assert.InDelta(t, trailing, res.CDi, 1e-12)

	// Forward bound vortices wash the aft load points; counting them
	// shifts the drag.
	total := dragFrom(lat, fc, gamma, func(p vortex.Panel) vortex.Vec3 {
		return influence.InducedVelocity(lat, gamma, p.Load, influence.Options{})
	})
	assert.Greater(t, math.Abs(total-res.CDi), 5e-7)
}
