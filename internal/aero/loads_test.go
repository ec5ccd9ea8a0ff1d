package aero

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/aerolattice/internal/mesh"
	"github.com/san-kum/aerolattice/internal/vortex"
)

func testLattice(t *testing.T) *vortex.Lattice {
	t.Helper()
	surf, err := mesh.Discretize(mesh.SurfaceSpec{
		Name:       "wing",
		Planform:   mesh.Trapezoid{RootChord: 1, TipChord: 1, Span: 5},
		SpanCount:  4,
		ChordCount: 2,
		Symmetric:  true,
	})
	require.NoError(t, err)
	return vortex.NewLattice(surf)
}

func testFlow() vortex.FlowCondition {
	return vortex.FlowCondition{
		Airspeed:  50,
		Alpha:     0.05,
		Density:   1.225,
		Reference: vortex.Reference{Area: 10, Span: 10, Chord: 1},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*vortex.FlowCondition)
		field  string
	}{
		{"zero area", func(fc *vortex.FlowCondition) { fc.Reference.Area = 0 }, "s_ref"},
		{"negative span", func(fc *vortex.FlowCondition) { fc.Reference.Span = -2 }, "b_ref"},
		{"zero chord", func(fc *vortex.FlowCondition) { fc.Reference.Chord = 0 }, "c_ref"},
		{"no airspeed", func(fc *vortex.FlowCondition) { fc.Airspeed = 0 }, "airspeed"},
		{"NaN density", func(fc *vortex.FlowCondition) { fc.Density = math.NaN() }, "density"},
		{"bad moment point", func(fc *vortex.FlowCondition) { fc.Reference.Point.X = math.Inf(1) }, "moment_ref"},
	}

	require.NoError(t, Validate(testFlow()))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := testFlow()
			tt.mutate(&fc)
			err := Validate(fc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, vortex.ErrIncompatibleGeometry))

			var ge *vortex.GeometryError
			require.True(t, errors.As(err, &ge))
			assert.Equal(t, tt.field, ge.Field)
		})
	}
}

func TestProcess_Errors(t *testing.T) {
	_, err := Process(vortex.NewLattice(), testFlow(), nil, Options{})
	assert.True(t, errors.Is(err, vortex.ErrEmptyLattice))

	lat := testLattice(t)
	_, err = Process(lat, testFlow(), make([]float64, 3), Options{})
	assert.Error(t, err)

	fc := testFlow()
	fc.Reference.Area = 0
	_, err = Process(lat, fc, make([]float64, lat.Len()), Options{})
	assert.True(t, errors.Is(err, vortex.ErrIncompatibleGeometry))
}

func TestProcess_UniformCirculation(t *testing.T) {
	lat := testLattice(t)
	fc := testFlow()
	gamma := make([]float64, lat.Len())
	for i := range gamma {
		gamma[i] = 1
	}

	res, err := Process(lat, fc, gamma, Options{})
	require.NoError(t, err)

	// Two chordwise rows each carry unit circulation over the full span.
	qS := fc.DynamicPressure() * fc.Reference.Area
	wantCL := 2 * fc.Density * fc.Airspeed * 10 / qS
	assert.InDelta(t, wantCL, res.CL, 1e-12)
	assert.InDelta(t, wantCL*qS, res.Lift, 1e-9)
	assert.Greater(t, res.CDi, 0.0)
	assert.InDelta(t, res.CL*res.CL/(math.Pi*10*res.CDi), res.SpanEfficiency, 1e-12)
	assert.InDelta(t, 1.0, res.MAC, 1e-12)
	assert.InDelta(t, 10.0, res.AspectRatio, 1e-12)

	require.Len(t, res.Sections, 8)
	var spanLift float64
	for _, s := range res.Sections {
		assert.Equal(t, "wing", s.Surface)
		assert.InDelta(t, 2.0, s.Circulation, 1e-12)
		assert.InDelta(t, 2*fc.Density*fc.Airspeed, s.Lift, 1e-9)
		assert.InDelta(t, s.Lift/(fc.DynamicPressure()*s.Chord), s.Cl, 1e-12)
		spanLift += s.Lift * s.Width
	}
	assert.InDelta(t, res.Lift, spanLift, 1e-9)

	coeffs := res.Coefficients()
	assert.Equal(t, res.CL, coeffs["CL"])
	assert.Equal(t, res.SpanEfficiency, coeffs["e"])
	assert.InDelta(t, res.CL/res.CDi, coeffs["L/D"], 1e-9)
}

func TestProcess_ZeroCirculation(t *testing.T) {
	lat := testLattice(t)
	res, err := Process(lat, testFlow(), make([]float64, lat.Len()), Options{})
	require.NoError(t, err)

	assert.Zero(t, res.CL)
	assert.Zero(t, res.CDi)
	assert.Zero(t, res.SpanEfficiency, "no NaN without drag")
	assert.Zero(t, res.LiftToDrag())
}

func TestSpanEfficiency(t *testing.T) {
	assert.InDelta(t, 1.0, SpanEfficiency(0.5, 0.25/(math.Pi*8), 8), 1e-12)
	assert.Zero(t, SpanEfficiency(0.5, 0, 8))
	assert.Zero(t, SpanEfficiency(0.5, -1e-6, 8))
	assert.Zero(t, SpanEfficiency(0.5, 0.01, 0))
}
