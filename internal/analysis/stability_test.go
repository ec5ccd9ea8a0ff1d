package analysis

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/aerolattice/internal/config"
	"github.com/san-kum/aerolattice/internal/experiment"
)

func TestFit_Synthetic(t *testing.T) {
	p := Polar{AspectRatio: 8, XRef: 0.1, CRef: 2}
	for _, a := range []float64{-0.05, 0, 0.05, 0.1} {
		cl := 5*a + 0.2
		p.Alpha = append(p.Alpha, a)
		p.CL = append(p.CL, cl)
		p.Cm = append(p.Cm, -0.5*a+0.01)
		p.CDi = append(p.CDi, cl*cl/(math.Pi*8*0.9))
	}

	d, err := Fit(p)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"CLAlpha", d.CLAlpha, 5},
		{"CL0", d.CL0, 0.2},
		{"CmAlpha", d.CmAlpha, -0.5},
		{"AlphaZeroLift", d.AlphaZeroLift, -0.04},
		{"StaticMargin", d.StaticMargin, 0.1},
		{"NeutralPoint", d.NeutralPoint, 0.3},
		{"SpanEfficiency", d.SpanEfficiency, 0.9},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
	if d.Points != 4 {
		t.Errorf("expected 4 points, got %d", d.Points)
	}
}

func TestFit_Errors(t *testing.T) {
	tests := []struct {
		name  string
		polar Polar
	}{
		{"empty", Polar{}},
		{"single", Polar{Alpha: []float64{0.1}, CL: []float64{0.5}, CDi: []float64{0}, Cm: []float64{0}}},
		{"repeated", Polar{Alpha: []float64{0.1, 0.1}, CL: []float64{0.5, 0.5}, CDi: []float64{0, 0}, Cm: []float64{0, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Fit(tt.polar); !errors.Is(err, ErrInsufficientData) {
				t.Errorf("expected ErrInsufficientData, got %v", err)
			}
		})
	}

	bad := Polar{Alpha: []float64{0, 0.1}, CL: []float64{0}, CDi: []float64{0, 0}, Cm: []float64{0, 0}}
	if _, err := Fit(bad); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestFit_ZeroLiftSweep(t *testing.T) {
	p := Polar{
		Alpha:       []float64{-0.1, 0.1},
		CL:          []float64{0, 0},
		CDi:         []float64{0, 0},
		Cm:          []float64{0, 0},
		AspectRatio: 10,
	}
	d, err := Fit(p)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	if d.SpanEfficiency != 0 || d.StaticMargin != 0 {
		t.Errorf("expected zero derived quantities, got %+v", d)
	}
}

func TestFit_RectangularWing(t *testing.T) {
	exp := experiment.New(config.GetPreset("rectangular"), nil)
	if err := exp.Setup(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	alphas, err := experiment.AlphaRange(-4, 6, 2)
	if err != nil {
		t.Fatalf("alpha range: %v", err)
	}
	sweep, err := exp.Sweep(context.Background(), alphas)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	d, err := Fit(PolarFromResults(sweep))
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	// Moments are taken about the leading edge of a straight wing, so the
	// neutral point sits at the quarter chord.
	if math.Abs(d.NeutralPoint-0.25) > 0.01 {
		t.Errorf("neutral point = %v, want about 0.25", d.NeutralPoint)
	}
	if d.CmAlpha >= 0 {
		t.Errorf("expected negative moment slope, got %v", d.CmAlpha)
	}
	if math.Abs(d.AlphaZeroLift) > 1e-3 {
		t.Errorf("zero-lift angle = %v, want about 0", d.AlphaZeroLift)
	}
	if d.CLAlpha < 4 || d.CLAlpha > 2*math.Pi {
		t.Errorf("lift slope %v outside (4, 2pi)", d.CLAlpha)
	}

	mid := sweep[len(sweep)-1]
	if math.Abs(d.SpanEfficiency-mid.SpanEfficiency) > 0.02 {
		t.Errorf("fitted e = %v, point e = %v", d.SpanEfficiency, mid.SpanEfficiency)
	}
}
