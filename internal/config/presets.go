package config

import (
	"math"
	"sort"
)

var Presets = map[string]*Config{
	"rectangular": DefaultConfig(),
	"elliptical": {
		Name: "elliptical",
		Flow: FlowConfig{Airspeed: DefaultAirspeed, AlphaDeg: 4, Density: DefaultDensity},
		Reference: ReferenceConfig{
			Area: math.Pi * 10 / 4, Span: 10, Chord: 1,
		},
		Surfaces: []SurfaceConfig{{
			Name: "wing", Kind: KindElliptical, SpanCount: 12, ChordCount: 1, Spacing: "cosine", Symmetric: true,
			Elliptical: &EllipticalConfig{RootChord: 1, Span: 5},
		}},
	},
	"tapered_swept": {
		Name: "tapered_swept",
		Flow: FlowConfig{Airspeed: DefaultAirspeed, AlphaDeg: 5, Density: DefaultDensity},
		Reference: ReferenceConfig{
			Point: [3]float64{0.9, 0, 0},
		},
		Surfaces: []SurfaceConfig{{
			Name: "wing", Kind: KindTrapezoid, SpanCount: 12, ChordCount: 4, Spacing: "cosine", Symmetric: true,
			Trapezoid: &TrapezoidConfig{
				RootChord: 1.6, TipChord: 0.6, Span: 6,
				SweepDeg: 25, DihedralDeg: 4, TipTwistDeg: -2,
			},
		}},
	},
	"aerolattice_demo": {
		Name:      "aerolattice_demo",
		Flow:      FlowConfig{Airspeed: DefaultAirspeed, AlphaDeg: 4, Density: DefaultDensity},
		Reference: ReferenceConfig{Area: 10, Chord: 1},
		Surfaces: []SurfaceConfig{{
			Name: "wing", Kind: KindRibs, SpanCount: 40, ChordCount: 10,
			Ribs: []RibConfig{
				{Leading: [3]float64{0, -5, 0}, Chord: 0.7},
				{Leading: [3]float64{0, 0, 0}, Chord: 1},
				{Leading: [3]float64{0, 5, 0}, Chord: 0.7},
			},
		}},
	},
	"wing_tail_fin": {
		Name: "wing_tail_fin",
		Flow: FlowConfig{Airspeed: 40, AlphaDeg: 3, Density: DefaultDensity},
		Reference: ReferenceConfig{
			Area: 12, Span: 10, Chord: 1.2,
			Point: [3]float64{0.35, 0, 0},
		},
		Surfaces: []SurfaceConfig{
			{
				Name: "wing", Kind: KindTrapezoid, SpanCount: 10, ChordCount: 3, Spacing: "cosine", Symmetric: true,
				Trapezoid: &TrapezoidConfig{RootChord: 1.4, TipChord: 1.0, Span: 5, DihedralDeg: 3, RootTwistDeg: 1},
			},
			{
				Name: "htail", Kind: KindTrapezoid, SpanCount: 5, ChordCount: 2, Spacing: "cosine", Symmetric: true,
				Trapezoid: &TrapezoidConfig{
					Origin:    [3]float64{4.5, 0, 0.4},
					RootChord: 0.7, TipChord: 0.5, Span: 1.6, SweepDeg: 10, RootTwistDeg: -2, TipTwistDeg: -2,
				},
			},
			{
				Name: "fin", Kind: KindTrapezoid, SpanCount: 4, ChordCount: 2,
				Trapezoid: &TrapezoidConfig{
					Origin:    [3]float64{4.4, 0, 0.45},
					RootChord: 0.8, TipChord: 0.45, Span: 1.2, SweepDeg: 30, DihedralDeg: 90,
				},
			},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
