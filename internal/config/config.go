package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/aerolattice/internal/mesh"
	"github.com/san-kum/aerolattice/internal/vortex"
)

const (
	DefaultAirspeed   = 50.0
	DefaultAlphaDeg   = 5.0
	DefaultDensity    = 1.225
	DefaultSpanCount  = 8
	DefaultChordCount = 1
)

// Surface kinds.
const (
	KindTrapezoid  = "trapezoid"
	KindRibs       = "ribs"
	KindElliptical = "elliptical"
)

// ErrInvalidConfig marks configuration errors that are not geometry errors.
var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Name      string          `yaml:"name"`
	Flow      FlowConfig      `yaml:"flow"`
	Reference ReferenceConfig `yaml:"reference"`
	Solver    SolverConfig    `yaml:"solver"`
	Surfaces  []SurfaceConfig `yaml:"surfaces"`
}

type FlowConfig struct {
	Airspeed float64 `yaml:"airspeed"`
	AlphaDeg float64 `yaml:"alpha_deg"`
	BetaDeg  float64 `yaml:"beta_deg"`
	Density  float64 `yaml:"density"`
}

// ReferenceConfig holds normalization values. Zero area, span or chord is
// derived from the discretized lattice.
type ReferenceConfig struct {
	Area  float64    `yaml:"s_ref"`
	Span  float64    `yaml:"b_ref"`
	Chord float64    `yaml:"c_ref"`
	Point [3]float64 `yaml:"moment_ref"`
}

type SolverConfig struct {
	Workers             int     `yaml:"workers"`
	Tolerance           float64 `yaml:"tolerance"`
	WakeAlongFreestream bool    `yaml:"wake_along_freestream"`
}

// SurfaceConfig is a tagged variant: Kind selects which of the geometry
// blocks is read.
type SurfaceConfig struct {
	Name       string `yaml:"name"`
	Kind       string `yaml:"kind"`
	SpanCount  int    `yaml:"span_count"`
	ChordCount int    `yaml:"chord_count"`
	Spacing    string `yaml:"spacing,omitempty"`
	Symmetric  bool   `yaml:"symmetric"`

	Trapezoid  *TrapezoidConfig  `yaml:"trapezoid,omitempty"`
	Ribs       []RibConfig       `yaml:"ribs,omitempty"`
	Elliptical *EllipticalConfig `yaml:"elliptical,omitempty"`
}

type TrapezoidConfig struct {
	Origin       [3]float64 `yaml:"origin"`
	RootChord    float64    `yaml:"root_chord"`
	TipChord     float64    `yaml:"tip_chord"`
	Span         float64    `yaml:"span"`
	SweepDeg     float64    `yaml:"sweep_deg"`
	DihedralDeg  float64    `yaml:"dihedral_deg"`
	RootTwistDeg float64    `yaml:"root_twist_deg"`
	TipTwistDeg  float64    `yaml:"tip_twist_deg"`
}

type RibConfig struct {
	Leading      [3]float64 `yaml:"leading"`
	Chord        float64    `yaml:"chord"`
	IncidenceDeg float64    `yaml:"incidence_deg"`
}

type EllipticalConfig struct {
	Origin      [3]float64 `yaml:"origin"`
	RootChord   float64    `yaml:"root_chord"`
	Span        float64    `yaml:"span"`
	DihedralDeg float64    `yaml:"dihedral_deg"`
	TwistDeg    float64    `yaml:"twist_deg"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "rectangular",
		Flow: FlowConfig{
			Airspeed: DefaultAirspeed,
			AlphaDeg: DefaultAlphaDeg,
			Density:  DefaultDensity,
		},
		Surfaces: []SurfaceConfig{{
			Name:       "wing",
			Kind:       KindTrapezoid,
			SpanCount:  DefaultSpanCount / 2,
			ChordCount: DefaultChordCount,
			Symmetric:  true,
			Trapezoid:  &TrapezoidConfig{RootChord: 1, TipChord: 1, Span: 5},
		}},
	}
}

// Load reads a YAML case file over the defaults and validates it.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates YAML case data.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every field eagerly, including the planform of every
// surface, before anything is discretized.
func (c *Config) Validate() error {
	switch {
	case !(c.Flow.Airspeed > 0):
		return invalid("flow.airspeed must be positive, got %g", c.Flow.Airspeed)
	case !(c.Flow.Density > 0):
		return invalid("flow.density must be positive, got %g", c.Flow.Density)
	case math.Abs(c.Flow.AlphaDeg) >= 90:
		return invalid("flow.alpha_deg out of range: %g", c.Flow.AlphaDeg)
	case math.Abs(c.Flow.BetaDeg) >= 90:
		return invalid("flow.beta_deg out of range: %g", c.Flow.BetaDeg)
	case c.Reference.Area < 0 || c.Reference.Span < 0 || c.Reference.Chord < 0:
		return &vortex.GeometryError{Field: "reference", Value: math.Min(c.Reference.Area, math.Min(c.Reference.Span, c.Reference.Chord)), Wrapped: vortex.ErrIncompatibleGeometry}
	case c.Solver.Tolerance < 0:
		return invalid("solver.tolerance must not be negative, got %g", c.Solver.Tolerance)
	case len(c.Surfaces) == 0:
		return invalid("no surfaces defined")
	}

	seen := make(map[string]bool, len(c.Surfaces))
	for i := range c.Surfaces {
		s := &c.Surfaces[i]
		if s.Name == "" {
			return invalid("surface %d has no name", i)
		}
		if seen[s.Name] {
			return invalid("duplicate surface name %q", s.Name)
		}
		seen[s.Name] = true

		spec, err := s.Spec()
		if err != nil {
			return err
		}
		if err := spec.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Spec converts the surface into a discretizer request.
func (s *SurfaceConfig) Spec() (mesh.SurfaceSpec, error) {
	spacing, err := mesh.ParseSpacing(s.Spacing)
	if err != nil {
		return mesh.SurfaceSpec{}, invalid("surface %q: %v", s.Name, err)
	}
	planform, err := s.Planform()
	if err != nil {
		return mesh.SurfaceSpec{}, err
	}
	return mesh.SurfaceSpec{
		Name:       s.Name,
		Planform:   planform,
		SpanCount:  s.SpanCount,
		ChordCount: s.ChordCount,
		Spacing:    spacing,
		Symmetric:  s.Symmetric,
	}, nil
}

// Planform builds the planform selected by Kind.
func (s *SurfaceConfig) Planform() (mesh.Planform, error) {
	switch s.Kind {
	case KindTrapezoid:
		t := s.Trapezoid
		if t == nil {
			return nil, invalid("surface %q: kind trapezoid needs a trapezoid block", s.Name)
		}
		return mesh.Trapezoid{
			Origin:    vec(t.Origin),
			RootChord: t.RootChord,
			TipChord:  t.TipChord,
			Span:      t.Span,
			Sweep:     rad(t.SweepDeg),
			Dihedral:  rad(t.DihedralDeg),
			RootTwist: rad(t.RootTwistDeg),
			TipTwist:  rad(t.TipTwistDeg),
		}, nil
	case KindRibs:
		if len(s.Ribs) == 0 {
			return nil, invalid("surface %q: kind ribs needs a ribs list", s.Name)
		}
		ribs := make([]mesh.Rib, len(s.Ribs))
		for i, r := range s.Ribs {
			ribs[i] = mesh.Rib{Leading: vec(r.Leading), Chord: r.Chord, Incidence: rad(r.IncidenceDeg)}
		}
		return mesh.NewRibs(ribs...), nil
	case KindElliptical:
		e := s.Elliptical
		if e == nil {
			return nil, invalid("surface %q: kind elliptical needs an elliptical block", s.Name)
		}
		return mesh.Elliptical{
			Origin:    vec(e.Origin),
			RootChord: e.RootChord,
			Span:      e.Span,
			Dihedral:  rad(e.DihedralDeg),
			Twist:     rad(e.TwistDeg),
		}, nil
	default:
		return nil, invalid("surface %q: unknown kind %q", s.Name, s.Kind)
	}
}

// Lattice discretizes every surface in order.
func (c *Config) Lattice() (*vortex.Lattice, error) {
	surfaces := make([]*vortex.Surface, 0, len(c.Surfaces))
	for i := range c.Surfaces {
		spec, err := c.Surfaces[i].Spec()
		if err != nil {
			return nil, err
		}
		surf, err := mesh.Discretize(spec)
		if err != nil {
			return nil, fmt.Errorf("discretize %s: %w", spec.Name, err)
		}
		surfaces = append(surfaces, surf)
	}
	return vortex.NewLattice(surfaces...), nil
}

// FlowCondition resolves the flow and reference values. Omitted reference
// values come from lat: projected area, y extent and the mean aerodynamic
// chord of the first surface.
func (c *Config) FlowCondition(lat *vortex.Lattice) vortex.FlowCondition {
	ref := vortex.Reference{
		Area:  c.Reference.Area,
		Span:  c.Reference.Span,
		Chord: c.Reference.Chord,
		Point: vec(c.Reference.Point),
	}
	if lat != nil {
		if ref.Area == 0 {
			ref.Area = lat.PlanformArea()
		}
		if ref.Span == 0 {
			ref.Span = lat.Span()
		}
		if ref.Chord == 0 && len(lat.Surfaces()) > 0 {
			ref.Chord = lat.Surfaces()[0].MeanAerodynamicChord()
		}
	}
	return vortex.FlowCondition{
		Airspeed:  c.Flow.Airspeed,
		Alpha:     rad(c.Flow.AlphaDeg),
		Beta:      rad(c.Flow.BetaDeg),
		Density:   c.Flow.Density,
		Reference: ref,
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Surfaces = make([]SurfaceConfig, len(c.Surfaces))
	for i, s := range c.Surfaces {
		if s.Trapezoid != nil {
			t := *s.Trapezoid
			s.Trapezoid = &t
		}
		if s.Elliptical != nil {
			e := *s.Elliptical
			s.Elliptical = &e
		}
		if s.Ribs != nil {
			s.Ribs = append([]RibConfig(nil), s.Ribs...)
		}
		out.Surfaces[i] = s
	}
	return &out
}

// Surface returns the named surface, or nil.
func (c *Config) Surface(name string) *SurfaceConfig {
	for i := range c.Surfaces {
		if c.Surfaces[i].Name == name {
			return &c.Surfaces[i]
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func vec(v [3]float64) vortex.Vec3 { return vortex.Vec3{X: v[0], Y: v[1], Z: v[2]} }

func rad(deg float64) float64 { return deg * math.Pi / 180 }
