package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/aerolattice/internal/config"
	"github.com/san-kum/aerolattice/internal/vortex"
)

// Objective extracts a scalar from a solve.
type Objective func(*vortex.Results) float64

// Parameter applies a design variable to one surface of a case.
type Parameter func(s *config.SurfaceConfig, v float64) error

type Registry struct {
	objectives map[string]Objective
	parameters map[string]Parameter
}

func NewRegistry() *Registry {
	r := &Registry{
		objectives: make(map[string]Objective),
		parameters: make(map[string]Parameter),
	}

	for _, name := range []string{"CL", "CDi", "Cm", "e", "CY", "Cl", "Cn", "CX", "CZ", "L/D"} {
		r.objectives[name] = func(res *vortex.Results) float64 { return res.Coefficients()[name] }
	}
	r.objectives["-e"] = func(res *vortex.Results) float64 { return -res.SpanEfficiency }
	r.objectives["-L/D"] = func(res *vortex.Results) float64 { return -res.LiftToDrag() }

	r.parameters["taper"] = trapezoid(func(t *config.TrapezoidConfig, v float64) { t.TipChord = t.RootChord * v })
	r.parameters["tip_twist"] = trapezoid(func(t *config.TrapezoidConfig, v float64) { t.TipTwistDeg = v })
	r.parameters["root_twist"] = trapezoid(func(t *config.TrapezoidConfig, v float64) { t.RootTwistDeg = v })
	r.parameters["sweep"] = trapezoid(func(t *config.TrapezoidConfig, v float64) { t.SweepDeg = v })
	r.parameters["dihedral"] = trapezoid(func(t *config.TrapezoidConfig, v float64) { t.DihedralDeg = v })
	r.parameters["span"] = func(s *config.SurfaceConfig, v float64) error {
		switch {
		case s.Trapezoid != nil:
			s.Trapezoid.Span = v
		case s.Elliptical != nil:
			s.Elliptical.Span = v
		default:
			return fmt.Errorf("surface %q: span is not a free parameter of kind %s", s.Name, s.Kind)
		}
		return nil
	}
	r.parameters["span_count"] = func(s *config.SurfaceConfig, v float64) error {
		s.SpanCount = int(v)
		return nil
	}
	r.parameters["chord_count"] = func(s *config.SurfaceConfig, v float64) error {
		s.ChordCount = int(v)
		return nil
	}

	return r
}

func trapezoid(set func(*config.TrapezoidConfig, float64)) Parameter {
	return func(s *config.SurfaceConfig, v float64) error {
		if s.Trapezoid == nil {
			return fmt.Errorf("surface %q: parameter needs a trapezoid planform", s.Name)
		}
		set(s.Trapezoid, v)
		return nil
	}
}

func (r *Registry) GetObjective(name string) (Objective, error) {
	fn, ok := r.objectives[name]
	if !ok {
		return nil, fmt.Errorf("unknown objective: %s", name)
	}
	return fn, nil
}

func (r *Registry) GetParameter(name string) (Parameter, error) {
	fn, ok := r.parameters[name]
	if !ok {
		return nil, fmt.Errorf("unknown parameter: %s", name)
	}
	return fn, nil
}

// Apply sets each named parameter on the named surface of cfg.
func (r *Registry) Apply(cfg *config.Config, surface string, params map[string]float64) error {
	s := cfg.Surface(surface)
	if s == nil {
		return fmt.Errorf("unknown surface: %s", surface)
	}
	for name, v := range params {
		fn, err := r.GetParameter(name)
		if err != nil {
			return err
		}
		if err := fn(s, v); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) ListObjectives() []string {
	return sortedKeys(r.objectives)
}

func (r *Registry) ListParameters() []string {
	return sortedKeys(r.parameters)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
