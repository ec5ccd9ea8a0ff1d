package experiment

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/aerolattice/internal/config"
	"github.com/san-kum/aerolattice/internal/solver"
	"github.com/san-kum/aerolattice/internal/vortex"
)

// Experiment runs one airframe case: discretize, factorize once, then solve
// any number of flow conditions.
type Experiment struct {
	cfg    *config.Config
	log    *logrus.Logger
	solver *solver.Solver
	flow   vortex.FlowCondition
}

func New(cfg *config.Config, log *logrus.Logger) *Experiment {
	return &Experiment{cfg: cfg, log: log}
}

func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	lat, err := e.cfg.Lattice()
	if err != nil {
		return err
	}
	e.flow = e.cfg.FlowCondition(lat)

	opts := solver.DefaultOptions()
	if e.cfg.Solver.Tolerance > 0 {
		opts.Tolerance = e.cfg.Solver.Tolerance
	}
	opts.Workers = e.cfg.Solver.Workers
	opts.WakeAlongFreestream = e.cfg.Solver.WakeAlongFreestream
	opts.Logger = e.log

	s, err := solver.New(lat, opts)
	if err != nil {
		return fmt.Errorf("case %s: %w", e.cfg.Name, err)
	}
	e.solver = s
	return nil
}

// Run solves the case at its configured flow condition.
func (e *Experiment) Run(ctx context.Context) (*vortex.Results, error) {
	if e.solver == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.solver.Solve(e.flow)
}

// RunAt solves the case at another angle of attack and sideslip, in degrees.
func (e *Experiment) RunAt(ctx context.Context, alphaDeg, betaDeg float64) (*vortex.Results, error) {
	if e.solver == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fc := e.flow
	fc.Alpha = alphaDeg * math.Pi / 180
	fc.Beta = betaDeg * math.Pi / 180
	return e.solver.Solve(fc)
}

// Sweep solves the case over a list of angles of attack in degrees.
func (e *Experiment) Sweep(ctx context.Context, alphasDeg []float64) ([]*vortex.Results, error) {
	if e.solver == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	flows := make([]vortex.FlowCondition, len(alphasDeg))
	for i, a := range alphasDeg {
		flows[i] = e.flow.WithAlpha(a * math.Pi / 180)
	}
	return e.solver.Sweep(ctx, flows)
}

// Flow returns the resolved flow condition of the case.
func (e *Experiment) Flow() vortex.FlowCondition { return e.flow }

// Config returns the case definition.
func (e *Experiment) Config() *config.Config { return e.cfg }

// GetSolver returns the underlying solver.
func (e *Experiment) GetSolver() *solver.Solver { return e.solver }

// AlphaRange returns start, start+step, ... up to and including end. The
// step must be positive and end may not precede start.
func AlphaRange(start, end, step float64) ([]float64, error) {
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("range step must be positive, got %g", step)
	}
	if !(end >= start) || math.IsInf(end-start, 0) {
		return nil, fmt.Errorf("range end %g precedes start %g", end, start)
	}
	n := int(math.Floor((end-start)/step+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out, nil
}
