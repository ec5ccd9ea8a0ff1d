// Package solver assembles and solves the circulation system of a lattice
// and hands the result to the post-processor.
//
// A Solver owns one lattice. Its influence matrix and LU factorization are
// built once per trailing-wake direction and reused for every flow
// condition, so re-solving at a new angle of attack costs one
// back-substitution and one load integration.
package solver

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/aerolattice/internal/aero"
	"github.com/san-kum/aerolattice/internal/influence"
	"github.com/san-kum/aerolattice/internal/vortex"
)

// Options configures a Solver.
type Options struct {
	// Tolerance is the Biot-Savart core radius relative to each bound length.
	Tolerance float64
	// PivotTolerance rejects U pivots below this fraction of ‖A‖∞.
	PivotTolerance float64
	// ConditionLimit rejects systems with a larger condition estimate.
	ConditionLimit float64
	Workers        int
	// WakeAlongFreestream aligns trailing legs with V∞ instead of +x. The
	// matrix then depends on α and β and is cached per direction.
	WakeAlongFreestream bool
	Logger              *logrus.Logger
}

// DefaultOptions returns the options used by Solve.
func DefaultOptions() Options {
	return Options{
		Tolerance:      influence.DefaultTolerance,
		PivotTolerance: 1e-12,
		ConditionLimit: 1e12,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	if o.PivotTolerance <= 0 {
		o.PivotTolerance = d.PivotTolerance
	}
	if o.ConditionLimit <= 0 {
		o.ConditionLimit = d.ConditionLimit
	}
	if o.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Logger = l
	}
	return o
}

type system struct {
	wake vortex.Vec3
	a    *mat.Dense
	f    *Factorization
}

// Solver solves one lattice for any number of flow conditions. It is safe
// for concurrent use.
type Solver struct {
	lat  *vortex.Lattice
	opts Options
	log  *logrus.Entry

	mu             sync.Mutex
	systems        map[vortex.Vec3]*system
	factorizations int
}

// New prepares a solver for lat. With body-axis wakes the influence system
// is assembled and factorized immediately.
func New(lat *vortex.Lattice, opts Options) (*Solver, error) {
	if lat == nil || lat.Len() == 0 {
		return nil, vortex.ErrEmptyLattice
	}
	opts = opts.withDefaults()
	s := &Solver{
		lat:     lat,
		opts:    opts,
		log:     opts.Logger.WithField("panels", lat.Len()),
		systems: make(map[vortex.Vec3]*system),
	}
	if !opts.WakeAlongFreestream {
		if _, err := s.system(vortex.UnitX); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Solve is the one-shot entry point: it builds a Solver with default
// options and solves a single flow condition.
func Solve(lat *vortex.Lattice, fc vortex.FlowCondition) (*vortex.Results, error) {
	s, err := New(lat, DefaultOptions())
	if err != nil {
		return nil, err
	}
	return s.Solve(fc)
}

// Lattice returns the solved geometry.
func (s *Solver) Lattice() *vortex.Lattice { return s.lat }

// Factorizations returns how many influence systems have been factorized.
func (s *Solver) Factorizations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.factorizations
}

// Matrix returns the influence matrix used for fc. The matrix is shared
// and must not be modified.
func (s *Solver) Matrix(fc vortex.FlowCondition) (*mat.Dense, error) {
	sys, err := s.system(s.wake(fc))
	if err != nil {
		return nil, err
	}
	return sys.a, nil
}

// Cond returns the condition estimate of the system used for fc.
func (s *Solver) Cond(fc vortex.FlowCondition) (float64, error) {
	sys, err := s.system(s.wake(fc))
	if err != nil {
		return 0, err
	}
	return sys.f.Cond(), nil
}

// Solve computes the circulation and loads for fc.
func (s *Solver) Solve(fc vortex.FlowCondition) (*vortex.Results, error) {
	if err := aero.Validate(fc); err != nil {
		return nil, err
	}
	wake := s.wake(fc)
	sys, err := s.system(wake)
	if err != nil {
		return nil, err
	}

	gamma, err := sys.f.Solve(influence.Freestream(s.lat, fc))
	if err != nil {
		return nil, err
	}

	res, err := aero.Process(s.lat, fc, gamma, aero.Options{Influence: s.influence(wake)})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"alpha": fc.Alpha,
		"beta":  fc.Beta,
		"CL":    res.CL,
		"CDi":   res.CDi,
	}).Debug("solved")
	return res, nil
}

// Sweep solves every flow condition against the cached systems. Results
// are returned in input order; the first failure cancels the rest.
func (s *Solver) Sweep(ctx context.Context, flows []vortex.FlowCondition) ([]*vortex.Results, error) {
	results := make([]*vortex.Results, len(flows))

	limit := s.opts.Workers
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, fc := range flows {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := s.Solve(fc)
			if err != nil {
				return fmt.Errorf("flow %d: %w", i, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Solver) wake(fc vortex.FlowCondition) vortex.Vec3 {
	if s.opts.WakeAlongFreestream {
		if d := fc.DragAxis(); d != (vortex.Vec3{}) {
			return d
		}
	}
	return vortex.UnitX
}

func (s *Solver) influence(wake vortex.Vec3) influence.Options {
	return influence.Options{Tolerance: s.opts.Tolerance, Workers: s.opts.Workers, Wake: wake}
}

func (s *Solver) system(wake vortex.Vec3) (*system, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sys, ok := s.systems[wake]; ok {
		return sys, nil
	}

	start := time.Now()
	a, err := influence.Assemble(s.lat, s.influence(wake))
	if err != nil {
		return nil, err
	}
	assembled := time.Since(start)

	f, err := Factorize(a, s.opts.PivotTolerance, s.opts.ConditionLimit)
	if err != nil {
		s.log.WithError(err).Error("factorization failed")
		return nil, err
	}
	s.factorizations++

	entry := s.log.WithFields(logrus.Fields{
		"wake":      wake.String(),
		"assembly":  assembled,
		"factorize": time.Since(start) - assembled,
		"cond":      f.Cond(),
	})
	if f.Cond() > s.opts.ConditionLimit*1e-3 {
		entry.Warn("influence system is ill-conditioned")
	} else {
		entry.Debug("influence system ready")
	}

	sys := &system{wake: wake, a: a, f: f}
	s.systems[wake] = sys
	return sys, nil
}
