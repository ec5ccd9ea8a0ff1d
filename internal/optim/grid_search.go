package optim

import (
	"context"
	"errors"
	"math"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/aerolattice/internal/experiment"
	"github.com/san-kum/aerolattice/internal/vortex"
)

// ErrNoFeasiblePoint is returned when every grid point failed to solve.
var ErrNoFeasiblePoint = errors.New("optim: no grid point could be solved")

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// WithWorkers bounds the number of concurrent solves. Zero uses GOMAXPROCS.
func (g *GridSearch) WithWorkers(n int) *GridSearch {
	g.workers = n
	return g
}

// Point is one evaluated grid point.
type Point struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// Points enumerates the full grid in row-major order.
func (g *GridSearch) Points() []map[string]float64 {
	var out []map[string]float64
	g.enumerate(0, make(map[string]float64), &out)
	return out
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		p := make(map[string]float64, len(current))
		for k, v := range current {
			p[k] = v
		}
		*out = append(*out, p)
		return
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[name] = val
		g.enumerate(depth+1, current, out)
	}
	delete(current, name)
}

// Search evaluates every grid point and returns the parameters minimizing
// objective. Points whose case fails to build or solve are skipped; they
// are reported in the returned points with Err set.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	objective experiment.Objective,
) (map[string]float64, float64, []Point, error) {
	grid := g.Points()
	points := make([]Point, len(grid))

	workers := g.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var mu sync.Mutex
	best := math.Inf(1)
	var bestParams map[string]float64

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, params := range grid {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			points[i] = Point{Params: params, Value: math.NaN()}

			res, err := evaluate(ctx, buildExperiment, params)
			if err != nil {
				points[i].Err = err
				return nil
			}
			val := objective(res)
			points[i].Value = val

			mu.Lock()
			defer mu.Unlock()
			if val < best || (val == best && lessParams(g.paramNames, params, bestParams)) {
				best = val
				bestParams = params
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, 0, points, err
	}
	if bestParams == nil {
		return nil, 0, points, ErrNoFeasiblePoint
	}
	return bestParams, best, points, nil
}

func evaluate(ctx context.Context, build func(map[string]float64) (*experiment.Experiment, error), params map[string]float64) (*vortex.Results, error) {
	exp, err := build(params)
	if err != nil {
		return nil, err
	}
	if err := exp.Setup(); err != nil {
		return nil, err
	}
	return exp.Run(ctx)
}

// lessParams orders grid points so that ties resolve the same way
// regardless of completion order.
func lessParams(names []string, a, b map[string]float64) bool {
	if b == nil {
		return true
	}
	for _, n := range names {
		if a[n] != b[n] {
			return a[n] < b[n]
		}
	}
	return false
}
