package influence

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/aerolattice/internal/vortex"
)

// DefaultTolerance is the singular core radius relative to a bound length.
const DefaultTolerance = 1e-8

// minRows is the smallest row block handed to a worker.
const minRows = 8

// Options controls filament evaluation and assembly.
type Options struct {
	Tolerance float64     // relative core radius, DefaultTolerance when zero
	Workers   int         // <= 0 uses GOMAXPROCS, 1 assembles serially
	Wake      vortex.Vec3 // trailing-leg direction, +x when zero
}

func (o Options) tolerance() float64 {
	if o.Tolerance > 0 {
		return o.Tolerance
	}
	return DefaultTolerance
}

// Horseshoes returns the horseshoe of every panel in lattice order.
func Horseshoes(lat *vortex.Lattice, opts Options) []Horseshoe {
	panels := lat.Panels()
	hs := make([]Horseshoe, len(panels))
	for i, p := range panels {
		hs[i] = NewHorseshoe(p, opts.Wake)
	}
	return hs
}

// Assemble builds the influence matrix: entry (i, j) is the normal
// velocity at control point i due to a unit horseshoe on panel j. Rows are
// computed in parallel; each worker writes a disjoint block.
func Assemble(lat *vortex.Lattice, opts Options) (*mat.Dense, error) {
	n := lat.Len()
	if n == 0 {
		return nil, vortex.ErrEmptyLattice
	}

	panels := lat.Panels()
	hs := Horseshoes(lat, opts)
	eps := make([]float64, n)
	for j, h := range hs {
		eps[j] = h.Cutoff(opts.tolerance())
	}

	data := make([]float64, n*n)
	vortex.ParallelFor(n, opts.Workers, minRows, func(start, end int) {
		for i := start; i < end; i++ {
			cp := panels[i].Control
			nrm := panels[i].Normal
			row := data[i*n : (i+1)*n]
			for j, h := range hs {
				row[j] = h.Velocity(cp, eps[j]).Dot(nrm)
			}
		}
	})
	return mat.NewDense(n, n, data), nil
}

// Freestream returns b with b_i = -V∞·n_i.
func Freestream(lat *vortex.Lattice, fc vortex.FlowCondition) *mat.VecDense {
	v := fc.Freestream()
	panels := lat.Panels()
	b := mat.NewVecDense(len(panels), nil)
	for i, p := range panels {
		b.SetVec(i, -v.Dot(p.Normal))
	}
	return b
}

// TrailingWash returns the velocity induced by the trailing legs alone at
// every panel load point, for the circulation gamma.
func TrailingWash(lat *vortex.Lattice, gamma []float64, opts Options) []vortex.Vec3 {
	panels := lat.Panels()
	hs := Horseshoes(lat, opts)
	w := make([]vortex.Vec3, len(panels))
	vortex.ParallelFor(len(panels), opts.Workers, minRows, func(start, end int) {
		for i := start; i < end; i++ {
			var sum vortex.Vec3
			for j, h := range hs {
				if gamma[j] == 0 {
					continue
				}
				sum = sum.Add(h.TrailingVelocity(panels[i].Load, h.Cutoff(opts.tolerance())).Scale(gamma[j]))
			}
			w[i] = sum
		}
	})
	return w
}

// InducedVelocity returns the velocity induced at p by the whole lattice.
func InducedVelocity(lat *vortex.Lattice, gamma []float64, p vortex.Vec3, opts Options) vortex.Vec3 {
	var sum vortex.Vec3
	for j, h := range Horseshoes(lat, opts) {
		sum = sum.Add(h.Velocity(p, h.Cutoff(opts.tolerance())).Scale(gamma[j]))
	}
	return sum
}
