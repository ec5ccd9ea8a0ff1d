package solver

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/aerolattice/internal/vortex"
)

// Factorization is a reusable LU decomposition (partial pivoting) of an
// influence matrix. It is safe for concurrent Solve calls.
type Factorization struct {
	lu   mat.LU
	n    int
	cond float64
}

// Factorize decomposes a and rejects it when a pivot of U falls below
// pivotTol relative to the infinity norm of a, or when the condition
// number estimate exceeds condLimit.
func Factorize(a *mat.Dense, pivotTol, condLimit float64) (*Factorization, error) {
	if a == nil || a.IsEmpty() {
		return nil, vortex.ErrEmptyLattice
	}
	n, c := a.Dims()
	if n != c {
		return nil, &vortex.SolveError{Stage: "shape", Index: c, Value: float64(n), Wrapped: vortex.ErrSingularSystem}
	}

	f := &Factorization{n: n}
	f.lu.Factorize(a)
	f.cond = f.lu.Cond()
	if math.IsInf(f.cond, 0) || math.IsNaN(f.cond) || f.cond > condLimit {
		return nil, &vortex.SolveError{Stage: "condition", Index: -1, Value: f.cond, Wrapped: vortex.ErrSingularSystem}
	}

	scale := mat.Norm(a, math.Inf(1))
	var u mat.TriDense
	f.lu.UTo(&u)
	for i := 0; i < n; i++ {
		if p := u.At(i, i); !(math.Abs(p) > pivotTol*scale) {
			return nil, &vortex.SolveError{Stage: "pivot", Index: i, Value: p, Wrapped: vortex.ErrSingularSystem}
		}
	}
	return f, nil
}

// Cond returns the condition number estimate.
func (f *Factorization) Cond() float64 { return f.cond }

// Size returns the system dimension.
func (f *Factorization) Size() int { return f.n }

// Solve returns x with A·x = b.
func (f *Factorization) Solve(b *mat.VecDense) ([]float64, error) {
	if b.Len() != f.n {
		return nil, &vortex.SolveError{Stage: "rhs", Index: b.Len(), Value: float64(f.n), Wrapped: vortex.ErrIncompatibleGeometry}
	}
	x := mat.NewVecDense(f.n, nil)
	if err := f.lu.SolveVecTo(x, false, b); err != nil {
		var c mat.Condition
		if errors.As(err, &c) {
			return nil, &vortex.SolveError{Stage: "condition", Index: -1, Value: float64(c), Wrapped: vortex.ErrSingularSystem}
		}
		return nil, err
	}

	out := make([]float64, f.n)
	for i := range out {
		out[i] = x.AtVec(i)
		if math.IsNaN(out[i]) || math.IsInf(out[i], 0) {
			return nil, &vortex.SolveError{Stage: "solution", Index: i, Value: out[i], Wrapped: vortex.ErrSingularSystem}
		}
	}
	return out, nil
}
