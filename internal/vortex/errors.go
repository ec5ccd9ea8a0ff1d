package vortex

import (
	"errors"
	"fmt"
)

// Domain errors for lattice construction and solving.
var (
	// ErrInvalidGeometry indicates a malformed surface definition: non-positive
	// dimensions, zero panel counts or degenerate panels.
	ErrInvalidGeometry = errors.New("vortex: invalid geometry")

	// ErrSingularSystem indicates the influence matrix is not invertible within tolerance.
	ErrSingularSystem = errors.New("vortex: singular influence system")

	// ErrIncompatibleGeometry indicates reference quantities that cannot normalize coefficients.
	ErrIncompatibleGeometry = errors.New("vortex: incompatible reference geometry")

	// ErrEmptyLattice indicates a lattice without panels.
	ErrEmptyLattice = errors.New("vortex: lattice has no panels")
)

// GeometryError wraps an error with the offending surface field.
type GeometryError struct {
	Surface string
	Field   string
	Value   float64
	Wrapped error
}

func (e *GeometryError) Error() string {
	if e.Surface == "" {
		return fmt.Sprintf("%v: %s = %g", e.Wrapped, e.Field, e.Value)
	}
	return fmt.Sprintf("%v: surface %q: %s = %g", e.Wrapped, e.Surface, e.Field, e.Value)
}

func (e *GeometryError) Unwrap() error {
	return e.Wrapped
}

// SolveError wraps an error with the linear-solve stage that produced it.
type SolveError struct {
	Stage   string
	Index   int
	Value   float64
	Wrapped error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("%v: %s (row %d, value %.3g)", e.Wrapped, e.Stage, e.Index, e.Value)
}

func (e *SolveError) Unwrap() error {
	return e.Wrapped
}
