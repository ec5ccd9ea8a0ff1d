package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/aerolattice/internal/vortex"
)

// ErrInsufficientData is returned when a sweep has fewer than two distinct
// angles of attack.
var ErrInsufficientData = errors.New("analysis: need at least two distinct angles of attack")

// Polar is a sweep in column form. Angles are in radians.
type Polar struct {
	Alpha []float64
	CL    []float64
	CDi   []float64
	Cm    []float64

	AspectRatio float64
	XRef        float64 // x of the moment reference point
	CRef        float64
}

// PolarFromResults collects the columns of a sweep. Reference values are
// taken from the first result.
func PolarFromResults(results []*vortex.Results) Polar {
	p := Polar{
		Alpha: make([]float64, len(results)),
		CL:    make([]float64, len(results)),
		CDi:   make([]float64, len(results)),
		Cm:    make([]float64, len(results)),
	}
	for i, r := range results {
		p.Alpha[i] = r.Flow.Alpha
		p.CL[i] = r.CL
		p.CDi[i] = r.CDi
		p.Cm[i] = r.Cm
	}
	if len(results) > 0 {
		p.AspectRatio = results[0].AspectRatio
		p.XRef = results[0].Flow.Reference.Point.X
		p.CRef = results[0].Flow.Reference.Chord
	}
	return p
}

func (p Polar) Len() int { return len(p.Alpha) }

// Derivatives are the fitted longitudinal quantities. Slopes are per radian.
type Derivatives struct {
	CL0            float64
	CLAlpha        float64
	Cm0            float64
	CmAlpha        float64
	AlphaZeroLift  float64 // rad
	NeutralPoint   float64 // x coordinate
	StaticMargin   float64 // fraction of c_ref, positive when stable
	InducedFactor  float64 // k in CDi = k CL^2
	SpanEfficiency float64
	Points         int
}

// Fit runs the least-squares fits over a polar.
func Fit(p Polar) (*Derivatives, error) {
	n := p.Len()
	if len(p.CL) != n || len(p.Cm) != n || len(p.CDi) != n {
		return nil, fmt.Errorf("analysis: column length mismatch")
	}
	if n < 2 || floats.Max(p.Alpha)-floats.Min(p.Alpha) < 1e-12 {
		return nil, ErrInsufficientData
	}

	d := &Derivatives{Points: n}
	d.CL0, d.CLAlpha = stat.LinearRegression(p.Alpha, p.CL, nil, false)
	d.Cm0, d.CmAlpha = stat.LinearRegression(p.Alpha, p.Cm, nil, false)

	if d.CLAlpha != 0 {
		d.AlphaZeroLift = -d.CL0 / d.CLAlpha
		d.StaticMargin = -d.CmAlpha / d.CLAlpha
		d.NeutralPoint = p.XRef + d.StaticMargin*p.CRef
	}

	cl2 := make([]float64, n)
	floats.MulTo(cl2, p.CL, p.CL)
	if floats.Max(cl2) > 0 {
		_, d.InducedFactor = stat.LinearRegression(cl2, p.CDi, nil, true)
	}
	if d.InducedFactor > 0 && p.AspectRatio > 0 {
		d.SpanEfficiency = 1 / (math.Pi * p.AspectRatio * d.InducedFactor)
	}
	return d, nil
}
