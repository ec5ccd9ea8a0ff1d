package mesh

import (
	"fmt"
	"math"
	"strings"
)

// Spacing selects how strip edges are distributed along the span.
type Spacing int

const (
	Uniform Spacing = iota
	// Cosine clusters strips at both ends of the surface. On a mirrored
	// surface it is applied as half-sine to the defined half, so the full
	// span carries a full-cosine distribution.
	Cosine
)

func (s Spacing) String() string {
	switch s {
	case Uniform:
		return "uniform"
	case Cosine:
		return "cosine"
	default:
		return fmt.Sprintf("spacing(%d)", int(s))
	}
}

// ParseSpacing accepts "uniform" and "cosine". Empty selects Uniform.
func ParseSpacing(name string) (Spacing, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "uniform", "equal":
		return Uniform, nil
	case "cosine", "cos":
		return Cosine, nil
	default:
		return Uniform, fmt.Errorf("unknown spacing: %s", name)
	}
}

// stations returns the n+1 strip edges and the n collocation stations as
// spanwise parameters in [0, 1]. With cosine spacing the collocation
// station is the mid-angle point of each strip.
func (s Spacing) stations(n int, mirrored bool) (edges, mids []float64) {
	f := func(t float64) float64 { return t }
	if s == Cosine {
		if mirrored {
			f = func(t float64) float64 { return math.Sin(math.Pi / 2 * t) }
		} else {
			f = func(t float64) float64 { return (1 - math.Cos(math.Pi*t)) / 2 }
		}
	}

	edges = make([]float64, n+1)
	mids = make([]float64, n)
	for i := 0; i <= n; i++ {
		edges[i] = f(float64(i) / float64(n))
	}
	edges[0], edges[n] = 0, 1
	for i := 0; i < n; i++ {
		mids[i] = f((float64(i) + 0.5) / float64(n))
	}
	return edges, mids
}
