package export

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/aerolattice/internal/vortex"
)

// Section fields that can be plotted against span.
const (
	FieldLift         = "lift"
	FieldCl           = "cl"
	FieldCirculation  = "circulation"
	FieldInducedAlpha = "induced_alpha"
)

var fieldLabels = map[string]string{
	FieldLift:         "lift per span (N/m)",
	FieldCl:           "section cl",
	FieldCirculation:  "circulation (m^2/s)",
	FieldInducedAlpha: "induced angle (deg)",
}

// Fields lists the plottable section fields.
func Fields() []string {
	return []string{FieldLift, FieldCl, FieldCirculation, FieldInducedAlpha}
}

// SectionValue returns one plottable field of a section.
func SectionValue(s vortex.Section, field string) (float64, error) {
	switch field {
	case FieldLift:
		return s.Lift, nil
	case FieldCl:
		return s.Cl, nil
	case FieldCirculation:
		return s.Circulation, nil
	case FieldInducedAlpha:
		return s.InducedAngle * 180 / math.Pi, nil
	default:
		return 0, fmt.Errorf("unknown field: %s", field)
	}
}

// SectionSeries returns one series per surface of field against y, sorted
// by y. Surfaces keep their order of first appearance.
func SectionSeries(sections []vortex.Section, field string) ([]string, []plotter.XYs, error) {
	var names []string
	bySurface := make(map[string]plotter.XYs)
	for _, s := range sections {
		v, err := SectionValue(s, field)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := bySurface[s.Surface]; !ok {
			names = append(names, s.Surface)
		}
		bySurface[s.Surface] = append(bySurface[s.Surface], plotter.XY{X: s.Y, Y: v})
	}

	series := make([]plotter.XYs, len(names))
	for i, n := range names {
		xys := bySurface[n]
		sort.SliceStable(xys, func(a, b int) bool { return xys[a].X < xys[b].X })
		series[i] = xys
	}
	return names, series, nil
}

// DistributionPlot plots a spanwise section field for every surface.
func DistributionPlot(sections []vortex.Section, field, title string) (*plot.Plot, error) {
	names, series, err := SectionSeries(sections, field)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no sections to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "y (m)"
	p.Y.Label.Text = fieldLabels[field]
	p.Add(plotter.NewGrid())

	var vs []interface{}
	for i, n := range names {
		vs = append(vs, n, series[i])
	}
	if err := plotutil.AddLinePoints(p, vs...); err != nil {
		return nil, err
	}
	return p, nil
}

// PolarPoints returns the named coefficient against alpha in degrees, or
// against another coefficient when x is not "alpha".
func PolarPoints(results []*vortex.Results, x, y string) (plotter.XYs, error) {
	pts := make(plotter.XYs, len(results))
	for i, r := range results {
		c := r.Coefficients()
		yv, ok := c[y]
		if !ok {
			return nil, fmt.Errorf("unknown coefficient: %s", y)
		}
		xv := r.Flow.Alpha * 180 / math.Pi
		if x != "alpha" {
			if xv, ok = c[x]; !ok {
				return nil, fmt.Errorf("unknown coefficient: %s", x)
			}
		}
		pts[i] = plotter.XY{X: xv, Y: yv}
	}
	return pts, nil
}

// PolarPlot plots a sweep curve such as the output of PolarPoints.
func PolarPlot(pts plotter.XYs, xLabel, yLabel, title string) (*plot.Plot, error) {
	if len(pts) == 0 {
		return nil, fmt.Errorf("empty sweep")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	if xLabel == "alpha" {
		p.X.Label.Text = "alpha (deg)"
	}
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	if err := plotutil.AddLinePoints(p, yLabel, pts); err != nil {
		return nil, err
	}
	return p, nil
}

// Save writes a plot; the format follows the file extension (png, svg, pdf).
func Save(p *plot.Plot, path string, widthIn, heightIn float64) error {
	if widthIn <= 0 {
		widthIn = 8
	}
	if heightIn <= 0 {
		heightIn = 4
	}
	return p.Save(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch, path)
}
