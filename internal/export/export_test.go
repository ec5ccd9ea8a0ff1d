package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"

	"github.com/san-kum/aerolattice/internal/config"
	"github.com/san-kum/aerolattice/internal/experiment"
	"github.com/san-kum/aerolattice/internal/vortex"
)

func solvedCase(t *testing.T, name string) (*experiment.Experiment, *vortex.Lattice, *vortex.Results) {
	t.Helper()
	exp := experiment.New(config.GetPreset(name), nil)
	require.NoError(t, exp.Setup())
	res, err := exp.Run(context.Background())
	require.NoError(t, err)
	return exp, exp.GetSolver().Lattice(), res
}

func TestLatticeToSVG(t *testing.T) {
	_, lat, res := solvedCase(t, "rectangular")

	svg := LatticeToSVG(lat, 600, res.Circulation())
	require.NotEmpty(t, svg)
	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.Equal(t, lat.Len(), strings.Count(svg, "<polygon"))
	assert.Equal(t, lat.Len(), strings.Count(svg, "<line"))
	assert.Equal(t, lat.Len(), strings.Count(svg, "<circle"))
	assert.NotContains(t, svg, "NaN")

	assert.Empty(t, LatticeToSVG(nil, 600, nil))
	assert.Empty(t, LatticeToSVG(vortex.NewLattice(), 600, nil))
	assert.Contains(t, LatticeToSVG(lat, 300, nil), "#1a1a1a")
}

func TestShade(t *testing.T) {
	assert.Equal(t, "#ff1a1a", shade(1))
	assert.Equal(t, "#1a1aff", shade(-1))
	assert.Equal(t, "#1a1a1a", shade(0))
	assert.Equal(t, "#ff1a1a", shade(3))
}

func TestCurveToSVG(t *testing.T) {
	assert.Empty(t, CurveToSVG(plotter.XYs{{X: 0, Y: 0}}, 100, 50, "#fff"))

	svg := CurveToSVG(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}}, 100, 50, "#00ff00")
	assert.Contains(t, svg, `stroke="#00ff00"`)
	assert.Equal(t, 2, strings.Count(svg, " L"))
}

func TestSectionSeries(t *testing.T) {
	_, _, res := solvedCase(t, "wing_tail_fin")

	names, series, err := SectionSeries(res.Sections, FieldCl)
	require.NoError(t, err)
	assert.Equal(t, []string{"wing", "htail", "fin"}, names)
	for _, s := range series {
		for i := 1; i < len(s); i++ {
			assert.LessOrEqual(t, s[i-1].X, s[i].X)
		}
	}

	_, _, err = SectionSeries(res.Sections, "nope")
	assert.Error(t, err)
}

func TestPlotsSave(t *testing.T) {
	exp, _, res := solvedCase(t, "rectangular")
	dir := t.TempDir()

	for _, field := range Fields() {
		p, err := DistributionPlot(res.Sections, field, "rectangular")
		require.NoError(t, err, field)
		path := filepath.Join(dir, field+".png")
		require.NoError(t, Save(p, path, 0, 0))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	alphas, err := experiment.AlphaRange(0, 8, 2)
	require.NoError(t, err)
	sweep, err := exp.Sweep(context.Background(), alphas)
	require.NoError(t, err)

	pts, err := PolarPoints(sweep, "alpha", "CL")
	require.NoError(t, err)
	require.Len(t, pts, 5)
	assert.InDelta(t, 8, pts[4].X, 1e-9)

	drag, err := PolarPoints(sweep, "CL", "CDi")
	require.NoError(t, err)
	p, err := PolarPlot(drag, "CL", "CDi", "drag polar")
	require.NoError(t, err)
	require.NoError(t, Save(p, filepath.Join(dir, "polar.svg"), 6, 4))

	_, err = PolarPoints(sweep, "alpha", "nope")
	assert.Error(t, err)
	_, err = PolarPoints(sweep, "nope", "CL")
	assert.Error(t, err)
	_, err = PolarPlot(nil, "alpha", "CL", "")
	assert.Error(t, err)
	_, err = DistributionPlot(nil, FieldLift, "")
	assert.Error(t, err)
}
