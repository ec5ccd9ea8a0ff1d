package export

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot/plotter"

	"github.com/san-kum/aerolattice/internal/vortex"
)

// LatticeToSVG draws a top view of the lattice: span across the page, the
// streamwise axis down. Panels are shaded by circulation when it is given.
func LatticeToSVG(lat *vortex.Lattice, width int, circulation []float64) string {
	if lat == nil || lat.Len() == 0 || width <= 0 {
		return ""
	}
	panels := lat.Panels()

	minY, maxY := math.Inf(1), math.Inf(-1)
	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, p := range panels {
		for _, c := range p.Corners {
			minY, maxY = math.Min(minY, c.Y), math.Max(maxY, c.Y)
			minX, maxX = math.Min(minX, c.X), math.Max(maxX, c.X)
		}
	}

	spanY := maxY - minY
	spanX := maxX - minX
	if spanY == 0 {
		spanY = 1
	}
	pad := 0.05 * math.Max(spanY, spanX)
	scale := float64(width) / (spanY + 2*pad)
	height := int(math.Ceil((spanX + 2*pad) * scale))

	px := func(v vortex.Vec3) (float64, float64) {
		return (v.Y - minY + pad) * scale, (v.X - minX + pad) * scale
	}

	var gMax float64
	if len(circulation) == len(panels) {
		gMax = math.Max(floats.Max(circulation), -floats.Min(circulation))
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g stroke="#3a3a3a" stroke-width="0.5">
`, width, height, width, height))

	for i, p := range panels {
		fill := "#1a1a1a"
		if gMax > 0 {
			fill = shade(circulation[i] / gMax)
		}
		sb.WriteString(`<polygon points="`)
		for k, c := range p.Corners {
			x, y := px(c)
			if k > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		}
		sb.WriteString(fmt.Sprintf(`" fill="%s"/>
`, fill))
	}
	sb.WriteString("</g>\n<g stroke=\"#00ff00\" stroke-width=\"1\">\n")

	for _, p := range panels {
		ax, ay := px(p.BoundA)
		bx, by := px(p.BoundB)
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
`, ax, ay, bx, by))
	}
	sb.WriteString("</g>\n<g fill=\"#ff8800\">\n")

	for _, p := range panels {
		cx, cy := px(p.Control)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="1.2"/>
`, cx, cy))
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// shade maps a normalized circulation in [-1, 1] to blue (negative) through
// dark grey to red (positive).
func shade(v float64) string {
	v = math.Max(-1, math.Min(1, v))
	base := 0x1a
	if v >= 0 {
		return fmt.Sprintf("#%02x%02x%02x", base+int(v*float64(0xff-base)), base, base)
	}
	return fmt.Sprintf("#%02x%02x%02x", base, base, base+int(-v*float64(0xff-base)))
}

// CurveToSVG creates a bare line chart from XY data.
func CurveToSVG(points plotter.XYs, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX, minY, maxY := plotter.XYRange(points)

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
