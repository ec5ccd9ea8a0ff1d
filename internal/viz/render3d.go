package viz

import (
	"math"

	"github.com/san-kum/aerolattice/internal/vortex"
)

// Camera projects view-space points onto the canvas. View space has x to
// the right of the screen, y up the screen and z towards the viewer.
type Camera struct {
	Distance         float64
	Near             float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 50, Near: 0.1, Zoom: 1.0}
}

// TopView looks straight down on the planform.
func (c *Camera) TopView() { c.RotX, c.RotY, c.RotZ = 0, 0, 0 }

// IsoView tilts the planform so that lift bars point up the screen.
func (c *Camera) IsoView() { c.RotX, c.RotY, c.RotZ = -1.0, 0, 0.35 }

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// RotatePoint rotates a point around the camera's axes.
func (c *Camera) RotatePoint(p vortex.Vec3) vortex.Vec3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// Project converts a view-space point to sub-pixel coordinates on a
// sw x sh surface. It returns x, y, depth, and visibility.
func (c *Camera) Project(p vortex.Vec3, sw, sh int) (int, int, float64, bool) {
	rot := c.RotatePoint(p).Scale(c.Zoom)
	if rot.Z >= c.Distance-c.Near {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - rot.Z)
	pScale := float64(min(sw, sh)) / 3.0
	x := int(math.Round(rot.X*scale*pScale)) + sw/2
	y := int(math.Round(-rot.Y*scale*pScale)) + sh/2
	return x, y, rot.Z, x >= 0 && x < sw && y >= 0 && y < sh
}

type Edge struct {
	Start, End vortex.Vec3
}

type Wireframe struct{ Edges []Edge }

func (w *Wireframe) AddEdge(s, e vortex.Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }

// LatticeWireframe outlines every panel and, when results are given, draws
// a vertical bar at each strip proportional to its section lift. The frame
// is centred and scaled so that its largest extent is 2.4 view units.
func LatticeWireframe(lat *vortex.Lattice, res *vortex.Results) *Wireframe {
	w := &Wireframe{}
	if lat == nil || lat.Len() == 0 {
		return w
	}

	lo := vortex.Vec3{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := lo.Neg()
	for _, p := range lat.Panels() {
		for _, c := range p.Corners {
			lo = vortex.Vec3{X: math.Min(lo.X, c.X), Y: math.Min(lo.Y, c.Y), Z: math.Min(lo.Z, c.Z)}
			hi = vortex.Vec3{X: math.Max(hi.X, c.X), Y: math.Max(hi.Y, c.Y), Z: math.Max(hi.Z, c.Z)}
		}
	}
	center := lo.Lerp(hi, 0.5)
	extent := math.Max(hi.X-lo.X, math.Max(hi.Y-lo.Y, hi.Z-lo.Z))
	if extent == 0 {
		extent = 1
	}
	k := 2.4 / extent

	// body x runs aft, so it maps down the screen; span runs across.
	view := func(p vortex.Vec3) vortex.Vec3 {
		d := p.Sub(center).Scale(k)
		return vortex.Vec3{X: d.Y, Y: -d.X, Z: d.Z}
	}

	for _, p := range lat.Panels() {
		for i := range p.Corners {
			w.AddEdge(view(p.Corners[i]), view(p.Corners[(i+1)%4]))
		}
	}

	if res == nil || len(res.Sections) == 0 {
		return w
	}
	maxLift := 0.0
	for _, s := range res.Sections {
		maxLift = math.Max(maxLift, math.Abs(s.Lift))
	}
	if maxLift == 0 {
		return w
	}

	i := 0
	for _, surf := range lat.Surfaces() {
		for _, strip := range surf.Strips {
			if i >= len(res.Sections) {
				return w
			}
			h := 0.6 * res.Sections[i].Lift / maxLift
			base := view(strip.Station)
			w.AddEdge(base, base.Add(vortex.Vec3{Z: h}))
			i++
		}
	}
	return w
}

// Render3D draws the wireframe to the canvas.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	sw, sh := c.Dots()
	for _, e := range w.Edges {
		x1, y1, _, v1 := cam.Project(e.Start, sw, sh)
		x2, y2, _, v2 := cam.Project(e.End, sw, sh)
		if !v1 && !v2 {
			continue
		}
		if x1 == x2 && y1 == y2 {
			c.Set(x1, y1)
		} else {
			c.DrawLine(x1, y1, x2, y2)
		}
	}
}
