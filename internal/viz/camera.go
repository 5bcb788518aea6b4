package viz

import (
	"math"

	"github.com/san-kum/nbody/internal/vec"
)

// Camera orbits the origin and projects world points onto a canvas. Points
// are divided by Extent first, so Distance is in units of the cluster radius.
type Camera struct {
	Distance         float64
	Near             float64
	RotX, RotY, RotZ float64
	Zoom             float64
	// Extent is the world radius that fills a third of the smaller canvas side.
	Extent float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 4, Near: 0.1, RotX: 0.4, Zoom: 1.0, Extent: 1}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// Fit sets Extent to the largest distance from the origin among pos.
func (c *Camera) Fit(pos []vec.Float4) {
	var r float64
	for _, p := range pos {
		r = math.Max(r, float64(p.XYZ().Length()))
	}
	if r == 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		r = 1
	}
	c.Extent = r
}

func (c *Camera) rotate(x, y, z float64) (float64, float64, float64) {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	y, z = y*cx-z*sx, y*sx+z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	x, z = x*cy+z*sy, -x*sy+z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	x, y = x*cz-y*sz, x*sz+y*cz
	return x, y, z
}

// Project maps p to dot coordinates on a sw by sh pixel grid.
// Returns x, y, depth, and visibility.
func (c *Camera) Project(p vec.Float3, sw, sh int) (int, int, float64, bool) {
	k := c.Zoom / c.Extent
	x, y, z := c.rotate(float64(p[0])*k, float64(p[1])*k, float64(p[2])*k)

	dist := c.Distance
	if z >= dist-c.Near {
		return 0, 0, 0, false
	}
	scale := dist / (dist - z)
	pScale := float64(min(sw, sh)) / 3.0
	sx := int(x*scale*pScale) + sw/2
	sy := int(-y*scale*pScale) + sh/2
	return sx, sy, z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

// RenderParticles clears the canvas and plots every visible position.
// It returns the number of particles drawn.
func RenderParticles(cv *Canvas, pos []vec.Float4, cam *Camera) int {
	if cv == nil || cam == nil {
		return 0
	}
	cv.Clear()
	pw, ph := cv.PixelWidth(), cv.PixelHeight()
	drawn := 0
	for _, p := range pos {
		if !p.IsFinite() {
			continue
		}
		x, y, _, ok := cam.Project(p.XYZ(), pw, ph)
		if ok {
			cv.Set(x, y)
			drawn++
		}
	}
	return drawn
}

// RenderAxes draws the three world axes of length l.
func RenderAxes(cv *Canvas, cam *Camera, l float32) {
	pw, ph := cv.PixelWidth(), cv.PixelHeight()
	ox, oy, _, _ := cam.Project(vec.Float3{}, pw, ph)
	for _, axis := range []vec.Float3{{l, 0, 0}, {0, l, 0}, {0, 0, l}} {
		x, y, _, ok := cam.Project(axis, pw, ph)
		if ok {
			cv.DrawLine(ox, oy, x, y)
		}
	}
}
