package metrics

import (
	"math"

	"github.com/san-kum/nbody/internal/sim"
	"github.com/san-kum/nbody/internal/vec"
)

// Stability is the fraction of frames in which every particle stays within
// threshold of the origin.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(f sim.Frame) {
	s.samples++
	for _, p := range f.Position {
		if float64(p.XYZ().Length()) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// CenterOfMassDrift is the distance the mass-weighted center has moved from
// the first observed frame.
type CenterOfMassDrift struct {
	name    string
	initial vec.Float3
	current vec.Float3
	samples int
}

func NewCenterOfMassDrift() *CenterOfMassDrift {
	return &CenterOfMassDrift{name: "com_drift"}
}

func (c *CenterOfMassDrift) Name() string { return c.name }

func (c *CenterOfMassDrift) Observe(f sim.Frame) {
	c.current = CenterOfMass(f.Position)
	if c.samples == 0 {
		c.initial = c.current
	}
	c.samples++
}

func (c *CenterOfMassDrift) Value() float64 {
	return float64(c.current.Sub(c.initial).Length())
}

func (c *CenterOfMassDrift) Reset() {
	c.initial = vec.Float3{}
	c.current = vec.Float3{}
	c.samples = 0
}

// CenterOfMass returns the mass-weighted mean position.
func CenterOfMass(pos []vec.Float4) vec.Float3 {
	var sx, sy, sz, m float64
	for _, p := range pos {
		w := float64(p[3])
		sx += float64(p[0]) * w
		sy += float64(p[1]) * w
		sz += float64(p[2]) * w
		m += w
	}
	if m == 0 || math.IsNaN(m) {
		return vec.Float3{}
	}
	return vec.Float3{float32(sx / m), float32(sy / m), float32(sz / m)}
}
