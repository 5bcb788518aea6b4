// Package generator fills position, velocity, and color buffers with initial
// conditions for the integrator.
//
// Three configurations are supported: random (a uniformly filled sphere),
// shell (a rotating hollow sphere), and expand (particles moving outward from
// the origin). Output is deterministic for a given seed regardless of how many
// goroutines do the work.
package generator

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/san-kum/nbody/internal/config"
	"github.com/san-kum/nbody/internal/prefs"
	"github.com/san-kum/nbody/internal/vec"
)

// particlesPerUnit converts a particle count into the cluster scale factor.
const particlesPerUnit = 1.0 / 1024.0

const minChunk = 256

var ErrBufferSize = errors.New("generator: buffer shorter than particle count")

// Scales are the size factors applied to the unit distributions.
type Scales struct {
	Cluster   float32
	Velocity  float32
	Particles float32
}

type Generator struct {
	seed      uint64
	particles int
	axis      vec.Float3
	scales    Scales
}

func New(seed int64) *Generator {
	return &Generator{
		seed:      uint64(seed),
		particles: prefs.DefaultParticles,
		axis:      vec.Float3{0, 0, 1},
		scales: Scales{
			Cluster:   prefs.DefaultClusterScale,
			Velocity:  prefs.DefaultVelocityScale,
			Particles: particlesPerUnit * prefs.DefaultParticles,
		},
	}
}

func (g *Generator) Particles() int   { return g.particles }
func (g *Generator) Scales() Scales   { return g.scales }
func (g *Generator) Axis() vec.Float3 { return g.axis }

// SetAxis sets the rotation axis of the shell configuration.
func (g *Generator) SetAxis(a vec.Float3) {
	g.axis = a.Normalize()
}

func (g *Generator) SetGlobals(gl config.Globals) {
	g.particles = gl.Particles
	g.scales.Particles = particlesPerUnit * float32(gl.Particles)
}

func (g *Generator) SetParameters(p config.Parameters) {
	g.scales.Cluster = p.ClusterScale
	g.scales.Velocity = p.VelocityScale
}

// Acquire fills the first Particles() elements of position and velocity
// according to the named configuration. Unknown names produce a shell.
func (g *Generator) Acquire(cfg string, position, velocity []vec.Float4) error {
	if len(position) < g.particles || len(velocity) < g.particles {
		return fmt.Errorf("%w: have %d/%d, need %d", ErrBufferSize, len(position), len(velocity), g.particles)
	}

	switch cfg {
	case config.ConfigExpand:
		g.expand(position, velocity)
	case config.ConfigRandom:
		g.random(position, velocity)
	default:
		g.shell(position, velocity)
	}
	return nil
}

// Colors fills colors with random opaque RGB values.
func (g *Generator) Colors(colors []vec.Float4) {
	n := min(len(colors), g.particles)
	parallelFor(n, minChunk, func(start, end int) {
		unit := newURD3(g.rng(start, 3), 0, 1, 1)
		for i := start; i < end; i++ {
			colors[i] = vec.Point(unit.rand(), 1)
		}
	})
}

// rng returns a source seeded by the generator seed, the chunk start, and a
// stream id, so each chunk draws the same numbers on every run.
func (g *Generator) rng(start int, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(g.seed^stream<<56, uint64(start)))
}

func (g *Generator) random(position, velocity []vec.Float4) {
	pscale := g.scales.Cluster * max(1, g.scales.Particles)
	vscale := g.scales.Velocity * pscale

	parallelFor(g.particles, minChunk, func(start, end int) {
		sphere := newURD3(g.rng(start, 0), -1, 1, 1)
		for i := start; i < end; i++ {
			p := sphere.nrand()
			v := sphere.nrand()
			position[i] = vec.Point(p.Scale(pscale), 1)
			velocity[i] = vec.Point(v.Scale(vscale), 1)
		}
	})
}

func (g *Generator) shell(position, velocity []vec.Float4) {
	pscale := g.scales.Cluster
	vscale := pscale * g.scales.Velocity
	inner := 2.5 * pscale
	outer := 4.0 * pscale
	length := outer - inner

	parallelFor(g.particles, minChunk, func(start, end int) {
		rng := g.rng(start, 1)
		unit := newURD3(rng, 0, 1, 1)
		sphere := newURD3(rng, -1, 1, 1)
		for i := start; i < end; i++ {
			nrpos := sphere.nrand()
			rpos := unit.rand()
			pos := vec.Float3{
				nrpos[0] * (inner + length*rpos[0]),
				nrpos[1] * (inner + length*rpos[1]),
				nrpos[2] * (inner + length*rpos[2]),
			}
			position[i] = vec.Point(pos, 1)

			axis := g.axis
			if 1-nrpos.Dot(axis) < 1e-6 {
				axis = vec.Float3{nrpos[1], nrpos[0], axis[2]}.Normalize()
			}

			velocity[i] = vec.Point(pos.Cross(axis).Scale(vscale), 1)
		}
	})
}

func (g *Generator) expand(position, velocity []vec.Float4) {
	pscale := g.scales.Cluster * max(1, g.scales.Particles)
	vscale := pscale * g.scales.Velocity

	parallelFor(g.particles, minChunk, func(start, end int) {
		sphere := newURD3(g.rng(start, 2), -1, 1, 1)
		for i := start; i < end; i++ {
			p := sphere.rand()
			position[i] = vec.Point(p.Scale(pscale), 1)
			velocity[i] = vec.Point(p.Scale(vscale), 1)
		}
	})
}
