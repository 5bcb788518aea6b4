package compute

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/san-kum/nbody/internal/prefs"
	"github.com/san-kum/nbody/internal/vec"
)

const cpuWorkgroupWidth = 32

// CPUBackend runs the integration kernel on goroutines, one workgroup of
// particles at a time, staging each tile of source positions the way the
// device kernel stages them in threadgroup memory.
type CPUBackend struct {
	workers int
}

func NewCPUBackend() *CPUBackend {
	return &CPUBackend{
		workers: runtime.NumCPU(),
	}
}

func (c *CPUBackend) Name() string        { return "cpu" }
func (c *CPUBackend) Available() bool     { return true }
func (c *CPUBackend) WorkgroupWidth() int { return cpuWorkgroupWidth }
func (c *CPUBackend) Cleanup()            {}

func (c *CPUBackend) Integrate(params []byte, dst, src Buffers) error {
	var p prefs.Prefs
	if err := p.UnmarshalBinary(params); err != nil {
		return err
	}

	n := int(p.Particles)
	if len(src.Position) < n || len(src.Velocity) < n || len(dst.Position) < n || len(dst.Velocity) < n {
		return fmt.Errorf("%w: %d particles", ErrBufferMismatch, n)
	}
	if n == 0 {
		return nil
	}

	groups := (n + cpuWorkgroupWidth - 1) / cpuWorkgroupWidth
	if groups < 2 || c.workers <= 1 {
		integrateGroups(p, dst, src, 0, groups)
		return nil
	}

	workers := min(c.workers, groups)
	chunk := (groups + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < groups; start += chunk {
		end := min(start+chunk, groups)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			integrateGroups(p, dst, src, s, e)
		}(start, end)
	}
	wg.Wait()

	return nil
}

// integrateGroups advances workgroups [first, last).
func integrateGroups(p prefs.Prefs, dst, src Buffers, first, last int) {
	n := int(p.Particles)
	var tile [cpuWorkgroupWidth]vec.Float4

	for g := first; g < last; g++ {
		lo := g * cpuWorkgroupWidth
		hi := min(lo+cpuWorkgroupWidth, n)

		var acc [cpuWorkgroupWidth]vec.Float3

		for base := 0; base < n; base += cpuWorkgroupWidth {
			width := copy(tile[:], src.Position[base:min(base+cpuWorkgroupWidth, n)])

			for i := lo; i < hi; i++ {
				pi := src.Position[i]
				a := acc[i-lo]
				for j := 0; j < width; j++ {
					a = interact(a, pi, tile[j], p.SofteningSqr)
				}
				acc[i-lo] = a
			}
		}

		for i := lo; i < hi; i++ {
			pos := src.Position[i]
			vel := src.Velocity[i]
			a := acc[i-lo]

			for k := 0; k < 3; k++ {
				vel[k] = (vel[k] + a[k]*p.Timestep) * p.Damping
				pos[k] += vel[k] * p.Timestep
			}

			dst.Position[i] = pos
			dst.Velocity[i] = vel
		}
	}
}

// interact accumulates the softened pull of body pj (mass in w) on pi.
func interact(a vec.Float3, pi, pj vec.Float4, eps2 float32) vec.Float3 {
	r := vec.Float3{pj[0] - pi[0], pj[1] - pi[1], pj[2] - pi[2]}
	distSqr := r.Dot(r) + eps2
	if distSqr == 0 {
		return a
	}

	invDist := float32(1 / math.Sqrt(float64(distSqr)))
	s := pj[3] * invDist * invDist * invDist

	a[0] += r[0] * s
	a[1] += r[1] * s
	a[2] += r[2] * s
	return a
}
