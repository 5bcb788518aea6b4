package compute

import (
	"fmt"

	"github.com/san-kum/nbody/internal/config"
	"github.com/san-kum/nbody/internal/prefs"
	"github.com/san-kum/nbody/internal/vec"
)

// Stage owns the compute resources of one simulation: double-buffered
// positions and velocities and the parameter buffer the kernel reads.
//
// Globals and the multiplier are fixed once the stage is acquired.
// Parameters may change between steps.
type Stage struct {
	backend    Backend
	multiplier int
	staged     bool

	host   prefs.Prefs
	params []byte

	position [2][]vec.Float4
	velocity [2][]vec.Float4
	read     int
	write    int

	threadDim int
	groups    int
}

func NewStage(b Backend) *Stage {
	s := &Stage{
		backend:    b,
		multiplier: 1,
		host:       prefs.Default(),
		params:     make([]byte, prefs.Size),
		read:       0,
		write:      1,
	}
	s.host.Put(s.params)
	return s
}

func (s *Stage) Backend() Backend   { return s.backend }
func (s *Stage) IsStaged() bool     { return s.staged }
func (s *Stage) Multiplier() int    { return s.multiplier }
func (s *Stage) Prefs() prefs.Prefs { return s.host }
func (s *Stage) Particles() int     { return int(s.host.Particles) }

// SetMultiplier scales the workgroup size. Zero means one. Ignored once staged.
func (s *Stage) SetMultiplier(n int) {
	if s.staged {
		return
	}
	if n <= 0 {
		n = 1
	}
	s.multiplier = n
}

// SetGlobals applies the particle count. Ignored once staged.
func (s *Stage) SetGlobals(g config.Globals) {
	if s.staged {
		return
	}
	s.host.Particles = uint32(g.Particles)
	s.host.Put(s.params)
}

// SetParameters applies a simulation type's timestep, damping, and squared
// softening, and rewrites the parameter buffer the kernel reads.
func (s *Stage) SetParameters(p config.Parameters) {
	s.SetPrefs(p.Prefs(int(s.host.Particles)))
}

// SetPrefs replaces timestep, damping, and softeningSqr from p. The particle
// count only changes before the stage is acquired.
func (s *Stage) SetPrefs(p prefs.Prefs) {
	s.host.Timestep = p.Timestep
	s.host.Damping = p.Damping
	s.host.SofteningSqr = p.SofteningSqr
	if !s.staged {
		s.host.Particles = p.Particles
	}
	s.host.Put(s.params)
}

// Params returns a copy of the encoded parameter buffer.
func (s *Stage) Params() []byte {
	out := make([]byte, len(s.params))
	copy(out, s.params)
	return out
}

// Acquire allocates the buffers. It fails if the particle count is not a
// multiple of the workgroup size or the backend is unavailable.
func (s *Stage) Acquire() error {
	if s.staged {
		return nil
	}
	if s.backend == nil || !s.backend.Available() {
		return ErrUnavailable
	}

	s.threadDim = s.multiplier * s.backend.WorkgroupWidth()
	n := int(s.host.Particles)
	if s.threadDim <= 0 || n%s.threadDim != 0 {
		return fmt.Errorf("%w: %d particles, workgroup %d", ErrWorkgroupMismatch, n, s.threadDim)
	}

	s.groups = n / s.threadDim
	for i := range 2 {
		s.position[i] = make([]vec.Float4, n)
		s.velocity[i] = make([]vec.Float4, n)
	}

	s.staged = true
	logger().Debug("stage acquired",
		"backend", s.backend.Name(),
		"particles", n,
		"workgroup", s.threadDim,
		"groups", s.groups,
		"bytes", s.BufferSize()*4+prefs.Size,
	)
	return nil
}

// Dispatch returns the workgroup count and size.
func (s *Stage) Dispatch() (groups, width int) {
	return s.groups, s.threadDim
}

// BufferSize is the size in bytes of one position or velocity buffer.
func (s *Stage) BufferSize() int {
	return vec.Float4Size * int(s.host.Particles)
}

// SharedMemory is the per-workgroup tile size in bytes.
func (s *Stage) SharedMemory() int {
	return vec.Float4Size * s.threadDim
}

// Position returns the read-side position buffer.
func (s *Stage) Position() []vec.Float4 { return s.position[s.read] }

// Velocity returns the read-side velocity buffer.
func (s *Stage) Velocity() []vec.Float4 { return s.velocity[s.read] }

// Step runs the kernel from the read side into the write side and swaps.
func (s *Stage) Step() error {
	if !s.staged {
		return ErrNotStaged
	}

	dst := Buffers{Position: s.position[s.write], Velocity: s.velocity[s.write]}
	src := Buffers{Position: s.position[s.read], Velocity: s.velocity[s.read]}
	if err := s.backend.Integrate(s.params, dst, src); err != nil {
		return fmt.Errorf("integrate on %s: %w", s.backend.Name(), err)
	}

	s.Swap()
	return nil
}

// Swap exchanges the read and write buffers.
func (s *Stage) Swap() {
	s.read, s.write = s.write, s.read
}

// Cleanup releases the buffers and the backend's resources.
func (s *Stage) Cleanup() {
	for i := range 2 {
		s.position[i] = nil
		s.velocity[i] = nil
	}
	s.staged = false
	if s.backend != nil {
		s.backend.Cleanup()
	}
}
