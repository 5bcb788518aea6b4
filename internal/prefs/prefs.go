package prefs

import (
	"fmt"
	"math"
	"structs"
)

// Size is the encoded and in-memory size of a Prefs record in bytes.
const Size = 16

// Field offsets within the encoded record.
const (
	OffsetTimestep     = 0
	OffsetDamping      = 4
	OffsetSofteningSqr = 8
	OffsetParticles    = 12
)

// Prefs holds the per-dispatch parameters of the integration kernel.
// It is passed by value; the kernel side declares the same four fields in the
// same order.
type Prefs struct {
	_ structs.HostLayout

	Timestep     float32
	Damping      float32
	SofteningSqr float32
	Particles    uint32
}

// Default returns the record the compute stage starts from before any
// simulation parameters are applied.
func Default() Prefs {
	return Prefs{
		Timestep:     DefaultTimestep,
		Damping:      DefaultDamping,
		SofteningSqr: DefaultSofteningSqr,
		Particles:    DefaultParticles,
	}
}

// FromSoftening builds a record from an unsquared softening length.
func FromSoftening(timestep, damping, softening float32, particles uint32) Prefs {
	return Prefs{
		Timestep:     timestep,
		Damping:      damping,
		SofteningSqr: softening * softening,
		Particles:    particles,
	}
}

// Softening returns the softening length, the square root of SofteningSqr.
func (p Prefs) Softening() float32 {
	if p.SofteningSqr <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(p.SofteningSqr)))
}

// WithParticles returns a copy of p with the particle count replaced.
func (p Prefs) WithParticles(n uint32) Prefs {
	p.Particles = n
	return p
}

func (p Prefs) String() string {
	return fmt.Sprintf("prefs{dt=%g damping=%g eps2=%g n=%d}",
		p.Timestep, p.Damping, p.SofteningSqr, p.Particles)
}
