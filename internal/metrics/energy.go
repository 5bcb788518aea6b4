package metrics

import (
	"math"

	"github.com/san-kum/nbody/internal/sim"
	"github.com/san-kum/nbody/internal/vec"
)

// KineticEnergy reports the kinetic energy of the latest frame. Mass is the
// w component of each position.
type KineticEnergy struct {
	name  string
	value float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(f sim.Frame) {
	k.value = Kinetic(f.Position, f.Velocity)
}

func (k *KineticEnergy) Value() float64 { return k.value }
func (k *KineticEnergy) Reset()         { k.value = 0 }

// EnergyDrift tracks the largest relative change of total energy from the
// first observed frame. Total energy is O(n²), so only every Nth frame is
// evaluated.
type EnergyDrift struct {
	name          string
	every         int
	frames        int
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

// NewEnergyDrift evaluates energy every n frames; n < 1 means every frame.
func NewEnergyDrift(every int) *EnergyDrift {
	if every < 1 {
		every = 1
	}
	return &EnergyDrift{
		name:  "energy_drift",
		every: every,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(f sim.Frame) {
	e.frames++
	if (e.frames-1)%e.every != 0 {
		return
	}

	energy := Total(f.Position, f.Velocity, f.Prefs.SofteningSqr)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

// Current returns the total energy of the latest evaluated frame.
func (e *EnergyDrift) Current() float64 {
	return e.currentEnergy
}

func (e *EnergyDrift) Reset() {
	e.frames = 0
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// Kinetic returns sum(½ m v²).
func Kinetic(pos, vel []vec.Float4) float64 {
	ke := 0.0
	for i := range pos {
		m := float64(pos[i][3])
		v := vel[i].XYZ()
		ke += 0.5 * m * float64(v.Dot(v))
	}
	return ke
}

// Potential returns the softened gravitational potential energy
// -sum(m_i m_j / sqrt(r² + eps²)) over pairs, with G = 1 as in the kernel.
func Potential(pos []vec.Float4, eps2 float32) float64 {
	pe := 0.0
	for i := range pos {
		xi := pos[i]
		for j := i + 1; j < len(pos); j++ {
			xj := pos[j]
			dx := float64(xj[0] - xi[0])
			dy := float64(xj[1] - xi[1])
			dz := float64(xj[2] - xi[2])
			r2 := dx*dx + dy*dy + dz*dz + float64(eps2)
			if r2 == 0 {
				continue
			}
			pe -= float64(xi[3]) * float64(xj[3]) / math.Sqrt(r2)
		}
	}
	return pe
}

func Total(pos, vel []vec.Float4, eps2 float32) float64 {
	return Kinetic(pos, vel) + Potential(pos, eps2)
}
