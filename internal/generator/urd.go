package generator

import (
	"math/rand/v2"

	"github.com/san-kum/nbody/internal/vec"
)

// urd3 draws three-component vectors from a uniform real distribution.
type urd3 struct {
	rng      *rand.Rand
	min, max float32
	length   float32
}

func newURD3(rng *rand.Rand, min, max, length float32) *urd3 {
	return &urd3{rng: rng, min: min, max: max, length: length}
}

func (u *urd3) sample() float32 {
	return u.min + (u.max-u.min)*u.rng.Float32()
}

// rand returns a vector with every component in [min, max).
func (u *urd3) rand() vec.Float3 {
	return vec.Float3{u.sample(), u.sample(), u.sample()}
}

// nrand returns a vector of the configured length in a random direction.
func (u *urd3) nrand() vec.Float3 {
	for {
		v := u.rand()
		if v.Length() > 1e-6 {
			return v.Normalize().Scale(u.length)
		}
	}
}
