package compute

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/nbody/internal/prefs"
	"github.com/san-kum/nbody/internal/vec"
)

func newBuffers(n int) Buffers {
	return Buffers{
		Position: make([]vec.Float4, n),
		Velocity: make([]vec.Float4, n),
	}
}

func encode(p prefs.Prefs) []byte {
	b, _ := p.MarshalBinary()
	return b
}

var _ = Describe("CPUBackend", func() {
	var cpu *CPUBackend

	BeforeEach(func() {
		cpu = NewCPUBackend()
	})

	It("should be available", func() {
		Expect(cpu.Available()).To(BeTrue())
		Expect(cpu.Name()).To(Equal("cpu"))
		Expect(cpu.WorkgroupWidth()).To(Equal(32))
	})

	It("should reject a malformed parameter buffer", func() {
		err := cpu.Integrate(make([]byte, 12), newBuffers(1), newBuffers(1))
		Expect(errors.Is(err, prefs.ErrShortBuffer)).To(BeTrue())
	})

	It("should reject buffers shorter than the particle count", func() {
		p := prefs.Prefs{Timestep: 0.1, Damping: 1, SofteningSqr: 1, Particles: 64}
		err := cpu.Integrate(encode(p), newBuffers(32), newBuffers(64))
		Expect(err).To(MatchError(ErrBufferMismatch))
	})

	It("should do nothing for zero particles", func() {
		p := prefs.Prefs{Timestep: 0.1, Damping: 1, SofteningSqr: 1}
		Expect(cpu.Integrate(encode(p), newBuffers(0), newBuffers(0))).To(Succeed())
	})

	It("should move a lone body in a straight line", func() {
		p := prefs.Prefs{Timestep: 0.5, Damping: 1, SofteningSqr: 0, Particles: 1}
		src := newBuffers(1)
		dst := newBuffers(1)
		src.Position[0] = vec.Float4{1, 2, 3, 1}
		src.Velocity[0] = vec.Float4{2, 0, -2, 1}

		Expect(cpu.Integrate(encode(p), dst, src)).To(Succeed())
		Expect(dst.Position[0]).To(Equal(vec.Float4{2, 2, 2, 1}))
		Expect(dst.Velocity[0]).To(Equal(vec.Float4{2, 0, -2, 1}))
	})

	It("should apply damping to the velocity", func() {
		p := prefs.Prefs{Timestep: 1, Damping: 0.5, SofteningSqr: 1, Particles: 1}
		src := newBuffers(1)
		dst := newBuffers(1)
		src.Velocity[0] = vec.Float4{4, 0, 0, 1}

		Expect(cpu.Integrate(encode(p), dst, src)).To(Succeed())
		Expect(dst.Velocity[0][0]).To(Equal(float32(2)))
		Expect(dst.Position[0][0]).To(Equal(float32(2)))
	})

	It("should pull two bodies toward each other symmetrically", func() {
		p := prefs.Prefs{Timestep: 0.01, Damping: 1, SofteningSqr: 0.01, Particles: 2}
		src := newBuffers(2)
		dst := newBuffers(2)
		src.Position[0] = vec.Float4{-1, 0, 0, 1}
		src.Position[1] = vec.Float4{1, 0, 0, 1}

		Expect(cpu.Integrate(encode(p), dst, src)).To(Succeed())

		Expect(dst.Velocity[0][0]).To(BeNumerically(">", 0))
		Expect(dst.Velocity[1][0]).To(BeNumerically("<", 0))
		Expect(dst.Velocity[0][0]).To(BeNumerically("~", -dst.Velocity[1][0], 1e-7))

		// a = m r / (r^2 + eps^2)^(3/2) with r = 2
		want := 2 / math.Pow(4.01, 1.5) * 0.01
		Expect(float64(dst.Velocity[0][0])).To(BeNumerically("~", want, 1e-6))
	})

	It("should not produce NaN for coincident bodies without softening", func() {
		p := prefs.Prefs{Timestep: 0.1, Damping: 1, SofteningSqr: 0, Particles: 2}
		src := newBuffers(2)
		dst := newBuffers(2)
		src.Position[0] = vec.Float4{1, 1, 1, 1}
		src.Position[1] = vec.Float4{1, 1, 1, 1}

		Expect(cpu.Integrate(encode(p), dst, src)).To(Succeed())
		Expect(dst.Position[0].IsFinite()).To(BeTrue())
		Expect(dst.Position[1].IsFinite()).To(BeTrue())
	})

	It("should give the same answer serial and parallel", func() {
		n := 256
		p := prefs.Prefs{Timestep: 0.016, Damping: 0.99, SofteningSqr: 0.1, Particles: uint32(n)}
		src := newBuffers(n)
		for i := 0; i < n; i++ {
			f := float32(i)
			src.Position[i] = vec.Float4{f * 0.1, float32(math.Sin(float64(f))), float32(math.Cos(float64(f))), 1}
			src.Velocity[i] = vec.Float4{0, 0.1, 0, 1}
		}

		serial := newBuffers(n)
		Expect((&CPUBackend{workers: 1}).Integrate(encode(p), serial, src)).To(Succeed())

		parallel := newBuffers(n)
		Expect((&CPUBackend{workers: 8}).Integrate(encode(p), parallel, src)).To(Succeed())

		Expect(parallel.Position).To(Equal(serial.Position))
		Expect(parallel.Velocity).To(Equal(serial.Velocity))
	})

	It("should leave the source untouched", func() {
		n := 64
		p := prefs.Prefs{Timestep: 0.016, Damping: 1, SofteningSqr: 1, Particles: uint32(n)}
		src := newBuffers(n)
		for i := range src.Position {
			src.Position[i] = vec.Float4{float32(i), 0, 0, 1}
		}
		before := append([]vec.Float4(nil), src.Position...)

		Expect(cpu.Integrate(encode(p), newBuffers(n), src)).To(Succeed())
		Expect(src.Position).To(Equal(before))
	})
})

var _ = Describe("Backend selection", func() {
	It("should resolve cpu by name", func() {
		b, err := ByName("cpu")
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Name()).To(Equal("cpu"))
	})

	It("should always resolve auto", func() {
		b, err := ByName("auto")
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Available()).To(BeTrue())
	})

	It("should reject unknown names", func() {
		_, err := ByName("metal")
		Expect(errors.Is(err, ErrUnknownBackend)).To(BeTrue())
	})

	It("should swap the active backend", func() {
		prev := GetBackend()
		defer SetBackend(prev)

		cpu := NewCPUBackend()
		SetBackend(cpu)
		Expect(GetBackend()).To(BeIdenticalTo(cpu))
	})
})
