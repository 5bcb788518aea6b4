package compute

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/san-kum/nbody/internal/config"
	"github.com/san-kum/nbody/internal/prefs"
)

var _ = Describe("Stage", func() {
	var (
		mockCtrl *gomock.Controller
		backend  *MockBackend
		stage    *Stage
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		backend = NewMockBackend(mockCtrl)
		backend.EXPECT().Name().Return("mock").AnyTimes()
		backend.EXPECT().Available().Return(true).AnyTimes()
		backend.EXPECT().WorkgroupWidth().Return(32).AnyTimes()
		stage = NewStage(backend)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should start from the default prefs", func() {
		Expect(stage.Prefs()).To(Equal(prefs.Default()))

		var p prefs.Prefs
		Expect(p.UnmarshalBinary(stage.Params())).To(Succeed())
		Expect(p).To(Equal(prefs.Default()))
	})

	It("should square the softening length when parameters are applied", func() {
		stage.SetParameters(config.Parameters{Timestep: 0.01, Damping: 0.5, Softening: 0.2})

		p := stage.Prefs()
		Expect(p.Timestep).To(Equal(float32(0.01)))
		Expect(p.Damping).To(Equal(float32(0.5)))
		Expect(p.SofteningSqr).To(BeNumerically("~", 0.04, 1e-7))
	})

	It("should reject a particle count that is not a multiple of the workgroup", func() {
		stage.SetGlobals(config.Globals{Particles: 1000})

		err := stage.Acquire()
		Expect(errors.Is(err, ErrWorkgroupMismatch)).To(BeTrue())
		Expect(stage.IsStaged()).To(BeFalse())
	})

	It("should scale the workgroup by the multiplier", func() {
		stage.SetGlobals(config.Globals{Particles: 64 * 3})
		stage.SetMultiplier(2)

		Expect(stage.Acquire()).To(Succeed())

		groups, width := stage.Dispatch()
		Expect(width).To(Equal(64))
		Expect(groups).To(Equal(3))
		Expect(stage.SharedMemory()).To(Equal(64 * 16))
		Expect(stage.BufferSize()).To(Equal(64 * 3 * 16))
	})

	It("should treat a zero multiplier as one", func() {
		stage.SetMultiplier(0)
		Expect(stage.Multiplier()).To(Equal(1))
	})

	It("should fail when the backend is unavailable", func() {
		off := NewMockBackend(mockCtrl)
		off.EXPECT().Available().Return(false)

		err := NewStage(off).Acquire()
		Expect(err).To(MatchError(ErrUnavailable))
	})

	It("should refuse to step before acquiring", func() {
		Expect(stage.Step()).To(MatchError(ErrNotStaged))
	})

	Context("when staged", func() {
		BeforeEach(func() {
			stage.SetGlobals(config.Globals{Particles: 2048})
			Expect(stage.Acquire()).To(Succeed())
		})

		It("should ignore global and multiplier changes", func() {
			stage.SetGlobals(config.Globals{Particles: 4096})
			stage.SetMultiplier(4)

			Expect(stage.Particles()).To(Equal(2048))
			Expect(stage.Multiplier()).To(Equal(1))
		})

		It("should keep accepting parameter changes", func() {
			stage.SetPrefs(prefs.Prefs{Timestep: 0.5, Damping: 0.25, SofteningSqr: 2, Particles: 99})

			var p prefs.Prefs
			Expect(p.UnmarshalBinary(stage.Params())).To(Succeed())
			Expect(p.Timestep).To(Equal(float32(0.5)))
			Expect(p.Damping).To(Equal(float32(0.25)))
			Expect(p.SofteningSqr).To(Equal(float32(2)))
			Expect(p.Particles).To(Equal(uint32(2048)))
		})

		It("should hand the encoded record to the backend and swap buffers", func() {
			read := stage.Position()
			want, _ := stage.Prefs().MarshalBinary()

			backend.EXPECT().
				Integrate(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(params []byte, dst, src Buffers) error {
					Expect(params).To(Equal(want))
					Expect(&src.Position[0]).To(BeIdenticalTo(&read[0]))
					Expect(&dst.Position[0]).NotTo(BeIdenticalTo(&read[0]))
					return nil
				})

			Expect(stage.Step()).To(Succeed())
			Expect(&stage.Position()[0]).NotTo(BeIdenticalTo(&read[0]))
		})

		It("should not swap when the kernel fails", func() {
			read := stage.Position()
			backend.EXPECT().
				Integrate(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(errors.New("device lost"))

			err := stage.Step()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("mock"))
			Expect(&stage.Position()[0]).To(BeIdenticalTo(&read[0]))
		})

		It("should release resources on cleanup", func() {
			backend.EXPECT().Cleanup()

			stage.Cleanup()
			Expect(stage.IsStaged()).To(BeFalse())
			Expect(stage.Position()).To(BeNil())
		})
	})
})
