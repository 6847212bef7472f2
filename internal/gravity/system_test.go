package gravity_test

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/gravity"
)

func body(mass float32, pos, vel mgl32.Vec2) gravity.Body {
	b, err := gravity.NewBody(mass, pos, vel)
	Expect(err).NotTo(HaveOccurred())
	return b
}

func system(bodies ...gravity.Body) *gravity.System {
	s, err := gravity.NewSystem(bodies)
	Expect(err).NotTo(HaveOccurred())
	return s
}

func trinary() *gravity.System {
	return system(
		body(200, mgl32.Vec2{0, 0}, mgl32.Vec2{0, 0}),
		body(50, mgl32.Vec2{100, 0}, mgl32.Vec2{0, -1}),
		body(50, mgl32.Vec2{-100, 0}, mgl32.Vec2{0, 1}),
	)
}

var _ = Describe("System", func() {
	Describe("Step", func() {
		It("runs the stages in accumulate, velocity, position order", func() {
			s := trinary()
			var seen []gravity.Stage
			s.SetStageHook(func(st gravity.Stage) { seen = append(seen, st) })

			Expect(s.Step()).To(Succeed())
			Expect(seen).To(Equal([]gravity.Stage{
				gravity.StageAccumulate,
				gravity.StageIntegrateVelocity,
				gravity.StageIntegratePosition,
				gravity.StageIdle,
			}))
			Expect(s.Stage()).To(Equal(gravity.StageIdle))
			Expect(s.StepCount()).To(Equal(1))
		})

		It("uses the updated velocity to move positions", func() {
			s := system(
				body(200, mgl32.Vec2{0, 0}, mgl32.Vec2{0, 0}),
				body(50, mgl32.Vec2{100, 0}, mgl32.Vec2{0, -1}),
			)
			Expect(s.Step()).To(Succeed())

			b := s.Body(0)
			// Explicit Euler would leave body 0 at the origin after one step.
			Expect(b.Position[0]).To(BeNumerically(">", 0))
			Expect(b.Position[0]).To(BeNumerically("~", b.Velocity[0]*gravity.DT, 1e-9))
		})
	})

	Describe("conservation", func() {
		It("keeps total momentum constant in a closed system", func() {
			s := trinary()
			px0, py0 := s.Momentum()

			for i := 0; i < 500; i++ {
				Expect(s.Step()).To(Succeed())
			}

			px, py := s.Momentum()
			Expect(px).To(BeNumerically("~", px0, 1e-2))
			Expect(py).To(BeNumerically("~", py0, 1e-2))
			Expect(s.Validate()).To(Succeed())
		})

		It("keeps momentum constant with the parallel accumulator", func() {
			bodies := make([]gravity.Body, 72)
			for i := range bodies {
				sn, cs := math.Sincos(2 * math.Pi * float64(i) / 72)
				bodies[i] = body(1, mgl32.Vec2{float32(150 * cs), float32(150 * sn)}, mgl32.Vec2{float32(-0.2 * sn), float32(0.2 * cs)})
			}
			s := system(bodies...)
			s.SetWorkers(3)
			px0, py0 := s.Momentum()

			Expect(s.StepN(50)).To(Succeed())

			px, py := s.Momentum()
			Expect(px).To(BeNumerically("~", px0, 1e-3))
			Expect(py).To(BeNumerically("~", py0, 1e-3))
		})
	})

	Describe("single body", func() {
		It("moves in a straight line at constant velocity", func() {
			vel := mgl32.Vec2{1.25, -0.5}
			s := system(body(10, mgl32.Vec2{3, 4}, vel))

			for i := 1; i <= 200; i++ {
				Expect(s.Step()).To(Succeed())
				b := s.Body(0)
				Expect(b.Acceleration).To(Equal(mgl32.Vec2{}))
				Expect(b.Velocity).To(Equal(vel))
			}

			b := s.Body(0)
			Expect(float64(b.Position[0])).To(BeNumerically("~", 3+1.25*1.5*200, 1e-2))
			Expect(float64(b.Position[1])).To(BeNumerically("~", 4-0.5*1.5*200, 1e-2))
		})
	})

	Describe("two-body symmetric orbit", func() {
		It("produces equal and opposite accelerations", func() {
			s := system(
				body(10, mgl32.Vec2{50, 0}, mgl32.Vec2{0, 1}),
				body(10, mgl32.Vec2{-50, 0}, mgl32.Vec2{0, -1}),
			)
			Expect(s.Step()).To(Succeed())

			a0, a1 := s.Body(0).Acceleration, s.Body(1).Acceleration
			Expect(a0).To(Equal(a1.Mul(-1)))
			Expect(a0.Len()).To(Equal(a1.Len()))
			Expect(a0[0]).To(BeNumerically("<", 0), "body 0 sits at +x and is pulled towards -x")
		})
	})

	Describe("coincident bodies", func() {
		It("never produces NaN or Inf", func() {
			s := system(
				body(5, mgl32.Vec2{1, 1}, mgl32.Vec2{}),
				body(5, mgl32.Vec2{1, 1}, mgl32.Vec2{}),
			)
			Expect(s.Step()).To(Succeed())
			Expect(s.Validate()).To(Succeed())
			for _, b := range s.Bodies() {
				Expect(b.Acceleration).To(Equal(mgl32.Vec2{}))
			}
		})
	})

	Describe("determinism", func() {
		It("gives bit-identical results for identical inputs", func() {
			a, b := trinary(), trinary()
			Expect(a.StepN(300)).To(Succeed())
			Expect(b.StepN(300)).To(Succeed())
			Expect(a.Bodies()).To(Equal(b.Bodies()))
		})
	})

	Describe("diagnostics", func() {
		It("reports energy and center of mass", func() {
			s := system(
				body(2, mgl32.Vec2{-1, 0}, mgl32.Vec2{0, 3}),
				body(2, mgl32.Vec2{1, 0}, mgl32.Vec2{0, -3}),
			)
			Expect(s.KineticEnergy()).To(BeNumerically("~", 18, 1e-9))
			Expect(s.PotentialEnergy()).To(BeNumerically("~", -2, 1e-9))
			Expect(s.TotalEnergy()).To(BeNumerically("~", 16, 1e-9))
			Expect(s.AngularMomentum()).To(BeNumerically("~", -12, 1e-9))

			com, err := s.CenterOfMass()
			Expect(err).NotTo(HaveOccurred())
			Expect(com).To(Equal(mgl32.Vec2{0, 0}))
		})

		It("rejects center of mass for an empty system", func() {
			s := system()
			_, err := s.CenterOfMass()
			Expect(err).To(MatchError(gravity.ErrEmptySystem))
		})
	})
})
