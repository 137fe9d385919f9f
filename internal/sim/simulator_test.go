package sim_test

import (
	"context"
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/solsim/internal/body"
	"github.com/san-kum/solsim/internal/config"
	"github.com/san-kum/solsim/internal/ephemeris"
	"github.com/san-kum/solsim/internal/experiment"
	"github.com/san-kum/solsim/internal/gravity"
	"github.com/san-kum/solsim/internal/lagrange"
	"github.com/san-kum/solsim/internal/metrics"
	"github.com/san-kum/solsim/internal/sim"
)

func binary() []body.Spec {
	return []body.Spec{
		{Name: "A", Mass: 1000, Velocity: mgl64.Vec3{0, -0.001, 0}},
		{Name: "B", Mass: 1, Position: mgl64.Vec3{10, 0, 0}, Velocity: mgl64.Vec3{0, 0.0038, 0.0001}},
	}
}

func solar() []body.Spec {
	specs, _ := ephemeris.Specs([]string{"Sun", "Earth", "Moon", "JWST"})
	return specs
}

func momentum(s *sim.Simulation) mgl64.Vec3 {
	return gravity.Momentum(s.Registry().Bodies())
}

var _ = Describe("Simulation", func() {
	var cfg sim.Config

	BeforeEach(func() {
		cfg = sim.DefaultConfig()
	})

	Describe("setup", func() {
		It("refuses non-positive masses", func() {
			specs := append(binary(), body.Spec{Name: "C", Mass: 0})
			s, err := sim.New(specs, cfg)
			Expect(s).To(BeNil())
			Expect(errors.Is(err, body.ErrNonPositiveMass)).To(BeTrue())
		})

		It("refuses an empty body set", func() {
			_, err := sim.New(nil, cfg)
			Expect(err).To(MatchError(sim.ErrNoBodies))
		})
	})

	Describe("a closed two-body system", func() {
		It("conserves momentum across many ticks", func() {
			s, err := sim.New(binary(), cfg)
			Expect(err).NotTo(HaveOccurred())

			p0 := momentum(s)
			for i := 0; i < 5000; i++ {
				Expect(s.Tick(0.05)).To(Succeed())
			}
			Expect(momentum(s).Sub(p0).Len()).To(BeNumerically("<", 1e-12))
		})

		It("keeps the trail within capacity", func() {
			cfg.TrailCapacity = 64
			s, _ := sim.New(binary(), cfg)
			for i := 0; i < 3000; i++ {
				_ = s.Tick(0.5)
			}
			for _, b := range s.Registry().Bodies() {
				Expect(b.Trail.Len()).To(BeNumerically("<=", 64))
			}
		})
	})

	Describe("an isolated body", func() {
		It("stays put with zero acceleration", func() {
			s, _ := sim.New([]body.Spec{{Name: "Sun", Mass: 1988500}}, cfg)
			for i := 0; i < 1000; i++ {
				_ = s.Tick(1)
			}
			b, _ := s.Registry().Lookup("Sun")
			Expect(b.Position).To(Equal(mgl64.Vec3{}))
			Expect(b.Acceleration).To(Equal(mgl64.Vec3{}))
		})
	})

	Describe("pause", func() {
		It("freezes bodies but keeps derived views consistent", func() {
			s, err := sim.New(solar(), cfg)
			Expect(err).NotTo(HaveOccurred())
			_ = s.Tick(0.1)

			s.Clock().Pause()
			before := s.Frame(false)
			for i := 0; i < 50; i++ {
				_ = s.Tick(0.1)
			}
			after := s.Frame(true)

			for i, b := range after.Bodies {
				Expect(b.Position).To(Equal(before.Bodies[i].Position))
				Expect(b.Velocity).To(Equal(before.Bodies[i].Velocity))
				last := b.Trail[len(b.Trail)-1]
				Expect(last).To(Equal(b.Position))
			}
			Expect(after.SimTime).To(Equal(before.SimTime))

			earth, _ := after.Body("Earth")
			sun, _ := after.Body("Sun")
			dir := sun.Position.Sub(earth.Position).Normalize()
			l1 := after.Points[0]
			Expect(l1.Position.ApproxEqual(earth.Position.Add(dir.Mul(l1.Offset)))).To(BeTrue())
		})

		It("holds a halo body still and keeps its trail on it", func() {
			s, err := experiment.Build(config.GetPreset("full"))
			Expect(err).NotTo(HaveOccurred())
			_ = s.Tick(0.1)

			s.Clock().Pause()
			before := s.Frame(false)
			for i := 0; i < 50; i++ {
				Expect(s.Tick(0.1)).To(Succeed())
			}
			after := s.Frame(true)

			for i, b := range after.Bodies {
				Expect(b.Position).To(Equal(before.Bodies[i].Position), b.Name)
				Expect(b.Trail[len(b.Trail)-1]).To(Equal(b.Position), b.Name)
			}

			s.Clock().Resume()
			_ = s.Tick(0.1)
			f := s.Frame(true)
			jwst, _ := f.Body("JWST")
			Expect(jwst.Trail[len(jwst.Trail)-1]).To(Equal(jwst.Position))
			l2 := f.Points[1]
			Expect(jwst.Position.Sub(l2.Position).Len()).To(BeNumerically("~", lagrange.DefaultHaloRadius, 1e-9))
		})

		It("still accumulates forces while paused", func() {
			s, _ := sim.New(binary(), cfg)
			s.Clock().Pause()
			_ = s.Tick(1)
			b, _ := s.Registry().Lookup("B")
			Expect(b.Acceleration.Len()).To(BeNumerically(">", 0))
		})
	})

	Describe("speed", func() {
		It("scales the simulated time per tick", func() {
			s, _ := sim.New(binary(), cfg)
			s.Clock().MuchFaster()
			_ = s.Tick(0.5)
			Expect(s.Clock().SimTime()).To(BeNumerically("~", 5, 1e-12))
		})
	})

	Describe("substeps", func() {
		It("covers the same simulated time", func() {
			cfg.Substeps = 4
			s, _ := sim.New(binary(), cfg)
			single, _ := sim.New(binary(), sim.DefaultConfig())
			for i := 0; i < 100; i++ {
				_ = s.Tick(0.1)
				_ = single.Tick(0.1)
			}
			Expect(s.Clock().SimTime()).To(Equal(single.Clock().SimTime()))

			a, _ := s.Registry().Lookup("B")
			b, _ := single.Registry().Lookup("B")
			Expect(a.DistanceTo(b)).To(BeNumerically("<", 0.05))
		})
	})

	Describe("removal", func() {
		It("is deferred to the next tick boundary", func() {
			s, _ := sim.New(solar(), cfg)
			Expect(s.Registry().RequestRemoval("Moon")).To(Succeed())
			Expect(s.Registry().Len()).To(Equal(4))

			_ = s.Tick(0.1)
			Expect(s.Registry().Len()).To(Equal(3))
			_, ok := s.Registry().Lookup("Moon")
			Expect(ok).To(BeFalse())
		})

		It("leaves Lagrange points stale when Earth goes away", func() {
			s, _ := sim.New(solar(), cfg)
			_ = s.Tick(0.1)
			stale := s.Frame(false).Points[1].Position

			_ = s.Registry().RequestRemoval("Earth")
			_ = s.Tick(0.1)
			Expect(s.Frame(false).Points[1].Position).To(Equal(stale))
		})
	})

	Describe("reset", func() {
		It("restores bodies, clock and trails", func() {
			s, _ := sim.New(solar(), cfg)
			s.Clock().Faster()
			_ = s.Registry().RequestRemoval("Moon")
			for i := 0; i < 10; i++ {
				_ = s.Tick(0.2)
			}
			s.Clock().Pause()

			s.Reset()

			Expect(s.Registry().Len()).To(Equal(4))
			Expect(s.Clock().Speed()).To(Equal(1.0))
			Expect(s.Clock().Paused()).To(BeFalse())
			Expect(s.Clock().SimTime()).To(BeZero())
			Expect(s.Ticks()).To(BeZero())

			earth, _ := s.Registry().Lookup("Earth")
			Expect(earth.Position).To(Equal(solar()[1].Position))
			Expect(earth.Trail.Len()).To(BeZero())
		})
	})

	Describe("halo", func() {
		It("keeps the halo body near its point", func() {
			cfg.Halo = lagrange.NewHalo("JWST", "SE-L2")
			s, _ := sim.New(solar(), cfg)
			for i := 0; i < 20; i++ {
				_ = s.Tick(0.1)
			}
			f := s.Frame(false)
			jwst, _ := f.Body("JWST")
			Expect(jwst.Position.Sub(f.Points[1].Position).Len()).To(BeNumerically("~", lagrange.DefaultHaloRadius, 1e-9))
		})
	})

	Describe("state validation", func() {
		It("reports NaN state as a simulation error", func() {
			cfg.ValidateState = true
			s, _ := sim.New(binary(), cfg)
			b, _ := s.Registry().Lookup("B")
			b.Velocity = mgl64.Vec3{math.NaN(), 0, 0}

			err := s.Tick(0.1)
			Expect(errors.Is(err, sim.ErrInvalidState)).To(BeTrue())
			var serr *sim.SimulationError
			Expect(errors.As(err, &serr)).To(BeTrue())
		})
	})

	Describe("Run", func() {
		It("samples positions and reports metrics", func() {
			s, _ := sim.New(binary(), cfg)
			s.AddMetric(metrics.NewEnergyDrift(s.Gravity()))
			ticks := 0
			s.AddObserver(sim.ObserverFunc(func([]*body.Body, float64) { ticks++ }))

			res, err := s.Run(context.Background(), sim.RunConfig{Dt: 0.1, Duration: 10, SampleEvery: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.StepsTaken).To(Equal(100))
			Expect(ticks).To(Equal(100))
			Expect(res.Names).To(Equal([]string{"A", "B"}))
			Expect(res.Times).To(HaveLen(11))
			Expect(res.Positions[0]).To(HaveLen(2))
			Expect(res.Times[len(res.Times)-1]).To(BeNumerically("~", 10, 1e-9))
			Expect(res.Metrics).To(HaveKey("energy_drift"))
			Expect(res.EnergyDrift).To(BeNumerically("<", 1e-3))
		})

		It("keeps ticking to the duration when slowed mid-run", func() {
			s, _ := sim.New(binary(), cfg)
			slowed := false
			s.AddObserver(sim.ObserverFunc(func(_ []*body.Body, t float64) {
				if !slowed && t >= 2-1e-9 {
					s.Clock().Slower()
					slowed = true
				}
			}))

			res, err := s.Run(context.Background(), sim.RunConfig{Dt: 0.1, Duration: 10, SampleEvery: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Errors).To(BeEmpty())
			Expect(res.StepsTaken).To(BeNumerically("~", 180, 1))
			Expect(res.Times[len(res.Times)-1]).To(BeNumerically("~", 10, 0.05))
		})

		It("reports a run stalled by a pause", func() {
			s, _ := sim.New(binary(), cfg)
			s.AddObserver(sim.ObserverFunc(func(_ []*body.Body, t float64) {
				if t >= 2-1e-9 {
					s.Clock().Pause()
				}
			}))

			res, err := s.Run(context.Background(), sim.RunConfig{Dt: 0.1, Duration: 10, MaxTicks: 300})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.StepsTaken).To(Equal(300))
			Expect(res.Errors).To(HaveLen(1))
			Expect(errors.Is(res.Errors[0], sim.ErrRunStalled)).To(BeTrue())
			Expect(res.Times[len(res.Times)-1]).To(BeNumerically("~", 2, 0.1))
		})

		It("rejects runs that cannot finish", func() {
			s, _ := sim.New(binary(), cfg)
			_, err := s.Run(context.Background(), sim.RunConfig{Dt: 0, Duration: 1})
			Expect(errors.Is(err, sim.ErrInvalidRun)).To(BeTrue())

			s.Clock().SetSpeed(0)
			_, err = s.Run(context.Background(), sim.RunConfig{Dt: 0.1, Duration: 1})
			Expect(errors.Is(err, sim.ErrInvalidRun)).To(BeTrue())
		})

		It("stops on cancellation", func() {
			s, _ := sim.New(binary(), cfg)
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			res, err := s.Run(ctx, sim.RunConfig{Dt: 0.1, Duration: 100})
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.StepsTaken).To(BeZero())
		})

		It("runs independent simulations concurrently", func() {
			a, _ := sim.New(binary(), cfg)
			b, _ := sim.New(binary(), sim.DefaultConfig())
			results, err := sim.RunAll(context.Background(), []*sim.Simulation{a, b}, sim.RunConfig{Dt: 0.1, Duration: 5})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].Positions).To(Equal(results[1].Positions))
		})
	})
})
