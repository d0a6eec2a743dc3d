package sim_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mpmsim/internal/compute"
	"github.com/san-kum/mpmsim/internal/control"
	"github.com/san-kum/mpmsim/internal/metrics"
	"github.com/san-kum/mpmsim/internal/mpm"
	"github.com/san-kum/mpmsim/internal/sim"
)

var _ = Describe("dam break", func() {
	var (
		cfg       mpm.Config
		simulator *sim.Simulator
		height    *metrics.MeanHeight
		contained *metrics.Containment
	)

	BeforeEach(func() {
		cfg = mpm.DefaultConfig()
		particles, err := mpm.SeedBlock(cfg, 16, 48)
		Expect(err).NotTo(HaveOccurred())

		solver, err := mpm.NewSolver(cfg, particles, compute.NewCPUBackend(0))
		Expect(err).NotTo(HaveOccurred())

		simulator = sim.New(solver, control.NewNone())
		height = metrics.NewMeanHeight()
		contained = metrics.NewContainment(cfg)
		simulator.AddMetric(height)
		simulator.AddMetric(contained)
	})

	It("seeds the canonical block", func() {
		ps := simulator.Solver().Particles()
		Expect(ps.Len()).To(Equal(64 * 64))
		Expect(ps.TotalMass()).To(BeNumerically("~", cfg.Rho0*32*32, 1e-9))
	})

	When("released under gravity for 100 ticks", func() {
		var result *sim.Result

		BeforeEach(func() {
			var err error
			result, err = simulator.Run(context.Background(), sim.RunConfig{
				Ticks:         100,
				SnapshotEvery: 25,
				ValidateState: true,
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("completes every tick without errors", func() {
			Expect(result.TicksTaken).To(Equal(100))
			Expect(result.Errors).To(BeEmpty())
			Expect(result.Frames).To(HaveLen(5))
		})

		It("lowers the mean height", func() {
			Expect(height.Initial()).To(BeNumerically("~", 32, 0.5))
			Expect(result.Metrics["mean_height"]).To(BeNumerically("<", height.Initial()))
		})

		It("keeps every particle finite and inside the domain", func() {
			Expect(simulator.Solver().CheckFinite()).To(Succeed())
			Expect(result.Metrics["containment"]).To(Equal(1.0))

			last, ok := result.LastFrame()
			Expect(ok).To(BeTrue())
			for _, p := range last.Particles {
				Expect(p.Pos.X).To(BeNumerically(">=", cfg.CellWidth()))
				Expect(p.Pos.X).To(BeNumerically("<=", cfg.SpaceWidth-cfg.CellWidth()))
				Expect(p.Pos.Y).To(BeNumerically(">=", cfg.CellWidth()))
				Expect(p.Pos.Y).To(BeNumerically("<=", cfg.SpaceWidth-cfg.CellWidth()))
			}
		})

		It("conserves the particle count", func() {
			for _, f := range result.Frames {
				Expect(f.Particles).To(HaveLen(64 * 64))
			}
		})
	})
})
