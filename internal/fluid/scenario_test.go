package fluid_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smoroz/ledfluid/internal/config"
	"github.com/smoroz/ledfluid/internal/fluid"
)

var _ = Describe("a pool settling under gravity", func() {
	var sim *fluid.Simulation

	BeforeEach(func() {
		cfg := config.DefaultConfig()
		var err error
		sim, err = fluid.New(cfg)
		Expect(err).NotTo(HaveOccurred())
	})

	It("pools fluid in the bottom rows after settling", func() {
		for i := 0; i < 120; i++ {
			Expect(sim.Tick()).To(Succeed())
		}

		g := sim.Grid()
		bottomFluid := 0
		for col := 1; col < g.Width-1; col++ {
			if g.TypeAt(col, g.Height-2) == fluid.CellFluid {
				bottomFluid++
			}
		}
		Expect(bottomFluid).To(BeNumerically(">", 0),
			"no fluid reached the bottom row")
	})

	It("calms down as damping drains energy", func() {
		peak := 0.0
		for i := 0; i < 40; i++ {
			Expect(sim.Tick()).To(Succeed())
			if ke := sim.KineticEnergy(); ke > peak {
				peak = ke
			}
		}

		for i := 0; i < 400; i++ {
			Expect(sim.Tick()).To(Succeed())
		}
		late := sim.KineticEnergy()

		Expect(late).To(BeNumerically("<", peak),
			"kinetic energy did not decay from its early peak %g", peak)
	})

	It("sloshes toward the tilted side", func() {
		sim.SetTilt(1, 0.2)
		for i := 0; i < 120; i++ {
			Expect(sim.Tick()).To(Succeed())
		}

		ps := sim.Particles()
		g := sim.Grid()
		mid := float64(g.Width) * g.Spacing / 2
		right := 0
		for i := 0; i < ps.Len(); i++ {
			if ps.X[i] > mid {
				right++
			}
		}
		Expect(right).To(BeNumerically(">", ps.Len()/2),
			"fluid did not slosh to the tilted side")
	})
})
