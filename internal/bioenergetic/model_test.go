package bioenergetic_test

import (
	"bytes"
	"context"
	"log/slog"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/foodweb/internal/allometry"
	"github.com/san-kum/foodweb/internal/bioenergetic"
	"github.com/san-kum/foodweb/internal/dynamo"
	"github.com/san-kum/foodweb/internal/foodweb"
)

func twoProducers() *foodweb.FoodWeb {
	w, err := foodweb.FromMatrix([][]int{{0, 0}, {0, 0}})
	Expect(err).NotTo(HaveOccurred())
	return w
}

func producerConsumer() *foodweb.FoodWeb {
	w, err := foodweb.Chain(2)
	Expect(err).NotTo(HaveOccurred())
	return w
}

func shortRun(duration float64) bioenergetic.SimConfig {
	cfg := bioenergetic.DefaultSimConfig()
	cfg.Dt = 0.1
	cfg.Duration = duration
	return cfg
}

var _ = Describe("Environment", func() {
	It("rejects several K values under system-wide productivity", func() {
		env := bioenergetic.Environment{K: []float64{1, 2}, Productivity: bioenergetic.SystemWide}
		_, err := bioenergetic.NewParams(twoProducers(), env, bioenergetic.DefaultFunctionalResponse())
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})

	It("rejects non-positive carrying capacities", func() {
		_, err := bioenergetic.NewParams(twoProducers(), bioenergetic.SpeciesK(0), bioenergetic.DefaultFunctionalResponse())
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})

	It("rejects a K vector that fits neither species nor producers", func() {
		w, err := foodweb.Chain(3)
		Expect(err).NotTo(HaveOccurred())
		_, err = bioenergetic.NewParams(w, bioenergetic.SpeciesK(1, 2), bioenergetic.DefaultFunctionalResponse())
		Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
	})

	It("maps a per-producer vector onto producers", func() {
		w, err := foodweb.FromMatrix([][]int{{0, 0, 0}, {1, 0, 1}, {0, 0, 0}})
		Expect(err).NotTo(HaveOccurred())
		p, err := bioenergetic.NewParams(w, bioenergetic.SpeciesK(2, 7), bioenergetic.DefaultFunctionalResponse())
		Expect(err).NotTo(HaveOccurred())
		Expect(p.K).To(Equal([]float64{2, 0, 7}))
	})

	It("parses productivity names", func() {
		mode, err := bioenergetic.ParseProductivity("system")
		Expect(err).NotTo(HaveOccurred())
		Expect(mode).To(Equal(bioenergetic.SystemWide))

		_, err = bioenergetic.ParseProductivity("galactic")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("FunctionalResponse", func() {
	It("rejects a hill exponent below one", func() {
		fr := bioenergetic.DefaultFunctionalResponse()
		fr.Hill = 0.5
		_, err := bioenergetic.NewParams(producerConsumer(), bioenergetic.SpeciesK(1), fr)
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})

	It("rejects a non-positive half saturation", func() {
		fr := bioenergetic.DefaultFunctionalResponse()
		fr.HalfSaturation = 0
		_, err := bioenergetic.NewParams(producerConsumer(), bioenergetic.SpeciesK(1), fr)
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})
})

var _ = Describe("Params", func() {
	It("assigns allometric rates by class", func() {
		p, err := bioenergetic.NewParams(producerConsumer(), bioenergetic.SpeciesK(1), bioenergetic.DefaultFunctionalResponse(),
			bioenergetic.WithConsumerClass(allometry.Vertebrate))
		Expect(err).NotTo(HaveOccurred())

		Expect(p.Classes).To(Equal([]allometry.Class{allometry.Producer, allometry.Vertebrate}))
		Expect(p.Growth[0]).To(BeNumerically("~", 1, 1e-12))
		Expect(p.Metabolic[1]).To(BeNumerically("~", 0.88, 1e-12))
		Expect(p.Consumption[1]).To(BeNumerically("~", 4, 1e-12))
		Expect(p.Efficiency[1][0]).To(Equal(bioenergetic.DefaultHerbivoreEfficiency))
		Expect(p.Preference[1][0]).To(Equal(1.0))
	})

	It("uses carnivore efficiency for consumer prey", func() {
		w, err := foodweb.Chain(3)
		Expect(err).NotTo(HaveOccurred())
		p, err := bioenergetic.NewParams(w, bioenergetic.SpeciesK(1), bioenergetic.DefaultFunctionalResponse())
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Efficiency[2][1]).To(Equal(bioenergetic.DefaultCarnivoreEfficiency))
	})

	It("swaps K without touching the original bundle", func() {
		p, err := bioenergetic.NewParams(twoProducers(), bioenergetic.SpeciesK(1), bioenergetic.DefaultFunctionalResponse())
		Expect(err).NotTo(HaveOccurred())
		q, err := p.WithK(bioenergetic.SpeciesK(4))
		Expect(err).NotTo(HaveOccurred())

		Expect(p.K).To(Equal([]float64{1, 1}))
		Expect(q.K).To(Equal([]float64{4, 4}))
	})
})

var _ = Describe("Model", func() {
	It("has zero derivative at zero biomass", func() {
		p, err := bioenergetic.NewParams(producerConsumer(), bioenergetic.SpeciesK(1), bioenergetic.DefaultFunctionalResponse())
		Expect(err).NotTo(HaveOccurred())
		dx := bioenergetic.NewModel(p).Derive(dynamo.State{0, 0}, 0)
		Expect(dx).To(Equal(dynamo.State{0, 0}))
	})

	It("zeroes biomass below the extinction threshold", func() {
		p, err := bioenergetic.NewParams(producerConsumer(), bioenergetic.SpeciesK(1), bioenergetic.DefaultFunctionalResponse())
		Expect(err).NotTo(HaveOccurred())
		x := bioenergetic.NewModel(p).Project(dynamo.State{1e-9, 0.5})
		Expect(x).To(Equal(dynamo.State{0, 0.5}))
	})

	It("exposes K through Configurable", func() {
		p, err := bioenergetic.NewParams(twoProducers(), bioenergetic.SystemK(2), bioenergetic.DefaultFunctionalResponse())
		Expect(err).NotTo(HaveOccurred())
		m := bioenergetic.NewModel(p)
		Expect(m.GetParams()["K"]).To(Equal(2.0))

		Expect(m.SetParam("K", 5)).To(Succeed())
		Expect(m.GetParams()["K"]).To(Equal(5.0))
		Expect(m.SetParam("warp", 1)).NotTo(Succeed())
	})
})

var _ = Describe("Simulate", func() {
	ctx := context.Background()

	It("shares a system-wide K between two producers", func() {
		p, err := bioenergetic.NewParams(twoProducers(), bioenergetic.SystemK(3), bioenergetic.DefaultFunctionalResponse())
		Expect(err).NotTo(HaveOccurred())

		res, err := bioenergetic.Simulate(ctx, p, []float64{0.3, 0.2}, shortRun(100))
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Final().Sum()).To(BeNumerically("~", 3, 1e-6))
	})

	It("gives each producer its own K when species-specific", func() {
		p, err := bioenergetic.NewParams(twoProducers(), bioenergetic.SpeciesK(2, 5), bioenergetic.DefaultFunctionalResponse())
		Expect(err).NotTo(HaveOccurred())

		res, err := bioenergetic.Simulate(ctx, p, []float64{0.3, 0.2}, shortRun(100))
		Expect(err).NotTo(HaveOccurred())
		final := res.Final()
		Expect(final[0]).To(BeNumerically("~", 2, 1e-6))
		Expect(final[1]).To(BeNumerically("~", 5, 1e-6))
	})

	It("supports a consumer on a moderately enriched producer", func() {
		p, err := bioenergetic.NewParams(producerConsumer(), bioenergetic.SpeciesK(0.5), bioenergetic.DefaultFunctionalResponse())
		Expect(err).NotTo(HaveOccurred())

		res, err := bioenergetic.Simulate(ctx, p, []float64{0.1, 0.1}, shortRun(1500))
		Expect(err).NotTo(HaveOccurred())
		final := res.Final()
		Expect(final[1]).To(BeNumerically(">", 0))
		Expect(final[0]).To(BeNumerically("~", 0.5*0.125/0.875, 1e-3))
	})

	It("is deterministic for identical inputs", func() {
		p, err := bioenergetic.NewParams(producerConsumer(), bioenergetic.SpeciesK(1), bioenergetic.DefaultFunctionalResponse())
		Expect(err).NotTo(HaveOccurred())
		b0 := bioenergetic.InitialBiomass(rand.New(rand.NewSource(3)), 2, 0.1, 1)

		a, err := bioenergetic.Simulate(ctx, p, b0, shortRun(50))
		Expect(err).NotTo(HaveOccurred())
		b, err := bioenergetic.Simulate(ctx, p, b0, shortRun(50))
		Expect(err).NotTo(HaveOccurred())
		Expect(a.States).To(Equal(b.States))
	})

	It("rejects an initial biomass of the wrong length", func() {
		p, err := bioenergetic.NewParams(producerConsumer(), bioenergetic.SpeciesK(1), bioenergetic.DefaultFunctionalResponse())
		Expect(err).NotTo(HaveOccurred())
		_, err = bioenergetic.Simulate(ctx, p, []float64{1}, shortRun(10))
		Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
	})

	It("drives a starving consumer extinct", func() {
		p, err := bioenergetic.NewParams(producerConsumer(), bioenergetic.SpeciesK(0.05), bioenergetic.DefaultFunctionalResponse())
		Expect(err).NotTo(HaveOccurred())

		cfg := shortRun(500)
		cfg.Verbose = true
		res, err := bioenergetic.Simulate(ctx, p, []float64{0.05, 0.1}, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Final()[1]).To(Equal(0.0))
	})

	It("logs extinctions to the configured logger", func() {
		p, err := bioenergetic.NewParams(producerConsumer(), bioenergetic.SpeciesK(0.05), bioenergetic.DefaultFunctionalResponse())
		Expect(err).NotTo(HaveOccurred())

		var buf bytes.Buffer
		cfg := shortRun(500)
		cfg.Verbose = true
		cfg.Logger = slog.New(slog.NewTextHandler(&buf, nil))
		_, err = bioenergetic.Simulate(ctx, p, []float64{0.05, 0.1}, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("species extinct"))
		Expect(buf.String()).To(ContainSubstring("species=1"))
	})
})
