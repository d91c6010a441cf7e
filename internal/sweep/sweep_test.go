package sweep_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/foodweb/internal/bioenergetic"
	"github.com/san-kum/foodweb/internal/dynamo"
	"github.com/san-kum/foodweb/internal/experiment"
	"github.com/san-kum/foodweb/internal/sweep"
)

func chain(duration float64) experiment.Config {
	return experiment.Config{
		Topology:       "chain",
		Species:        2,
		K:              []float64{1},
		Integrator:     "rk4",
		Dt:             0.1,
		Duration:       duration,
		Seed:           42,
		InitialBiomass: []float64{0.1, 0.1},
	}
}

func niche() experiment.Config {
	return experiment.Config{
		Topology:    "niche",
		Species:     8,
		Connectance: 0.2,
		K:           []float64{1},
		Dt:          0.1,
		Duration:    60,
		Seed:        3,
	}
}

func newDriver(cfg experiment.Config, window int) *sweep.Driver {
	exp, err := experiment.New(cfg, nil)
	Expect(err).NotTo(HaveOccurred())
	return sweep.NewDriver(exp, window)
}

// failing rejects one K value.
type failing struct {
	*experiment.Experiment
	bad float64
}

func (f failing) ParamsFor(k float64) (bioenergetic.Params, error) {
	if k == f.bad {
		return bioenergetic.Params{}, dynamo.ErrParameterBounds
	}
	return f.Experiment.ParamsFor(k)
}

var _ = Describe("Driver", func() {
	ctx := context.Background()

	It("returns one record per value in input order", func() {
		ks := []float64{2, 0.5, 1, 3}
		recs, err := newDriver(chain(20), 50).Run(ctx, ks)
		Expect(err).NotTo(HaveOccurred())
		Expect(recs).To(HaveLen(len(ks)))
		for i, r := range recs {
			Expect(r.K).To(Equal(ks[i]))
			Expect(r.Err).NotTo(HaveOccurred())
		}
	})

	It("is deterministic for a fixed seed", func() {
		ks, err := sweep.Linspace(0.5, 2, 4)
		Expect(err).NotTo(HaveOccurred())

		a, err := newDriver(niche(), 100).Run(ctx, ks)
		Expect(err).NotTo(HaveOccurred())
		b, err := newDriver(niche(), 100).Run(ctx, ks)
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(b))
	})

	DescribeTable("rejects invalid ranges before simulating",
		func(ks []float64) {
			called := false
			d := newDriver(chain(10), 0)
			d.Progress = func(int, int, sweep.Record) { called = true }
			recs, err := d.Run(ctx, ks)
			Expect(err).To(MatchError(sweep.ErrInvalidRange))
			Expect(recs).To(BeNil())
			Expect(called).To(BeFalse())
		},
		Entry("empty", []float64{}),
		Entry("zero", []float64{1, 0}),
		Entry("negative", []float64{-1}),
		Entry("NaN", []float64{math.NaN()}),
		Entry("infinite", []float64{1, math.Inf(1)}),
	)

	It("stops at the first failure and keeps earlier records", func() {
		exp, err := experiment.New(chain(10), nil)
		Expect(err).NotTo(HaveOccurred())
		d := sweep.NewDriver(failing{exp, 2}, 0)

		recs, err := d.Run(ctx, []float64{1, 2, 3})
		Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("index 1"))
		Expect(recs).To(HaveLen(1))
		Expect(recs[0].K).To(Equal(1.0))
	})

	It("records failures when continuing on error", func() {
		exp, err := experiment.New(chain(10), nil)
		Expect(err).NotTo(HaveOccurred())
		d := sweep.NewDriver(failing{exp, 2}, 0)
		d.ContinueOnError = true

		var seen []int
		d.Progress = func(i, n int, _ sweep.Record) {
			Expect(n).To(Equal(3))
			seen = append(seen, i)
		}

		recs, err := d.Run(ctx, []float64{1, 2, 3})
		Expect(err).NotTo(HaveOccurred())
		Expect(recs).To(HaveLen(3))
		Expect(seen).To(Equal([]int{0, 1, 2}))
		Expect(recs[1].Err).To(MatchError(dynamo.ErrParameterBounds))
		Expect(math.IsNaN(recs[1].Biomass)).To(BeTrue())
		Expect(sweep.Failed(recs)).To(HaveLen(1))
	})

	It("aborts on a canceled context", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		recs, err := newDriver(chain(10), 0).Run(cctx, []float64{1, 2})
		Expect(err).To(MatchError(dynamo.ErrContextCanceled))
		Expect(recs).To(BeEmpty())
	})

	Context("paradox of enrichment", func() {
		var recs []sweep.Record

		BeforeEach(func() {
			var err error
			recs, err = newDriver(chain(1500), 2000).Run(ctx, []float64{0.5, 0.7, 2})
			Expect(err).NotTo(HaveOccurred())
		})

		It("settles to equilibrium at low K", func() {
			Expect(recs[0].Variability).To(BeNumerically("<", 1e-3))
			Expect(recs[0].Persistence).To(Equal(1.0))
			Expect(recs[0].Biomass).To(BeNumerically("~", 0.159, 1e-3))
		})

		It("oscillates once enriched past the Hopf point", func() {
			Expect(recs[1].Variability).To(BeNumerically(">", 0.2))
			Expect(recs[1].Persistence).To(Equal(1.0))
		})

		It("loses species under strong enrichment", func() {
			Expect(recs[2].Persistence).To(BeNumerically("<", 1))
		})
	})
})
