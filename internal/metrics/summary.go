// Package metrics derives scalar summaries from simulated trajectories.
//
// Window functions look at the last n recorded states so that transient
// dynamics can settle before a run is summarised.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/foodweb/internal/bioenergetic"
	"github.com/san-kum/foodweb/internal/dynamo"
)

// Summary is the set of window statistics reported per run.
type Summary struct {
	Biomass     float64
	Persistence float64
	Growth      float64
	GrowthTotal float64
	Variability float64
}

// Summarize computes every window statistic of a run.
func Summarize(res *dynamo.Result, p bioenergetic.Params, last int) Summary {
	growth := ProducerGrowth(res, p, last)
	return Summary{
		Biomass:     TotalBiomass(res, last),
		Persistence: Persistence(res, last, p.Extinction),
		Growth:      Mean(growth),
		GrowthTotal: Sum(growth),
		Variability: BiomassCV(res, last),
	}
}

// TotalBiomass is the mean of ΣB over the last n states.
func TotalBiomass(res *dynamo.Result, last int) float64 {
	return stat.Mean(totals(res.Tail(last)), nil)
}

// Persistence is the mean fraction of species above threshold over the last
// n states.
func Persistence(res *dynamo.Result, last int, threshold float64) float64 {
	tail := res.Tail(last)
	if len(tail) == 0 {
		return math.NaN()
	}
	fractions := make([]float64, len(tail))
	for n, x := range tail {
		alive := 0
		for _, b := range x {
			if b > threshold {
				alive++
			}
		}
		fractions[n] = float64(alive) / float64(len(x))
	}
	return stat.Mean(fractions, nil)
}

// ProducerGrowth returns, for each producer, the mean of r_i·G_i·B_i over
// the last n states.
func ProducerGrowth(res *dynamo.Result, p bioenergetic.Params, last int) []float64 {
	tail := res.Tail(last)
	out := make([]float64, len(p.Web.Producers()))
	if len(tail) == 0 {
		return out
	}
	for _, x := range tail {
		floats.Add(out, p.ProducerNetGrowth(x))
	}
	floats.Scale(1/float64(len(tail)), out)
	return out
}

// BiomassCV is the coefficient of variation of ΣB over the last n states.
// Zero mean biomass yields 0.
func BiomassCV(res *dynamo.Result, last int) float64 {
	t := totals(res.Tail(last))
	if len(t) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(t, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

func Sum(v []float64) float64 {
	return floats.Sum(v)
}

// Mean of v, NaN for an empty slice.
func Mean(v []float64) float64 {
	if len(v) == 0 {
		return math.NaN()
	}
	return stat.Mean(v, nil)
}

func totals(states []dynamo.State) []float64 {
	out := make([]float64, len(states))
	for i, x := range states {
		out[i] = x.Sum()
	}
	return out
}
